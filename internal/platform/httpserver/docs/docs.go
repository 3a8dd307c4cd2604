// Package docs provides the generated swagger definition for the HTTP API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/v1/election/candidates": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "List the candidate slate of the current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.CandidatesResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/events": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "List recorded election events",
                "parameters": [
                    {"type": "integer", "name": "after_seq", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.EventFeedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/results": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Compute the current election result",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.ResultsResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Describe the current voting session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.SessionInfoResponse"}}
                }
            }
        },
        "/v1/election/sessions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Create a new voting session",
                "parameters": [
                    {"description": "session definition", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CreateSessionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.SessionResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/sessions/current/end": {
            "post": {
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "End the current voting session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.EndSessionResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/voters": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Authorize a single voter",
                "parameters": [
                    {"description": "voter address", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AuthorizeVoterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AuthorizeVotersResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/voters/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Authorize a batch of voters",
                "parameters": [
                    {"description": "voter addresses", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.AuthorizeVotersRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/http.AuthorizeVotersResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        },
        "/v1/election/votes": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["election"],
                "summary": "Cast a vote for a candidate",
                "parameters": [
                    {"description": "vote", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/http.CastVoteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/http.CastVoteResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/http.ErrorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/http.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "http.AuthorizeVoterRequest": {
            "type": "object",
            "properties": {
                "address": {"type": "string"}
            }
        },
        "http.AuthorizeVotersRequest": {
            "type": "object",
            "properties": {
                "addresses": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.AuthorizeVotersResponse": {
            "type": "object",
            "properties": {
                "authorized_count": {"type": "integer"}
            }
        },
        "http.CandidateItem": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "name": {"type": "string"},
                "vote_count": {"type": "integer"}
            }
        },
        "http.CandidatesResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.CandidateItem"}}
            }
        },
        "http.CastVoteRequest": {
            "type": "object",
            "properties": {
                "candidate_id": {"type": "integer"}
            }
        },
        "http.CastVoteResponse": {
            "type": "object",
            "properties": {
                "candidate_id": {"type": "integer"},
                "candidate_votes": {"type": "integer"},
                "total_votes": {"type": "integer"}
            }
        },
        "http.CreateSessionRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "duration_seconds": {"type": "integer"},
                "candidate_names": {"type": "array", "items": {"type": "string"}}
            }
        },
        "http.EndSessionResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "total_votes": {"type": "integer"}
            }
        },
        "http.ErrorResponse": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "http.EventFeedResponse": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/http.EventItem"}}
            }
        },
        "http.EventItem": {
            "type": "object",
            "properties": {
                "seq": {"type": "integer"},
                "event_id": {"type": "string"},
                "event_type": {"type": "string"},
                "occurred_at": {"type": "string"},
                "data": {"type": "object"}
            }
        },
        "http.ResultsResponse": {
            "type": "object",
            "properties": {
                "winner_name": {"type": "string"},
                "winner_votes": {"type": "integer"},
                "total_votes": {"type": "integer"}
            }
        },
        "http.SessionInfoResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "active": {"type": "boolean"},
                "total_votes": {"type": "integer"},
                "caller_has_voted": {"type": "boolean"}
            }
        },
        "http.SessionResponse": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "active": {"type": "boolean"},
                "total_votes": {"type": "integer"},
                "candidates": {"type": "array", "items": {"$ref": "#/definitions/http.CandidateItem"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "BallotBox Election API",
	Description:      "Single-election voting ledger with authorization, time-windowed sessions and an append-only event feed.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}

package httpserver_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	electionindexer "ballotbox/contexts/election-core/election-indexer"
	electionledger "ballotbox/contexts/election-core/election-ledger"
	ledgerhttp "ballotbox/contexts/election-core/election-ledger/transport/http"
	"ballotbox/internal/platform/httpserver"
)

const adminID = "admin-1"

func newTestServer(t *testing.T) *httpserver.Server {
	t.Helper()
	ledger := electionledger.NewInMemoryModule(adminID, nil)
	indexer := electionindexer.NewInMemoryModule(nil, nil)
	return httpserver.New(ledger, indexer, nil, ":0")
}

func doJSON(t *testing.T, server *httpserver.Server, method, path, userID string, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-Id", userID)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeError(t *testing.T, recorder *httptest.ResponseRecorder) ledgerhttp.ErrorResponse {
	t.Helper()
	var resp ledgerhttp.ErrorResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response failed: %v", err)
	}
	return resp
}

func TestMissingIdentityIsRejected(t *testing.T) {
	server := newTestServer(t)

	for _, route := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/v1/election/sessions"},
		{http.MethodPost, "/v1/election/sessions/current/end"},
		{http.MethodPost, "/v1/election/votes"},
		{http.MethodPost, "/v1/election/voters"},
		{http.MethodPost, "/v1/election/voters/batch"},
		{http.MethodGet, "/v1/election/session"},
	} {
		recorder := doJSON(t, server, route.method, route.path, "", `{}`)
		if recorder.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without X-User-Id, got %d", route.method, route.path, recorder.Code)
		}
		if resp := decodeError(t, recorder); resp.Code != "missing_user" {
			t.Fatalf("%s %s: expected missing_user, got %s", route.method, route.path, resp.Code)
		}
	}
}

func TestNonAdminSessionCreationIsForbidden(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/v1/election/sessions", "mallory",
		`{"title":"Rogue","duration_seconds":60,"candidate_names":["A","B"]}`)
	if recorder.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-administrator, got %d", recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "unauthorized" {
		t.Fatalf("expected unauthorized code, got %s", resp.Code)
	}
}

func TestElectionLifecycleOverHTTP(t *testing.T) {
	server := newTestServer(t)

	created := doJSON(t, server, http.MethodPost, "/v1/election/sessions", adminID,
		`{"title":"Board","duration_seconds":3600,"candidate_names":["A","B"]}`)
	if created.Code != http.StatusCreated {
		t.Fatalf("expected 201 on session create, got %d: %s", created.Code, created.Body.String())
	}
	var session ledgerhttp.SessionResponse
	if err := json.Unmarshal(created.Body.Bytes(), &session); err != nil {
		t.Fatalf("decode session failed: %v", err)
	}
	if len(session.Candidates) != 2 {
		t.Fatalf("expected 2 candidates, got %d", len(session.Candidates))
	}

	authorized := doJSON(t, server, http.MethodPost, "/v1/election/voters/batch", adminID,
		`{"addresses":["voter-1","voter-2"]}`)
	if authorized.Code != http.StatusOK {
		t.Fatalf("expected 200 on authorize, got %d", authorized.Code)
	}

	voteBody, _ := json.Marshal(ledgerhttp.CastVoteRequest{CandidateID: session.Candidates[0].ID})
	voted := doJSON(t, server, http.MethodPost, "/v1/election/votes", "voter-1", string(voteBody))
	if voted.Code != http.StatusCreated {
		t.Fatalf("expected 201 on vote, got %d: %s", voted.Code, voted.Body.String())
	}

	repeat := doJSON(t, server, http.MethodPost, "/v1/election/votes", "voter-1", string(voteBody))
	if repeat.Code != http.StatusConflict {
		t.Fatalf("expected 409 on repeat vote, got %d", repeat.Code)
	}
	if resp := decodeError(t, repeat); resp.Code != "already_voted" {
		t.Fatalf("expected already_voted, got %s", resp.Code)
	}

	unknown := doJSON(t, server, http.MethodPost, "/v1/election/votes", "voter-2", `{"candidate_id":9999}`)
	if unknown.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown candidate, got %d", unknown.Code)
	}

	results := doJSON(t, server, http.MethodGet, "/v1/election/results", "", "")
	if results.Code != http.StatusOK {
		t.Fatalf("expected 200 on results, got %d", results.Code)
	}
	var tally ledgerhttp.ResultsResponse
	if err := json.Unmarshal(results.Body.Bytes(), &tally); err != nil {
		t.Fatalf("decode results failed: %v", err)
	}
	if tally.WinnerName != "A" || tally.TotalVotes != 1 {
		t.Fatalf("expected winner A with 1 total vote, got %s/%d", tally.WinnerName, tally.TotalVotes)
	}

	ended := doJSON(t, server, http.MethodPost, "/v1/election/sessions/current/end", adminID, "")
	if ended.Code != http.StatusOK {
		t.Fatalf("expected 200 on end, got %d", ended.Code)
	}
}

func TestMalformedBodyIsBadRequest(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodPost, "/v1/election/sessions", adminID, `{not json`)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed JSON, got %d", recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "invalid_json" {
		t.Fatalf("expected invalid_json, got %s", resp.Code)
	}
}

func TestResultsWithoutSlateIsNotFound(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/v1/election/results", "", "")
	if recorder.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before any session, got %d", recorder.Code)
	}
	if resp := decodeError(t, recorder); resp.Code != "no_candidates" {
		t.Fatalf("expected no_candidates, got %s", resp.Code)
	}
}

func TestEventFeedValidatesQuery(t *testing.T) {
	server := newTestServer(t)

	recorder := doJSON(t, server, http.MethodGet, "/v1/election/events?after_seq=abc", "", "")
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad after_seq, got %d", recorder.Code)
	}

	empty := doJSON(t, server, http.MethodGet, "/v1/election/events", "", "")
	if empty.Code != http.StatusOK {
		t.Fatalf("expected 200 on empty feed, got %d", empty.Code)
	}
}

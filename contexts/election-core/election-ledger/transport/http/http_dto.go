package http

import "time"

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type CreateSessionRequest struct {
	Title           string   `json:"title"`
	DurationSeconds int64    `json:"duration_seconds"`
	CandidateNames  []string `json:"candidate_names"`
}

type CandidateItem struct {
	ID        uint64 `json:"id"`
	Name      string `json:"name"`
	VoteCount uint64 `json:"vote_count"`
}

type SessionResponse struct {
	Title      string          `json:"title"`
	StartTime  time.Time       `json:"start_time"`
	EndTime    time.Time       `json:"end_time"`
	Active     bool            `json:"active"`
	TotalVotes uint64          `json:"total_votes"`
	Candidates []CandidateItem `json:"candidates,omitempty"`
}

type CastVoteRequest struct {
	CandidateID uint64 `json:"candidate_id"`
}

type CastVoteResponse struct {
	CandidateID    uint64 `json:"candidate_id"`
	CandidateVotes uint64 `json:"candidate_votes"`
	TotalVotes     uint64 `json:"total_votes"`
}

type AuthorizeVoterRequest struct {
	Address string `json:"address"`
}

type AuthorizeVotersRequest struct {
	Addresses []string `json:"addresses"`
}

type AuthorizeVotersResponse struct {
	AuthorizedCount int `json:"authorized_count"`
}

type EndSessionResponse struct {
	Title      string `json:"title"`
	TotalVotes uint64 `json:"total_votes"`
}

type ResultsResponse struct {
	WinnerName  string `json:"winner_name"`
	WinnerVotes uint64 `json:"winner_votes"`
	TotalVotes  uint64 `json:"total_votes"`
}

type CandidatesResponse struct {
	Items []CandidateItem `json:"items"`
}

type SessionInfoResponse struct {
	Title          string    `json:"title"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	Active         bool      `json:"active"`
	TotalVotes     uint64    `json:"total_votes"`
	CallerHasVoted bool      `json:"caller_has_voted"`
}

package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/election-core/election-ledger/application/commands"
	"ballotbox/contexts/election-core/election-ledger/application/queries"
	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	httptransport "ballotbox/contexts/election-core/election-ledger/transport/http"
)

type Handler struct {
	Sessions commands.SessionUseCase
	Votes    commands.VoteUseCase
	Queries  queries.ElectionQueries
	Logger   *slog.Logger
}

// CreateSessionHandler godoc
// @Summary Create a voting session
// @Description Administrator-only. Starts a new time-bounded election with a fresh candidate slate.
// @Tags election-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Param request body httptransport.CreateSessionRequest true "Session definition"
// @Success 201 {object} httptransport.SessionResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/sessions [post]
func (h Handler) CreateSessionHandler(
	ctx context.Context,
	userID string,
	req httptransport.CreateSessionRequest,
) (httptransport.SessionResponse, error) {
	result, err := h.Sessions.CreateSession(ctx, commands.CreateSessionCommand{
		CallerID:        userID,
		Title:           req.Title,
		DurationSeconds: req.DurationSeconds,
		CandidateNames:  req.CandidateNames,
	})
	if err != nil {
		return httptransport.SessionResponse{}, err
	}
	return httptransport.SessionResponse{
		Title:      result.Session.Title,
		StartTime:  result.Session.StartTime,
		EndTime:    result.Session.EndTime,
		Active:     result.Session.Active,
		TotalVotes: result.Session.TotalVotes,
		Candidates: mapCandidates(result.Candidates),
	}, nil
}

// EndSessionHandler godoc
// @Summary End the active voting session
// @Description Administrator-only. May end before the window elapses.
// @Tags election-ledger
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Success 200 {object} httptransport.EndSessionResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/sessions/current/end [post]
func (h Handler) EndSessionHandler(ctx context.Context, userID string) (httptransport.EndSessionResponse, error) {
	result, err := h.Sessions.EndSession(ctx, commands.EndSessionCommand{CallerID: userID})
	if err != nil {
		return httptransport.EndSessionResponse{}, err
	}
	return httptransport.EndSessionResponse{
		Title:      result.Title,
		TotalVotes: result.TotalVotes,
	}, nil
}

// CastVoteHandler godoc
// @Summary Cast a vote
// @Description One vote per identity for the lifetime of the ledger, inside the session window.
// @Tags election-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Param request body httptransport.CastVoteRequest true "Vote"
// @Success 201 {object} httptransport.CastVoteResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /v1/election/votes [post]
func (h Handler) CastVoteHandler(
	ctx context.Context,
	userID string,
	req httptransport.CastVoteRequest,
) (httptransport.CastVoteResponse, error) {
	result, err := h.Votes.CastVote(ctx, commands.CastVoteCommand{
		VoterID:     userID,
		CandidateID: req.CandidateID,
	})
	if err != nil {
		return httptransport.CastVoteResponse{}, err
	}
	return httptransport.CastVoteResponse{
		CandidateID:    result.Candidate.ID,
		CandidateVotes: result.Candidate.VoteCount,
		TotalVotes:     result.TotalVotes,
	}, nil
}

// AuthorizeVoterHandler godoc
// @Summary Authorize a single voter
// @Description Administrator-only, idempotent.
// @Tags election-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Param request body httptransport.AuthorizeVoterRequest true "Voter address"
// @Success 200 {object} httptransport.AuthorizeVotersResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/election/voters [post]
func (h Handler) AuthorizeVoterHandler(
	ctx context.Context,
	userID string,
	req httptransport.AuthorizeVoterRequest,
) (httptransport.AuthorizeVotersResponse, error) {
	return h.authorize(ctx, userID, []string{req.Address})
}

// AuthorizeVotersHandler godoc
// @Summary Authorize a batch of voters
// @Description Administrator-only, idempotent per address.
// @Tags election-ledger
// @Accept json
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Param request body httptransport.AuthorizeVotersRequest true "Voter addresses"
// @Success 200 {object} httptransport.AuthorizeVotersResponse
// @Failure 403 {object} httptransport.ErrorResponse
// @Router /v1/election/voters/batch [post]
func (h Handler) AuthorizeVotersHandler(
	ctx context.Context,
	userID string,
	req httptransport.AuthorizeVotersRequest,
) (httptransport.AuthorizeVotersResponse, error) {
	return h.authorize(ctx, userID, req.Addresses)
}

func (h Handler) authorize(ctx context.Context, userID string, addresses []string) (httptransport.AuthorizeVotersResponse, error) {
	result, err := h.Sessions.AuthorizeVoters(ctx, commands.AuthorizeVotersCommand{
		CallerID:  userID,
		Addresses: addresses,
	})
	if err != nil {
		return httptransport.AuthorizeVotersResponse{}, err
	}
	return httptransport.AuthorizeVotersResponse{AuthorizedCount: result.AuthorizedCount}, nil
}

// ResultsHandler godoc
// @Summary Current election results
// @Description Winner by first-past-the-post with insertion-order tie-break; empty winner when no votes were cast.
// @Tags election-ledger
// @Produce json
// @Success 200 {object} httptransport.ResultsResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /v1/election/results [get]
func (h Handler) ResultsHandler(ctx context.Context) (httptransport.ResultsResponse, error) {
	result, err := h.Queries.Results(ctx)
	if err != nil {
		return httptransport.ResultsResponse{}, err
	}
	return httptransport.ResultsResponse{
		WinnerName:  result.WinnerName,
		WinnerVotes: result.WinnerVotes,
		TotalVotes:  result.TotalVotes,
	}, nil
}

// CandidatesHandler godoc
// @Summary List the current slate
// @Tags election-ledger
// @Produce json
// @Success 200 {object} httptransport.CandidatesResponse
// @Router /v1/election/candidates [get]
func (h Handler) CandidatesHandler(ctx context.Context) (httptransport.CandidatesResponse, error) {
	candidates, err := h.Queries.Candidates(ctx)
	if err != nil {
		return httptransport.CandidatesResponse{}, err
	}
	return httptransport.CandidatesResponse{Items: mapCandidates(candidates)}, nil
}

// SessionInfoHandler godoc
// @Summary Current session info
// @Description Session snapshot plus the caller's global has-voted flag.
// @Tags election-ledger
// @Produce json
// @Param X-User-Id header string true "Authenticated caller identity"
// @Success 200 {object} httptransport.SessionInfoResponse
// @Router /v1/election/session [get]
func (h Handler) SessionInfoHandler(ctx context.Context, userID string) (httptransport.SessionInfoResponse, error) {
	info, err := h.Queries.SessionInfo(ctx, userID)
	if err != nil {
		return httptransport.SessionInfoResponse{}, err
	}
	return httptransport.SessionInfoResponse{
		Title:          info.Session.Title,
		StartTime:      info.Session.StartTime,
		EndTime:        info.Session.EndTime,
		Active:         info.Session.Active,
		TotalVotes:     info.Session.TotalVotes,
		CallerHasVoted: info.CallerHasVoted,
	}, nil
}

func mapCandidates(candidates []entities.Candidate) []httptransport.CandidateItem {
	items := make([]httptransport.CandidateItem, 0, len(candidates))
	for _, candidate := range candidates {
		items = append(items, httptransport.CandidateItem{
			ID:        candidate.ID,
			Name:      candidate.Name,
			VoteCount: candidate.VoteCount,
		})
	}
	return items
}

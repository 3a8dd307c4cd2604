package commands

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	application "ballotbox/contexts/election-core/election-ledger/application"
	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	"ballotbox/contexts/election-core/election-ledger/ports"
)

// CreateSessionCommand is the write-model input for session creation.
type CreateSessionCommand struct {
	CallerID        string
	Title           string
	DurationSeconds int64
	CandidateNames  []string
}

// CreateSessionResult returns the new session and its freshly assigned slate.
type CreateSessionResult struct {
	Session    entities.VotingSession
	Candidates []entities.Candidate
}

// EndSessionCommand requests an administrator session close.
type EndSessionCommand struct {
	CallerID string
}

// EndSessionResult carries the final tally announced in the ended notification.
type EndSessionResult struct {
	Title      string
	TotalVotes uint64
}

// AuthorizeVotersCommand adds one or more addresses to the authorization set.
type AuthorizeVotersCommand struct {
	CallerID  string
	Addresses []string
}

// AuthorizeVotersResult reports how many addresses were processed.
type AuthorizeVotersResult struct {
	AuthorizedCount int
}

// SessionUseCase orchestrates session lifecycle and voter authorization.
// Every mutating method runs its whole guard, mutation, and notification span
// under the write side of Mu; vote integrity depends on that serialization,
// so the same mutex instance must be shared with VoteUseCase and with the
// read side in ElectionQueries.
type SessionUseCase struct {
	Ledger  ports.LedgerRepository
	Outbox  ports.OutboxWriter
	Clock   ports.Clock
	IDGen   ports.IDGenerator
	AdminID string
	Mu      *sync.RWMutex
	Logger  *slog.Logger
}

// CreateSession starts a new time-bounded election. The previous slate is
// discarded entirely; the voted set is deliberately kept so one identity can
// never vote twice across the ledger's whole lifetime.
func (uc SessionUseCase) CreateSession(ctx context.Context, cmd CreateSessionCommand) (CreateSessionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("session create processing started",
		"event", "election_session_create_started",
		"module", "election-core/election-ledger",
		"layer", "application",
		"caller_id", caller,
		"title", strings.TrimSpace(cmd.Title),
		"candidate_count", len(cmd.CandidateNames),
	)

	uc.Mu.Lock()
	defer uc.Mu.Unlock()

	if !strings.EqualFold(caller, strings.TrimSpace(uc.AdminID)) {
		logger.Warn("session create rejected for non-administrator",
			"event", "election_session_create_unauthorized",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
		)
		return CreateSessionResult{}, domainerrors.ErrUnauthorized
	}

	session, exists, err := uc.Ledger.GetSession(ctx)
	if err != nil {
		return CreateSessionResult{}, err
	}
	if exists && session.Active {
		logger.Warn("session create rejected while a session is active",
			"event", "election_session_create_already_active",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
			"active_title", session.Title,
		)
		return CreateSessionResult{}, domainerrors.ErrSessionAlreadyActive
	}
	if len(cmd.CandidateNames) < 2 {
		logger.Warn("session create rejected with insufficient candidates",
			"event", "election_session_create_insufficient_candidates",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
			"candidate_count", len(cmd.CandidateNames),
		)
		return CreateSessionResult{}, domainerrors.ErrInsufficientCandidates
	}
	if cmd.DurationSeconds <= 0 {
		logger.Warn("session create rejected with non-positive duration",
			"event", "election_session_create_invalid_duration",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
			"duration_seconds", cmd.DurationSeconds,
		)
		return CreateSessionResult{}, domainerrors.ErrInvalidDuration
	}

	now := uc.now()
	candidates := make([]entities.Candidate, 0, len(cmd.CandidateNames))
	for _, name := range cmd.CandidateNames {
		candidateID, err := uc.Ledger.NextCandidateID(ctx)
		if err != nil {
			return CreateSessionResult{}, err
		}
		candidates = append(candidates, entities.Candidate{
			ID:   candidateID,
			Name: strings.TrimSpace(name),
		})
	}

	next := entities.VotingSession{
		Title:      strings.TrimSpace(cmd.Title),
		StartTime:  now,
		EndTime:    now.Add(time.Duration(cmd.DurationSeconds) * time.Second),
		Active:     true,
		TotalVotes: 0,
	}
	if err := uc.Ledger.ReplaceSlate(ctx, candidates); err != nil {
		return CreateSessionResult{}, err
	}
	if err := uc.Ledger.SaveSession(ctx, next); err != nil {
		return CreateSessionResult{}, err
	}

	if err := uc.appendEvent(ctx, EventSessionCreated, next.Title, now, map[string]any{
		"title":           next.Title,
		"start_time":      next.StartTime.Format(time.RFC3339),
		"end_time":        next.EndTime.Format(time.RFC3339),
		"candidate_count": len(candidates),
	}); err != nil {
		return CreateSessionResult{}, err
	}
	for _, candidate := range candidates {
		if err := uc.appendEvent(ctx, EventCandidateAdded, next.Title, now, map[string]any{
			"candidate_id": candidate.ID,
			"name":         candidate.Name,
		}); err != nil {
			return CreateSessionResult{}, err
		}
	}

	logger.Info("session created",
		"event", "election_session_created",
		"module", "election-core/election-ledger",
		"layer", "application",
		"title", next.Title,
		"start_time", next.StartTime,
		"end_time", next.EndTime,
		"candidate_count", len(candidates),
	)
	return CreateSessionResult{Session: next, Candidates: candidates}, nil
}

// EndSession deactivates the current session. The administrator may end
// early; window expiry is not required. Candidates and the voted set persist
// until the next CreateSession.
func (uc SessionUseCase) EndSession(ctx context.Context, cmd EndSessionCommand) (EndSessionResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("session end processing started",
		"event", "election_session_end_started",
		"module", "election-core/election-ledger",
		"layer", "application",
		"caller_id", caller,
	)

	uc.Mu.Lock()
	defer uc.Mu.Unlock()

	if !strings.EqualFold(caller, strings.TrimSpace(uc.AdminID)) {
		logger.Warn("session end rejected for non-administrator",
			"event", "election_session_end_unauthorized",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
		)
		return EndSessionResult{}, domainerrors.ErrUnauthorized
	}

	session, exists, err := uc.Ledger.GetSession(ctx)
	if err != nil {
		return EndSessionResult{}, err
	}
	if !exists || !session.Active {
		logger.Warn("session end rejected without an active session",
			"event", "election_session_end_no_active_session",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
		)
		return EndSessionResult{}, domainerrors.ErrNoActiveSession
	}

	session.Active = false
	if err := uc.Ledger.SaveSession(ctx, session); err != nil {
		return EndSessionResult{}, err
	}

	now := uc.now()
	if err := uc.appendEvent(ctx, EventSessionEnded, session.Title, now, map[string]any{
		"title":       session.Title,
		"total_votes": session.TotalVotes,
	}); err != nil {
		return EndSessionResult{}, err
	}

	logger.Info("session ended",
		"event", "election_session_ended",
		"module", "election-core/election-ledger",
		"layer", "application",
		"title", session.Title,
		"total_votes", session.TotalVotes,
	)
	return EndSessionResult{Title: session.Title, TotalVotes: session.TotalVotes}, nil
}

// AuthorizeVoters idempotently adds addresses to the authorization set.
// Re-authorizing a known address is a no-op, never an error. The set only
// grows; there is no revocation.
func (uc SessionUseCase) AuthorizeVoters(ctx context.Context, cmd AuthorizeVotersCommand) (AuthorizeVotersResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	caller := strings.TrimSpace(cmd.CallerID)
	logger.Info("voter authorization processing started",
		"event", "election_authorize_started",
		"module", "election-core/election-ledger",
		"layer", "application",
		"caller_id", caller,
		"address_count", len(cmd.Addresses),
	)

	uc.Mu.Lock()
	defer uc.Mu.Unlock()

	if !strings.EqualFold(caller, strings.TrimSpace(uc.AdminID)) {
		logger.Warn("voter authorization rejected for non-administrator",
			"event", "election_authorize_unauthorized",
			"module", "election-core/election-ledger",
			"layer", "application",
			"caller_id", caller,
		)
		return AuthorizeVotersResult{}, domainerrors.ErrUnauthorized
	}

	count := 0
	for _, address := range cmd.Addresses {
		address = strings.TrimSpace(address)
		if address == "" {
			continue
		}
		if err := uc.Ledger.Authorize(ctx, address); err != nil {
			return AuthorizeVotersResult{}, err
		}
		count++
	}

	logger.Info("voters authorized",
		"event", "election_voters_authorized",
		"module", "election-core/election-ledger",
		"layer", "application",
		"authorized_count", count,
	)
	return AuthorizeVotersResult{AuthorizedCount: count}, nil
}

func (uc SessionUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc SessionUseCase) appendEvent(
	ctx context.Context,
	eventType string,
	sessionTitle string,
	occurredAt time.Time,
	data map[string]any,
) error {
	// Outbox is optional for pure read/test wiring, so nil is treated as no-op.
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, eventType, sessionTitle, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

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

// CastVoteCommand is the write-model input for vote casting.
type CastVoteCommand struct {
	VoterID     string
	CandidateID uint64
}

// CastVoteResult returns the incremented candidate and session tallies.
type CastVoteResult struct {
	Candidate  entities.Candidate
	TotalVotes uint64
}

// VoteUseCase enforces the vote-integrity rules: authorization gating, the
// inclusive voting window, the permanent one-vote-ever guarantee, and
// exactly-once tally increments. Mu must be the same mutex instance wired
// into SessionUseCase and ElectionQueries.
type VoteUseCase struct {
	Ledger ports.LedgerRepository
	Outbox ports.OutboxWriter
	Clock  ports.Clock
	IDGen  ports.IDGenerator
	Mu     *sync.RWMutex
	Logger *slog.Logger
}

// CastVote records exactly one vote for the caller, for the lifetime of the
// ledger. Every guard runs before any mutation; a failed call leaves state
// untouched.
func (uc VoteUseCase) CastVote(ctx context.Context, cmd CastVoteCommand) (CastVoteResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	voter := strings.TrimSpace(cmd.VoterID)
	logger.Info("vote cast processing started",
		"event", "election_vote_cast_started",
		"module", "election-core/election-ledger",
		"layer", "application",
		"voter_id", voter,
		"candidate_id", cmd.CandidateID,
	)

	uc.Mu.Lock()
	defer uc.Mu.Unlock()

	authorized, err := uc.Ledger.IsAuthorized(ctx, voter)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !authorized {
		logger.Warn("vote cast rejected for unauthorized voter",
			"event", "election_vote_cast_unauthorized",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
		)
		return CastVoteResult{}, domainerrors.ErrUnauthorized
	}

	session, exists, err := uc.Ledger.GetSession(ctx)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !exists || !session.Active {
		logger.Warn("vote cast rejected without an active session",
			"event", "election_vote_cast_no_active_session",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
		)
		return CastVoteResult{}, domainerrors.ErrNoActiveSession
	}

	now := uc.now()
	started, ended := session.Window(now)
	if !started {
		logger.Warn("vote cast rejected before window opened",
			"event", "election_vote_cast_not_started",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
			"start_time", session.StartTime,
		)
		return CastVoteResult{}, domainerrors.ErrVotingNotStarted
	}
	if ended {
		logger.Warn("vote cast rejected after window closed",
			"event", "election_vote_cast_ended",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
			"end_time", session.EndTime,
		)
		return CastVoteResult{}, domainerrors.ErrVotingEnded
	}

	voted, err := uc.Ledger.HasVoted(ctx, voter)
	if err != nil {
		return CastVoteResult{}, err
	}
	if voted {
		logger.Warn("vote cast rejected for repeat voter",
			"event", "election_vote_cast_already_voted",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
		)
		return CastVoteResult{}, domainerrors.ErrAlreadyVoted
	}

	candidate, found, err := uc.Ledger.GetCandidate(ctx, cmd.CandidateID)
	if err != nil {
		return CastVoteResult{}, err
	}
	if !found {
		logger.Warn("vote cast rejected for unknown candidate",
			"event", "election_vote_cast_candidate_not_found",
			"module", "election-core/election-ledger",
			"layer", "application",
			"voter_id", voter,
			"candidate_id", cmd.CandidateID,
		)
		return CastVoteResult{}, domainerrors.ErrCandidateNotFound
	}

	if err := uc.Ledger.MarkVoted(ctx, voter); err != nil {
		return CastVoteResult{}, err
	}
	candidate.VoteCount++
	if err := uc.Ledger.SaveCandidate(ctx, candidate); err != nil {
		return CastVoteResult{}, err
	}
	session.TotalVotes++
	if err := uc.Ledger.SaveSession(ctx, session); err != nil {
		return CastVoteResult{}, err
	}

	if err := uc.appendEvent(ctx, session.Title, now, map[string]any{
		"voter":        voter,
		"candidate_id": candidate.ID,
		"total_votes":  session.TotalVotes,
	}); err != nil {
		return CastVoteResult{}, err
	}

	logger.Info("vote cast",
		"event", "election_vote_cast",
		"module", "election-core/election-ledger",
		"layer", "application",
		"voter_id", voter,
		"candidate_id", candidate.ID,
		"candidate_votes", candidate.VoteCount,
		"total_votes", session.TotalVotes,
	)
	return CastVoteResult{Candidate: candidate, TotalVotes: session.TotalVotes}, nil
}

func (uc VoteUseCase) now() time.Time {
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	return now
}

func (uc VoteUseCase) appendEvent(
	ctx context.Context,
	sessionTitle string,
	occurredAt time.Time,
	data map[string]any,
) error {
	if uc.Outbox == nil {
		return nil
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return err
	}
	envelope, err := newElectionEnvelope(eventID, EventVoteCast, sessionTitle, occurredAt, data)
	if err != nil {
		return err
	}
	return uc.Outbox.AppendOutbox(ctx, envelope)
}

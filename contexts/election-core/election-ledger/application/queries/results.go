package queries

import (
	"context"
	"strings"
	"sync"

	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	"ballotbox/contexts/election-core/election-ledger/ports"
)

// ElectionQueries serves the read-only side of the ledger. Queries never
// mutate state and are callable regardless of session lifecycle stage.
//
// Mu must be the mutex instance shared with the command side. Each query
// holds its read side across every store call it makes, so a reader never
// observes a mutation mid-span (a vote increments the candidate tally and
// the session total in separate store calls). Readers stay concurrent with
// each other.
type ElectionQueries struct {
	Ledger ports.LedgerRepository
	Mu     *sync.RWMutex
}

func (q ElectionQueries) rlock() func() {
	if q.Mu == nil {
		return func() {}
	}
	q.Mu.RLock()
	return q.Mu.RUnlock
}

// Results computes the first-past-the-post winner of the current slate.
// The scan walks the slate in insertion order and only replaces the running
// leader on a strictly greater count, so ties keep the earliest-inserted
// candidate. A slate with zero votes cast yields an empty winner while the
// session total is still reported; an empty slate is the distinct
// ErrNoCandidates case.
func (q ElectionQueries) Results(ctx context.Context) (entities.ElectionResult, error) {
	defer q.rlock()()

	candidates, err := q.Ledger.ListCandidates(ctx)
	if err != nil {
		return entities.ElectionResult{}, err
	}
	if len(candidates) == 0 {
		return entities.ElectionResult{}, domainerrors.ErrNoCandidates
	}

	result := entities.ElectionResult{}
	var leader entities.Candidate
	for _, candidate := range candidates {
		if candidate.VoteCount > leader.VoteCount {
			leader = candidate
		}
	}
	if leader.VoteCount > 0 {
		result.WinnerName = leader.Name
		result.WinnerVotes = leader.VoteCount
	}

	session, exists, err := q.Ledger.GetSession(ctx)
	if err != nil {
		return entities.ElectionResult{}, err
	}
	if exists {
		result.TotalVotes = session.TotalVotes
	}
	return result, nil
}

// Candidates returns the full current slate in registry insertion order.
func (q ElectionQueries) Candidates(ctx context.Context) ([]entities.Candidate, error) {
	defer q.rlock()()
	return q.Ledger.ListCandidates(ctx)
}

// SessionInfo returns the session snapshot personalized with the caller's
// entry in the global voted set. The voted flag is ledger-wide, not
// session-scoped.
func (q ElectionQueries) SessionInfo(ctx context.Context, callerID string) (entities.SessionInfo, error) {
	defer q.rlock()()

	session, exists, err := q.Ledger.GetSession(ctx)
	if err != nil {
		return entities.SessionInfo{}, err
	}
	voted, err := q.Ledger.HasVoted(ctx, strings.TrimSpace(callerID))
	if err != nil {
		return entities.SessionInfo{}, err
	}
	return entities.SessionInfo{
		Session:        session,
		Exists:         exists,
		CallerHasVoted: voted,
	}, nil
}

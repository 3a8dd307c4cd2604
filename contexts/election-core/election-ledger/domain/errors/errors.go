package errors

import "errors"

var (
	ErrUnauthorized           = errors.New("caller is not authorized for this operation")
	ErrSessionAlreadyActive   = errors.New("a voting session is already active")
	ErrNoActiveSession        = errors.New("no voting session is active")
	ErrVotingNotStarted       = errors.New("voting has not started yet")
	ErrVotingEnded            = errors.New("voting window has ended")
	ErrAlreadyVoted           = errors.New("caller has already voted")
	ErrCandidateNotFound      = errors.New("candidate not found on the current slate")
	ErrInsufficientCandidates = errors.New("at least two candidates are required")
	ErrInvalidDuration        = errors.New("session duration must be positive")
	ErrNoCandidates           = errors.New("no candidates exist on the current slate")

	// ErrEventConflict guards the append-only event log against divergent
	// rewrites of an already-appended event id.
	ErrEventConflict = errors.New("event log conflict")
)

package entities

import "time"

// Candidate is one entry on the current slate. IDs are assigned from a
// monotonic counter and are never reused across sessions, so a stale id from
// an earlier slate can never alias a current candidate.
type Candidate struct {
	ID        uint64
	Name      string
	VoteCount uint64
}

// VotingSession is the singleton election instance. Exactly one session
// exists at a time; creating a new one overwrites the previous slate but
// never the voted set.
type VotingSession struct {
	Title      string
	StartTime  time.Time
	EndTime    time.Time
	Active     bool
	TotalVotes uint64
}

// Window reports whether now falls inside the session's voting window,
// inclusive on both ends.
func (s VotingSession) Window(now time.Time) (started bool, ended bool) {
	started = !now.Before(s.StartTime)
	ended = now.After(s.EndTime)
	return started, ended
}

// ElectionResult is the first-past-the-post outcome of the current slate.
// WinnerName stays empty when no vote has been cast yet.
type ElectionResult struct {
	WinnerName  string
	WinnerVotes uint64
	TotalVotes  uint64
}

// SessionInfo is the session snapshot personalized for a caller.
type SessionInfo struct {
	Session        VotingSession
	Exists         bool
	CallerHasVoted bool
}

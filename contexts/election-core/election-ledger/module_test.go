package electionledger_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	electionledger "ballotbox/contexts/election-core/election-ledger"
	domainerrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	httptransport "ballotbox/contexts/election-core/election-ledger/transport/http"
)

const adminID = "admin-1"

func newModule(t *testing.T) electionledger.Module {
	t.Helper()
	return electionledger.NewInMemoryModule(adminID, nil)
}

func createSession(t *testing.T, module electionledger.Module, title string, durationSeconds int64, names ...string) httptransport.SessionResponse {
	t.Helper()
	resp, err := module.Handler.CreateSessionHandler(context.Background(), adminID, httptransport.CreateSessionRequest{
		Title:           title,
		DurationSeconds: durationSeconds,
		CandidateNames:  names,
	})
	if err != nil {
		t.Fatalf("create session failed: %v", err)
	}
	return resp
}

func authorize(t *testing.T, module electionledger.Module, addresses ...string) httptransport.AuthorizeVotersResponse {
	t.Helper()
	resp, err := module.Handler.AuthorizeVotersHandler(context.Background(), adminID, httptransport.AuthorizeVotersRequest{
		Addresses: addresses,
	})
	if err != nil {
		t.Fatalf("authorize voters failed: %v", err)
	}
	return resp
}

func TestCreateSessionAssignsSlateAndWindow(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "Board Election", 3600, "Alice", "Bob", "Carol")

	if !resp.Active {
		t.Fatalf("expected new session to be active")
	}
	if resp.TotalVotes != 0 {
		t.Fatalf("expected zero total votes, got %d", resp.TotalVotes)
	}
	if got := resp.EndTime.Sub(resp.StartTime); got != time.Hour {
		t.Fatalf("expected one hour window, got %s", got)
	}
	if len(resp.Candidates) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(resp.Candidates))
	}
	for i, name := range []string{"Alice", "Bob", "Carol"} {
		if resp.Candidates[i].Name != name {
			t.Fatalf("expected candidate %d to be %s, got %s", i, name, resp.Candidates[i].Name)
		}
		if resp.Candidates[i].VoteCount != 0 {
			t.Fatalf("expected fresh candidate to have zero votes")
		}
	}
}

func TestCreateSessionGuards(t *testing.T) {
	module := newModule(t)

	_, err := module.Handler.CreateSessionHandler(context.Background(), "mallory", httptransport.CreateSessionRequest{
		Title:           "Rogue",
		DurationSeconds: 60,
		CandidateNames:  []string{"A", "B"},
	})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-administrator, got %v", err)
	}

	_, err = module.Handler.CreateSessionHandler(context.Background(), adminID, httptransport.CreateSessionRequest{
		Title:           "Solo",
		DurationSeconds: 60,
		CandidateNames:  []string{"A"},
	})
	if !errors.Is(err, domainerrors.ErrInsufficientCandidates) {
		t.Fatalf("expected ErrInsufficientCandidates, got %v", err)
	}

	_, err = module.Handler.CreateSessionHandler(context.Background(), adminID, httptransport.CreateSessionRequest{
		Title:           "Ghost",
		DurationSeconds: 0,
		CandidateNames:  []string{"A", "B"},
	})
	if !errors.Is(err, domainerrors.ErrInvalidDuration) {
		t.Fatalf("expected ErrInvalidDuration, got %v", err)
	}

	createSession(t, module, "Real", 3600, "A", "B")
	_, err = module.Handler.CreateSessionHandler(context.Background(), adminID, httptransport.CreateSessionRequest{
		Title:           "Overlap",
		DurationSeconds: 60,
		CandidateNames:  []string{"C", "D"},
	})
	if !errors.Is(err, domainerrors.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}
}

func TestCandidateIDsNeverReusedAcrossSessions(t *testing.T) {
	module := newModule(t)

	first := createSession(t, module, "First", 3600, "A", "B")
	if _, err := module.Handler.EndSessionHandler(context.Background(), adminID); err != nil {
		t.Fatalf("end session failed: %v", err)
	}
	second := createSession(t, module, "Second", 3600, "C", "D")

	seen := map[uint64]bool{}
	for _, item := range first.Candidates {
		seen[item.ID] = true
	}
	for _, item := range second.Candidates {
		if seen[item.ID] {
			t.Fatalf("candidate id %d reused across sessions", item.ID)
		}
	}
	if second.Candidates[0].ID <= first.Candidates[len(first.Candidates)-1].ID {
		t.Fatalf("expected monotonically increasing candidate ids")
	}
}

func TestCastVoteHappyPathAndTallies(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "Tally", 3600, "A", "B")
	authorize(t, module, "voter-1", "voter-2", "voter-3")

	targetID := resp.Candidates[1].ID
	for _, voter := range []string{"voter-1", "voter-2"} {
		if _, err := module.Handler.CastVoteHandler(context.Background(), voter, httptransport.CastVoteRequest{CandidateID: targetID}); err != nil {
			t.Fatalf("cast vote for %s failed: %v", voter, err)
		}
	}
	last, err := module.Handler.CastVoteHandler(context.Background(), "voter-3", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID})
	if err != nil {
		t.Fatalf("cast vote for voter-3 failed: %v", err)
	}
	if last.TotalVotes != 3 {
		t.Fatalf("expected session total 3, got %d", last.TotalVotes)
	}

	candidates, err := module.Handler.CandidatesHandler(context.Background())
	if err != nil {
		t.Fatalf("list candidates failed: %v", err)
	}
	var sum uint64
	for _, item := range candidates.Items {
		sum += item.VoteCount
	}
	if sum != 3 {
		t.Fatalf("expected candidate tallies to sum to session total, got %d", sum)
	}
	if candidates.Items[1].VoteCount != 2 {
		t.Fatalf("expected 2 votes for target candidate, got %d", candidates.Items[1].VoteCount)
	}
}

func TestCastVoteGuards(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "Guards", 3600, "A", "B")

	_, err := module.Handler.CastVoteHandler(context.Background(), "stranger", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unlisted voter, got %v", err)
	}

	authorize(t, module, "voter-1")
	_, err = module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: 9999})
	if !errors.Is(err, domainerrors.ErrCandidateNotFound) {
		t.Fatalf("expected ErrCandidateNotFound, got %v", err)
	}

	if _, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	_, err = module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: resp.Candidates[1].ID})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted, got %v", err)
	}
}

func TestCastVoteRequiresActiveSession(t *testing.T) {
	module := newModule(t)
	authorize(t, module, "voter-1")

	_, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: 1})
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession before any session, got %v", err)
	}

	resp := createSession(t, module, "Closed", 3600, "A", "B")
	if _, err := module.Handler.EndSessionHandler(context.Background(), adminID); err != nil {
		t.Fatalf("end session failed: %v", err)
	}
	_, err = module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID})
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession after end, got %v", err)
	}
}

func TestVotingWindowIsInclusive(t *testing.T) {
	module := newModule(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	module.Store.SetNow(func() time.Time { return base })

	resp := createSession(t, module, "Window", 600, "A", "B")
	authorize(t, module, "early", "ontime-start", "ontime-end", "late")

	module.Store.SetNow(func() time.Time { return base.Add(-time.Minute) })
	_, err := module.Handler.CastVoteHandler(context.Background(), "early", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID})
	if !errors.Is(err, domainerrors.ErrVotingNotStarted) {
		t.Fatalf("expected ErrVotingNotStarted before start, got %v", err)
	}

	module.Store.SetNow(func() time.Time { return resp.StartTime })
	if _, err := module.Handler.CastVoteHandler(context.Background(), "ontime-start", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID}); err != nil {
		t.Fatalf("vote at exact start should pass, got %v", err)
	}

	module.Store.SetNow(func() time.Time { return resp.EndTime })
	if _, err := module.Handler.CastVoteHandler(context.Background(), "ontime-end", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID}); err != nil {
		t.Fatalf("vote at exact end should pass, got %v", err)
	}

	module.Store.SetNow(func() time.Time { return resp.EndTime.Add(time.Second) })
	_, err = module.Handler.CastVoteHandler(context.Background(), "late", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID})
	if !errors.Is(err, domainerrors.ErrVotingEnded) {
		t.Fatalf("expected ErrVotingEnded after end, got %v", err)
	}
}

func TestVotedSetSurvivesSessionReset(t *testing.T) {
	module := newModule(t)
	first := createSession(t, module, "First", 3600, "A", "B")
	authorize(t, module, "voter-1")
	if _, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: first.Candidates[0].ID}); err != nil {
		t.Fatalf("first vote failed: %v", err)
	}
	if _, err := module.Handler.EndSessionHandler(context.Background(), adminID); err != nil {
		t.Fatalf("end session failed: %v", err)
	}

	second := createSession(t, module, "Second", 3600, "C", "D")
	_, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: second.Candidates[0].ID})
	if !errors.Is(err, domainerrors.ErrAlreadyVoted) {
		t.Fatalf("expected ErrAlreadyVoted to persist across sessions, got %v", err)
	}
	if second.TotalVotes != 0 {
		t.Fatalf("expected new session to start with zero votes, got %d", second.TotalVotes)
	}
}

func TestEndSessionGuards(t *testing.T) {
	module := newModule(t)

	_, err := module.Handler.EndSessionHandler(context.Background(), adminID)
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession, got %v", err)
	}

	createSession(t, module, "Short", 3600, "A", "B")
	_, err = module.Handler.EndSessionHandler(context.Background(), "mallory")
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	// Early end is allowed; window expiry is not required.
	ended, err := module.Handler.EndSessionHandler(context.Background(), adminID)
	if err != nil {
		t.Fatalf("early end should pass, got %v", err)
	}
	if ended.Title != "Short" {
		t.Fatalf("expected ended title Short, got %s", ended.Title)
	}

	_, err = module.Handler.EndSessionHandler(context.Background(), adminID)
	if !errors.Is(err, domainerrors.ErrNoActiveSession) {
		t.Fatalf("expected ErrNoActiveSession on repeat end, got %v", err)
	}
}

func TestAuthorizeVotersIdempotentAndFiltered(t *testing.T) {
	module := newModule(t)

	first := authorize(t, module, "voter-1", "voter-2", "  ", "")
	if first.AuthorizedCount != 2 {
		t.Fatalf("expected 2 processed addresses, got %d", first.AuthorizedCount)
	}

	// Re-authorizing a known address is a no-op, not an error.
	second := authorize(t, module, "voter-1")
	if second.AuthorizedCount != 1 {
		t.Fatalf("expected repeat authorization to process 1 address, got %d", second.AuthorizedCount)
	}

	_, err := module.Handler.AuthorizeVoterHandler(context.Background(), "mallory", httptransport.AuthorizeVoterRequest{Address: "voter-9"})
	if !errors.Is(err, domainerrors.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-administrator, got %v", err)
	}
}

func TestResultsWinnerAndTieBreak(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "TieBreak", 3600, "A", "B", "C")
	authorize(t, module, "v1", "v2", "v3", "v4")

	// Two votes each for A and B: the earliest-inserted candidate keeps the
	// lead on a tie.
	for voter, idx := range map[string]int{"v1": 0, "v2": 1, "v3": 0, "v4": 1} {
		if _, err := module.Handler.CastVoteHandler(context.Background(), voter, httptransport.CastVoteRequest{CandidateID: resp.Candidates[idx].ID}); err != nil {
			t.Fatalf("vote by %s failed: %v", voter, err)
		}
	}

	results, err := module.Handler.ResultsHandler(context.Background())
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.WinnerName != "A" {
		t.Fatalf("expected tie to resolve to first-inserted candidate A, got %s", results.WinnerName)
	}
	if results.WinnerVotes != 2 {
		t.Fatalf("expected 2 winner votes, got %d", results.WinnerVotes)
	}
	if results.TotalVotes != 4 {
		t.Fatalf("expected 4 total votes, got %d", results.TotalVotes)
	}
}

func TestResultsZeroVotesAndEmptySlate(t *testing.T) {
	module := newModule(t)

	_, err := module.Handler.ResultsHandler(context.Background())
	if !errors.Is(err, domainerrors.ErrNoCandidates) {
		t.Fatalf("expected ErrNoCandidates before any session, got %v", err)
	}

	createSession(t, module, "Quiet", 3600, "A", "B")
	results, err := module.Handler.ResultsHandler(context.Background())
	if err != nil {
		t.Fatalf("results failed: %v", err)
	}
	if results.WinnerName != "" || results.WinnerVotes != 0 {
		t.Fatalf("expected empty winner with zero votes cast, got %s/%d", results.WinnerName, results.WinnerVotes)
	}
	if results.TotalVotes != 0 {
		t.Fatalf("expected zero total votes, got %d", results.TotalVotes)
	}
}

func TestQueriesNeverObservePartialVotes(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "Contended", 3600, "A", "B")

	const voterCount = 40
	voters := make([]string, 0, voterCount)
	for i := 0; i < voterCount; i++ {
		voters = append(voters, fmt.Sprintf("voter-%d", i))
	}
	authorize(t, module, voters...)

	var wg sync.WaitGroup
	done := make(chan struct{})

	// Readers hammer the result and slate queries while votes land. Every
	// snapshot must be internally consistent: the leader can never be ahead
	// of the session total, and the slate tallies must sum to it.
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				results, err := module.Handler.ResultsHandler(context.Background())
				if err != nil {
					t.Errorf("results during contention failed: %v", err)
					return
				}
				if results.WinnerVotes > results.TotalVotes {
					t.Errorf("observed partially-applied vote: winner_votes=%d total_votes=%d",
						results.WinnerVotes, results.TotalVotes)
					return
				}
				info, err := module.Handler.SessionInfoHandler(context.Background(), "observer")
				if err != nil {
					t.Errorf("session info during contention failed: %v", err)
					return
				}
				if info.TotalVotes > voterCount {
					t.Errorf("session total overran the electorate: %d", info.TotalVotes)
					return
				}
			}
		}()
	}

	var writers sync.WaitGroup
	for i, voter := range voters {
		writers.Add(1)
		go func(voter string, idx int) {
			defer writers.Done()
			target := resp.Candidates[idx%len(resp.Candidates)].ID
			if _, err := module.Handler.CastVoteHandler(context.Background(), voter, httptransport.CastVoteRequest{CandidateID: target}); err != nil {
				t.Errorf("vote by %s failed: %v", voter, err)
			}
		}(voter, i)
	}
	writers.Wait()
	close(done)
	wg.Wait()

	results, err := module.Handler.ResultsHandler(context.Background())
	if err != nil {
		t.Fatalf("final results failed: %v", err)
	}
	if results.TotalVotes != voterCount {
		t.Fatalf("expected %d total votes, got %d", voterCount, results.TotalVotes)
	}
	candidates, err := module.Handler.CandidatesHandler(context.Background())
	if err != nil {
		t.Fatalf("final candidates failed: %v", err)
	}
	var sum uint64
	for _, item := range candidates.Items {
		sum += item.VoteCount
	}
	if sum != results.TotalVotes {
		t.Fatalf("expected tallies to sum to session total, got %d vs %d", sum, results.TotalVotes)
	}
}

func TestLedgerRecordsNotifications(t *testing.T) {
	module := newModule(t)
	resp := createSession(t, module, "Audited", 3600, "A", "B")
	authorize(t, module, "voter-1")
	if _, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}
	if _, err := module.Handler.EndSessionHandler(context.Background(), adminID); err != nil {
		t.Fatalf("end session failed: %v", err)
	}

	pending, err := module.Store.ListPendingOutbox(context.Background(), 0)
	if err != nil {
		t.Fatalf("list outbox failed: %v", err)
	}
	// created + one per candidate + vote + ended, in append order.
	want := []string{
		"election.session.created",
		"election.candidate.added",
		"election.candidate.added",
		"election.vote.cast",
		"election.session.ended",
	}
	if len(pending) != len(want) {
		t.Fatalf("expected %d notifications, got %d", len(want), len(pending))
	}
	for i, eventType := range want {
		if pending[i].EventType != eventType {
			t.Fatalf("expected notification %d to be %s, got %s", i, eventType, pending[i].EventType)
		}
	}
}

func TestSessionInfoIsPersonalized(t *testing.T) {
	module := newModule(t)

	empty, err := module.Handler.SessionInfoHandler(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("session info before initialization failed: %v", err)
	}
	if empty.Active || empty.Title != "" || empty.CallerHasVoted {
		t.Fatalf("expected zero-value session info before initialization")
	}

	resp := createSession(t, module, "Info", 3600, "A", "B")
	authorize(t, module, "voter-1", "voter-2")
	if _, err := module.Handler.CastVoteHandler(context.Background(), "voter-1", httptransport.CastVoteRequest{CandidateID: resp.Candidates[0].ID}); err != nil {
		t.Fatalf("vote failed: %v", err)
	}

	voted, err := module.Handler.SessionInfoHandler(context.Background(), "voter-1")
	if err != nil {
		t.Fatalf("session info for voter-1 failed: %v", err)
	}
	fresh, err := module.Handler.SessionInfoHandler(context.Background(), "voter-2")
	if err != nil {
		t.Fatalf("session info for voter-2 failed: %v", err)
	}
	if !voted.CallerHasVoted {
		t.Fatalf("expected voter-1 to be marked as having voted")
	}
	if fresh.CallerHasVoted {
		t.Fatalf("expected voter-2 to be unmarked")
	}
	if voted.Title != "Info" || voted.TotalVotes != 1 {
		t.Fatalf("expected shared session snapshot, got %s/%d", voted.Title, voted.TotalVotes)
	}
}

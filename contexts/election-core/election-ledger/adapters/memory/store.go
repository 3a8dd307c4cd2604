package memory

import (
	"bytes"
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-ledger/domain/errors"
	"ballotbox/contexts/election-core/election-ledger/ports"

	"github.com/google/uuid"
)

type outboxRecord struct {
	message   ports.OutboxMessage
	seq       uint64
	published bool
}

type voterRecord struct {
	authorized bool
	hasVoted   bool
}

// Store is the authoritative in-memory ledger. The slate registry keeps
// insertion order separately from the keyed candidate map so that a session
// reset fully rebuilds both while the voter records survive untouched.
type Store struct {
	mu sync.RWMutex

	session       entities.VotingSession
	sessionExists bool

	candidates map[uint64]entities.Candidate
	registry   []uint64
	nextID     uint64

	voters map[string]voterRecord

	outbox map[string]outboxRecord
	order  uint64

	nowFn func() time.Time
}

func NewStore() *Store {
	return &Store{
		candidates: make(map[uint64]entities.Candidate),
		nextID:     1,
		voters:     make(map[string]voterRecord),
		outbox:     make(map[string]outboxRecord),
	}
}

func (s *Store) GetSession(_ context.Context) (entities.VotingSession, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session, s.sessionExists, nil
}

func (s *Store) SaveSession(_ context.Context, session entities.VotingSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = session
	s.sessionExists = true
	return nil
}

func (s *Store) ReplaceSlate(_ context.Context, candidates []entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = make(map[uint64]entities.Candidate, len(candidates))
	s.registry = make([]uint64, 0, len(candidates))
	for _, candidate := range candidates {
		s.candidates[candidate.ID] = candidate
		s.registry = append(s.registry, candidate.ID)
	}
	return nil
}

func (s *Store) ListCandidates(_ context.Context) ([]entities.Candidate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Candidate, 0, len(s.registry))
	for _, id := range s.registry {
		items = append(items, s.candidates[id])
	}
	return items, nil
}

func (s *Store) GetCandidate(_ context.Context, candidateID uint64) (entities.Candidate, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	candidate, ok := s.candidates[candidateID]
	return candidate, ok, nil
}

func (s *Store) SaveCandidate(_ context.Context, candidate entities.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.candidates[candidate.ID]; !ok {
		return domainerrors.ErrCandidateNotFound
	}
	s.candidates[candidate.ID] = candidate
	return nil
}

func (s *Store) NextCandidateID(_ context.Context) (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	return id, nil
}

func (s *Store) IsAuthorized(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voters[strings.TrimSpace(address)].authorized, nil
}

func (s *Store) Authorize(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(address)
	record := s.voters[key]
	record.authorized = true
	s.voters[key] = record
	return nil
}

func (s *Store) HasVoted(_ context.Context, address string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.voters[strings.TrimSpace(address)].hasVoted, nil
}

func (s *Store) MarkVoted(_ context.Context, address string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := strings.TrimSpace(address)
	record := s.voters[key]
	record.hasVoted = true
	s.voters[key] = record
	return nil
}

func (s *Store) AppendOutbox(_ context.Context, envelope ports.EventEnvelope) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	outboxID := strings.TrimSpace(envelope.EventID)
	if outboxID == "" {
		outboxID = uuid.NewString()
	}
	if existing, ok := s.outbox[outboxID]; ok {
		if !bytes.Equal(existing.message.Payload, payload) {
			return domainerrors.ErrEventConflict
		}
		return nil
	}
	createdAt := envelope.OccurredAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	// Rows created within the same clock instant still relay in append
	// order via a local sequence; the stored timestamp stays untouched.
	s.order++
	s.outbox[outboxID] = outboxRecord{
		message: ports.OutboxMessage{
			OutboxID:     outboxID,
			EventType:    strings.TrimSpace(envelope.EventType),
			PartitionKey: strings.TrimSpace(envelope.PartitionKey),
			Payload:      payload,
			CreatedAt:    createdAt,
		},
		seq: s.order,
	}
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]ports.OutboxMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	pending := make([]outboxRecord, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.published {
			continue
		}
		pending = append(pending, row)
	}
	sort.Slice(pending, func(i, j int) bool {
		return pending[i].seq < pending[j].seq
	})
	if len(pending) > limit {
		pending = pending[:limit]
	}
	items := make([]ports.OutboxMessage, 0, len(pending))
	for _, row := range pending {
		items = append(items, row.message)
	}
	return items, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, _ time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(outboxID)]
	if !ok {
		return domainerrors.ErrEventConflict
	}
	row.published = true
	s.outbox[strings.TrimSpace(outboxID)] = row
	return nil
}

func (s *Store) Now() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.nowFn != nil {
		return s.nowFn().UTC()
	}
	return time.Now().UTC()
}

// SetNow overrides the store clock. Tests use it to move the session window.
func (s *Store) SetNow(nowFn func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = nowFn
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

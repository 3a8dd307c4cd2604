package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"ballotbox/contexts/election-core/election-indexer/domain/entities"
	domainerrors "ballotbox/contexts/election-core/election-indexer/domain/errors"
)

type dedupRecord struct {
	payloadHash string
	expiresAt   time.Time
}

// Store keeps the feed and dedup records in memory for tests and single
// process wiring.
type Store struct {
	mu      sync.RWMutex
	entries []entities.FeedEntry
	nextSeq uint64
	dedup   map[string]dedupRecord
}

func NewStore() *Store {
	return &Store{
		nextSeq: 1,
		dedup:   make(map[string]dedupRecord),
	}
}

func (s *Store) Append(_ context.Context, entry entities.FeedEntry) (entities.FeedEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Seq = s.nextSeq
	s.nextSeq++
	s.entries = append(s.entries, entry)
	return entry, nil
}

func (s *Store) List(_ context.Context, afterSeq uint64, limit int) ([]entities.FeedEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if limit <= 0 {
		limit = 100
	}
	items := make([]entities.FeedEntry, 0, limit)
	for _, entry := range s.entries {
		if entry.Seq <= afterSeq {
			continue
		}
		items = append(items, entry)
		if len(items) == limit {
			break
		}
	}
	return items, nil
}

func (s *Store) ReserveEvent(
	_ context.Context,
	eventID string,
	payloadHash string,
	expiresAt time.Time,
) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.TrimSpace(eventID)
	existing, ok := s.dedup[key]
	if ok {
		if !existing.expiresAt.IsZero() && time.Now().UTC().After(existing.expiresAt.UTC()) {
			delete(s.dedup, key)
		} else {
			if existing.payloadHash != strings.TrimSpace(payloadHash) {
				return false, domainerrors.ErrEventConflict
			}
			return true, nil
		}
	}

	s.dedup[key] = dedupRecord{
		payloadHash: strings.TrimSpace(payloadHash),
		expiresAt:   expiresAt.UTC(),
	}
	return false, nil
}

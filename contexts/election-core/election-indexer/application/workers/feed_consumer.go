package workers

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"time"

	"ballotbox/contexts/election-core/election-indexer/domain/entities"
	"ballotbox/contexts/election-core/election-indexer/ports"
)

// LedgerTopics lists every notification topic the ledger emits.
var LedgerTopics = []string{
	"election.session.created",
	"election.candidate.added",
	"election.vote.cast",
	"election.session.ended",
}

// FeedConsumer subscribes to the ledger notification topics and appends each
// event to the ordered feed exactly once. Duplicate deliveries are dropped by
// event id + payload hash.
type FeedConsumer struct {
	Subscriber    ports.EventSubscriber
	Feed          ports.FeedStore
	Dedup         ports.EventDedupStore
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

// Start registers one subscription per ledger topic. Handlers run until ctx
// is cancelled.
func (c FeedConsumer) Start(ctx context.Context) error {
	logger := c.logger()
	for _, topic := range LedgerTopics {
		if err := c.Subscriber.Subscribe(ctx, topic, c.ConsumerGroup, c.handle); err != nil {
			logger.Error("feed consumer subscribe failed",
				"event", "election_feed_subscribe_failed",
				"module", "election-core/election-indexer",
				"layer", "worker",
				"topic", topic,
				"error", err.Error(),
			)
			return err
		}
	}
	logger.Info("feed consumer started",
		"event", "election_feed_consumer_started",
		"module", "election-core/election-indexer",
		"layer", "worker",
		"consumer_group", c.ConsumerGroup,
		"topic_count", len(LedgerTopics),
	)
	return nil
}

func (c FeedConsumer) handle(ctx context.Context, event ports.EventEnvelope) error {
	logger := c.logger()
	now := time.Now().UTC()
	if c.Clock != nil {
		now = c.Clock.Now().UTC()
	}
	ttl := c.DedupTTL
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}

	sum := sha256.Sum256(event.Data)
	seen, err := c.Dedup.ReserveEvent(ctx, event.EventID, hex.EncodeToString(sum[:]), now.Add(ttl))
	if err != nil {
		logger.Error("feed dedup reservation failed",
			"event", "election_feed_dedup_failed",
			"module", "election-core/election-indexer",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}
	if seen {
		logger.Debug("feed consumer dropped duplicate event",
			"event", "election_feed_duplicate_dropped",
			"module", "election-core/election-indexer",
			"layer", "worker",
			"event_id", event.EventID,
			"event_type", event.EventType,
		)
		return nil
	}

	entry, err := c.Feed.Append(ctx, entities.FeedEntry{
		EventID:    event.EventID,
		EventType:  event.EventType,
		OccurredAt: event.OccurredAt.UTC(),
		Data:       event.Data,
	})
	if err != nil {
		logger.Error("feed append failed",
			"event", "election_feed_append_failed",
			"module", "election-core/election-indexer",
			"layer", "worker",
			"event_id", event.EventID,
			"error", err.Error(),
		)
		return err
	}

	logger.Info("feed entry appended",
		"event", "election_feed_entry_appended",
		"module", "election-core/election-indexer",
		"layer", "worker",
		"seq", entry.Seq,
		"event_id", entry.EventID,
		"event_type", entry.EventType,
	)
	return nil
}

func (c FeedConsumer) logger() *slog.Logger {
	if c.Logger == nil {
		return slog.Default()
	}
	return c.Logger
}

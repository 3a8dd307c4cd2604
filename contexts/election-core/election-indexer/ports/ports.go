package ports

import (
	"context"
	"time"

	"ballotbox/contexts/election-core/election-indexer/domain/entities"
	contractsv1 "ballotbox/contracts/gen/events/v1"
)

// FeedStore owns the ordered event feed read model. Append assigns the next
// sequence number; List pages forward from a caller-supplied sequence.
type FeedStore interface {
	Append(ctx context.Context, entry entities.FeedEntry) (entities.FeedEntry, error)
	List(ctx context.Context, afterSeq uint64, limit int) ([]entities.FeedEntry, error)
}

// EventDedupStore provides idempotent processing guarantees for consumed
// events. ReserveEvent returns true when the event id was already processed
// with the same payload.
type EventDedupStore interface {
	ReserveEvent(ctx context.Context, eventID string, payloadHash string, expiresAt time.Time) (bool, error)
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// Clock allows deterministic testing of dedup TTL handling.
type Clock interface {
	Now() time.Time
}

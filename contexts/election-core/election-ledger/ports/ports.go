package ports

import (
	"context"
	"time"

	"ballotbox/contexts/election-core/election-ledger/domain/entities"
	contractsv1 "ballotbox/contracts/gen/events/v1"
)

// LedgerRepository owns durable storage for the whole ledger entity set:
// the singleton session, the ordered slate, the voter registries, and the
// monotonic candidate id counter. Implementations must keep slate listing in
// insertion order.
type LedgerRepository interface {
	GetSession(ctx context.Context) (entities.VotingSession, bool, error)
	SaveSession(ctx context.Context, session entities.VotingSession) error

	// ReplaceSlate clears the previous slate entirely and stores the given
	// candidates in order. Voter registries are untouched.
	ReplaceSlate(ctx context.Context, candidates []entities.Candidate) error
	ListCandidates(ctx context.Context) ([]entities.Candidate, error)
	GetCandidate(ctx context.Context, candidateID uint64) (entities.Candidate, bool, error)
	SaveCandidate(ctx context.Context, candidate entities.Candidate) error

	// NextCandidateID returns a fresh id and advances the counter. IDs assigned
	// once are never handed out again, even after a slate reset.
	NextCandidateID(ctx context.Context) (uint64, error)

	IsAuthorized(ctx context.Context, address string) (bool, error)
	// Authorize is idempotent; re-authorizing a known address is a no-op.
	Authorize(ctx context.Context, address string) error

	HasVoted(ctx context.Context, address string) (bool, error)
	// MarkVoted is permanent. There is no unmark operation.
	MarkVoted(ctx context.Context, address string) error
}

// OutboxMessage is a row ready to relay from the ledger outbox.
type OutboxMessage struct {
	OutboxID     string
	EventType    string
	PartitionKey string
	Payload      []byte
	CreatedAt    time.Time
}

// OutboxWriter appends notification envelopes to the append-only event log.
type OutboxWriter interface {
	AppendOutbox(ctx context.Context, envelope EventEnvelope) error
}

// OutboxRepository models worker-side outbox polling/acknowledgement.
type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]OutboxMessage, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

// EventEnvelope reuses the canonical cross-runtime envelope contract.
type EventEnvelope = contractsv1.Envelope

// EventPublisher publishes canonical envelopes to a topic.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

// EventSubscriber registers a topic consumer callback.
type EventSubscriber interface {
	Subscribe(
		ctx context.Context,
		topic string,
		consumerGroup string,
		handler func(context.Context, EventEnvelope) error,
	) error
}

// Clock supplies the environment's current-time value so window rules stay
// deterministic under test.
type Clock interface {
	Now() time.Time
}

// IDGenerator abstracts event identifier generation.
type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

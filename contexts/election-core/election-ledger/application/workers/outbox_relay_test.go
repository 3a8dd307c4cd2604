package workers_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ballotbox/contexts/election-core/election-ledger/adapters/memory"
	"ballotbox/contexts/election-core/election-ledger/application/workers"
	"ballotbox/contexts/election-core/election-ledger/ports"
)

type capturingPublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func appendEnvelope(t *testing.T, store *memory.Store, eventID, eventType string, occurredAt time.Time) {
	t.Helper()
	payload, err := json.Marshal(map[string]any{"marker": eventID})
	if err != nil {
		t.Fatalf("marshal payload failed: %v", err)
	}
	err = store.AppendOutbox(context.Background(), ports.EventEnvelope{
		EventID:       eventID,
		EventType:     eventType,
		OccurredAt:    occurredAt,
		SchemaVersion: 1,
		Data:          payload,
	})
	if err != nil {
		t.Fatalf("append outbox failed: %v", err)
	}
}

func TestOutboxRelayPublishesInOrderExactlyOnce(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	appendEnvelope(t, store, "evt-1", "election.session.created", base)
	appendEnvelope(t, store, "evt-2", "election.candidate.added", base)
	appendEnvelope(t, store, "evt-3", "election.vote.cast", base.Add(time.Second))

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}

	if len(publisher.events) != 3 {
		t.Fatalf("expected 3 published events, got %d", len(publisher.events))
	}
	for i, wantID := range []string{"evt-1", "evt-2", "evt-3"} {
		if publisher.events[i].EventID != wantID {
			t.Fatalf("expected event %d to be %s, got %s", i, wantID, publisher.events[i].EventID)
		}
		if publisher.topics[i] != publisher.events[i].EventType {
			t.Fatalf("expected topic to match event type, got %s vs %s", publisher.topics[i], publisher.events[i].EventType)
		}
	}

	// A second pass finds nothing pending.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("second relay run failed: %v", err)
	}
	if len(publisher.events) != 3 {
		t.Fatalf("expected no republishing, got %d events", len(publisher.events))
	}
}

func TestOutboxRelayRespectsBatchSize(t *testing.T) {
	store := memory.NewStore()
	publisher := &capturingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     store,
		BatchSize: 2,
	}

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, id := range []string{"evt-1", "evt-2", "evt-3"} {
		appendEnvelope(t, store, id, "election.vote.cast", base)
	}

	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay run failed: %v", err)
	}
	if len(publisher.events) != 2 {
		t.Fatalf("expected batch of 2, got %d", len(publisher.events))
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay drain run failed: %v", err)
	}
	if len(publisher.events) != 3 {
		t.Fatalf("expected remaining event to drain, got %d", len(publisher.events))
	}
}

package commands

import (
	"encoding/json"
	"time"

	"ballotbox/contexts/election-core/election-ledger/ports"
)

const (
	EventSessionCreated = "election.session.created"
	EventCandidateAdded = "election.candidate.added"
	EventVoteCast       = "election.vote.cast"
	EventSessionEnded   = "election.session.ended"
)

func newElectionEnvelope(
	eventID string,
	eventType string,
	sessionTitle string,
	occurredAt time.Time,
	data map[string]any,
) (ports.EventEnvelope, error) {
	// Notifications are partitioned by session title so session-scoped
	// consumers see a stable ordering per election.
	payload, err := json.Marshal(data)
	if err != nil {
		return ports.EventEnvelope{}, err
	}
	return ports.EventEnvelope{
		EventID:          eventID,
		EventType:        eventType,
		OccurredAt:       occurredAt.UTC(),
		SourceService:    "election-ledger",
		TraceID:          eventID,
		SchemaVersion:    1,
		PartitionKeyPath: "session_title",
		PartitionKey:     sessionTitle,
		Data:             payload,
	}, nil
}

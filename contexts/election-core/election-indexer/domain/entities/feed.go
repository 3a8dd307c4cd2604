package entities

import (
	"encoding/json"
	"time"
)

// FeedEntry is one notification persisted in the indexer's ordered read
// model. Seq is assigned by the feed store on append and is strictly
// increasing.
type FeedEntry struct {
	Seq        uint64
	EventID    string
	EventType  string
	OccurredAt time.Time
	Data       json.RawMessage
}

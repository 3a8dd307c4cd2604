package httpadapter

import (
	"context"
	"log/slog"

	"ballotbox/contexts/election-core/election-indexer/ports"
	httptransport "ballotbox/contexts/election-core/election-indexer/transport/http"
)

type Handler struct {
	Feed   ports.FeedStore
	Logger *slog.Logger
}

// ListEventsHandler godoc
// @Summary Ledger notification feed
// @Description Ordered, append-only feed of ledger notifications for indexers and UIs.
// @Tags election-indexer
// @Produce json
// @Param after_seq query int false "Return entries with seq greater than this"
// @Param limit query int false "Page size (default 100)"
// @Success 200 {object} httptransport.EventFeedResponse
// @Router /v1/election/events [get]
func (h Handler) ListEventsHandler(ctx context.Context, afterSeq uint64, limit int) (httptransport.EventFeedResponse, error) {
	entries, err := h.Feed.List(ctx, afterSeq, limit)
	if err != nil {
		return httptransport.EventFeedResponse{}, err
	}
	items := make([]httptransport.EventItem, 0, len(entries))
	for _, entry := range entries {
		items = append(items, httptransport.EventItem{
			Seq:        entry.Seq,
			EventID:    entry.EventID,
			EventType:  entry.EventType,
			OccurredAt: entry.OccurredAt,
			Data:       entry.Data,
		})
	}
	return httptransport.EventFeedResponse{Items: items}, nil
}

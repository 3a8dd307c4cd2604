package electionindexer

import (
	"log/slog"
	"time"

	httpadapter "ballotbox/contexts/election-core/election-indexer/adapters/http"
	"ballotbox/contexts/election-core/election-indexer/adapters/memory"
	"ballotbox/contexts/election-core/election-indexer/application/workers"
	"ballotbox/contexts/election-core/election-indexer/ports"
)

type Module struct {
	Handler  httpadapter.Handler
	Consumer workers.FeedConsumer
	Store    *memory.Store
}

type Dependencies struct {
	Feed          ports.FeedStore
	Dedup         ports.EventDedupStore
	Subscriber    ports.EventSubscriber
	Clock         ports.Clock
	ConsumerGroup string
	DedupTTL      time.Duration
	Logger        *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			Feed:   deps.Feed,
			Logger: deps.Logger,
		},
		Consumer: workers.FeedConsumer{
			Subscriber:    deps.Subscriber,
			Feed:          deps.Feed,
			Dedup:         deps.Dedup,
			Clock:         deps.Clock,
			ConsumerGroup: deps.ConsumerGroup,
			DedupTTL:      deps.DedupTTL,
			Logger:        deps.Logger,
		},
	}
}

func NewInMemoryModule(subscriber ports.EventSubscriber, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Feed:          store,
		Dedup:         store,
		Subscriber:    subscriber,
		ConsumerGroup: "election-indexer-cg",
		DedupTTL:      24 * time.Hour,
		Logger:        logger,
	})
	module.Store = store
	return module
}

package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	electionindexer "ballotbox/contexts/election-core/election-indexer"
	indexerpostgres "ballotbox/contexts/election-core/election-indexer/adapters/postgres"
	indexerworkers "ballotbox/contexts/election-core/election-indexer/application/workers"
	electionledger "ballotbox/contexts/election-core/election-ledger"
	ledgerpostgres "ballotbox/contexts/election-core/election-ledger/adapters/postgres"
	ledgerworkers "ballotbox/contexts/election-core/election-ledger/application/workers"
	"ballotbox/internal/platform/config"
	"ballotbox/internal/platform/db"
	"ballotbox/internal/platform/httpserver"
	"ballotbox/internal/platform/messaging"
)

// Package bootstrap is the composition root.
// Keep construction/wiring here so module code stays framework-agnostic.

type APIApp struct {
	server   *httpserver.Server
	postgres *db.Postgres
	logger   *slog.Logger
}

type WorkerApp struct {
	postgres     *db.Postgres
	outboxRelay  ledgerworkers.OutboxRelay
	feedConsumer indexerworkers.FeedConsumer
	relayEnabled bool
	feedEnabled  bool
	pollInterval time.Duration
	logger       *slog.Logger
}

func BuildAPI() (*APIApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "api")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	models := append(ledgerpostgres.Models(), indexerpostgres.Models()...)
	if err := pg.Migrate(models...); err != nil {
		_ = pg.Close()
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	ledgerModule := electionledger.NewModule(electionledger.Dependencies{
		Ledger:  ledgerRepo,
		Outbox:  ledgerRepo,
		Clock:   ledgerpostgres.SystemClock{},
		IDGen:   ledgerpostgres.UUIDGenerator{},
		AdminID: cfg.AdminID,
		Logger:  logger,
	})

	indexerRepo := indexerpostgres.NewRepository(pg.DB, logger)
	indexerModule := electionindexer.NewModule(electionindexer.Dependencies{
		Feed:          indexerRepo,
		Dedup:         indexerRepo,
		Clock:         ledgerpostgres.SystemClock{},
		ConsumerGroup: "election-indexer-cg",
		DedupTTL:      24 * time.Hour,
		Logger:        logger,
	})

	server := httpserver.New(ledgerModule, indexerModule, logger, normalizeAddr(cfg.HTTPPort))
	return &APIApp{
		server:   server,
		postgres: pg,
		logger:   logger,
	}, nil
}

func BuildWorker() (*WorkerApp, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger := slog.Default().With("service", cfg.ServiceName, "process", "worker")
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, errors.New("POSTGRES_DSN is required")
	}

	pg, err := db.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}

	models := append(ledgerpostgres.Models(), indexerpostgres.Models()...)
	if err := pg.Migrate(models...); err != nil {
		_ = pg.Close()
		return nil, err
	}

	bus, err := messaging.NewKafka(cfg.KafkaBrokers, logger)
	if err != nil {
		_ = pg.Close()
		return nil, err
	}

	ledgerRepo := ledgerpostgres.NewRepository(pg.DB, logger)
	indexerRepo := indexerpostgres.NewRepository(pg.DB, logger)
	return &WorkerApp{
		postgres: pg,
		outboxRelay: ledgerworkers.OutboxRelay{
			Outbox:    ledgerRepo,
			Publisher: bus,
			Clock:     ledgerpostgres.SystemClock{},
			BatchSize: 100,
			Logger:    logger,
		},
		feedConsumer: indexerworkers.FeedConsumer{
			Subscriber:    bus,
			Feed:          indexerRepo,
			Dedup:         indexerRepo,
			Clock:         ledgerpostgres.SystemClock{},
			ConsumerGroup: "election-indexer-cg",
			DedupTTL:      24 * time.Hour,
			Logger:        logger,
		},
		relayEnabled: cfg.EnableOutboxRelay,
		feedEnabled:  cfg.EnableFeedConsumer,
		pollInterval: 2 * time.Second,
		logger:       logger,
	}, nil
}

func (a *APIApp) Run(_ context.Context) error {
	if a.logger != nil {
		a.logger.Info("api app started",
			"event", "bootstrap_api_started",
			"module", "internal/app/bootstrap",
			"layer", "platform",
		)
	}
	return a.server.Start()
}

func (a *APIApp) Close() error {
	if a.postgres != nil {
		return a.postgres.Close()
	}
	return nil
}

func (w *WorkerApp) Run(ctx context.Context) error {
	if w.feedEnabled {
		if err := w.feedConsumer.Start(ctx); err != nil {
			return err
		}
	}

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	w.logger.Info("worker app started",
		"event", "bootstrap_worker_started",
		"module", "internal/app/bootstrap",
		"layer", "platform",
		"poll_interval", w.pollInterval.String(),
		"outbox_relay_enabled", w.relayEnabled,
		"feed_consumer_enabled", w.feedEnabled,
	)

	for {
		if w.relayEnabled {
			if err := w.outboxRelay.RunOnce(ctx); err != nil {
				return err
			}
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (w *WorkerApp) Close() error {
	if w.postgres != nil {
		return w.postgres.Close()
	}
	return nil
}

func normalizeAddr(port string) string {
	value := strings.TrimSpace(port)
	if value == "" {
		return ":8080"
	}
	if strings.HasPrefix(value, ":") {
		return value
	}
	return ":" + value
}

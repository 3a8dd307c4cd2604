package config_test

import (
	"testing"

	"ballotbox/internal/platform/config"
)

func TestLoadRequiresAdminID(t *testing.T) {
	t.Setenv("ADMIN_ID", "")
	if _, err := config.Load(); err == nil {
		t.Fatalf("expected error without ADMIN_ID")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ADMIN_ID", "admin-1")
	t.Setenv("SERVICE_NAME", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("KAFKA_BROKERS", "")
	t.Setenv("ENABLE_OUTBOX_RELAY", "")
	t.Setenv("ENABLE_FEED_CONSUMER", "")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.ServiceName != "ballotbox" {
		t.Fatalf("expected default service name, got %s", cfg.ServiceName)
	}
	if cfg.HTTPPort != "8080" {
		t.Fatalf("expected default port, got %s", cfg.HTTPPort)
	}
	if len(cfg.KafkaBrokers) != 1 || cfg.KafkaBrokers[0] != "localhost:9092" {
		t.Fatalf("expected default broker, got %v", cfg.KafkaBrokers)
	}
	if !cfg.EnableOutboxRelay || !cfg.EnableFeedConsumer {
		t.Fatalf("expected workers enabled by default")
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("ADMIN_ID", "  admin-1  ")
	t.Setenv("KAFKA_BROKERS", "broker-a:9092, broker-b:9092 ,")
	t.Setenv("ENABLE_OUTBOX_RELAY", "off")
	t.Setenv("ENABLE_FEED_CONSUMER", "TRUE")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.AdminID != "admin-1" {
		t.Fatalf("expected trimmed admin id, got %q", cfg.AdminID)
	}
	if len(cfg.KafkaBrokers) != 2 {
		t.Fatalf("expected 2 brokers, got %v", cfg.KafkaBrokers)
	}
	if cfg.EnableOutboxRelay {
		t.Fatalf("expected outbox relay disabled")
	}
	if !cfg.EnableFeedConsumer {
		t.Fatalf("expected feed consumer enabled")
	}
}

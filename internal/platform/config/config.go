package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string
	HTTPPort     string
	PostgresDSN  string
	KafkaBrokers []string

	// AdminID is the administrator identity fixed at initialization. Session
	// lifecycle and voter authorization are gated on it; it is never
	// transferable at runtime.
	AdminID string

	EnableOutboxRelay  bool
	EnableFeedConsumer bool
}

func Load() (Config, error) {
	// A local .env is a development convenience; absence is not an error.
	_ = godotenv.Load()

	service := os.Getenv("SERVICE_NAME")
	if service == "" {
		service = "ballotbox"
	}

	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8080"
	}

	var brokers []string
	for _, value := range strings.Split(os.Getenv("KAFKA_BROKERS"), ",") {
		value = strings.TrimSpace(value)
		if value != "" {
			brokers = append(brokers, value)
		}
	}
	if len(brokers) == 0 {
		brokers = []string{"localhost:9092"}
	}

	adminID := strings.TrimSpace(os.Getenv("ADMIN_ID"))
	if adminID == "" {
		return Config{}, errors.New("ADMIN_ID is required")
	}

	return Config{
		ServiceName:  service,
		HTTPPort:     port,
		PostgresDSN:  os.Getenv("POSTGRES_DSN"),
		KafkaBrokers: brokers,
		AdminID:      adminID,

		EnableOutboxRelay:  envBool("ENABLE_OUTBOX_RELAY", true),
		EnableFeedConsumer: envBool("ENABLE_FEED_CONSUMER", true),
	}, nil
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(strings.ToLower(os.Getenv(name)))
	if raw == "" {
		return fallback
	}
	switch raw {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

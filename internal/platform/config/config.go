package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// RedisConfig holds connection tuning for the optional Redis-backed
// idempotency store. An empty URL means Redis is not configured.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server captures process level configuration.
type Server struct {
	Addr string

	// PostgresURL selects the durable account store. Empty means the
	// in-memory store, which is what tests and local runs use.
	PostgresURL string

	Redis RedisConfig

	// KafkaBrokers enables the Kafka audit publisher when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	InitialBalance string
	MintingRole    string

	MaxTransferAttempts   int
	IdempotencyTTL        time.Duration
	IdempotencyMaxEntries int

	// SeedTreasury registers the treasury account at boot when it does
	// not exist yet.
	SeedTreasury bool
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	addr := os.Getenv("MINTBANK_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	topic := os.Getenv("MINTBANK_KAFKA_TOPIC")
	if topic == "" {
		topic = "mintbank.audit"
	}

	balance := os.Getenv("MINTBANK_INITIAL_BALANCE")
	if balance == "" {
		balance = "250.00"
	}

	return Server{
		Addr:        addr,
		PostgresURL: os.Getenv("MINTBANK_POSTGRES_URL"),
		// Zero tuning values mean "use the wrapper's defaults".
		Redis: RedisConfig{
			URL:          os.Getenv("MINTBANK_REDIS_URL"),
			PoolSize:     envInt("MINTBANK_REDIS_POOL_SIZE", 0),
			MinIdleConns: envInt("MINTBANK_REDIS_MIN_IDLE_CONNS", 0),
			DialTimeout:  envDuration("MINTBANK_REDIS_DIAL_TIMEOUT", 0),
			ReadTimeout:  envDuration("MINTBANK_REDIS_READ_TIMEOUT", 0),
			WriteTimeout: envDuration("MINTBANK_REDIS_WRITE_TIMEOUT", 0),
		},
		KafkaBrokers:          envList("MINTBANK_KAFKA_BROKERS"),
		KafkaTopic:            topic,
		InitialBalance:        balance,
		MintingRole:           os.Getenv("MINTBANK_MINTING_ROLE"),
		MaxTransferAttempts:   envInt("MINTBANK_MAX_TRANSFER_ATTEMPTS", 0),
		IdempotencyTTL:        envDuration("MINTBANK_IDEMPOTENCY_TTL", 0),
		IdempotencyMaxEntries: envInt("MINTBANK_IDEMPOTENCY_MAX_ENTRIES", 0),
		SeedTreasury:          os.Getenv("MINTBANK_SEED_TREASURY") != "false",
	}
}

func envInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

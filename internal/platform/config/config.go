package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	platformstrings "libris/pkg/platform/strings"
)

// Config captures everything main needs to wire the service.
type Config struct {
	Addr          string
	DatabaseURL   string
	JWTSigningKey string
	JWTIssuer     string

	Redis RedisConfig
	Kafka KafkaConfig

	Circulation CirculationConfig
}

// RedisConfig configures the ephemeral-store client. An empty URL means
// Redis is not configured and the in-memory ledger is used instead.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig configures the notification publisher. Empty brokers mean
// notifications go to the log.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// CirculationConfig carries the numeric circulation policy parameters.
// The engine applies them; policy decisions live elsewhere.
type CirculationConfig struct {
	RatePerDay        int64
	RentalWindow      time.Duration
	ReservationWindow time.Duration
	MaxRenewals       int
	TickInterval      time.Duration
	SettlementTTL     time.Duration
}

// FromEnv builds the config from environment variables so main stays lean.
func FromEnv() Config {
	return Config{
		Addr:          envOr("LIBRIS_ADDR", ":8080"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		JWTSigningKey: envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:     envOr("JWT_ISSUER", "libris"),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("KAFKA_BROKERS"),
			Topic:   envOr("KAFKA_NOTIFICATION_TOPIC", "libris.notifications"),
		},
		Circulation: CirculationConfig{
			RatePerDay:        envInt64("PENALTY_RATE_PER_DAY", 100),
			RentalWindow:      envDuration("RENTAL_WINDOW", 30*24*time.Hour),
			ReservationWindow: envDuration("RESERVATION_WINDOW", 3*24*time.Hour),
			MaxRenewals:       envInt("MAX_RENEWALS", 2),
			TickInterval:      envDuration("TICK_INTERVAL", time.Minute),
			SettlementTTL:     envDuration("SETTLEMENT_TOKEN_TTL", 24*time.Hour),
		},
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			return parsed
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	return platformstrings.DedupeAndTrim(strings.Split(v, ","))
}

// Package config builds runtime configuration from environment variables so
// main stays lean. Every knob has a development-safe default; production
// deployments override via environment.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	pstrings "newsdesk/pkg/platform/strings"
)

// Config is the full application configuration.
type Config struct {
	Server   Server
	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Auth     AuthConfig
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
	LogLevel        string
}

// PostgresConfig captures database connection settings. An empty DSN selects
// the in-memory stores (development and unit tests).
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// RedisConfig captures Redis connection settings. An empty URL disables Redis
// and the token revocation list falls back to its in-memory implementation.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig captures event stream settings. Empty Brokers disables the
// activity event publisher.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig captures token issuance settings.
type AuthConfig struct {
	JWTSigningKey string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	jwtSigningKey := os.Getenv("JWT_SIGNING_KEY")
	if jwtSigningKey == "" {
		// Development default - must be overridden in production
		jwtSigningKey = "dev-secret-key-change-in-production"
	}

	return Config{
		Server: Server{
			Addr:            envString("NEWSDESK_ADDR", ":8080"),
			ShutdownTimeout: envDuration("NEWSDESK_SHUTDOWN_TIMEOUT", 10*time.Second),
			LogLevel:        envString("NEWSDESK_LOG_LEVEL", "info"),
		},
		Postgres: PostgresConfig{
			DSN:             os.Getenv("NEWSDESK_POSTGRES_DSN"),
			MaxOpenConns:    envInt("NEWSDESK_POSTGRES_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("NEWSDESK_POSTGRES_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: envDuration("NEWSDESK_POSTGRES_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("NEWSDESK_REDIS_URL"),
			PoolSize:     envInt("NEWSDESK_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("NEWSDESK_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("NEWSDESK_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("NEWSDESK_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("NEWSDESK_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: KafkaConfig{
			Brokers: envList("NEWSDESK_KAFKA_BROKERS"),
			Topic:   envString("NEWSDESK_KAFKA_TOPIC", "newsdesk.activity"),
		},
		Auth: AuthConfig{
			JWTSigningKey: jwtSigningKey,
			AccessTTL:     envDuration("NEWSDESK_ACCESS_TOKEN_TTL", 15*time.Minute),
			RefreshTTL:    envDuration("NEWSDESK_REFRESH_TOKEN_TTL", 720*time.Hour),
		},
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	out := pstrings.DedupeAndTrimLower(strings.Split(v, ","))
	if len(out) == 0 {
		return nil
	}
	return out
}

// Package config centralizes environment-driven configuration so main stays
// lean. Every knob has a default suitable for local development.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config is the full runtime configuration for the PortFlow server.
type Config struct {
	Server   Server
	Postgres Postgres
	Redis    Redis
	Kafka    Kafka
	Confirm  Confirm
	Status   Status
	Gateway  Gateway
}

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	ShutdownTimeout time.Duration
}

// Postgres holds the case store connection settings. An empty URL selects
// the in-memory store.
type Postgres struct {
	URL string
}

// Redis holds connection settings for the confirmation store and query
// cache. An empty URL selects the in-memory fallbacks.
type Redis struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Kafka holds audit publishing settings. No brokers means audit events go to
// the in-memory store only.
type Kafka struct {
	Brokers []string
}

// Confirm configures the human approval gate.
type Confirm struct {
	SigningKey string
	Window     time.Duration
}

// Status configures staleness-aware external status reads.
type Status struct {
	StalenessThreshold time.Duration
}

// Gateway holds per-system retry budgets and timeouts for the external
// authority clients. Zero values fall back to the gateway defaults.
type Gateway struct {
	Customs       SystemPolicy
	ShippingLine  SystemPolicy
	PortAuthority SystemPolicy
}

// SystemPolicy is one authority's call budget.
type SystemPolicy struct {
	Timeout     time.Duration
	MaxAttempts int
}

// FromEnv builds a Config from environment variables.
func FromEnv() Config {
	return Config{
		Server: Server{
			Addr:            envStr("PORTFLOW_ADDR", ":8080"),
			ShutdownTimeout: envDur("PORTFLOW_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Postgres: Postgres{
			URL: os.Getenv("PORTFLOW_POSTGRES_URL"),
		},
		Redis: Redis{
			URL:          os.Getenv("PORTFLOW_REDIS_URL"),
			PoolSize:     envInt("PORTFLOW_REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("PORTFLOW_REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDur("PORTFLOW_REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDur("PORTFLOW_REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDur("PORTFLOW_REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Kafka: Kafka{
			Brokers: envList("PORTFLOW_KAFKA_BROKERS"),
		},
		Confirm: Confirm{
			// Override in production.
			SigningKey: envStr("PORTFLOW_CONFIRM_SIGNING_KEY", "dev-secret-key-change-in-production"),
			Window:     envDur("PORTFLOW_CONFIRM_WINDOW", 15*time.Minute),
		},
		Status: Status{
			StalenessThreshold: envDur("PORTFLOW_STATUS_STALENESS", 5*time.Minute),
		},
		Gateway: Gateway{
			Customs: SystemPolicy{
				Timeout:     envDur("PORTFLOW_CUSTOMS_TIMEOUT", 0),
				MaxAttempts: envInt("PORTFLOW_CUSTOMS_MAX_ATTEMPTS", 0),
			},
			ShippingLine: SystemPolicy{
				Timeout:     envDur("PORTFLOW_SHIPPING_TIMEOUT", 0),
				MaxAttempts: envInt("PORTFLOW_SHIPPING_MAX_ATTEMPTS", 0),
			},
			PortAuthority: SystemPolicy{
				Timeout:     envDur("PORTFLOW_PORT_AUTHORITY_TIMEOUT", 0),
				MaxAttempts: envInt("PORTFLOW_PORT_AUTHORITY_MAX_ATTEMPTS", 0),
			},
		},
	}
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func envDur(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func envList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	parts := strings.Split(v, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

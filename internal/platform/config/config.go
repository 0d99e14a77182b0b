// Package config builds runtime configuration from environment variables so
// main stays lean.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

// Server captures everything the process needs to start.
type Server struct {
	Addr string

	// PostgresDSN selects the persistent stores; empty means in-memory.
	PostgresDSN string

	// RedisURL enables the document URL cache; empty disables it.
	RedisURL string

	// KafkaBrokers enables the activity feed publisher; empty disables it.
	KafkaBrokers []string
	KafkaTopic   string

	// TimeZone is the agency's operating time zone. "Today" for expiry
	// boundaries is the calendar date in this zone, not UTC.
	TimeZone string

	JWTSigningKey string
	JWTIssuer     string
	TokenTTL      time.Duration

	// DocumentBaseURL is the blob store root that document references
	// resolve against.
	DocumentBaseURL string
}

// FromEnv builds a Server config from environment variables.
func FromEnv() Server {
	cfg := Server{
		Addr:            envOr("VERISTAFF_ADDR", ":8080"),
		PostgresDSN:     os.Getenv("VERISTAFF_POSTGRES_DSN"),
		RedisURL:        os.Getenv("VERISTAFF_REDIS_URL"),
		KafkaTopic:      envOr("VERISTAFF_KAFKA_TOPIC", "veristaff.activity"),
		TimeZone:        envOr("VERISTAFF_TIMEZONE", "UTC"),
		JWTSigningKey:   envOr("VERISTAFF_JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		JWTIssuer:       envOr("VERISTAFF_JWT_ISSUER", "veristaff"),
		TokenTTL:        time.Hour,
		DocumentBaseURL: os.Getenv("VERISTAFF_DOCUMENT_BASE_URL"),
	}

	if brokers := os.Getenv("VERISTAFF_KAFKA_BROKERS"); brokers != "" {
		for _, broker := range strings.Split(brokers, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if ttl := os.Getenv("VERISTAFF_TOKEN_TTL"); ttl != "" {
		if parsed, err := time.ParseDuration(ttl); err == nil && parsed > 0 {
			cfg.TokenTTL = parsed
		}
	}
	return cfg
}

// Location resolves the configured time zone.
func (s Server) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("invalid time zone %q: %w", s.TimeZone, err)
	}
	return loc, nil
}

// RedisConfig holds connection tuning for the optional Redis cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Redis derives the Redis configuration with defaults applied.
func (s Server) Redis() RedisConfig {
	return RedisConfig{
		URL:          s.RedisURL,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

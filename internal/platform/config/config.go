package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures everything main needs to wire the service from the
// environment.
type Config struct {
	Addr          string
	PostgresDSN   string
	RedisURL      string
	KafkaBrokers  []string
	JWTSigningKey string
	LogFormat     string

	// SessionTTL bounds the registration window; sessions older than this are
	// reclaimed lazily on next access.
	SessionTTL time.Duration

	// MaxDocuments caps how many documents one wizard session may stage.
	MaxDocuments int
	// MaxAttachmentBytes caps a single uploaded file.
	MaxAttachmentBytes int64
	// MaxMultipartMemory is handed to ParseMultipartForm.
	MaxMultipartMemory int64

	OTPTTL          time.Duration
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration
}

// FromEnv builds a Config from environment variables so main stays lean.
func FromEnv() Config {
	cfg := Config{
		Addr:               envOr("MEDREGISTRY_ADDR", ":8080"),
		PostgresDSN:        os.Getenv("POSTGRES_DSN"),
		RedisURL:           os.Getenv("REDIS_URL"),
		JWTSigningKey:      os.Getenv("JWT_SIGNING_KEY"),
		LogFormat:          envOr("LOG_FORMAT", "text"),
		SessionTTL:         envDuration("SESSION_TTL", 24*time.Hour),
		MaxDocuments:       envInt("MAX_DOCUMENTS", 20),
		MaxAttachmentBytes: int64(envInt("MAX_ATTACHMENT_BYTES", 5<<20)),
		MaxMultipartMemory: int64(envInt("MAX_MULTIPART_MEMORY", 8<<20)),
		OTPTTL:             envDuration("OTP_TTL", 5*time.Minute),
		AccessTokenTTL:     envDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL:    envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour),
	}

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		for _, b := range strings.Split(brokers, ",") {
			if b = strings.TrimSpace(b); b != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, b)
			}
		}
	}

	if cfg.JWTSigningKey == "" {
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

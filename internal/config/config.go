package config

import (
	"context"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env         string
	Port        int
	ServiceName string

	SessionTTL           time.Duration
	SessionSweepInterval time.Duration

	AllowedOrigins     []string
	MaxBodyBytes       int64
	RateLimitPerMinute int

	OtelEnabled  bool
	OtelEndpoint string
}

func Load() Config {
	// .env is optional, real env vars always win
	_ = godotenv.Load()

	return Config{
		Env:                  getEnv("APP_ENV", "dev"),
		Port:                 getEnvInt("PORT", 8080),
		ServiceName:          getEnv("SERVICE_NAME", "userdesk"),
		SessionTTL:           getEnvDuration("SESSION_TTL", 30*time.Minute),
		SessionSweepInterval: getEnvDuration("SESSION_SWEEP_INTERVAL", time.Minute),
		AllowedOrigins:       getEnvList("CORS_ALLOWED_ORIGINS"),
		MaxBodyBytes:         int64(getEnvInt("MAX_BODY_BYTES", 1<<20)),
		RateLimitPerMinute:   getEnvInt("RATE_LIMIT_PER_MINUTE", 120),
		OtelEnabled:          getEnvBool("OTEL_ENABLED", false),
		OtelEndpoint:         getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			slog.Warn("invalid int env var, using default", "key", key, "value", v, "err", err)
			return fallback
		}

		return num
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid bool env var, using default", "key", key, "value", v, "err", err)
			return fallback
		}
		return b
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v)
			return fallback
		}
		return d
	}
	return fallback
}

func getEnvList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}

	out := make([]string, 0)
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

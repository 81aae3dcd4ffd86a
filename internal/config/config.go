package config

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env  string
	Port int

	DBURL          string
	PoolSize       int
	AcquireTimeout time.Duration
	ConnIdleTime   time.Duration

	JWTSecret string
	TokenTTL  time.Duration

	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	OTLPEndpoint    string
}

func Load() Config {
	return Config{
		Env:  getEnv("APP_ENV", "dev"),
		Port: getEnvInt("PORT", 8080),

		DBURL:          buildDBURL(),
		PoolSize:       getEnvInt("DB_POOL_SIZE", 20),
		AcquireTimeout: time.Duration(getEnvInt("DB_ACQUIRE_TIMEOUT_MS", 2000)) * time.Millisecond,
		ConnIdleTime:   time.Duration(getEnvInt("DB_CONN_IDLE_SECONDS", 30)) * time.Second,

		JWTSecret: getEnv("JWT_SECRET", "secret-key"),
		TokenTTL:  time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,

		ShutdownTimeout: time.Duration(getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
		AllowedOrigins:  splitCSV(getEnv("ALLOWED_ORIGINS", "*")),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}
}

// buildDBURL prefers a full DATABASE_URL and otherwise composes one from
// the individual DB_* parts.
func buildDBURL() string {
	if url := os.Getenv("DATABASE_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "userhub")
	pass := getEnv("DB_PASSWORD", "userhub")
	name := getEnv("DB_NAME", "userhub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
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
			return fallback
		}

		return num
	}
	return fallback
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}

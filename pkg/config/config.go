// pkg/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	// Token signing. TokenSecret has no default on purpose: startup must
	// fail when it is absent (see cmd/auth-service).
	TokenSecret string
	TokenTTL    time.Duration

	// Password hashing cost (bcrypt).
	BcryptCost int

	// Per-call deadline for storage operations.
	StoreTimeout time.Duration

	// Redis & Postgres
	RedisURL    string
	DatabaseURL string

	// Optional YAML seed file standing in for the ingestion pipeline in dev.
	SeedFile string

	// Allowed CORS origins for the dashboard frontend (comma separated).
	CORSOrigins string
}

func Load() Config {
	_ = godotenv.Load()
	cfg := Config{
		Env:          env("ENV", "dev"),
		HTTPAddr:     env("HTTP_ADDR", ":8080"),
		TokenSecret:  env("TOKEN_SECRET", ""),
		TokenTTL:     envDur("TOKEN_TTL_HOURS", 24*7) * time.Hour,
		BcryptCost:   envInt("BCRYPT_COST", 12),
		StoreTimeout: envDur("STORE_TIMEOUT_SEC", 5) * time.Second,
		RedisURL:     env("REDIS_URL", ""),
		DatabaseURL:  env("DATABASE_URL", ""),
		SeedFile:     env("SEED_FILE", ""),
		CORSOrigins:  env("CORS_ORIGINS", "http://localhost:3000"),
	}
	if cfg.DatabaseURL == "" {
		log.Println("[WARN] DATABASE_URL not set, using in-memory stores for dev")
	}
	return cfg
}

func env(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
func envInt(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}
func envDur(k string, def int) time.Duration {
	if v := os.Getenv(k); v != "" {
		i, _ := strconv.Atoi(v)
		return time.Duration(i)
	}
	return time.Duration(def)
}

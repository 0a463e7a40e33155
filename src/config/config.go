package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string

	// DemoMode runs against the in-memory store with fake feed connectors
	// and blocks non-admin mutations at the HTTP layer.
	DemoMode bool

	// EnforceBalance rejects expenses that exceed the owner's balance.
	EnforceBalance bool

	AdminEmail    string
	AdminPassword string

	PlaidClientID string
	PlaidSecret   string
	PlaidEnv      string

	CardAPIBaseURL  string
	CardAPIClientID string
	CardAPISecret   string
}

func Load() Config {
	// Load .env file if present
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		DemoMode:       getEnv("DEMO_MODE", "false") == "true",
		EnforceBalance: getEnv("ENFORCE_BALANCE", "false") == "true",
		AdminEmail:     getEnv("ADMIN_EMAIL", "admin"),
		AdminPassword:  getEnv("ADMIN_PASSWORD", "admin"),

		PlaidClientID: getEnv("PLAID_CLIENT_ID", ""),
		PlaidSecret:   getEnv("PLAID_SECRET", ""),
		PlaidEnv:      getEnv("PLAID_ENV", "sandbox"),

		CardAPIBaseURL:  getEnv("CARD_API_BASE_URL", ""),
		CardAPIClientID: getEnv("CARD_API_CLIENT_ID", ""),
		CardAPISecret:   getEnv("CARD_API_SECRET", ""),
	}

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET is required")
	}
	if cfg.DatabaseURL == "" && !cfg.DemoMode {
		log.Fatal("DATABASE_URL is required")
	}

	return cfg
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

package config

import (
	"log"
	"os"
	"strings"
)

// Config holds application configuration.
type Config struct {
	Port            string
	Env             string
	CORSAllowOrigin []string
	DBDriver        string
	DBPath          string
	DatabaseURL     string
	PacketDir       string
	AdminToken      string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	// Best-effort load of local env files for dev convenience.
	loadEnvFiles(".env", "cmd/.env")

	env := normalizeEnv(getEnv("ENV", "dev"))
	adminToken := os.Getenv("ADMIN_TOKEN")
	if env == "production" && adminToken == "" {
		log.Printf("ADMIN_TOKEN is required in production")
	}

	driver := normalizeDriver(getEnv("DB_DRIVER", "sqlite"))
	dbURL := os.Getenv("DATABASE_URL")
	if driver == "postgres" && dbURL == "" {
		log.Printf("DATABASE_URL is required when DB_DRIVER=postgres")
	}

	return Config{
		Port:            getEnv("PORT", "8080"),
		Env:             env,
		CORSAllowOrigin: splitAndTrim(getEnv("CORS_ALLOW_ORIGINS", "http://localhost:5173")),
		DBDriver:        driver,
		DBPath:          getEnv("DB_PATH", "./data/review.db"),
		DatabaseURL:     dbURL,
		PacketDir:       getEnv("PACKET_DIR", "./data/packets"),
		AdminToken:      adminToken,
	}
}

func getEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

func splitAndTrim(raw string) []string {
	parts := strings.Split(raw, ",")
	var out []string
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizeEnv(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "production", "prod":
		return "production"
	case "staging":
		return "staging"
	case "local":
		return "local"
	case "development", "dev":
		return "dev"
	default:
		return "dev"
	}
}

func normalizeDriver(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "postgres", "pg":
		return "postgres"
	case "none", "memory":
		return "none"
	default:
		return "sqlite"
	}
}

package main

// Run database migrations:
//   go run ./cmd/migrate

import (
	"context"
	"log"
	"os"

	"review-backend/internal/shared/config"
	"review-backend/internal/shared/storage/db"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	dsn := cfg.DBPath
	if cfg.DBDriver == "postgres" {
		dsn = cfg.DatabaseURL
	}
	database, err := db.Open(ctx, db.Config{Driver: cfg.DBDriver, DSN: dsn})
	if err != nil {
		log.Printf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := db.RunMigrations(ctx, database, cfg.DBDriver); err != nil {
		log.Printf("failed to run migrations: %v", err)
		os.Exit(1)
	}
}

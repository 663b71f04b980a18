package server

import (
	"context"
	"database/sql"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"review-backend/internal/judgments"
	"review-backend/internal/packets"
	"review-backend/internal/review"
	"review-backend/internal/shared/config"
	"review-backend/internal/shared/server/middleware"
	"review-backend/internal/shared/server/respond"
	"review-backend/internal/shared/storage/db"
	"review-backend/internal/shared/telemetry"
	"review-backend/internal/submissions"
)

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(cfg config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Identity(),
	)

	// Dependencies. The store is capability-checked: environments without
	// a usable database fall back to the in-memory repo.
	storeKind := "memory"
	var sqlDB *sql.DB
	database, err := db.Open(context.Background(), db.Config{
		Driver: cfg.DBDriver,
		DSN:    dsnFor(cfg),
	})
	switch {
	case err == nil:
		if err := db.RunMigrations(context.Background(), database, cfg.DBDriver); err != nil {
			telemetry.Error("db.migrations_failed", map[string]any{"error": err.Error()})
			database.Close()
		} else {
			sqlDB = database
			storeKind = cfg.DBDriver
		}
	case errors.Is(err, db.ErrUnavailable):
		telemetry.Warn("db.unavailable", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
	default:
		telemetry.Error("db.open_failed", map[string]any{"driver": cfg.DBDriver, "error": err.Error()})
	}

	var repo review.Repo
	if sqlDB != nil {
		repo = &review.SQLRepo{DB: sqlDB, Driver: cfg.DBDriver}
	} else {
		repo = review.NewMemoryRepo()
	}

	judgmentSvc := &judgments.Service{Repo: repo}
	judgmentHandler := judgments.NewHandler(judgmentSvc)
	submissionHandler := submissions.NewHandler(repo)
	packetHandler := packets.NewHandler(packets.NewStore(cfg.PacketDir))

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true, "store": storeKind})
	})
	submissionHandler.RegisterRoutes(api)
	judgmentHandler.RegisterRoutes(api)
	packetHandler.RegisterRoutes(api)

	admin := api.Group("", middleware.RequireAdmin(cfg.AdminToken))
	submissionHandler.RegisterAdminRoutes(admin)

	return r
}

func dsnFor(cfg config.Config) string {
	if cfg.DBDriver == "postgres" {
		return cfg.DatabaseURL
	}
	return cfg.DBPath
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

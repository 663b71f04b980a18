package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver
	_ "modernc.org/sqlite"             // register the CGO-free sqlite driver
)

// ErrUnavailable marks environments where no database can be opened (no
// driver configured, or an empty DSN). Callers branch on it and fall back
// to the in-memory repo instead of treating it as a transient failure.
var ErrUnavailable = errUnavailable{}

type errUnavailable struct{}

func (errUnavailable) Error() string { return "database is not available in this environment" }

// Config selects and configures the backing store.
type Config struct {
	// Driver is "sqlite" (embedded, the default deployment) or "postgres".
	Driver string
	// DSN is the sqlite file path or the postgres URL.
	DSN string

	MaxOpenConns int
	MaxIdleConns int
	PingTimeout  time.Duration
}

// Open opens and pings the configured database. It returns ErrUnavailable
// (wrapped) when the environment has no usable store configured, so that
// callers can distinguish "not supported here" from a transient failure.
func Open(ctx context.Context, cfg Config) (*sql.DB, error) {
	driver := strings.ToLower(strings.TrimSpace(cfg.Driver))
	dsn := strings.TrimSpace(cfg.DSN)

	var driverName, dataSource string
	switch driver {
	case "sqlite":
		if dsn == "" {
			return nil, fmt.Errorf("sqlite path is empty: %w", ErrUnavailable)
		}
		driverName = "sqlite"
		dataSource = sqliteDSN(dsn)
	case "postgres":
		if dsn == "" {
			return nil, fmt.Errorf("DATABASE_URL is empty: %w", ErrUnavailable)
		}
		driverName = "pgx"
		dataSource = dsn
	case "", "none":
		return nil, fmt.Errorf("no database driver configured: %w", ErrUnavailable)
	default:
		return nil, fmt.Errorf("unsupported database driver %q: %w", driver, ErrUnavailable)
	}

	database, err := sql.Open(driverName, dataSource)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	applyPoolOptions(database, driver, cfg)

	pingTimeout := cfg.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := database.PingContext(pingCtx); err != nil {
		database.Close()
		return nil, fmt.Errorf("ping %s database: %w", driver, err)
	}
	return database, nil
}

// sqliteDSN turns a plain file path into a DSN with the pragmas the review
// store needs: a busy timeout for the single-writer engine and foreign
// keys for the assessment -> submission invariant.
func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	return "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)"
}

func applyPoolOptions(database *sql.DB, driver string, cfg Config) {
	maxOpen := cfg.MaxOpenConns
	maxIdle := cfg.MaxIdleConns
	if driver == "sqlite" {
		// The embedded engine is a process-local single-writer resource.
		maxOpen = 1
		maxIdle = 1
	}
	if maxOpen <= 0 {
		maxOpen = 10
	}
	if maxIdle <= 0 {
		maxIdle = 5
	}
	database.SetMaxOpenConns(maxOpen)
	database.SetMaxIdleConns(maxIdle)
	database.SetConnMaxLifetime(time.Hour)
}

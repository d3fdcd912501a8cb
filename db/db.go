// Package db provides database connectivity and migration functionality.
// NewPool hands the rest of the application a pgx connection pool; the
// migration helpers apply the SQL files embedded from migrations/ using
// golang-migrate, which talks to PostgreSQL over lib/pq.
package db

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // registers the postgres:// migrate driver (lib/pq based)
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq" // database/sql driver behind migrate's postgres driver

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/config"
	"github.com/user/movielab-go/logging"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// NewPool creates the application connection pool and verifies it with a ping.
func NewPool(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	return NewPoolFromURL(ctx, cfg.URL(), cfg.PoolSize)
}

// NewPoolFromURL is NewPool for callers that already hold a connection string.
func NewPoolFromURL(ctx context.Context, dsn string, maxConns int) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError("error parsing database DSN", err)
	}

	if maxConns > 0 {
		poolConfig.MaxConns = int32(maxConns)
	}
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	createCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(createCtx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError("error creating pgxpool", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, apperror.NewDatabaseError("error connecting to the database", err)
	}

	return pool, nil
}

func newMigrator(dsn string) (*migrate.Migrate, error) {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return nil, apperror.NewMigrationError("failed to open embedded migrations", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dsn)
	if err != nil {
		return nil, apperror.NewMigrationError("failed to create migrator", err)
	}
	return m, nil
}

func closeMigrator(m *migrate.Migrate) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logging.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("Error closing migrator")
	}
}

// RunMigrations applies every pending up migration. Having nothing to apply is not an error.
func RunMigrations(dsn string) error {
	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to run migrations", err)
	}

	version, dirty, err := m.Version()
	if err == nil {
		logging.Info().Uint("version", version).Bool("dirty", dirty).Msg("Database schema is up to date")
	}
	return nil
}

// RollbackMigrations reverts the given number of migrations (at least one).
func RollbackMigrations(dsn string, steps int) error {
	if steps < 1 {
		return apperror.NewBadRequestError(fmt.Sprintf("invalid rollback step count: %d", steps), nil)
	}

	m, err := newMigrator(dsn)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Steps(-steps); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return apperror.NewMigrationError("failed to roll back migrations", err)
	}
	return nil
}

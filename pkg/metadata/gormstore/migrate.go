package gormstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/metadata/gormstore/migrations"
)

const migrationsTable = "schema_migrations"

// RunMigrations applies the embedded PostgreSQL migrations.
// golang-migrate takes an advisory lock, so concurrent instances are safe.
func RunMigrations(ctx context.Context, cfg *PostgresConfig) error {
	logger.Info("Running database migrations", "database", cfg.Database)

	m, closeFn, err := newMigrate(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFn()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("No migrations to apply (database is up to date)")
	case err != nil:
		return fmt.Errorf("migration failed: %w", err)
	default:
		logger.Info("Migrations completed successfully")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("failed to get migration version: %w", err)
	}
	logger.Info("Current schema version", "version", version, "dirty", dirty)
	if dirty {
		logger.Warn("Database schema is in dirty state - manual intervention may be required")
	}

	return nil
}

// MigrationVersion returns the applied schema version (0 when none).
func MigrationVersion(ctx context.Context, cfg *PostgresConfig) (uint, bool, error) {
	m, closeFn, err := newMigrate(ctx, cfg)
	if err != nil {
		return 0, false, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return version, dirty, nil
}

func newMigrate(ctx context.Context, cfg *PostgresConfig) (*migrate.Migrate, func(), error) {
	// golang-migrate needs a database/sql handle.
	db, err := sql.Open("pgx", cfg.DSN())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to ping database: %w", err)
	}

	driver, err := migratepg.WithInstance(db, &migratepg.Config{
		MigrationsTable: migrationsTable,
		DatabaseName:    cfg.Database,
	})
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create postgres driver: %w", err)
	}

	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create source driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, func() { _, _ = m.Close() }, nil
}

//go:build integration

package gormstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/metadata/storetest"
)

// startPostgres starts a PostgreSQL container and returns its configuration.
func startPostgres(t *testing.T) PostgresConfig {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("filebank_test"),
		postgres.WithUsername("filebank_test"),
		postgres.WithPassword("filebank_test"),
		testcontainers.WithWaitStrategyAndDeadline(5*time.Minute,
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2),
			wait.ForListeningPort("5432/tcp"),
		),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	return PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "filebank_test",
		User:     "filebank_test",
		Password: "filebank_test",
		SSLMode:  "disable",
	}
}

func TestPostgresConformance(t *testing.T) {
	pg := startPostgres(t)

	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		store, err := New(t.Context(), &Config{Type: DatabaseTypePostgres, Postgres: pg})
		require.NoError(t, err)
		t.Cleanup(func() {
			store.DB().Exec("TRUNCATE files, directories")
			_ = store.Close()
		})
		return store
	})
}

func TestPostgresMigrationsIdempotent(t *testing.T) {
	pg := startPostgres(t)
	ctx := t.Context()

	cfg := &Config{Type: DatabaseTypePostgres, Postgres: pg}
	cfg.ApplyDefaults()

	require.NoError(t, RunMigrations(ctx, &cfg.Postgres))
	require.NoError(t, RunMigrations(ctx, &cfg.Postgres))

	version, dirty, err := MigrationVersion(ctx, &cfg.Postgres)
	require.NoError(t, err)
	require.False(t, dirty)
	require.Equal(t, uint(1), version)
}

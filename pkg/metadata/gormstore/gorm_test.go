package gormstore

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/metadata/storetest"
)

// newTestStore creates an in-memory SQLite store for testing.
func newTestStore(t *testing.T) *GORMStore {
	t.Helper()

	store, err := New(t.Context(), &Config{
		Type:   DatabaseTypeSQLite,
		SQLite: SQLiteConfig{Path: memoryPath},
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func TestConformance(t *testing.T) {
	storetest.RunConformanceSuite(t, func(t *testing.T) metadata.Store {
		return newTestStore(t)
	})
}

func TestConfig(t *testing.T) {
	t.Run("default config uses sqlite under XDG", func(t *testing.T) {
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		cfg := &Config{}
		cfg.ApplyDefaults()

		assert.Equal(t, DatabaseTypeSQLite, cfg.Type)
		assert.Equal(t, filepath.Join("/xdg", "filebank", "metadata.db"), cfg.SQLite.Path)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("postgres defaults", func(t *testing.T) {
		cfg := &Config{Type: DatabaseTypePostgres, Postgres: PostgresConfig{Host: "db", Database: "fb", User: "fb"}}
		cfg.ApplyDefaults()

		assert.Equal(t, 5432, cfg.Postgres.Port)
		assert.Equal(t, "disable", cfg.Postgres.SSLMode)
		assert.Equal(t, 25, cfg.Postgres.MaxOpenConns)
		assert.Equal(t, 5, cfg.Postgres.MaxIdleConns)
		assert.Equal(t, "host=db port=5432 user=fb password= dbname=fb sslmode=disable", cfg.Postgres.DSN())
	})

	t.Run("postgres requires host database and user", func(t *testing.T) {
		cfg := &Config{Type: DatabaseTypePostgres}
		cfg.ApplyDefaults()
		assert.Error(t, cfg.Validate())
	})

	t.Run("unknown type", func(t *testing.T) {
		_, err := New(t.Context(), &Config{Type: "oracle"})
		assert.Error(t, err)
	})
}

func TestFileDatabasePersists(t *testing.T) {
	ctx := t.Context()
	path := filepath.Join(t.TempDir(), "nested", "metadata.db")

	store, err := New(ctx, &Config{SQLite: SQLiteConfig{Path: path}})
	require.NoError(t, err)
	assert.Equal(t, "sqlite", store.Type())
	require.NoError(t, store.Healthcheck(ctx))

	dir := &metadata.Directory{Name: "keep", RefID: "keep"}
	require.NoError(t, store.CreateDirectory(ctx, dir))
	require.NoError(t, store.Close())

	reopened, err := New(ctx, &Config{SQLite: SQLiteConfig{Path: path}})
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.FindDirectory(ctx, "", "keep")
	require.NoError(t, err)
	assert.Equal(t, dir.ID, got.ID)
	assert.Equal(t, dir.Seq, got.Seq)
}

func TestIsUniqueConstraintError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"sqlite", errors.New("constraint failed: UNIQUE constraint failed: files.directory_id, files.name (2067)"), true},
		{"postgres", errors.New(`ERROR: duplicate key value violates unique constraint "idx_files_directory_name"`), true},
		{"gorm translated", gorm.ErrDuplicatedKey, true},
		{"other", errors.New("disk I/O error"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueConstraintError(tt.err))
		})
	}
}

package config

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/marmos91/filebank/pkg/content/fs"
)

func TestOpenMetadataStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name string
		cfg  DatabaseConfig
		want string
	}{
		{"sqlite", DatabaseConfig{Type: DatabaseSQLite}, DatabaseSQLite},
		{"badger", DatabaseConfig{Type: DatabaseBadger}, DatabaseBadger},
	}
	tests[0].cfg.SQLite.Path = filepath.Join(dir, "metadata.db")
	tests[1].cfg.Badger.Path = filepath.Join(dir, "badger")

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := OpenMetadataStore(ctx, tt.cfg)
			if err != nil {
				t.Fatalf("OpenMetadataStore failed: %v", err)
			}
			defer func() { _ = store.Close() }()

			if store.Type() != tt.want {
				t.Errorf("Type() = %q, want %q", store.Type(), tt.want)
			}
			if err := store.Healthcheck(ctx); err != nil {
				t.Errorf("Healthcheck failed: %v", err)
			}
		})
	}

	if _, err := OpenMetadataStore(ctx, DatabaseConfig{Type: "mysql"}); err == nil {
		t.Error("Expected error for unknown database type")
	}
}

func TestOpenBackend(t *testing.T) {
	ctx := context.Background()

	cfg := StorageConfig{Type: StorageFilesystem}
	cfg.Filesystem.RootDir = filepath.Join(t.TempDir(), "data")

	backend, err := OpenBackend(ctx, cfg, nil)
	if err != nil {
		t.Fatalf("OpenBackend failed: %v", err)
	}
	defer func() { _ = backend.Close() }()

	if backend.Type() != fs.BackendType {
		t.Errorf("Type() = %q, want %q", backend.Type(), fs.BackendType)
	}

	if _, err := OpenBackend(ctx, StorageConfig{Type: "ftp"}, nil); err == nil {
		t.Error("Expected error for unknown storage type")
	}
}

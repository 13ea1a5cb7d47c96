package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/marmos91/filebank/internal/bytesize"
)

// yamlSafePath converts a filesystem path to a YAML-safe representation.
// On Windows, backslashes in double-quoted YAML strings are escape sequences.
func yamlSafePath(p string) string {
	return filepath.ToSlash(p)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestLoad_PartialConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := writeConfig(t, `
logging:
  level: "debug"

server:
  port: 9000
  max_upload_size: 10Mi
  write_timeout: 2m

storage:
  type: filesystem
  filesystem:
    root_dir: "`+yamlSafePath(tmpDir)+`/data"

database:
  type: badger
  badger:
    path: "`+yamlSafePath(tmpDir)+`/meta"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Logging.Level != "DEBUG" {
		t.Errorf("Expected normalized level DEBUG, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Expected default format 'text', got %q", cfg.Logging.Format)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("Expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Server.MaxUploadSize != 10*bytesize.MiB {
		t.Errorf("Expected max upload 10Mi, got %v", cfg.Server.MaxUploadSize)
	}
	if cfg.Server.WriteTimeout != 2*time.Minute {
		t.Errorf("Expected write timeout 2m, got %v", cfg.Server.WriteTimeout)
	}
	if cfg.ShutdownTimeout != 30*time.Second {
		t.Errorf("Expected default shutdown_timeout 30s, got %v", cfg.ShutdownTimeout)
	}
	if cfg.Database.Type != DatabaseBadger || cfg.Database.Badger.Path != yamlSafePath(tmpDir)+"/meta" {
		t.Errorf("Unexpected database config: %+v", cfg.Database)
	}
	if cfg.Auth.ReadScope != DefaultReadScope {
		t.Errorf("Expected default read scope, got %q", cfg.Auth.ReadScope)
	}
}

func TestLoad_NoConfigFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err != nil {
		t.Fatalf("Expected no error when loading default config, got: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default API port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Storage.Type != StorageFilesystem {
		t.Errorf("Expected filesystem storage, got %q", cfg.Storage.Type)
	}
	if cfg.Database.Type != DatabaseSQLite {
		t.Errorf("Expected sqlite database, got %q", cfg.Database.Type)
	}
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("FILEBANK_STORAGE_TYPE", "s3")
	t.Setenv("FILEBANK_STORAGE_S3_BUCKET", "archive")
	t.Setenv("FILEBANK_STORAGE_S3_FORCE_PATH_STYLE", "true")
	t.Setenv("FILEBANK_AUTH_ENABLED", "true")
	t.Setenv("FILEBANK_AUTH_JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("FILEBANK_SHUTDOWN_TIMEOUT", "5s")

	cfg, err := Load(writeConfig(t, "logging:\n  level: INFO\n"))
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Storage.Type != StorageS3 || cfg.Storage.S3.Bucket != "archive" || !cfg.Storage.S3.ForcePathStyle {
		t.Errorf("Storage overrides not applied: %+v", cfg.Storage)
	}
	if !cfg.Auth.Enabled || cfg.Auth.JWTSecret != "0123456789abcdef0123456789abcdef" {
		t.Errorf("Auth overrides not applied: %+v", cfg.Auth)
	}
	if cfg.ShutdownTimeout != 5*time.Second {
		t.Errorf("Expected shutdown timeout 5s, got %v", cfg.ShutdownTimeout)
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	if _, err := Load(writeConfig(t, "logging: [unclosed")); err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
}

func TestLoad_ValidationFailure(t *testing.T) {
	if _, err := Load(writeConfig(t, "storage:\n  type: ftp\n")); err == nil {
		t.Fatal("Expected validation error for unknown storage type")
	}
}

func TestMustLoad_MissingFile(t *testing.T) {
	_, err := MustLoad(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("Expected error for missing config file")
	}
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := GetDefaultConfig()
	cfg.Server.MaxUploadSize = 256 * bytesize.MiB
	cfg.Schemas.Required = true

	if err := SaveConfig(cfg, path); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Saved config missing: %v", err)
	}
	if info.Mode().Perm()&0077 != 0 {
		t.Errorf("Expected owner-only permissions, got %v", info.Mode().Perm())
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to reload saved config: %v", err)
	}
	if loaded.Server.MaxUploadSize != 256*bytesize.MiB {
		t.Errorf("Expected 256Mi, got %v", loaded.Server.MaxUploadSize)
	}
	if !loaded.Schemas.Required {
		t.Error("Expected schemas.required to survive the round trip")
	}
}

func TestGetDefaultConfigPath_UsesXDG(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	want := filepath.Join(dir, "filebank", "config.yaml")
	if got := GetDefaultConfigPath(); got != want {
		t.Errorf("GetDefaultConfigPath() = %q, want %q", got, want)
	}
	if DefaultConfigExists() {
		t.Error("Expected no default config in a fresh directory")
	}
}

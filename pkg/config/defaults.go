package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/marmos91/filebank/internal/bytesize"
)

// Default scope sets checked by the API.
const (
	DefaultReadScope   = "filebank:read"
	DefaultWriteScope  = "filebank:write"
	DefaultDeleteScope = "filebank:delete"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
// Zero values are replaced; explicit values are preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyTelemetryDefaults(&cfg.Telemetry)
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	applyServerDefaults(&cfg.Server)
	applyMetricsDefaults(&cfg.Metrics)
	applyDatabaseDefaults(&cfg.Database)
	applyStorageDefaults(&cfg.Storage)
	applyAuthDefaults(&cfg.Auth)
}

func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

func applyTelemetryDefaults(cfg *TelemetryConfig) {
	if cfg.Endpoint == "" {
		cfg.Endpoint = "localhost:4317"
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = 1.0
	}

	if cfg.Profiling.Endpoint == "" {
		cfg.Profiling.Endpoint = "http://localhost:4040"
	}
	if len(cfg.Profiling.ProfileTypes) == 0 {
		cfg.Profiling.ProfileTypes = []string{"cpu", "alloc_space", "inuse_space", "goroutines"}
	}
}

func applyServerDefaults(cfg *ServerConfig) {
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	// Uploads and downloads stream whole files.
	if cfg.WriteTimeout == 0 {
		cfg.WriteTimeout = 5 * time.Minute
	}
	if cfg.IdleTimeout == 0 {
		cfg.IdleTimeout = 60 * time.Second
	}
	if cfg.MaxUploadSize == 0 {
		cfg.MaxUploadSize = bytesize.GiB
	}
}

func applyMetricsDefaults(cfg *MetricsConfig) {
	if cfg.Port == 0 {
		cfg.Port = 9090
	}
}

func applyDatabaseDefaults(cfg *DatabaseConfig) {
	if cfg.Type == "" {
		cfg.Type = DatabaseSQLite
	}

	switch cfg.Type {
	case DatabaseSQLite, DatabasePostgres:
		g := cfg.GORM()
		g.ApplyDefaults()
		cfg.SQLite, cfg.Postgres = g.SQLite, g.Postgres
	case DatabaseBadger:
		if cfg.Badger.Path == "" && !cfg.Badger.InMemory {
			cfg.Badger.Path = filepath.Join(getConfigDir(), "metadata.badger")
		}
	}
}

func applyStorageDefaults(cfg *StorageConfig) {
	if cfg.Type == "" {
		cfg.Type = StorageFilesystem
	}
	if cfg.Filesystem.RootDir == "" {
		cfg.Filesystem.RootDir = filepath.Join(os.TempDir(), "filebank")
	}
	if cfg.S3.Endpoint == "" {
		cfg.S3.Endpoint = "http://localhost:4566"
	}
	if cfg.S3.Region == "" {
		cfg.S3.Region = "eu-west-1"
	}
	if cfg.S3.Bucket == "" {
		cfg.S3.Bucket = "filebank"
	}
}

func applyAuthDefaults(cfg *AuthConfig) {
	if cfg.ReadScope == "" {
		cfg.ReadScope = DefaultReadScope
	}
	if cfg.WriteScope == "" {
		cfg.WriteScope = DefaultWriteScope
	}
	if cfg.DeleteScope == "" {
		cfg.DeleteScope = DefaultDeleteScope
	}
	if cfg.TokenTTL == 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
}

// GetDefaultConfig returns a Config with all default values applied.
// Authorization is off until a secret is configured.
func GetDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

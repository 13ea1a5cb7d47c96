// Package config loads the filebank server configuration from a YAML file,
// FILEBANK_* environment variables and built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/marmos91/filebank/internal/bytesize"
	"github.com/marmos91/filebank/pkg/metadata/badgerstore"
	"github.com/marmos91/filebank/pkg/metadata/gormstore"
)

// EnvPrefix prefixes every environment override, e.g.
// FILEBANK_STORAGE_S3_BUCKET=archive.
const EnvPrefix = "FILEBANK"

// Config represents the filebank configuration.
//
// Configuration sources (in order of precedence):
//  1. Environment variables (FILEBANK_*)
//  2. Configuration file (YAML)
//  3. Default values
type Config struct {
	// Logging controls log output behavior
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`

	// Telemetry controls OpenTelemetry tracing and Pyroscope profiling
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`

	// ShutdownTimeout is the maximum time to wait for graceful shutdown
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"required,gt=0" yaml:"shutdown_timeout"`

	// Server configures the HTTP API
	Server ServerConfig `mapstructure:"server" yaml:"server"`

	// Metrics contains Prometheus metrics server configuration
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`

	// Database selects and configures the metadata store
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Storage selects and configures the content backend
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`

	// Schemas configures named metadata schemas
	Schemas SchemasConfig `mapstructure:"schemas" yaml:"schemas"`

	// Auth configures bearer token authorization
	Auth AuthConfig `mapstructure:"auth" yaml:"auth"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	// Level is the minimum log level to output.
	// Valid values: DEBUG, INFO, WARN, ERROR (case-insensitive, normalized to uppercase)
	Level string `mapstructure:"level" validate:"required,oneof=DEBUG INFO WARN ERROR debug info warn error" yaml:"level"`

	// Format specifies the log output format: text or json
	Format string `mapstructure:"format" validate:"required,oneof=text json" yaml:"format"`

	// Output is stdout, stderr, or a file path
	Output string `mapstructure:"output" validate:"required" yaml:"output"`
}

// TelemetryConfig controls OpenTelemetry distributed tracing.
type TelemetryConfig struct {
	// Enabled controls whether distributed tracing is enabled
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the OTLP collector endpoint (host:port)
	// Default: "localhost:4317"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Insecure disables TLS towards the collector
	Insecure bool `mapstructure:"insecure" yaml:"insecure"`

	// SampleRate is the trace sampling rate (0.0 to 1.0). Default: 1.0
	SampleRate float64 `mapstructure:"sample_rate" validate:"omitempty,gte=0,lte=1" yaml:"sample_rate"`

	// Profiling contains Pyroscope continuous profiling configuration
	Profiling ProfilingConfig `mapstructure:"profiling" yaml:"profiling"`
}

// ProfilingConfig controls Pyroscope continuous profiling.
type ProfilingConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Endpoint is the Pyroscope server URL. Default: "http://localhost:4040"
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// ProfileTypes lists the profiles to collect (cpu, alloc_space, inuse_space, goroutines, ...)
	ProfileTypes []string `mapstructure:"profile_types" yaml:"profile_types"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	// Port is the API port. Default: 8080
	Port int `mapstructure:"port" validate:"min=1,max=65535" yaml:"port"`

	ReadTimeout  time.Duration `mapstructure:"read_timeout" validate:"gte=0" yaml:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" validate:"gte=0" yaml:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout" validate:"gte=0" yaml:"idle_timeout"`

	// MaxUploadSize caps the request body of an upload. Default: 1Gi
	MaxUploadSize bytesize.ByteSize `mapstructure:"max_upload_size" yaml:"max_upload_size"`
}

// MetricsConfig configures the Prometheus metrics HTTP server.
// When Enabled is false, no metrics are collected.
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// Port is the HTTP port for the metrics endpoint. Default: 9090
	Port int `mapstructure:"port" validate:"omitempty,min=1,max=65535" yaml:"port"`
}

// Database types.
const (
	DatabaseSQLite   = string(gormstore.DatabaseTypeSQLite)
	DatabasePostgres = string(gormstore.DatabaseTypePostgres)
	DatabaseBadger   = badgerstore.StoreType
)

// DatabaseConfig selects the metadata store.
type DatabaseConfig struct {
	// Type is sqlite, postgres or badger
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres badger" yaml:"type"`

	SQLite   gormstore.SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite"`
	Postgres gormstore.PostgresConfig `mapstructure:"postgres" yaml:"postgres"`
	Badger   badgerstore.Config       `mapstructure:"badger" yaml:"badger"`
}

// GORM returns the relational store configuration for sqlite and postgres.
func (d *DatabaseConfig) GORM() *gormstore.Config {
	return &gormstore.Config{
		Type:     gormstore.DatabaseType(d.Type),
		SQLite:   d.SQLite,
		Postgres: d.Postgres,
	}
}

// Storage types.
const (
	StorageFilesystem = "filesystem"
	StorageS3         = "s3"
)

// StorageConfig selects the content backend.
type StorageConfig struct {
	// Type is filesystem or s3
	Type string `mapstructure:"type" validate:"required,oneof=filesystem s3" yaml:"type"`

	Filesystem FilesystemConfig `mapstructure:"filesystem" yaml:"filesystem"`
	S3         S3Config         `mapstructure:"s3" yaml:"s3"`
}

// FilesystemConfig configures the disk backend.
type FilesystemConfig struct {
	// RootDir mirrors the virtual tree. Default: /tmp/filebank
	RootDir string `mapstructure:"root_dir" yaml:"root_dir"`
}

// S3Config configures the S3 backend.
type S3Config struct {
	// Endpoint of an S3-compatible service. Default: http://localhost:4566
	Endpoint string `mapstructure:"endpoint" yaml:"endpoint"`

	// Region defaults to eu-west-1
	Region string `mapstructure:"region" yaml:"region"`

	// Bucket defaults to filebank
	Bucket string `mapstructure:"bucket" yaml:"bucket"`

	AccessKeyID     string `mapstructure:"access_key_id" yaml:"access_key_id,omitempty"`
	SecretAccessKey string `mapstructure:"secret_access_key" yaml:"secret_access_key,omitempty"`

	// KeyPrefix is prepended to every object key
	KeyPrefix string `mapstructure:"key_prefix" yaml:"key_prefix,omitempty"`

	// ForcePathStyle is required by LocalStack and MinIO
	ForcePathStyle bool `mapstructure:"force_path_style" yaml:"force_path_style"`
}

// SchemasConfig configures named metadata schemas.
type SchemasConfig struct {
	// Dir holds directory/*.json and file/*.json. Empty disables named schemas.
	Dir string `mapstructure:"dir" yaml:"dir"`

	// Required rejects create and metadata updates that name no schema
	Required bool `mapstructure:"required" yaml:"required"`

	// Watch reloads schemas when files under Dir change
	Watch bool `mapstructure:"watch" yaml:"watch"`
}

// AuthConfig configures HS256 bearer token authorization.
type AuthConfig struct {
	// Enabled toggles token checks on every /api route
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`

	// JWTSecret signs and verifies tokens. Override with FILEBANK_AUTH_JWT_SECRET.
	JWTSecret string `mapstructure:"jwt_secret" yaml:"jwt_secret,omitempty"`

	// Issuer, when set, is required in the iss claim and used by `filebank token`
	Issuer string `mapstructure:"issuer" yaml:"issuer,omitempty"`

	// Scope sets are comma-separated; a token needs any one of them.
	ReadScope   string `mapstructure:"read_scope" yaml:"read_scope"`
	WriteScope  string `mapstructure:"write_scope" yaml:"write_scope"`
	DeleteScope string `mapstructure:"delete_scope" yaml:"delete_scope"`

	// TokenTTL is the lifetime of tokens issued by `filebank token`. Default: 24h
	TokenTTL time.Duration `mapstructure:"token_ttl" yaml:"token_ttl"`
}

// Load loads configuration from file, environment, and defaults.
//
// A missing config file is not an error: defaults and environment
// overrides still apply. An empty configPath searches the default location.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setupViper(v, configPath)

	// Seed viper with every default so AutomaticEnv can override any key,
	// including keys absent from the file.
	if err := seedDefaults(v); err != nil {
		return nil, err
	}

	if _, err := mergeConfigFile(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(configDecodeHooks())); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// MustLoad loads configuration and explains how to create it when the file
// is missing.
func MustLoad(configPath string) (*Config, error) {
	if configPath == "" {
		if !DefaultConfigExists() {
			return nil, fmt.Errorf("no configuration file found at default location: %s\n\n"+
				"Please initialize a configuration file first:\n"+
				"  filebank init\n\n"+
				"Or specify a custom config file:\n"+
				"  filebank <command> --config /path/to/config.yaml",
				GetDefaultConfigPath())
		}
		configPath = GetDefaultConfigPath()
	} else if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("configuration file not found: %s\n\n"+
			"Please create the configuration file:\n"+
			"  filebank init --config %s",
			configPath, configPath)
	}

	cfg, err := Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// SaveConfig writes cfg as YAML. The file is created with mode 0600 since it
// may hold secrets.
func SaveConfig(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// envOnlyKeys are omitted from the seeded defaults when empty, so they must
// be bound explicitly for environment overrides to reach them.
var envOnlyKeys = []string{
	"auth.jwt_secret",
	"auth.issuer",
	"storage.s3.access_key_id",
	"storage.s3.secret_access_key",
	"storage.s3.key_prefix",
	"database.postgres.password",
	"database.postgres.sslrootcert",
	"database.badger.block_cache_size_mb",
	"database.badger.index_cache_size_mb",
}

func setupViper(v *viper.Viper, configPath string) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range envOnlyKeys {
		_ = v.BindEnv(key)
	}
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(getConfigDir())
		v.SetConfigName("config")
	}
}

func seedDefaults(v *viper.Viper) error {
	data, err := yaml.Marshal(GetDefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal defaults: %w", err)
	}
	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to load defaults: %w", err)
	}
	return nil
}

// mergeConfigFile merges the config file over the defaults. It reports
// whether a file was found.
func mergeConfigFile(v *viper.Viper) (bool, error) {
	if err := v.MergeInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || os.IsNotExist(err) || errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("failed to read config file: %w", err)
	}
	return true, nil
}

func configDecodeHooks() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		byteSizeDecodeHook(),
		durationDecodeHook(),
	)
}

// byteSizeDecodeHook accepts "512Mi", "1GB" or plain numbers.
func byteSizeDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(bytesize.ByteSize(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return bytesize.Parse(v)
		case int:
			return bytesize.ByteSize(v), nil
		case int64:
			return bytesize.ByteSize(v), nil
		case uint64:
			return bytesize.ByteSize(v), nil
		case float64:
			return bytesize.ByteSize(v), nil
		default:
			return data, nil
		}
	}
}

// durationDecodeHook accepts "30s", "5m" or raw nanoseconds.
func durationDecodeHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case string:
			return time.ParseDuration(v)
		case int:
			return time.Duration(v), nil
		case int64:
			return time.Duration(v), nil
		case float64:
			return time.Duration(v), nil
		default:
			return data, nil
		}
	}
}

// getConfigDir returns $XDG_CONFIG_HOME/filebank, ~/.config/filebank, or "."
// when no home directory can be determined.
func getConfigDir() string {
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "filebank")
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".config", "filebank")
}

// GetDefaultConfigPath returns the default configuration file path.
func GetDefaultConfigPath() string {
	return filepath.Join(getConfigDir(), "config.yaml")
}

// DefaultConfigExists checks if a config file exists at the default location.
func DefaultConfigExists() bool {
	_, err := os.Stat(GetDefaultConfigPath())
	return err == nil
}

// GetConfigDir returns the configuration directory path.
func GetConfigDir() string {
	return getConfigDir()
}

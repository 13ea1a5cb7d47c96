package config

import (
	"reflect"
	"strings"
	"testing"
)

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(GetDefaultConfig()); err != nil {
		t.Errorf("Expected default config to pass validation, got error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid log level", func(c *Config) { c.Logging.Level = "INVALID" }, "oneof"},
		{"invalid log format", func(c *Config) { c.Logging.Format = "xml" }, "oneof"},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, "max"},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, "min"},
		{"sample rate", func(c *Config) { c.Telemetry.SampleRate = 2 }, "lte"},
		{"zero shutdown timeout", func(c *Config) { c.ShutdownTimeout = 0 }, "required"},
		{"unknown database", func(c *Config) { c.Database.Type = "mysql" }, "oneof"},
		{"unknown storage", func(c *Config) { c.Storage.Type = "ftp" }, "oneof"},
		{"postgres without host", func(c *Config) {
			c.Database.Type = DatabasePostgres
		}, "host"},
		{"badger without path", func(c *Config) {
			c.Database.Type = DatabaseBadger
			c.Database.Badger.Path = ""
		}, "path"},
		{"empty root dir", func(c *Config) { c.Storage.Filesystem.RootDir = "" }, "root_dir"},
		{"s3 half credentials", func(c *Config) {
			c.Storage.Type = StorageS3
			c.Storage.S3.AccessKeyID = "key"
		}, "together"},
		{"short secret", func(c *Config) {
			c.Auth.Enabled = true
			c.Auth.JWTSecret = "short"
		}, "jwt_secret"},
		{"empty scope set", func(c *Config) { c.Auth.DeleteScope = " , " }, "delete_scope"},
		{"metrics port collision", func(c *Config) {
			c.Metrics.Enabled = true
			c.Metrics.Port = c.Server.Port
		}, "collides"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := GetDefaultConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got: %v", tt.wantErr, err)
			}
		})
	}
}

func TestSplitScopes(t *testing.T) {
	tests := map[string][]string{
		"filebank:read":                 {"filebank:read"},
		"filebank:read, filebank:admin": {"filebank:read", "filebank:admin"},
		" , ":                           nil,
		"":                              nil,
	}
	for in, want := range tests {
		if got := SplitScopes(in); !reflect.DeepEqual(got, want) {
			t.Errorf("SplitScopes(%q) = %v, want %v", in, got, want)
		}
	}
}

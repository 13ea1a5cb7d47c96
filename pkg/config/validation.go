package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// minSecretLength is the shortest accepted HS256 secret.
const minSecretLength = 32

var validate = validator.New()

// Validate checks struct tags first, then the rules that depend on more
// than one field.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}
	return validateCustomRules(cfg)
}

func validateCustomRules(cfg *Config) error {
	switch cfg.Database.Type {
	case DatabaseSQLite, DatabasePostgres:
		if err := cfg.Database.GORM().Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	case DatabaseBadger:
		if err := cfg.Database.Badger.Validate(); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}

	switch cfg.Storage.Type {
	case StorageFilesystem:
		if cfg.Storage.Filesystem.RootDir == "" {
			return errors.New("storage.filesystem.root_dir is required")
		}
	case StorageS3:
		if cfg.Storage.S3.Bucket == "" {
			return errors.New("storage.s3.bucket is required")
		}
		if (cfg.Storage.S3.AccessKeyID == "") != (cfg.Storage.S3.SecretAccessKey == "") {
			return errors.New("storage.s3: access_key_id and secret_access_key must be set together")
		}
	}

	if cfg.Auth.Enabled && len(cfg.Auth.JWTSecret) < minSecretLength {
		return fmt.Errorf("auth.jwt_secret must be at least %d characters when auth is enabled", minSecretLength)
	}
	for name, set := range map[string]string{
		"read_scope":   cfg.Auth.ReadScope,
		"write_scope":  cfg.Auth.WriteScope,
		"delete_scope": cfg.Auth.DeleteScope,
	} {
		if len(SplitScopes(set)) == 0 {
			return fmt.Errorf("auth.%s must list at least one scope", name)
		}
	}

	if cfg.Metrics.Enabled && cfg.Metrics.Port == cfg.Server.Port {
		return fmt.Errorf("metrics.port %d collides with server.port", cfg.Metrics.Port)
	}
	return nil
}

// SplitScopes parses a comma-separated scope set.
func SplitScopes(set string) []string {
	var out []string
	for _, s := range strings.Split(set, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// formatValidationError reports the first failing field.
func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) && len(validationErrs) > 0 {
		e := validationErrs[0]
		return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
			e.Namespace(), e.Tag(), e.Value())
	}
	return err
}

package commands

import (
	"context"
	"fmt"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/config"
	"github.com/marmos91/filebank/pkg/metrics"
	"github.com/marmos91/filebank/pkg/validation"
	"github.com/marmos91/filebank/pkg/vfs"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg *config.Config) error {
	loggerCfg := logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: cfg.Logging.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// openService opens the metadata store, the content backend and the schema
// registry named by cfg and assembles them into a vfs.Service. The returned
// closer releases both stores.
func openService(ctx context.Context, cfg *config.Config) (*vfs.Service, *validation.Registry, func(), error) {
	store, err := config.OpenMetadataStore(ctx, cfg.Database)
	if err != nil {
		return nil, nil, nil, err
	}

	backend, err := config.OpenBackend(ctx, cfg.Storage, metrics.NewS3Metrics())
	if err != nil {
		_ = store.Close()
		return nil, nil, nil, err
	}

	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close content backend", logger.KeyError, err)
		}
		if err := store.Close(); err != nil {
			logger.Warn("Failed to close metadata store", logger.KeyError, err)
		}
	}

	registry, err := validation.New(cfg.Schemas.Dir)
	if err != nil {
		closeFn()
		return nil, nil, nil, fmt.Errorf("failed to load schemas: %w", err)
	}

	svc := vfs.NewService(store, backend, registry, vfs.Options{
		SchemaRequired: cfg.Schemas.Required,
		Metrics:        metrics.NewServiceMetrics(),
	})
	return svc, registry, closeFn, nil
}

// getConfigSource returns a description of where the config was loaded from.
func getConfigSource(configFile string) string {
	if configFile != "" {
		return configFile
	}
	if config.DefaultConfigExists() {
		return config.GetDefaultConfigPath()
	}
	return "defaults"
}

package config

import (
	"context"
	"fmt"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/content/fs"
	"github.com/marmos91/filebank/pkg/content/s3"
	"github.com/marmos91/filebank/pkg/metadata"
	"github.com/marmos91/filebank/pkg/metadata/badgerstore"
	"github.com/marmos91/filebank/pkg/metadata/gormstore"
)

// OpenMetadataStore opens the metadata store selected by cfg.Type.
func OpenMetadataStore(ctx context.Context, cfg DatabaseConfig) (metadata.Store, error) {
	switch cfg.Type {
	case DatabaseSQLite, DatabasePostgres:
		store, err := gormstore.New(ctx, cfg.GORM())
		if err != nil {
			return nil, fmt.Errorf("failed to open %s metadata store: %w", cfg.Type, err)
		}
		return store, nil
	case DatabaseBadger:
		store, err := badgerstore.New(ctx, cfg.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to open badger metadata store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unknown database type: %q", cfg.Type)
	}
}

// OpenBackend creates the content backend selected by cfg.Type. metrics may
// be nil and is only used by the S3 backend.
func OpenBackend(ctx context.Context, cfg StorageConfig, metrics s3.Metrics) (content.Backend, error) {
	switch cfg.Type {
	case StorageFilesystem:
		backend, err := fs.NewWithRoot(cfg.Filesystem.RootDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create filesystem backend: %w", err)
		}
		logger.Debug("Content backend ready",
			logger.KeyBackend, fs.BackendType, logger.KeyPath, cfg.Filesystem.RootDir)
		return backend, nil

	case StorageS3:
		backend, err := s3.NewFromConfig(ctx, s3.Config{
			Bucket:          cfg.S3.Bucket,
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			KeyPrefix:       cfg.S3.KeyPrefix,
			ForcePathStyle:  cfg.S3.ForcePathStyle,
			Metrics:         metrics,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create s3 backend: %w", err)
		}
		select {
		case err := <-backend.Initialize(ctx):
			if err != nil {
				_ = backend.Close()
				return nil, fmt.Errorf("failed to initialize s3 bucket: %w", err)
			}
		case <-ctx.Done():
			_ = backend.Close()
			return nil, ctx.Err()
		}
		logger.Debug("Content backend ready",
			logger.KeyBackend, s3.BackendType, logger.KeyBucket, cfg.S3.Bucket, logger.KeyRegion, cfg.S3.Region)
		return backend, nil

	default:
		return nil, fmt.Errorf("unknown storage type: %q", cfg.Type)
	}
}

// Package badgerstore implements metadata.Store on an embedded BadgerDB.
//
// Records are JSON documents under prefixed keys, with secondary index keys
// for (parent, name) lookups, insertion-ordered listings and reference
// rewrites. Every mutation runs in a single Badger transaction, so indexes
// never diverge from their records.
package badgerstore

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/metadata"
)

// StoreType is the identifier reported by Type.
const StoreType = "badger"

// Config configures the BadgerDB store.
type Config struct {
	// Path is the directory holding the Badger files.
	Path string `mapstructure:"path" yaml:"path"`

	// InMemory keeps everything in memory (tests, ephemeral deployments).
	InMemory bool `mapstructure:"in_memory" yaml:"in_memory"`

	// Cache sizes in MB. 0 selects the default (64 / 32).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb" yaml:"block_cache_size_mb,omitempty"`
	IndexCacheSizeMB int64 `mapstructure:"index_cache_size_mb" yaml:"index_cache_size_mb,omitempty"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !c.InMemory && c.Path == "" {
		return fmt.Errorf("badger path is required")
	}
	return nil
}

// Store is a BadgerDB-backed metadata.Store.
type Store struct {
	db     *badgerdb.DB
	closed atomic.Bool
}

var _ metadata.Store = (*Store)(nil)

// New opens (or creates) the Badger database described by cfg.
func New(ctx context.Context, cfg Config) (*Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid badger configuration: %w", err)
	}

	var opts badgerdb.Options
	if cfg.InMemory {
		opts = badgerdb.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badgerdb.DefaultOptions(cfg.Path)
	}

	blockCacheMB := cfg.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	indexCacheMB := cfg.IndexCacheSizeMB
	if indexCacheMB == 0 {
		indexCacheMB = 32
	}

	// Records are small JSON documents; compression is not worth it.
	opts = opts.
		WithLoggingLevel(badgerdb.WARNING).
		WithCompression(options.None).
		WithBlockCacheSize(blockCacheMB << 20).
		WithIndexCacheSize(indexCacheMB << 20)

	db, err := badgerdb.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", cfg.Path, err)
	}

	logger.Debug("Metadata store opened", logger.KeyStore, StoreType, logger.KeyPath, cfg.Path)

	return &Store{db: db}, nil
}

// Type returns "badger".
func (s *Store) Type() string { return StoreType }

// Healthcheck verifies a read transaction can be started.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	if err := s.db.View(func(*badgerdb.Txn) error { return nil }); err != nil {
		return fmt.Errorf("healthcheck failed: %w", err)
	}
	return nil
}

// Close closes the database. Subsequent calls return ErrStoreClosed.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return metadata.ErrStoreClosed
	}
	return s.db.Close()
}

func (s *Store) check(ctx context.Context) error {
	if s.closed.Load() {
		return metadata.ErrStoreClosed
	}
	return ctx.Err()
}

// view runs fn in a read-only transaction after the closed/context checks.
func (s *Store) view(ctx context.Context, fn func(*badgerdb.Txn) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	return s.db.View(fn)
}

// update runs fn in a read-write transaction after the closed/context checks.
// A write conflict with a concurrent transaction surfaces as ErrDuplicate.
func (s *Store) update(ctx context.Context, fn func(*badgerdb.Txn) error) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	err := s.db.Update(fn)
	if errors.Is(err, badgerdb.ErrConflict) {
		return metadata.ErrDuplicate
	}
	return err
}

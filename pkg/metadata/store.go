// Package metadata defines the hierarchy and metadata model of the virtual
// tree and the Store contract implemented by the persistence backends.
//
// Implementations:
//   - gormstore: SQLite (default) or PostgreSQL through GORM
//   - badgerstore: embedded BadgerDB key-value store
//
// A parent or directory ID of "" addresses the root scope.
package metadata

import (
	"context"
	"sync/atomic"
	"time"
)

// Store is the metadata persistence contract.
//
// Create methods assign an ID when empty and a creation sequence used to keep
// listings in insertion order. (parent, name) uniqueness violations return
// ErrDuplicate; missing entities return ErrNotFound.
type Store interface {
	// Directories

	CreateDirectory(ctx context.Context, dir *Directory) error
	GetDirectory(ctx context.Context, id string) (*Directory, error)
	FindDirectory(ctx context.Context, parentID, name string) (*Directory, error)
	ListDirectories(ctx context.Context, parentID string) ([]*Directory, error)
	UpdateDirectory(ctx context.Context, dir *Directory) error
	DeleteDirectory(ctx context.Context, id string) error

	// Files

	CreateFile(ctx context.Context, file *File) error
	GetFile(ctx context.Context, id string) (*File, error)
	FindFile(ctx context.Context, directoryID, name string) (*File, error)
	ListFiles(ctx context.Context, directoryID string) ([]*File, error)
	UpdateFile(ctx context.Context, file *File) error
	DeleteFile(ctx context.Context, id string) error

	// Reference rewrites after a content move. They return the number of
	// records updated (0 is not an error).

	UpdateDirectoryRef(ctx context.Context, oldRef, newRef string) (int, error)
	UpdateFileRef(ctx context.Context, oldRef, newRef string) (int, error)

	// Type returns the store identifier ("sqlite", "postgres", "badger").
	Type() string

	Healthcheck(ctx context.Context) error
	Close() error
}

var lastSeq atomic.Int64

// NextSeq returns a strictly increasing creation sequence number. It follows
// wall-clock nanoseconds so that sequences keep growing across restarts.
func NextSeq() int64 {
	for {
		now := time.Now().UnixNano()
		last := lastSeq.Load()
		next := max(now, last+1)
		if lastSeq.CompareAndSwap(last, next) {
			return next
		}
	}
}

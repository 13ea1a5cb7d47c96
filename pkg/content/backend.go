// Package content defines the content backend contract.
//
// A Backend stores the bytes of files and the markers of directories under a
// backend-native reference (RefID). Two implementations exist:
//
//   - fs: the virtual tree mirrored 1:1 as real directories and files under
//     a root directory. RefID is the slash-separated path relative to the root.
//   - s3: a flat key space in a bucket. Directories are zero-byte keys ending
//     in "/", files are keys without a trailing slash.
//
// The two implementations deliberately keep separate move algorithms: a disk
// rename relocates a whole tree as one unit while the object store has to copy
// every key and delete the originals afterwards.
package content

import (
	"context"
	"io"
)

// ItemType distinguishes directories from files.
type ItemType string

const (
	// TypeDirectory is a directory (disk directory or "/"-terminated key).
	TypeDirectory ItemType = "directory"

	// TypeFile is a regular file (disk file or plain object key).
	TypeFile ItemType = "file"
)

// Item is the backend view of a node: where it lives and what it is.
type Item struct {
	// RefID is the backend-native address of the item.
	RefID string `json:"refId"`

	// Name is the display name (last path component).
	Name string `json:"name"`

	// Type is directory or file.
	Type ItemType `json:"type"`
}

// Change pairs the descriptor of an item before and after a directory move.
type Change struct {
	Old Item `json:"old"`
	New Item `json:"new"`
}

// MoveDirectoryResult is returned by MoveDirectory.
type MoveDirectoryResult struct {
	// Directory is the new descriptor of the moved directory itself.
	Directory Item `json:"directory"`

	// Items lists every descendant of the moved directory with its old and
	// new reference, so that the caller can update stored references.
	Items []Change `json:"items"`
}

// Backend is the content storage contract shared by all implementations.
//
// All methods are safe for concurrent use. A destination Item passed to the
// move methods may carry an empty RefID, meaning the destination is not
// materialized yet: its Name is then used to derive the target location at
// the backend root.
type Backend interface {
	// Type returns the backend identifier ("filesystem" or "s3").
	Type() string

	// Mkdir creates directory name under the directory addressed by parentRef
	// ("" for the root) and returns its descriptor.
	Mkdir(ctx context.Context, parentRef, name string) (Item, error)

	// Rmdir removes the directory addressed by ref together with everything
	// stored under it.
	Rmdir(ctx context.Context, ref string) error

	// CreateFile stores the content of r as file name under dirRef
	// ("" for the root) and returns its descriptor.
	CreateFile(ctx context.Context, dirRef, name string, r io.Reader) (Item, error)

	// GetContent opens the content of the file addressed by ref.
	// The caller must close the returned reader.
	GetContent(ctx context.Context, ref string) (io.ReadCloser, error)

	// RemoveFile deletes the file addressed by ref.
	RemoveFile(ctx context.Context, ref string) error

	// Exists reports whether content is stored at ref.
	Exists(ctx context.Context, ref string) (bool, error)

	// List returns the direct children of the directory addressed by ref
	// ("" for the root) as seen by the backend.
	List(ctx context.Context, ref string) ([]Item, error)

	// MoveFile relocates file into dest and returns the updated descriptor.
	MoveFile(ctx context.Context, file Item, dest Item) (Item, error)

	// MoveDirectory relocates dir into (or onto) dest and returns the new
	// directory descriptor plus old/new descriptors of every descendant.
	MoveDirectory(ctx context.Context, dir Item, dest Item) (*MoveDirectoryResult, error)

	// Healthcheck verifies the backend is reachable and usable.
	Healthcheck(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

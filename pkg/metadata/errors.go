package metadata

import "errors"

// Common metadata store errors.
var (
	// ErrNotFound indicates the requested directory or file does not exist.
	ErrNotFound = errors.New("metadata entry not found")

	// ErrDuplicate indicates a (parent, name) uniqueness violation.
	ErrDuplicate = errors.New("metadata entry already exists")

	// ErrStoreClosed indicates the store was used after Close.
	ErrStoreClosed = errors.New("metadata store is closed")
)

package content

import "errors"

// Content backend errors.
//
// Backends return (or wrap) these sentinels so the service layer can map
// them onto the client-facing error kinds:
//
//	ErrNotFound      -> NotFound (404)
//	ErrAlreadyExists -> Conflict (409)
//	ErrInvalidRef    -> InvalidInput (400)
//	anything else    -> BackendFailure (500)
var (
	// ErrNotFound indicates nothing is stored at the requested reference,
	// or a move destination does not exist.
	ErrNotFound = errors.New("content not found")

	// ErrAlreadyExists indicates the target of a create or move is occupied.
	ErrAlreadyExists = errors.New("content already exists")

	// ErrInvalidRef indicates a reference or name that the backend refuses
	// to address (absolute paths, traversal, empty names).
	ErrInvalidRef = errors.New("invalid content reference")

	// ErrBackendClosed indicates the backend was used after Close.
	ErrBackendClosed = errors.New("content backend is closed")
)

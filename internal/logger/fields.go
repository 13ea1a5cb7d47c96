package logger

import (
	"log/slog"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements for log aggregation and querying.
const (
	// ========================================================================
	// Distributed Tracing
	// ========================================================================
	KeyTraceID = "trace_id" // OpenTelemetry trace ID for request correlation
	KeySpanID  = "span_id"  // OpenTelemetry span ID for operation tracking

	// ========================================================================
	// HTTP Request
	// ========================================================================
	KeyRequestID = "request_id" // chi request ID
	KeyMethod    = "method"     // HTTP method
	KeyStatus    = "status"     // HTTP status code
	KeyClientIP  = "client_ip"  // Client IP address
	KeySubject   = "subject"    // JWT subject of the caller
	KeyScope     = "scope"      // Scope required or granted

	// ========================================================================
	// Virtual Tree
	// ========================================================================
	KeyPath    = "path"     // Virtual path (/a/b/c.txt)
	KeyTarget  = "target"   // Target virtual path of a move
	KeyName    = "name"     // Item name (basename)
	KeyType    = "type"     // Item type: directory, file
	KeyID      = "id"       // Metadata entity identifier
	KeyRefID   = "ref_id"   // Backend-native content reference
	KeyOldRef  = "old_ref"  // Reference before a move
	KeyNewRef  = "new_ref"  // Reference after a move
	KeySchema  = "schema"   // Named metadata schema
	KeyMime    = "mimetype" // Content type of a file
	KeySize    = "size"     // Size in bytes
	KeyCount   = "count"    // Number of items affected
	KeyEntries = "entries"  // Number of listing entries

	// ========================================================================
	// Operation Metadata
	// ========================================================================
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyOperation  = "operation"   // Sub-operation type for complex operations

	// ========================================================================
	// Storage
	// ========================================================================
	KeyBackend    = "backend"        // Content backend type: filesystem, s3
	KeyStore      = "metadata_store" // Metadata store type: sqlite, postgres, badger
	KeyBucket     = "bucket"         // S3 bucket name
	KeyKey        = "key"            // Object key in S3
	KeyRegion     = "region"         // Cloud region
	KeyAttempt    = "attempt"        // Retry attempt number
	KeyMaxRetries = "max_retries"    // Maximum retry attempts
)

// ============================================================================
// Field constructors for type safety
// ============================================================================

// TraceID returns a slog.Attr for OpenTelemetry trace ID
func TraceID(id string) slog.Attr {
	return slog.String(KeyTraceID, id)
}

// SpanID returns a slog.Attr for OpenTelemetry span ID
func SpanID(id string) slog.Attr {
	return slog.String(KeySpanID, id)
}

// RequestID returns a slog.Attr for the HTTP request ID
func RequestID(id string) slog.Attr {
	return slog.String(KeyRequestID, id)
}

// Status returns a slog.Attr for an HTTP status code
func Status(code int) slog.Attr {
	return slog.Int(KeyStatus, code)
}

// Path returns a slog.Attr for a virtual path
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// RefID returns a slog.Attr for a content reference
func RefID(ref string) slog.Attr {
	return slog.String(KeyRefID, ref)
}

// OldRef returns a slog.Attr for the reference before a move
func OldRef(ref string) slog.Attr {
	return slog.String(KeyOldRef, ref)
}

// NewRef returns a slog.Attr for the reference after a move
func NewRef(ref string) slog.Attr {
	return slog.String(KeyNewRef, ref)
}

// Backend returns a slog.Attr for the content backend type
func Backend(t string) slog.Attr {
	return slog.String(KeyBackend, t)
}

// Bucket returns a slog.Attr for an S3 bucket name
func Bucket(name string) slog.Attr {
	return slog.String(KeyBucket, name)
}

// Key returns a slog.Attr for an object key
func Key(k string) slog.Attr {
	return slog.String(KeyKey, k)
}

// DurationMs returns a slog.Attr for duration in milliseconds
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Err returns a slog.Attr for an error
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}

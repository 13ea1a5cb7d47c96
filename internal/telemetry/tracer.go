package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys. HTTP keys follow the OpenTelemetry semantic conventions;
// filesystem keys use the "fs." prefix.
const (
	AttrHTTPMethod = "http.request.method"
	AttrHTTPRoute  = "http.route"
	AttrHTTPStatus = "http.response.status_code"
	AttrClientIP   = "client.address"
	AttrSubject    = "enduser.id"

	AttrOperation = "fs.operation"
	AttrPath      = "fs.path"
	AttrTarget    = "fs.target"
	AttrItemType  = "fs.type"
	AttrItemID    = "fs.id"
	AttrSchema    = "fs.schema"
	AttrMimeType  = "fs.mimetype"
	AttrCount     = "fs.count"

	AttrRefID     = "content.ref_id"
	AttrBackend   = "content.backend"
	AttrStoreType = "store.type"
	AttrBucket    = "storage.bucket"
	AttrKey       = "storage.key"
)

// Span names.
const (
	SpanHTTPRequest = "http.request"

	SpanList     = "fs.list"
	SpanOpen     = "fs.open"
	SpanMkdir    = "fs.mkdir"
	SpanUpload   = "fs.upload"
	SpanMove     = "fs.move"
	SpanDelete   = "fs.delete"
	SpanMetadata = "fs.update_metadata"
	SpanCheck    = "fs.check"
)

// HTTPMethod returns an attribute for the request method.
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPRoute returns an attribute for the matched route pattern.
func HTTPRoute(route string) attribute.KeyValue {
	return attribute.String(AttrHTTPRoute, route)
}

// HTTPStatus returns an attribute for the response status code.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// ClientIP returns an attribute for the client address.
func ClientIP(ip string) attribute.KeyValue {
	return attribute.String(AttrClientIP, ip)
}

// Subject returns an attribute for the authenticated token subject.
func Subject(sub string) attribute.KeyValue {
	return attribute.String(AttrSubject, sub)
}

// Path returns an attribute for a virtual path.
func Path(p string) attribute.KeyValue {
	return attribute.String(AttrPath, p)
}

// Target returns an attribute for the destination path of a move.
func Target(p string) attribute.KeyValue {
	return attribute.String(AttrTarget, p)
}

// ItemType returns an attribute for directory or file.
func ItemType(t string) attribute.KeyValue {
	return attribute.String(AttrItemType, t)
}

// ItemID returns an attribute for a metadata entity ID.
func ItemID(id string) attribute.KeyValue {
	return attribute.String(AttrItemID, id)
}

// Schema returns an attribute for a named metadata schema.
func Schema(name string) attribute.KeyValue {
	return attribute.String(AttrSchema, name)
}

// MimeType returns an attribute for a file content type.
func MimeType(m string) attribute.KeyValue {
	return attribute.String(AttrMimeType, m)
}

// Count returns an attribute for the number of items affected.
func Count(n int) attribute.KeyValue {
	return attribute.Int(AttrCount, n)
}

// RefID returns an attribute for a backend content reference.
func RefID(ref string) attribute.KeyValue {
	return attribute.String(AttrRefID, ref)
}

// Backend returns an attribute for the content backend type.
func Backend(t string) attribute.KeyValue {
	return attribute.String(AttrBackend, t)
}

// StoreType returns an attribute for the metadata store type.
func StoreType(t string) attribute.KeyValue {
	return attribute.String(AttrStoreType, t)
}

// Bucket returns an attribute for an S3 bucket.
func Bucket(name string) attribute.KeyValue {
	return attribute.String(AttrBucket, name)
}

// StorageKey returns an attribute for an object key.
func StorageKey(key string) attribute.KeyValue {
	return attribute.String(AttrKey, key)
}

// StartFSSpan starts a span for a filesystem operation on path.
func StartFSSpan(ctx context.Context, name, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := make([]attribute.KeyValue, 0, len(attrs)+1)
	all = append(all, Path(path))
	all = append(all, attrs...)
	return StartSpan(ctx, name, trace.WithAttributes(all...))
}

// StartHTTPSpan starts a server span for an API request.
func StartHTTPSpan(ctx context.Context, method, clientIP string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanHTTPRequest,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(HTTPMethod(method), ClientIP(clientIP)))
}

// EndSpan records err on span, if any, and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// Package s3 implements the content backend on Amazon S3 or an S3-compatible
// object store (LocalStack, MinIO).
//
// The virtual tree is mirrored as a flat key space:
//   - directories are zero-byte marker objects whose key ends in "/"
//     ("photos/", "photos/2024/")
//   - files are plain keys without a trailing slash ("photos/2024/a.jpg")
//
// RefIDs are the object keys relative to the optional key prefix.
//
// There is no rename primitive in S3. A directory move copies every key under
// the source prefix to the target prefix and only then removes the originals
// with batch deletes, so a failure part way leaves both copies in the bucket
// but never loses data.
package s3

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/bufpool"
	"github.com/marmos91/filebank/pkg/content"
)

// BackendType is the identifier returned by Type.
const BackendType = "s3"

// maxDeleteBatch is the S3 limit of objects per DeleteObjects request.
const maxDeleteBatch = 1000

// Metrics observes individual S3 API calls.
// A nil Metrics disables instrumentation.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

// Config holds configuration for the S3 backend.
type Config struct {
	// Bucket is the S3 bucket name.
	Bucket string

	// Region is the AWS region (optional, uses SDK default if empty).
	Region string

	// Endpoint is the S3 endpoint URL (optional, for S3-compatible services).
	Endpoint string

	// AccessKeyID and SecretAccessKey enable static credentials.
	// When empty the SDK default credential chain is used.
	AccessKeyID     string
	SecretAccessKey string

	// KeyPrefix is prepended to all object keys (e.g., "filebank/").
	// Should end with "/" if non-empty.
	KeyPrefix string

	// ForcePathStyle forces path-style addressing (required for LocalStack/MinIO).
	ForcePathStyle bool

	// Metrics is an optional S3 operation observer.
	Metrics Metrics
}

// Backend is an S3 implementation of content.Backend.
type Backend struct {
	client    *s3.Client
	bucket    string
	region    string
	keyPrefix string
	metrics   Metrics

	mu     sync.RWMutex
	closed bool
}

// NewClientFromConfig creates an S3 client from configuration parameters.
func NewClientFromConfig(ctx context.Context, cfg Config) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.ForcePathStyle
	})

	return client, nil
}

// New creates an S3 backend with an existing client.
//
// The bucket is not touched until Initialize is called.
func New(client *s3.Client, cfg Config) *Backend {
	prefix := cfg.KeyPrefix
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &Backend{
		client:    client,
		bucket:    cfg.Bucket,
		region:    cfg.Region,
		keyPrefix: prefix,
		metrics:   cfg.Metrics,
	}
}

// NewFromConfig creates an S3 backend, building the client from config.
func NewFromConfig(ctx context.Context, cfg Config) (*Backend, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("bucket name is required")
	}

	client, err := NewClientFromConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return New(client, cfg), nil
}

// Initialize bootstraps the bucket asynchronously: it checks that the bucket
// exists and creates it when missing. The returned channel delivers exactly
// one value (nil on success) and is then closed.
func (b *Backend) Initialize(ctx context.Context) <-chan error {
	done := make(chan error, 1)

	go func() {
		defer close(done)
		done <- b.ensureBucket(ctx)
	}()

	return done
}

func (b *Backend) ensureBucket(ctx context.Context) error {
	// ========================================================================
	// Step 1: Check whether the bucket is already there
	// ========================================================================

	start := time.Now()
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	b.observe("HeadBucket", start, err)
	if err == nil {
		logger.Debug("S3 bucket ready", logger.KeyBucket, b.bucket)
		return nil
	}
	if !isNotFoundError(err) {
		return fmt.Errorf("failed to access bucket %q: %w", b.bucket, err)
	}

	// ========================================================================
	// Step 2: Create it
	// ========================================================================

	input := &s3.CreateBucketInput{Bucket: aws.String(b.bucket)}
	if b.region != "" && b.region != "us-east-1" {
		input.CreateBucketConfiguration = &types.CreateBucketConfiguration{
			LocationConstraint: types.BucketLocationConstraint(b.region),
		}
	}

	start = time.Now()
	_, err = b.client.CreateBucket(ctx, input)
	b.observe("CreateBucket", start, err)
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("failed to create bucket %q: %w", b.bucket, err)
	}

	logger.Info("Created S3 bucket", logger.KeyBucket, b.bucket, logger.KeyRegion, b.region)
	return nil
}

// Type implements content.Backend.
func (b *Backend) Type() string { return BackendType }

// Bucket returns the bucket name.
func (b *Backend) Bucket() string { return b.bucket }

func (b *Backend) fullKey(ref string) string {
	return b.keyPrefix + ref
}

func (b *Backend) refFromKey(key string) string {
	return strings.TrimPrefix(key, b.keyPrefix)
}

func (b *Backend) observe(op string, start time.Time, err error) {
	if b.metrics != nil {
		b.metrics.ObserveOperation(op, time.Since(start), err)
	}
}

func (b *Backend) checkOpen() error {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return content.ErrBackendClosed
	}
	return nil
}

// dirRef normalizes a directory reference to end with "/" ("" stays root).
func dirRef(ref string) string {
	ref = strings.TrimLeft(ref, "/")
	if ref == "" || strings.HasSuffix(ref, "/") {
		return ref
	}
	return ref + "/"
}

func baseName(ref string) string {
	return path.Base(strings.TrimSuffix(ref, "/"))
}

func itemFor(ref string) content.Item {
	typ := content.TypeFile
	if strings.HasSuffix(ref, "/") {
		typ = content.TypeDirectory
	}
	return content.Item{RefID: ref, Name: baseName(ref), Type: typ}
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: name %q", content.ErrInvalidRef, name)
	}
	return nil
}

// copySource builds the URL-encoded CopySource header value.
func (b *Backend) copySource(key string) string {
	segs := strings.Split(key, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return b.bucket + "/" + strings.Join(segs, "/")
}

func (b *Backend) headObject(ctx context.Context, ref string) (bool, error) {
	start := time.Now()
	_, err := b.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fullKey(ref)),
	})
	b.observe("HeadObject", start, err)
	if err == nil {
		return true, nil
	}
	if isNotFoundError(err) {
		return false, nil
	}
	return false, fmt.Errorf("s3 head object: %w", err)
}

// hasPrefix reports whether at least one key lives under prefix.
func (b *Backend) hasPrefix(ctx context.Context, prefix string) (bool, error) {
	start := time.Now()
	out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(b.bucket),
		Prefix:  aws.String(b.fullKey(prefix)),
		MaxKeys: aws.Int32(1),
	})
	b.observe("ListObjectsV2", start, err)
	if err != nil {
		return false, fmt.Errorf("s3 list objects: %w", err)
	}
	return len(out.Contents) > 0, nil
}

// listRefs returns every ref under prefix in lexical order.
func (b *Backend) listRefs(ctx context.Context, prefix string) ([]string, error) {
	var refs []string

	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.bucket),
		Prefix: aws.String(b.fullKey(prefix)),
	})
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		b.observe("ListObjectsV2", start, err)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}
		for _, obj := range page.Contents {
			refs = append(refs, b.refFromKey(aws.ToString(obj.Key)))
		}
	}

	return refs, nil
}

// requireDir returns ErrNotFound unless ref is the root or a directory that
// has a marker or any key under it.
func (b *Backend) requireDir(ctx context.Context, ref string) error {
	if ref == "" {
		return nil
	}
	ok, err := b.hasPrefix(ctx, ref)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: directory %q", content.ErrNotFound, ref)
	}
	return nil
}

func (b *Backend) deleteRefs(ctx context.Context, refs []string) error {
	for i := 0; i < len(refs); i += maxDeleteBatch {
		if err := ctx.Err(); err != nil {
			return err
		}

		end := min(i+maxDeleteBatch, len(refs))
		objects := make([]types.ObjectIdentifier, 0, end-i)
		for _, ref := range refs[i:end] {
			objects = append(objects, types.ObjectIdentifier{Key: aws.String(b.fullKey(ref))})
		}

		start := time.Now()
		out, err := b.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(b.bucket),
			Delete: &types.Delete{Objects: objects, Quiet: aws.Bool(true)},
		})
		b.observe("DeleteObjects", start, err)
		if err != nil {
			return fmt.Errorf("s3 delete objects: %w", err)
		}
		if len(out.Errors) > 0 {
			first := out.Errors[0]
			return fmt.Errorf("s3 delete objects: %d keys failed, first %s: %s",
				len(out.Errors), aws.ToString(first.Key), aws.ToString(first.Message))
		}
	}
	return nil
}

// Mkdir implements content.Backend.
func (b *Backend) Mkdir(ctx context.Context, parentRef, name string) (content.Item, error) {
	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}
	if err := checkName(name); err != nil {
		return content.Item{}, err
	}

	parent := dirRef(parentRef)
	if err := b.requireDir(ctx, parent); err != nil {
		return content.Item{}, err
	}

	ref := parent + name + "/"
	exists, err := b.headObject(ctx, ref)
	if err != nil {
		return content.Item{}, err
	}
	if exists {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, ref)
	}

	start := time.Now()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(b.fullKey(ref)),
		Body:          strings.NewReader(""),
		ContentLength: aws.Int64(0),
	})
	b.observe("PutObject", start, err)
	if err != nil {
		return content.Item{}, fmt.Errorf("s3 put object: %w", err)
	}

	return content.Item{RefID: ref, Name: name, Type: content.TypeDirectory}, nil
}

// Rmdir implements content.Backend. Every key under the prefix is removed,
// not only the directory marker.
func (b *Backend) Rmdir(ctx context.Context, ref string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	prefix := dirRef(ref)
	if prefix == "" {
		return fmt.Errorf("%w: refusing to remove the root", content.ErrInvalidRef)
	}

	refs, err := b.listRefs(ctx, prefix)
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		return fmt.Errorf("%w: directory %q", content.ErrNotFound, prefix)
	}

	return b.deleteRefs(ctx, refs)
}

// CreateFile implements content.Backend.
//
// Readers that cannot seek are spooled to a temporary file first so that the
// SDK can compute the content length and checksum.
func (b *Backend) CreateFile(ctx context.Context, dirRefID, name string, r io.Reader) (content.Item, error) {
	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}
	if err := checkName(name); err != nil {
		return content.Item{}, err
	}

	dir := dirRef(dirRefID)
	if err := b.requireDir(ctx, dir); err != nil {
		return content.Item{}, err
	}

	ref := dir + name
	exists, err := b.headObject(ctx, ref)
	if err != nil {
		return content.Item{}, err
	}
	if exists {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, ref)
	}

	body, cleanup, err := seekable(r)
	if err != nil {
		return content.Item{}, err
	}
	defer cleanup()

	start := time.Now()
	_, err = b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fullKey(ref)),
		Body:   body,
	})
	b.observe("PutObject", start, err)
	if err != nil {
		return content.Item{}, fmt.Errorf("s3 put object: %w", err)
	}

	return content.Item{RefID: ref, Name: name, Type: content.TypeFile}, nil
}

func seekable(r io.Reader) (io.ReadSeeker, func(), error) {
	if rs, ok := r.(io.ReadSeeker); ok {
		return rs, func() {}, nil
	}

	tmp, err := os.CreateTemp("", "filebank-upload-*")
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if _, err := bufpool.Copy(tmp, r); err != nil {
		cleanup()
		return nil, nil, err
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		cleanup()
		return nil, nil, err
	}
	return tmp, cleanup, nil
}

// GetContent implements content.Backend.
func (b *Backend) GetContent(ctx context.Context, ref string) (io.ReadCloser, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}
	if ref == "" || strings.HasSuffix(ref, "/") {
		return nil, fmt.Errorf("%w: %q is a directory", content.ErrInvalidRef, ref)
	}

	start := time.Now()
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fullKey(ref)),
	})
	b.observe("GetObject", start, err)
	if err != nil {
		if isNotFoundError(err) {
			return nil, fmt.Errorf("%w: %q", content.ErrNotFound, ref)
		}
		return nil, fmt.Errorf("s3 get object: %w", err)
	}

	return out.Body, nil
}

// RemoveFile implements content.Backend.
func (b *Backend) RemoveFile(ctx context.Context, ref string) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	exists, err := b.headObject(ctx, ref)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %q", content.ErrNotFound, ref)
	}

	start := time.Now()
	_, err = b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(b.bucket),
		Key:    aws.String(b.fullKey(ref)),
	})
	b.observe("DeleteObject", start, err)
	if err != nil {
		return fmt.Errorf("s3 delete object: %w", err)
	}
	return nil
}

// Exists implements content.Backend. A directory ref exists when its marker
// or any key below it exists.
func (b *Backend) Exists(ctx context.Context, ref string) (bool, error) {
	if err := b.checkOpen(); err != nil {
		return false, err
	}
	if ref == "" {
		return true, nil
	}
	if strings.HasSuffix(ref, "/") {
		return b.hasPrefix(ctx, ref)
	}
	return b.headObject(ctx, ref)
}

// List implements content.Backend.
func (b *Backend) List(ctx context.Context, ref string) ([]content.Item, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	prefix := dirRef(ref)
	if err := b.requireDir(ctx, prefix); err != nil {
		return nil, err
	}

	var items []content.Item
	paginator := s3.NewListObjectsV2Paginator(b.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(b.bucket),
		Prefix:    aws.String(b.fullKey(prefix)),
		Delimiter: aws.String("/"),
	})
	for paginator.HasMorePages() {
		start := time.Now()
		page, err := paginator.NextPage(ctx)
		b.observe("ListObjectsV2", start, err)
		if err != nil {
			return nil, fmt.Errorf("s3 list objects: %w", err)
		}
		for _, cp := range page.CommonPrefixes {
			items = append(items, itemFor(b.refFromKey(aws.ToString(cp.Prefix))))
		}
		for _, obj := range page.Contents {
			r := b.refFromKey(aws.ToString(obj.Key))
			if r == prefix {
				continue
			}
			items = append(items, itemFor(r))
		}
	}

	return items, nil
}

// MoveFile implements content.Backend. Missing destinations are not rejected
// since directories are implicit in the key space.
func (b *Backend) MoveFile(ctx context.Context, file content.Item, dest content.Item) (content.Item, error) {
	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}

	targetRef := dirRef(dest.RefID)
	if targetRef == "" {
		if err := checkName(dest.Name); err != nil {
			return content.Item{}, err
		}
		targetRef = dest.Name + "/"
	}

	name := file.Name
	if name == "" {
		name = baseName(file.RefID)
	}
	newRef := targetRef + name
	if newRef == file.RefID {
		return content.Item{RefID: newRef, Name: name, Type: content.TypeFile}, nil
	}

	exists, err := b.headObject(ctx, file.RefID)
	if err != nil {
		return content.Item{}, err
	}
	if !exists {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrNotFound, file.RefID)
	}
	occupied, err := b.headObject(ctx, newRef)
	if err != nil {
		return content.Item{}, err
	}
	if occupied {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, newRef)
	}

	if err := b.copyRef(ctx, file.RefID, newRef); err != nil {
		return content.Item{}, err
	}
	if err := b.deleteRefs(ctx, []string{file.RefID}); err != nil {
		return content.Item{}, err
	}

	logger.DebugCtx(ctx, "Moved file content",
		logger.KeyOldRef, file.RefID, logger.KeyNewRef, newRef,
		logger.KeyBackend, BackendType, logger.KeyBucket, b.bucket)

	return content.Item{RefID: newRef, Name: name, Type: content.TypeFile}, nil
}

func (b *Backend) copyRef(ctx context.Context, from, to string) error {
	start := time.Now()
	_, err := b.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(b.bucket),
		CopySource: aws.String(b.copySource(b.fullKey(from))),
		Key:        aws.String(b.fullKey(to)),
	})
	b.observe("CopyObject", start, err)
	if err != nil {
		return fmt.Errorf("s3 copy %q to %q: %w", from, to, err)
	}
	return nil
}

// MoveDirectory implements content.Backend.
//
// When anything already lives under the destination the directory is nested
// one level deeper (dest/<name>/); otherwise it takes the destination prefix
// itself, which turns the move into a rename.
func (b *Backend) MoveDirectory(ctx context.Context, dir content.Item, dest content.Item) (*content.MoveDirectoryResult, error) {
	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	srcPrefix := dirRef(dir.RefID)
	if srcPrefix == "" {
		return nil, fmt.Errorf("%w: cannot move the root", content.ErrInvalidRef)
	}
	name := dir.Name
	if name == "" {
		name = baseName(srcPrefix)
	}

	targetRef := dirRef(dest.RefID)
	if targetRef == "" {
		if err := checkName(dest.Name); err != nil {
			return nil, err
		}
		targetRef = dest.Name + "/"
	}

	refs, err := b.listRefs(ctx, srcPrefix)
	if err != nil {
		return nil, err
	}
	if len(refs) == 0 {
		return nil, fmt.Errorf("%w: directory %q", content.ErrNotFound, srcPrefix)
	}

	// DestinationChecked
	occupied, err := b.hasPrefix(ctx, targetRef)
	if err != nil {
		return nil, err
	}
	targetPrefix := targetRef
	if occupied {
		targetPrefix = targetRef + name + "/"
		taken, err := b.hasPrefix(ctx, targetPrefix)
		if err != nil {
			return nil, err
		}
		if taken {
			return nil, fmt.Errorf("%w: %q", content.ErrAlreadyExists, targetPrefix)
		}
	}
	if strings.HasPrefix(targetPrefix, srcPrefix) {
		return nil, fmt.Errorf("%w: cannot move %q into itself", content.ErrInvalidRef, srcPrefix)
	}

	// ContentRelocated: copy everything first, delete the originals last.
	changes := make([]content.Change, 0, len(refs))
	for _, ref := range refs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		newRef := targetPrefix + strings.TrimPrefix(ref, srcPrefix)
		if err := b.copyRef(ctx, ref, newRef); err != nil {
			logger.WarnCtx(ctx, "Directory move aborted before delete, copies left in place",
				logger.KeyOldRef, srcPrefix, logger.KeyNewRef, targetPrefix,
				logger.KeyCount, len(changes), logger.KeyError, err)
			return nil, err
		}
		if ref != srcPrefix {
			changes = append(changes, content.Change{Old: itemFor(ref), New: itemFor(newRef)})
		}
	}

	if err := b.deleteRefs(ctx, refs); err != nil {
		return nil, err
	}

	logger.DebugCtx(ctx, "Moved directory content",
		logger.KeyOldRef, srcPrefix, logger.KeyNewRef, targetPrefix,
		logger.KeyCount, len(changes), logger.KeyBackend, BackendType, logger.KeyBucket, b.bucket)

	// DescriptorsComputed
	return &content.MoveDirectoryResult{
		Directory: content.Item{RefID: targetPrefix, Name: baseName(targetPrefix), Type: content.TypeDirectory},
		Items:     changes,
	}, nil
}

// Healthcheck verifies the bucket is accessible.
func (b *Backend) Healthcheck(ctx context.Context) error {
	if err := b.checkOpen(); err != nil {
		return err
	}

	start := time.Now()
	_, err := b.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(b.bucket),
	})
	b.observe("HeadBucket", start, err)
	if err != nil {
		return fmt.Errorf("S3 health check failed: %w", err)
	}
	return nil
}

// Close marks the backend as closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// isNotFoundError checks if an error is an S3 not found error.
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}

	var nsk *types.NoSuchKey
	var nf *types.NotFound
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsk) || errors.As(err, &nf) || errors.As(err, &nsb) {
		return true
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "NoSuchBucket":
			return true
		}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == 404 {
		return true
	}

	return false
}

// Ensure Backend implements content.Backend.
var _ content.Backend = (*Backend)(nil)

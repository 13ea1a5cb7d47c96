package vfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/metadata"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// Validator checks items and metadata documents against the built-in item
// schemas and the named metadata schemas. An empty schema name selects the
// "Default" schema; an unknown explicit name is reported as a FieldError.
type Validator interface {
	ValidateDirectory(schema string, obj map[string]any) []vfserrors.FieldError
	ValidateFile(schema string, obj map[string]any) []vfserrors.FieldError
	ValidateDirectoryMeta(schema string, obj map[string]any) []vfserrors.FieldError
	ValidateFileMeta(schema string, obj map[string]any) []vfserrors.FieldError
}

// Metrics receives operation timings and move inconsistencies.
type Metrics interface {
	ObserveOperation(op string, duration time.Duration, err error)
	RecordMoveInconsistency(itemType content.ItemType)
}

// Options configures a Service.
type Options struct {
	// SchemaRequired makes the schema name mandatory on create and on
	// metadata updates.
	SchemaRequired bool

	// Metrics is optional.
	Metrics Metrics
}

// Service implements the virtual filesystem operations on top of a metadata
// store and a content backend. It holds no mutable state and is safe for
// concurrent use.
type Service struct {
	store     metadata.Store
	backend   content.Backend
	validator Validator
	opts      Options
}

// NewService wires a Service. validator may be nil to skip validation.
func NewService(store metadata.Store, backend content.Backend, validator Validator, opts Options) *Service {
	return &Service{
		store:     store,
		backend:   backend,
		validator: validator,
		opts:      opts,
	}
}

// Store returns the metadata store.
func (s *Service) Store() metadata.Store { return s.store }

// Backend returns the content backend.
func (s *Service) Backend() content.Backend { return s.backend }

func (s *Service) observe(op string, start time.Time, err error) {
	if s.opts.Metrics != nil {
		s.opts.Metrics.ObserveOperation(op, time.Since(start), err)
	}
}

// Healthcheck checks the metadata store and the content backend.
func (s *Service) Healthcheck(ctx context.Context) error {
	if err := s.store.Healthcheck(ctx); err != nil {
		return fmt.Errorf("metadata store: %w", err)
	}
	if err := s.backend.Healthcheck(ctx); err != nil {
		return fmt.Errorf("content backend: %w", err)
	}
	return nil
}

// ============================================================================
// Read operations
// ============================================================================

// Resolve parses and populates p. The root is allowed. A path whose terminal
// entity does not exist is NotFound.
func (s *Service) Resolve(ctx context.Context, p string) (*Path, error) {
	path, err := ParsePath(p, true)
	if err != nil {
		return nil, err
	}
	if err := path.Populate(ctx, s.store); err != nil {
		return nil, err
	}
	if !path.Exists() {
		return nil, vfserrors.NewNotFoundError(p, "Not found.")
	}
	return path, nil
}

// List returns the children of dir (nil for the root).
func (s *Service) List(ctx context.Context, dir *metadata.Directory) (entries []metadata.Entry, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return ListItems(ctx, s.store, dir)
}

// Open returns the content of file. The caller closes the reader.
func (s *Service) Open(ctx context.Context, file *metadata.File) (rc io.ReadCloser, err error) {
	defer func(start time.Time) { s.observe("read", start, err) }(time.Now())

	rc, err = s.backend.GetContent(ctx, file.RefID)
	if err != nil {
		return nil, contentError(file.RefID, "read content", err)
	}
	return rc, nil
}

// ============================================================================
// Create operations
// ============================================================================

// MkdirRequest describes a directory to create.
type MkdirRequest struct {
	Name     string
	Schema   string
	Metadata metadata.Attributes
}

// Mkdir creates a directory under parentPath ("" or "/" for the root).
func (s *Service) Mkdir(ctx context.Context, parentPath string, req MkdirRequest) (dir *metadata.Directory, err error) {
	defer func(start time.Time) { s.observe("mkdir", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanMkdir, parentPath, telemetry.Schema(req.Schema))
	defer func() { telemetry.EndSpan(span, err) }()

	parent, err := s.resolveParent(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if err := s.checkSchema(req.Schema); err != nil {
		return nil, err
	}

	obj := map[string]any{"name": req.Name, "type": string(content.TypeDirectory)}
	if req.Metadata != nil {
		obj["metadata"] = map[string]any(req.Metadata)
	}
	if s.validator != nil {
		if errs := s.validator.ValidateDirectory(req.Schema, obj); len(errs) > 0 {
			return nil, vfserrors.NewInvalidInputError("Validation failed.", errs...)
		}
	}
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}

	parentID, parentRef := scope(parent)
	if err := s.ensureFree(ctx, parentID, req.Name); err != nil {
		return nil, err
	}

	item, err := s.backend.Mkdir(ctx, parentRef, req.Name)
	if err != nil {
		return nil, contentError(req.Name, "create directory", err)
	}

	dir = &metadata.Directory{
		RefID:    item.RefID,
		Name:     req.Name,
		ParentID: parentID,
		Metadata: req.Metadata,
	}
	if err := s.store.CreateDirectory(ctx, dir); err != nil {
		if rmErr := s.backend.Rmdir(ctx, item.RefID); rmErr != nil {
			logger.WarnCtx(ctx, "Failed to remove content of rejected directory",
				logger.KeyRefID, item.RefID, logger.KeyError, rmErr)
		}
		return nil, storeError(req.Name, "create directory", err)
	}

	logger.DebugCtx(ctx, "Directory created", logger.KeyID, dir.ID, logger.KeyRefID, dir.RefID)
	return dir, nil
}

// UploadRequest describes a file to create.
type UploadRequest struct {
	Name     string
	MimeType string
	Schema   string
	Metadata metadata.Attributes
	Body     io.Reader
}

// Upload stores a file under parentPath ("" or "/" for the root).
func (s *Service) Upload(ctx context.Context, parentPath string, req UploadRequest) (file *metadata.File, err error) {
	defer func(start time.Time) { s.observe("upload", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanUpload, parentPath, telemetry.MimeType(req.MimeType))
	defer func() { telemetry.EndSpan(span, err) }()

	parent, err := s.resolveParent(ctx, parentPath)
	if err != nil {
		return nil, err
	}
	if err := s.checkSchema(req.Schema); err != nil {
		return nil, err
	}

	obj := map[string]any{
		"name":     req.Name,
		"type":     string(content.TypeFile),
		"mimetype": req.MimeType,
	}
	if req.Metadata != nil {
		obj["metadata"] = map[string]any(req.Metadata)
	}
	if s.validator != nil {
		if errs := s.validator.ValidateFile(req.Schema, obj); len(errs) > 0 {
			return nil, vfserrors.NewInvalidInputError("Validation failed.", errs...)
		}
	}
	if err := ValidateName(req.Name); err != nil {
		return nil, err
	}

	parentID, parentRef := scope(parent)
	if err := s.ensureFree(ctx, parentID, req.Name); err != nil {
		return nil, err
	}

	item, err := s.backend.CreateFile(ctx, parentRef, req.Name, req.Body)
	if err != nil {
		return nil, contentError(req.Name, "store content", err)
	}

	file = &metadata.File{
		RefID:       item.RefID,
		Name:        req.Name,
		DirectoryID: parentID,
		MimeType:    req.MimeType,
		Metadata:    req.Metadata,
	}
	if err := s.store.CreateFile(ctx, file); err != nil {
		if rmErr := s.backend.RemoveFile(ctx, item.RefID); rmErr != nil {
			logger.WarnCtx(ctx, "Failed to remove content of rejected file",
				logger.KeyRefID, item.RefID, logger.KeyError, rmErr)
		}
		return nil, storeError(req.Name, "create file", err)
	}

	logger.DebugCtx(ctx, "File uploaded", logger.KeyID, file.ID, logger.KeyRefID, file.RefID, logger.KeyMime, file.MimeType)
	return file, nil
}

// resolveParent walks the full parentPath as a directory chain.
func (s *Service) resolveParent(ctx context.Context, parentPath string) (*metadata.Directory, error) {
	segments, err := splitDirPath(parentPath)
	if err != nil {
		return nil, err
	}
	chain, err := BuildTree(ctx, s.store, segments)
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1], nil
}

// ensureFree rejects a name already used by a sibling directory or file.
func (s *Service) ensureFree(ctx context.Context, parentID, name string) error {
	if _, err := s.store.FindDirectory(ctx, parentID, name); err == nil {
		return vfserrors.NewConflictError(name, "Directory already exists.", metadata.ErrDuplicate)
	} else if !errors.Is(err, metadata.ErrNotFound) {
		return vfserrors.NewBackendFailure("lookup "+name, err)
	}
	if _, err := s.store.FindFile(ctx, parentID, name); err == nil {
		return vfserrors.NewConflictError(name, "File already exists.", metadata.ErrDuplicate)
	} else if !errors.Is(err, metadata.ErrNotFound) {
		return vfserrors.NewBackendFailure("lookup "+name, err)
	}
	return nil
}

func (s *Service) checkSchema(schema string) error {
	if s.opts.SchemaRequired && schema == "" {
		return vfserrors.NewInvalidInputError("Schema parameter is required.",
			vfserrors.FieldError{Field: "schema", Message: "is required"})
	}
	return nil
}

// ============================================================================
// Metadata updates
// ============================================================================

// UpdateMetadata replaces the metadata document of the directory or file
// with the given ID after validating it against the named schema.
func (s *Service) UpdateMetadata(ctx context.Context, id, schema string, meta metadata.Attributes) (entry metadata.Entry, err error) {
	defer func(start time.Time) { s.observe("update_metadata", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanMetadata, "", telemetry.ItemID(id), telemetry.Schema(schema))
	defer func() { telemetry.EndSpan(span, err) }()

	if meta == nil {
		meta = metadata.Attributes{}
	}

	dir, err := s.store.GetDirectory(ctx, id)
	if err != nil && !errors.Is(err, metadata.ErrNotFound) {
		return metadata.Entry{}, storeError(id, "load directory", err)
	}
	var file *metadata.File
	if dir == nil {
		file, err = s.store.GetFile(ctx, id)
		if err != nil {
			return metadata.Entry{}, storeError(id, "load file", err)
		}
	}

	if err := s.checkSchema(schema); err != nil {
		return metadata.Entry{}, err
	}

	if dir != nil {
		if s.validator != nil {
			if errs := s.validator.ValidateDirectoryMeta(schema, meta); len(errs) > 0 {
				return metadata.Entry{}, vfserrors.NewInvalidInputError("Validation failed.", errs...)
			}
		}
		dir.Metadata = meta
		if err := s.store.UpdateDirectory(ctx, dir); err != nil {
			return metadata.Entry{}, storeError(id, "update directory", err)
		}
		return metadata.Entry{Directory: dir}, nil
	}

	if s.validator != nil {
		if errs := s.validator.ValidateFileMeta(schema, meta); len(errs) > 0 {
			return metadata.Entry{}, vfserrors.NewInvalidInputError("Validation failed.", errs...)
		}
	}
	file.Metadata = meta
	if err := s.store.UpdateFile(ctx, file); err != nil {
		return metadata.Entry{}, storeError(id, "update file", err)
	}
	return metadata.Entry{File: file}, nil
}

// ============================================================================
// Delete
// ============================================================================

// Delete removes the item at p. Content is removed first; metadata (the
// whole subtree for a directory) only once that succeeded. Content that is
// already gone does not block the metadata cleanup.
func (s *Service) Delete(ctx context.Context, p string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanDelete, p)
	defer func() { telemetry.EndSpan(span, err) }()

	path, err := ParsePath(p, false)
	if err != nil {
		return err
	}
	if err := path.Populate(ctx, s.store); err != nil {
		return err
	}

	switch {
	case path.Directory() != nil:
		dir := path.Directory()
		if err := s.backend.Rmdir(ctx, dir.RefID); err != nil && !errors.Is(err, content.ErrNotFound) {
			return contentError(p, "remove directory", err)
		}
		if err := s.deleteSubtree(ctx, dir.ID); err != nil {
			return err
		}
		if err := s.store.DeleteDirectory(ctx, dir.ID); err != nil {
			return storeError(p, "delete directory", err)
		}
		logger.InfoCtx(ctx, "Directory deleted", logger.KeyPath, p, logger.KeyRefID, dir.RefID)

	case path.File() != nil:
		file := path.File()
		if err := s.backend.RemoveFile(ctx, file.RefID); err != nil && !errors.Is(err, content.ErrNotFound) {
			return contentError(p, "remove file", err)
		}
		if err := s.store.DeleteFile(ctx, file.ID); err != nil {
			return storeError(p, "delete file", err)
		}
		logger.InfoCtx(ctx, "File deleted", logger.KeyPath, p, logger.KeyRefID, file.RefID)

	default:
		return vfserrors.NewNotFoundError(p, "Not found.")
	}
	return nil
}

// deleteSubtree removes every metadata record below the directory.
func (s *Service) deleteSubtree(ctx context.Context, dirID string) error {
	files, err := s.store.ListFiles(ctx, dirID)
	if err != nil {
		return storeError("", "list files", err)
	}
	for _, f := range files {
		if err := s.store.DeleteFile(ctx, f.ID); err != nil && !errors.Is(err, metadata.ErrNotFound) {
			return storeError(f.RefID, "delete file", err)
		}
	}

	dirs, err := s.store.ListDirectories(ctx, dirID)
	if err != nil {
		return storeError("", "list directories", err)
	}
	for _, d := range dirs {
		if err := s.deleteSubtree(ctx, d.ID); err != nil {
			return err
		}
		if err := s.store.DeleteDirectory(ctx, d.ID); err != nil && !errors.Is(err, metadata.ErrNotFound) {
			return storeError(d.RefID, "delete directory", err)
		}
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

// scope returns the metadata parent ID and content reference of dir (the
// root for nil).
func scope(dir *metadata.Directory) (id, ref string) {
	if dir == nil {
		return "", ""
	}
	return dir.ID, dir.RefID
}

// splitDirPath splits a directory path; "" and "/" name the root.
func splitDirPath(p string) ([]string, error) {
	if p == "" || p == "/" {
		return nil, nil
	}
	if !ValidatePath(p) {
		return nil, vfserrors.NewInvalidInputError("Path not valid.")
	}
	var segments []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			segments = append(segments, seg)
		}
	}
	return segments, nil
}

// contentError maps a content backend error onto the client-facing kinds.
func contentError(path, op string, err error) error {
	switch {
	case errors.Is(err, content.ErrNotFound):
		return &vfserrors.Error{Kind: vfserrors.KindNotFound, Message: "Not found.", Path: path, Err: err}
	case errors.Is(err, content.ErrAlreadyExists):
		return vfserrors.NewConflictError(path, "Item already exists.", err)
	case errors.Is(err, content.ErrInvalidRef):
		return &vfserrors.Error{Kind: vfserrors.KindInvalidInput, Message: "Path not valid.", Path: path, Err: err}
	default:
		return vfserrors.NewBackendFailure(op, err)
	}
}

// storeError maps a metadata store error onto the client-facing kinds.
func storeError(path, op string, err error) error {
	switch {
	case errors.Is(err, metadata.ErrNotFound):
		return &vfserrors.Error{Kind: vfserrors.KindNotFound, Message: "Not found.", Path: path, Err: err}
	case errors.Is(err, metadata.ErrDuplicate):
		return vfserrors.NewConflictError(path, "Item already exists.", err)
	default:
		return vfserrors.NewBackendFailure(op, err)
	}
}

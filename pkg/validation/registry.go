// Package validation checks directory and file requests against the
// built-in item schemas and against named metadata schemas loaded from disk.
//
// Named schemas live under <dir>/directory/*.json and <dir>/file/*.json and
// are addressed by their basename without the extension. The schema named
// Default applies when a request does not name one.
package validation

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/content"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// DefaultSchema is applied when no schema name is given.
const DefaultSchema = "Default"

const (
	directoryItemURL = "mem://builtin/directory.json"
	fileItemURL      = "mem://builtin/file.json"
)

// schemaSet is an immutable snapshot of the named schemas.
type schemaSet struct {
	directory map[string]*jsonschema.Schema
	file      map[string]*jsonschema.Schema
}

func (s *schemaSet) lookup(kind content.ItemType) map[string]*jsonschema.Schema {
	if kind == content.TypeDirectory {
		return s.directory
	}
	return s.file
}

// Registry holds the compiled schemas. It is safe for concurrent use; Reload
// swaps the named schema set atomically.
type Registry struct {
	dir string

	directoryItem *jsonschema.Schema
	fileItem      *jsonschema.Schema

	mu    sync.RWMutex
	named *schemaSet
}

// New compiles the built-in schemas and loads the named schemas under dir.
// An empty dir means no named schemas.
func New(dir string) (*Registry, error) {
	r := &Registry{dir: dir}

	c := jsonschema.NewCompiler()
	c.DefaultDraft(jsonschema.Draft2020)

	var err error
	if r.directoryItem, err = compileBuiltin(c, directoryItemURL, content.TypeDirectory); err != nil {
		return nil, err
	}
	if r.fileItem, err = compileBuiltin(c, fileItemURL, content.TypeFile); err != nil {
		return nil, err
	}

	if err := r.Reload(); err != nil {
		return nil, err
	}
	return r, nil
}

func compileBuiltin(c *jsonschema.Compiler, url string, kind content.ItemType) (*jsonschema.Schema, error) {
	raw, err := builtinJSON(kind)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s schema: %w", kind, err)
	}
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", kind, err)
	}
	sch, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", kind, err)
	}
	return sch, nil
}

// Dir returns the schema directory, or "" when none is configured.
func (r *Registry) Dir() string {
	return r.dir
}

// Reload recompiles every named schema from disk. On error the previous set
// stays in effect.
func (r *Registry) Reload() error {
	set := &schemaSet{
		directory: map[string]*jsonschema.Schema{},
		file:      map[string]*jsonschema.Schema{},
	}

	if r.dir != "" {
		c := jsonschema.NewCompiler()
		c.DefaultDraft(jsonschema.Draft2020)

		for _, kind := range []content.ItemType{content.TypeDirectory, content.TypeFile} {
			if err := loadKind(c, filepath.Join(r.dir, string(kind)), set.lookup(kind)); err != nil {
				return err
			}
		}
	}

	r.mu.Lock()
	r.named = set
	r.mu.Unlock()

	logger.Debug("Schemas loaded",
		"directory_schemas", len(set.directory),
		"file_schemas", len(set.file))
	return nil
}

func loadKind(c *jsonschema.Compiler, dir string, into map[string]*jsonschema.Schema) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read schema directory %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, e.Name())
		sch, err := c.Compile(path)
		if err != nil {
			return fmt.Errorf("compile schema %s: %w", path, err)
		}
		into[strings.TrimSuffix(e.Name(), ".json")] = sch
	}
	return nil
}

// Names returns the sorted names of the schemas loaded for kind.
func (r *Registry) Names(kind content.ItemType) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.named.lookup(kind)
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// resolve picks the metadata schema for name. A nil schema with no errors
// means the metadata is unconstrained.
func (r *Registry) resolve(kind content.ItemType, name string) (*jsonschema.Schema, []vfserrors.FieldError) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m := r.named.lookup(kind)
	if name == "" {
		return m[DefaultSchema], nil
	}
	sch, ok := m[name]
	if !ok {
		return nil, []vfserrors.FieldError{{
			Field:   "schema",
			Message: fmt.Sprintf("unknown %s schema %q", kind, name),
		}}
	}
	return sch, nil
}

// ValidateDirectory checks a directory request and its metadata.
func (r *Registry) ValidateDirectory(schema string, obj map[string]any) []vfserrors.FieldError {
	return r.validateItem(content.TypeDirectory, r.directoryItem, schema, obj)
}

// ValidateFile checks a file upload request and its metadata.
func (r *Registry) ValidateFile(schema string, obj map[string]any) []vfserrors.FieldError {
	return r.validateItem(content.TypeFile, r.fileItem, schema, obj)
}

// ValidateDirectoryMeta checks a standalone directory metadata document.
func (r *Registry) ValidateDirectoryMeta(schema string, obj map[string]any) []vfserrors.FieldError {
	return r.validateMeta(content.TypeDirectory, schema, obj, "")
}

// ValidateFileMeta checks a standalone file metadata document.
func (r *Registry) ValidateFileMeta(schema string, obj map[string]any) []vfserrors.FieldError {
	return r.validateMeta(content.TypeFile, schema, obj, "")
}

func (r *Registry) validateItem(kind content.ItemType, item *jsonschema.Schema, schema string, obj map[string]any) []vfserrors.FieldError {
	errs := fieldErrors(item.Validate(obj), "")

	// A non-object metadata value has already been reported above.
	raw, present := obj["metadata"]
	meta, isObject := raw.(map[string]any)
	if present && !isObject {
		return errs
	}
	return append(errs, r.validateMeta(kind, schema, meta, "/metadata")...)
}

func (r *Registry) validateMeta(kind content.ItemType, schema string, meta map[string]any, prefix string) []vfserrors.FieldError {
	sch, errs := r.resolve(kind, schema)
	if errs != nil || sch == nil || meta == nil {
		return errs
	}
	return fieldErrors(sch.Validate(meta), prefix)
}

// fieldErrors flattens a validation error into its leaf failures.
func fieldErrors(err error, prefix string) []vfserrors.FieldError {
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []vfserrors.FieldError{{Field: prefix, Message: err.Error()}}
	}

	var out []vfserrors.FieldError
	var walk func(units []jsonschema.OutputUnit)
	walk = func(units []jsonschema.OutputUnit) {
		for _, u := range units {
			if len(u.Errors) > 0 {
				walk(u.Errors)
				continue
			}
			if u.Error == nil {
				continue
			}
			out = append(out, vfserrors.FieldError{
				Field:   prefix + u.InstanceLocation,
				Message: u.Error.String(),
			})
		}
	}
	walk(ve.BasicOutput().Errors)

	if len(out) == 0 {
		out = append(out, vfserrors.FieldError{Field: prefix, Message: "validation failed"})
	}
	return out
}

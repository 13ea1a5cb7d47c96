// Package fs provides a content backend that mirrors the virtual tree 1:1 as
// real directories and files under a root directory.
//
// RefIDs are slash-separated paths relative to the root ("a/b/c.txt").
package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	iofs "io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/pkg/bufpool"
	"github.com/marmos91/filebank/pkg/content"
)

// BackendType is the identifier returned by Type.
const BackendType = "filesystem"

const tmpSuffix = ".tmp"

// Config holds configuration for the filesystem backend.
type Config struct {
	// RootDir is the directory the virtual tree is mirrored under.
	RootDir string

	// CreateDir creates the root directory if it doesn't exist.
	// Default: true
	CreateDir bool

	// DirMode is the permission mode for created directories.
	// Default: 0755
	DirMode os.FileMode

	// FileMode is the permission mode for created files.
	// Default: 0644
	FileMode os.FileMode
}

// DefaultConfig returns the default configuration.
func DefaultConfig(rootDir string) Config {
	return Config{
		RootDir:   rootDir,
		CreateDir: true,
		DirMode:   0755,
		FileMode:  0644,
	}
}

// Backend is a filesystem implementation of content.Backend.
type Backend struct {
	mu       sync.RWMutex
	root     string
	dirMode  os.FileMode
	fileMode os.FileMode
	closed   bool
}

// New creates a filesystem backend with the given configuration.
func New(cfg Config) (*Backend, error) {
	if cfg.RootDir == "" {
		return nil, errors.New("root directory is required")
	}

	if cfg.DirMode == 0 {
		cfg.DirMode = 0755
	}
	if cfg.FileMode == 0 {
		cfg.FileMode = 0644
	}

	root, err := filepath.Abs(cfg.RootDir)
	if err != nil {
		return nil, fmt.Errorf("resolve root directory: %w", err)
	}

	if cfg.CreateDir {
		if err := os.MkdirAll(root, cfg.DirMode); err != nil {
			return nil, fmt.Errorf("create root directory: %w", err)
		}
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("root %s is not a directory", root)
	}

	return &Backend{
		root:     root,
		dirMode:  cfg.DirMode,
		fileMode: cfg.FileMode,
	}, nil
}

// NewWithRoot creates a filesystem backend with default configuration.
func NewWithRoot(rootDir string) (*Backend, error) {
	return New(DefaultConfig(rootDir))
}

// Type implements content.Backend.
func (b *Backend) Type() string { return BackendType }

// RootDir returns the absolute root directory of the backend.
func (b *Backend) RootDir() string { return b.root }

// abs maps a RefID onto an absolute path under the root.
func (b *Backend) abs(ref string) (string, error) {
	ref = strings.Trim(ref, "/")
	if ref == "" {
		return b.root, nil
	}
	for _, seg := range strings.Split(ref, "/") {
		if seg == "" || seg == "." || seg == ".." || strings.ContainsRune(seg, '\\') {
			return "", fmt.Errorf("%w: %q", content.ErrInvalidRef, ref)
		}
	}
	return filepath.Join(b.root, filepath.FromSlash(ref)), nil
}

func checkName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, "/\\") {
		return fmt.Errorf("%w: name %q", content.ErrInvalidRef, name)
	}
	return nil
}

func (b *Backend) checkOpen() error {
	if b.closed {
		return content.ErrBackendClosed
	}
	return nil
}

// statDir returns ErrNotFound unless p exists and is a directory.
func statDir(p, ref string) error {
	info, err := os.Stat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: directory %q", content.ErrNotFound, ref)
		}
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %q is not a directory", content.ErrNotFound, ref)
	}
	return nil
}

// Mkdir implements content.Backend.
func (b *Backend) Mkdir(ctx context.Context, parentRef, name string) (content.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}
	if err := checkName(name); err != nil {
		return content.Item{}, err
	}

	parent, err := b.abs(parentRef)
	if err != nil {
		return content.Item{}, err
	}
	if err := statDir(parent, parentRef); err != nil {
		return content.Item{}, err
	}

	ref := path.Join(strings.Trim(parentRef, "/"), name)
	if err := os.Mkdir(filepath.Join(parent, name), b.dirMode); err != nil {
		if os.IsExist(err) {
			return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, ref)
		}
		return content.Item{}, err
	}

	return content.Item{RefID: ref, Name: name, Type: content.TypeDirectory}, nil
}

// Rmdir implements content.Backend.
func (b *Backend) Rmdir(ctx context.Context, ref string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return err
	}
	if strings.Trim(ref, "/") == "" {
		return fmt.Errorf("%w: refusing to remove the root", content.ErrInvalidRef)
	}

	p, err := b.abs(ref)
	if err != nil {
		return err
	}
	if err := statDir(p, ref); err != nil {
		return err
	}

	return os.RemoveAll(p)
}

// CreateFile implements content.Backend.
//
// Content is written to a temporary file in the target directory and renamed
// into place once fully written.
func (b *Backend) CreateFile(ctx context.Context, dirRef, name string, r io.Reader) (content.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}
	if err := checkName(name); err != nil {
		return content.Item{}, err
	}

	dir, err := b.abs(dirRef)
	if err != nil {
		return content.Item{}, err
	}
	if err := statDir(dir, dirRef); err != nil {
		return content.Item{}, err
	}

	ref := path.Join(strings.Trim(dirRef, "/"), name)
	target := filepath.Join(dir, name)
	if _, err := os.Lstat(target); err == nil {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, ref)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*"+tmpSuffix)
	if err != nil {
		return content.Item{}, err
	}
	tmpPath := tmp.Name()

	if _, err := bufpool.Copy(tmp, &ctxReader{ctx: ctx, r: r}); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return content.Item{}, err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return content.Item{}, err
	}
	if err := os.Chmod(tmpPath, b.fileMode); err != nil {
		_ = os.Remove(tmpPath)
		return content.Item{}, err
	}

	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return content.Item{}, err
	}

	return content.Item{RefID: ref, Name: name, Type: content.TypeFile}, nil
}

// GetContent implements content.Backend.
func (b *Backend) GetContent(ctx context.Context, ref string) (io.ReadCloser, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	p, err := b.abs(ref)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %q", content.ErrNotFound, ref)
		}
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if info.IsDir() {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %q is a directory", content.ErrInvalidRef, ref)
	}

	return f, nil
}

// RemoveFile implements content.Backend.
func (b *Backend) RemoveFile(ctx context.Context, ref string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return err
	}

	p, err := b.abs(ref)
	if err != nil {
		return err
	}

	info, err := os.Lstat(p)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %q", content.ErrNotFound, ref)
		}
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%w: %q is a directory", content.ErrInvalidRef, ref)
	}

	return os.Remove(p)
}

// Exists implements content.Backend.
func (b *Backend) Exists(ctx context.Context, ref string) (bool, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return false, err
	}

	p, err := b.abs(ref)
	if err != nil {
		return false, err
	}

	_, err = os.Lstat(p)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// List implements content.Backend.
func (b *Backend) List(ctx context.Context, ref string) ([]content.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	p, err := b.abs(ref)
	if err != nil {
		return nil, err
	}
	if err := statDir(p, ref); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(p)
	if err != nil {
		return nil, err
	}

	base := strings.Trim(ref, "/")
	items := make([]content.Item, 0, len(entries))
	for _, e := range entries {
		if isTempName(e.Name()) {
			continue
		}
		typ := content.TypeFile
		if e.IsDir() {
			typ = content.TypeDirectory
		}
		items = append(items, content.Item{
			RefID: path.Join(base, e.Name()),
			Name:  e.Name(),
			Type:  typ,
		})
	}

	return items, nil
}

// resolveDestination returns the RefID of a move destination and whether it
// exists on disk. A destination with a RefID must exist.
func (b *Backend) resolveDestination(dest content.Item) (string, bool, error) {
	if ref := strings.Trim(dest.RefID, "/"); ref != "" {
		p, err := b.abs(ref)
		if err != nil {
			return "", false, err
		}
		if err := statDir(p, ref); err != nil {
			return "", false, err
		}
		return ref, true, nil
	}

	// Unmaterialized destination: derive it from the name at the root.
	if err := checkName(dest.Name); err != nil {
		return "", false, err
	}
	info, err := os.Stat(filepath.Join(b.root, dest.Name))
	switch {
	case err == nil && info.IsDir():
		return dest.Name, true, nil
	case err == nil:
		return "", false, fmt.Errorf("%w: %q is not a directory", content.ErrAlreadyExists, dest.Name)
	case os.IsNotExist(err):
		return dest.Name, false, nil
	default:
		return "", false, err
	}
}

// MoveFile implements content.Backend.
func (b *Backend) MoveFile(ctx context.Context, file content.Item, dest content.Item) (content.Item, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return content.Item{}, err
	}

	src, err := b.abs(file.RefID)
	if err != nil {
		return content.Item{}, err
	}
	if _, err := os.Lstat(src); err != nil {
		if os.IsNotExist(err) {
			return content.Item{}, fmt.Errorf("%w: %q", content.ErrNotFound, file.RefID)
		}
		return content.Item{}, err
	}

	destRef, exists, err := b.resolveDestination(dest)
	if err != nil {
		return content.Item{}, err
	}
	if !exists {
		return content.Item{}, fmt.Errorf("%w: destination %q", content.ErrNotFound, destRef)
	}

	name := file.Name
	if name == "" {
		name = path.Base(file.RefID)
	}
	targetRef := path.Join(destRef, name)
	target := filepath.Join(b.root, filepath.FromSlash(targetRef))
	if targetRef == strings.Trim(file.RefID, "/") {
		return content.Item{RefID: targetRef, Name: name, Type: content.TypeFile}, nil
	}
	if _, err := os.Lstat(target); err == nil {
		return content.Item{}, fmt.Errorf("%w: %q", content.ErrAlreadyExists, targetRef)
	}

	if err := moveFile(src, target, b.fileMode); err != nil {
		return content.Item{}, err
	}

	logger.DebugCtx(ctx, "Moved file content",
		logger.KeyOldRef, file.RefID, logger.KeyNewRef, targetRef, logger.KeyBackend, BackendType)

	return content.Item{RefID: targetRef, Name: name, Type: content.TypeFile}, nil
}

type walkedEntry struct {
	rel string
	typ content.ItemType
}

// MoveDirectory implements content.Backend.
//
// The source tree is enumerated before the move; after a single rename the
// old and new descriptors of every descendant are derived by swapping the
// source prefix for the target prefix.
func (b *Backend) MoveDirectory(ctx context.Context, dir content.Item, dest content.Item) (*content.MoveDirectoryResult, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return nil, err
	}

	srcRef := strings.Trim(dir.RefID, "/")
	if srcRef == "" {
		return nil, fmt.Errorf("%w: cannot move the root", content.ErrInvalidRef)
	}
	src, err := b.abs(srcRef)
	if err != nil {
		return nil, err
	}
	if err := statDir(src, srcRef); err != nil {
		return nil, err
	}

	// DestinationChecked
	destRef, exists, err := b.resolveDestination(dest)
	if err != nil {
		return nil, err
	}

	targetRef := destRef
	if exists {
		targetRef = path.Join(destRef, path.Base(srcRef))
	}
	if targetRef == srcRef || strings.HasPrefix(targetRef, srcRef+"/") {
		return nil, fmt.Errorf("%w: cannot move %q into itself", content.ErrInvalidRef, srcRef)
	}
	target := filepath.Join(b.root, filepath.FromSlash(targetRef))
	if _, err := os.Lstat(target); err == nil {
		return nil, fmt.Errorf("%w: %q", content.ErrAlreadyExists, targetRef)
	}

	walked, err := walkTree(ctx, src)
	if err != nil {
		return nil, err
	}

	// ContentRelocated
	if err := moveTree(ctx, src, target, b.dirMode, b.fileMode); err != nil {
		return nil, err
	}

	// DescriptorsComputed
	result := &content.MoveDirectoryResult{
		Directory: content.Item{
			RefID: targetRef,
			Name:  path.Base(targetRef),
			Type:  content.TypeDirectory,
		},
		Items: make([]content.Change, 0, len(walked)),
	}
	for _, w := range walked {
		name := path.Base(w.rel)
		result.Items = append(result.Items, content.Change{
			Old: content.Item{RefID: path.Join(srcRef, w.rel), Name: name, Type: w.typ},
			New: content.Item{RefID: path.Join(targetRef, w.rel), Name: name, Type: w.typ},
		})
	}

	logger.DebugCtx(ctx, "Moved directory content",
		logger.KeyOldRef, srcRef, logger.KeyNewRef, targetRef,
		logger.KeyCount, len(result.Items), logger.KeyBackend, BackendType)

	return result, nil
}

// Healthcheck implements content.Backend.
func (b *Backend) Healthcheck(ctx context.Context) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if err := b.checkOpen(); err != nil {
		return err
	}
	return statDir(b.root, "/")
}

// Close marks the backend as closed.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	return nil
}

// walkTree returns every path under root (relative, slash-separated) in
// lexical order, parents before children. Temp files are skipped.
func walkTree(ctx context.Context, root string) ([]walkedEntry, error) {
	var out []walkedEntry
	err := filepath.WalkDir(root, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if p == root || isTempName(d.Name()) {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		typ := content.TypeFile
		if d.IsDir() {
			typ = content.TypeDirectory
		}
		out = append(out, walkedEntry{rel: filepath.ToSlash(rel), typ: typ})
		return nil
	})
	return out, err
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".") && strings.HasSuffix(name, tmpSuffix)
}

func isCrossDevice(err error) bool {
	return errors.Is(err, syscall.EXDEV)
}

// moveFile renames src to dst, streaming the content across devices.
func moveFile(src, dst string, mode os.FileMode) error {
	err := os.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}
	if err := copyFile(src, dst, mode); err != nil {
		return err
	}
	return os.Remove(src)
}

// moveTree renames the directory src to dst. Across devices the tree is
// copied and the source removed only once every file has been copied.
func moveTree(ctx context.Context, src, dst string, dirMode, fileMode os.FileMode) error {
	err := os.Rename(src, dst)
	if err == nil || !isCrossDevice(err) {
		return err
	}

	err = filepath.WalkDir(src, func(p string, d iofs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		out := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(out, dirMode)
		}
		return copyFile(p, out, fileMode)
	})
	if err != nil {
		_ = os.RemoveAll(dst)
		return err
	}

	return os.RemoveAll(src)
}

func copyFile(src, dst string, mode os.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, mode)
	if err != nil {
		return err
	}
	if _, err := bufpool.Copy(out, in); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return err
	}
	return out.Close()
}

// ctxReader aborts a copy once the context is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

// Ensure Backend implements content.Backend.
var _ content.Backend = (*Backend)(nil)

// Package vfs maps the slash-delimited paths of the virtual tree onto the
// metadata store and the content backend.
//
// A request resolves its path (ParsePath + Populate), mutates content in the
// backend and finally persists metadata. Metadata is never written for
// content that failed to be created or moved.
package vfs

import (
	"context"
	"errors"
	"strings"

	"github.com/marmos91/filebank/pkg/metadata"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// Path is a parsed virtual path. Parts holds the directory chain segments
// and Basename the final segment ("" for the root).
type Path struct {
	raw       string
	allowRoot bool
	parts     []string
	basename  string

	populated bool
	chain     []*metadata.Directory
	dir       *metadata.Directory
	file      *metadata.File
}

// ParsePath validates and splits p. With allowRoot the literal "/" (or any
// path without segments) is accepted and addresses the root; otherwise a
// basename is required.
func ParsePath(p string, allowRoot bool) (*Path, error) {
	if !(allowRoot && p == "/") && !ValidatePath(p) {
		return nil, vfserrors.NewInvalidInputError("Path not valid.")
	}

	var parts []string
	for _, seg := range strings.Split(p, "/") {
		if seg != "" {
			parts = append(parts, seg)
		}
	}

	var base string
	if n := len(parts); n > 0 {
		base = parts[n-1]
		parts = parts[:n-1]
	}
	if base == "" && !allowRoot {
		return nil, vfserrors.NewInvalidInputError("Path not valid.")
	}

	return &Path{
		raw:       p,
		allowRoot: allowRoot,
		parts:     parts,
		basename:  base,
	}, nil
}

// Populate resolves the directory chain and looks up the terminal entity
// under the last chain directory (or the root). A directory takes precedence
// over a file of the same name.
func (p *Path) Populate(ctx context.Context, store metadata.Store) error {
	chain, err := BuildTree(ctx, store, p.parts)
	if err != nil {
		return err
	}

	p.chain = chain
	p.dir, p.file = nil, nil
	p.populated = true

	if p.basename == "" {
		return nil
	}

	parentID := ""
	if n := len(chain); n > 0 {
		parentID = chain[n-1].ID
	}

	dir, err := store.FindDirectory(ctx, parentID, p.basename)
	switch {
	case err == nil:
		p.dir = dir
		return nil
	case !errors.Is(err, metadata.ErrNotFound):
		return vfserrors.NewBackendFailure("resolve "+p.raw, err)
	}

	file, err := store.FindFile(ctx, parentID, p.basename)
	switch {
	case err == nil:
		p.file = file
	case !errors.Is(err, metadata.ErrNotFound):
		return vfserrors.NewBackendFailure("resolve "+p.raw, err)
	}
	return nil
}

// Exists reports whether the terminal entity was found, or the path is the
// root and the root is allowed.
func (p *Path) Exists() bool {
	return p.dir != nil || p.file != nil || p.IsRoot()
}

// IsRoot reports whether the path addresses the root directory.
func (p *Path) IsRoot() bool {
	return p.allowRoot && p.raw == "/"
}

// Path returns the raw path string.
func (p *Path) Path() string { return p.raw }

// Parts returns the directory segments leading to the basename.
func (p *Path) Parts() []string { return p.parts }

// Basename returns the final segment, or "" for the root.
func (p *Path) Basename() string { return p.basename }

// Chain returns the resolved directories for Parts.
func (p *Path) Chain() ([]*metadata.Directory, error) {
	if !p.populated {
		return nil, vfserrors.NewStateError("Subtree is not resolved, call Populate first.")
	}
	return p.chain, nil
}

// SubTree is an alias of Chain.
func (p *Path) SubTree() ([]*metadata.Directory, error) {
	return p.Chain()
}

// Parent returns the last directory of the chain, or nil at the root.
func (p *Path) Parent() (*metadata.Directory, error) {
	chain, err := p.Chain()
	if err != nil {
		return nil, err
	}
	if len(chain) == 0 {
		return nil, nil
	}
	return chain[len(chain)-1], nil
}

// Current returns the resolved terminal entity, or nil when it does not
// exist (including the root).
func (p *Path) Current() *metadata.Entry {
	switch {
	case p.dir != nil:
		return &metadata.Entry{Directory: p.dir}
	case p.file != nil:
		return &metadata.Entry{File: p.file}
	default:
		return nil
	}
}

// Directory returns the terminal directory, if that is what the path names.
func (p *Path) Directory() *metadata.Directory { return p.dir }

// File returns the terminal file, if that is what the path names.
func (p *Path) File() *metadata.File { return p.file }

package vfs

import (
	"context"

	"github.com/marmos91/filebank/pkg/metadata"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// ListItems returns the direct children of dir (nil for the root):
// directories first, then files, each in insertion order.
func ListItems(ctx context.Context, store metadata.Store, dir *metadata.Directory) ([]metadata.Entry, error) {
	parentID := ""
	if dir != nil {
		parentID = dir.ID
	}

	dirs, err := store.ListDirectories(ctx, parentID)
	if err != nil {
		return nil, vfserrors.NewBackendFailure("list directories", err)
	}
	files, err := store.ListFiles(ctx, parentID)
	if err != nil {
		return nil, vfserrors.NewBackendFailure("list files", err)
	}

	entries := make([]metadata.Entry, 0, len(dirs)+len(files))
	for _, d := range dirs {
		entries = append(entries, metadata.Entry{Directory: d})
	}
	for _, f := range files {
		entries = append(entries, metadata.Entry{File: f})
	}
	return entries, nil
}

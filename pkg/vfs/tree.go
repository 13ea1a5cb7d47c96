package vfs

import (
	"context"
	"errors"
	"fmt"

	"github.com/marmos91/filebank/pkg/metadata"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// BuildTree resolves a sequence of directory names, starting at the root,
// into the matching directories. The first segment that does not exist
// aborts the walk with a NotFound error; no partial chain is returned.
func BuildTree(ctx context.Context, store metadata.Store, segments []string) ([]*metadata.Directory, error) {
	chain := make([]*metadata.Directory, 0, len(segments))
	parentID := ""

	for _, name := range segments {
		dir, err := store.FindDirectory(ctx, parentID, name)
		if err != nil {
			if errors.Is(err, metadata.ErrNotFound) {
				return nil, vfserrors.NewNotFoundError("", fmt.Sprintf("Directory %s not found.", name))
			}
			return nil, vfserrors.NewBackendFailure("resolve directory "+name, err)
		}
		chain = append(chain, dir)
		parentID = dir.ID
	}

	return chain, nil
}

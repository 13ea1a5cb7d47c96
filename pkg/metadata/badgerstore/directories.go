package badgerstore

import (
	"context"
	"time"

	"github.com/marmos91/filebank/pkg/metadata"
)

var directories = table[metadata.Directory]{
	ns:      nsDirectory,
	id:      func(d *metadata.Directory) *string { return &d.ID },
	parent:  func(d *metadata.Directory) string { return d.ParentID },
	name:    func(d *metadata.Directory) string { return d.Name },
	ref:     func(d *metadata.Directory) *string { return &d.RefID },
	seq:     func(d *metadata.Directory) *int64 { return &d.Seq },
	created: func(d *metadata.Directory) *time.Time { return &d.CreatedAt },
	updated: func(d *metadata.Directory) *time.Time { return &d.UpdatedAt },
}

func (s *Store) CreateDirectory(ctx context.Context, dir *metadata.Directory) error {
	if dir.Metadata == nil {
		dir.Metadata = metadata.Attributes{}
	}
	return directories.create(ctx, s, dir)
}

func (s *Store) GetDirectory(ctx context.Context, id string) (*metadata.Directory, error) {
	return directories.get(ctx, s, id)
}

func (s *Store) FindDirectory(ctx context.Context, parentID, name string) (*metadata.Directory, error) {
	return directories.find(ctx, s, parentID, name)
}

func (s *Store) ListDirectories(ctx context.Context, parentID string) ([]*metadata.Directory, error) {
	return directories.list(ctx, s, parentID)
}

func (s *Store) UpdateDirectory(ctx context.Context, dir *metadata.Directory) error {
	return directories.save(ctx, s, dir)
}

func (s *Store) DeleteDirectory(ctx context.Context, id string) error {
	return directories.remove(ctx, s, id)
}

func (s *Store) UpdateDirectoryRef(ctx context.Context, oldRef, newRef string) (int, error) {
	return directories.rewriteRef(ctx, s, oldRef, newRef)
}

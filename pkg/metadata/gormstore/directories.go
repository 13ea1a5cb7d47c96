package gormstore

import (
	"context"

	"github.com/marmos91/filebank/pkg/metadata"
)

func (s *GORMStore) CreateDirectory(ctx context.Context, dir *metadata.Directory) error {
	if dir.Seq == 0 {
		dir.Seq = metadata.NextSeq()
	}
	if dir.Metadata == nil {
		dir.Metadata = metadata.Attributes{}
	}
	return createWithID(s.db, ctx, dir, func(d *metadata.Directory, id string) { d.ID = id }, dir.ID)
}

func (s *GORMStore) GetDirectory(ctx context.Context, id string) (*metadata.Directory, error) {
	return getByField[metadata.Directory](s.db, ctx, "id", id)
}

func (s *GORMStore) FindDirectory(ctx context.Context, parentID, name string) (*metadata.Directory, error) {
	return findChild[metadata.Directory](s.db, ctx, "parent_id", parentID, name)
}

func (s *GORMStore) ListDirectories(ctx context.Context, parentID string) ([]*metadata.Directory, error) {
	return listChildren[metadata.Directory](s.db, ctx, "parent_id", parentID)
}

func (s *GORMStore) UpdateDirectory(ctx context.Context, dir *metadata.Directory) error {
	return updateAll(s.db, ctx, dir, dir.ID)
}

func (s *GORMStore) DeleteDirectory(ctx context.Context, id string) error {
	return deleteByField[metadata.Directory](s.db, ctx, "id", id)
}

func (s *GORMStore) UpdateDirectoryRef(ctx context.Context, oldRef, newRef string) (int, error) {
	return rewriteRef[metadata.Directory](s.db, ctx, oldRef, newRef)
}

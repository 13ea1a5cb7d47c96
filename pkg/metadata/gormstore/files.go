package gormstore

import (
	"context"

	"github.com/marmos91/filebank/pkg/metadata"
)

func (s *GORMStore) CreateFile(ctx context.Context, file *metadata.File) error {
	if file.Seq == 0 {
		file.Seq = metadata.NextSeq()
	}
	if file.Metadata == nil {
		file.Metadata = metadata.Attributes{}
	}
	return createWithID(s.db, ctx, file, func(f *metadata.File, id string) { f.ID = id }, file.ID)
}

func (s *GORMStore) GetFile(ctx context.Context, id string) (*metadata.File, error) {
	return getByField[metadata.File](s.db, ctx, "id", id)
}

func (s *GORMStore) FindFile(ctx context.Context, directoryID, name string) (*metadata.File, error) {
	return findChild[metadata.File](s.db, ctx, "directory_id", directoryID, name)
}

func (s *GORMStore) ListFiles(ctx context.Context, directoryID string) ([]*metadata.File, error) {
	return listChildren[metadata.File](s.db, ctx, "directory_id", directoryID)
}

func (s *GORMStore) UpdateFile(ctx context.Context, file *metadata.File) error {
	return updateAll(s.db, ctx, file, file.ID)
}

func (s *GORMStore) DeleteFile(ctx context.Context, id string) error {
	return deleteByField[metadata.File](s.db, ctx, "id", id)
}

func (s *GORMStore) UpdateFileRef(ctx context.Context, oldRef, newRef string) (int, error) {
	return rewriteRef[metadata.File](s.db, ctx, oldRef, newRef)
}

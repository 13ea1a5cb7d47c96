package badgerstore

import (
	"context"
	"time"

	"github.com/marmos91/filebank/pkg/metadata"
)

var files = table[metadata.File]{
	ns:      nsFile,
	id:      func(f *metadata.File) *string { return &f.ID },
	parent:  func(f *metadata.File) string { return f.DirectoryID },
	name:    func(f *metadata.File) string { return f.Name },
	ref:     func(f *metadata.File) *string { return &f.RefID },
	seq:     func(f *metadata.File) *int64 { return &f.Seq },
	created: func(f *metadata.File) *time.Time { return &f.CreatedAt },
	updated: func(f *metadata.File) *time.Time { return &f.UpdatedAt },
}

func (s *Store) CreateFile(ctx context.Context, file *metadata.File) error {
	if file.Metadata == nil {
		file.Metadata = metadata.Attributes{}
	}
	return files.create(ctx, s, file)
}

func (s *Store) GetFile(ctx context.Context, id string) (*metadata.File, error) {
	return files.get(ctx, s, id)
}

func (s *Store) FindFile(ctx context.Context, directoryID, name string) (*metadata.File, error) {
	return files.find(ctx, s, directoryID, name)
}

func (s *Store) ListFiles(ctx context.Context, directoryID string) ([]*metadata.File, error) {
	return files.list(ctx, s, directoryID)
}

func (s *Store) UpdateFile(ctx context.Context, file *metadata.File) error {
	return files.save(ctx, s, file)
}

func (s *Store) DeleteFile(ctx context.Context, id string) error {
	return files.remove(ctx, s, id)
}

func (s *Store) UpdateFileRef(ctx context.Context, oldRef, newRef string) (int, error) {
	return files.rewriteRef(ctx, s, oldRef, newRef)
}

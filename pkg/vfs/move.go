package vfs

import (
	"context"
	"path"
	"strings"
	"time"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/metadata"
	vfserrors "github.com/marmos91/filebank/pkg/vfs/errors"
)

// Move relocates the item at sourcePath according to targetPath.
//
// A directory is moved into the target directory when it exists, else into
// the last existing directory of the target chain, else renamed at the root
// to the target basename. A file must be moved into an existing directory.
//
// The content backend moves first. Metadata is rewritten afterwards: every
// descendant's reference, then the moved entity itself. If that second phase
// fails the content stays where it was moved; the failure is logged and
// counted as a move inconsistency.
func (s *Service) Move(ctx context.Context, sourcePath, targetPath string) (entry metadata.Entry, err error) {
	defer func(start time.Time) { s.observe("move", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanMove, sourcePath, telemetry.Target(targetPath))
	defer func() { telemetry.EndSpan(span, err) }()

	src, err := ParsePath(sourcePath, false)
	if err != nil {
		return metadata.Entry{}, err
	}
	if err := src.Populate(ctx, s.store); err != nil {
		return metadata.Entry{}, err
	}

	target, err := ParsePath(targetPath, true)
	if err != nil {
		return metadata.Entry{}, err
	}
	if target.Basename() == "" {
		return metadata.Entry{}, vfserrors.NewInvalidInputError("Target name empty.",
			vfserrors.FieldError{Field: "target", Message: "must name an item"})
	}
	if err := target.Populate(ctx, s.store); err != nil {
		return metadata.Entry{}, err
	}

	switch {
	case src.Directory() != nil:
		dir, err := s.moveDirectory(ctx, src.Directory(), target)
		if err != nil {
			return metadata.Entry{}, err
		}
		return metadata.Entry{Directory: dir}, nil

	case src.File() != nil:
		file, err := s.moveFile(ctx, src.File(), target)
		if err != nil {
			return metadata.Entry{}, err
		}
		return metadata.Entry{File: file}, nil

	default:
		return metadata.Entry{}, vfserrors.NewNotFoundError(sourcePath, "Not found.")
	}
}

func (s *Service) moveDirectory(ctx context.Context, dir *metadata.Directory, target *Path) (*metadata.Directory, error) {
	if target.File() != nil {
		return nil, vfserrors.NewConflictError(target.Path(), "Target is a file.", nil)
	}

	// Destination: the target directory, else the deepest existing chain
	// directory, else an unmaterialized destination at the root.
	destDir := target.Directory()
	if destDir == nil {
		destDir, _ = target.Parent()
	}

	var (
		dest     content.Item
		parentID string
		newName  string
	)
	if destDir != nil {
		if destDir.ID == dir.ID || isWithin(destDir.RefID, dir.RefID) {
			return nil, vfserrors.NewInvalidInputError("Cannot move a directory into itself.",
				vfserrors.FieldError{Field: "target", Message: "is inside the source directory"})
		}
		dest = destDir.Item()
		parentID = destDir.ID
		newName = dir.Name
	} else {
		dest = content.Item{Name: target.Basename(), Type: content.TypeDirectory}
		newName = target.Basename()
	}

	if err := s.ensureFree(ctx, parentID, newName); err != nil {
		return nil, err
	}

	res, err := s.backend.MoveDirectory(ctx, dir.Item(), dest)
	if err != nil {
		return nil, contentError(target.Path(), "move directory", err)
	}

	oldRef := dir.RefID
	if err := s.applyChanges(ctx, res.Items); err != nil {
		return nil, s.inconsistent(ctx, content.TypeDirectory, oldRef, res.Directory.RefID, err)
	}

	dir.RefID = res.Directory.RefID
	dir.Name = res.Directory.Name
	dir.ParentID = parentID
	if err := s.store.UpdateDirectory(ctx, dir); err != nil {
		return nil, s.inconsistent(ctx, content.TypeDirectory, oldRef, dir.RefID, err)
	}

	logger.InfoCtx(ctx, "Directory moved",
		logger.KeyOldRef, oldRef,
		logger.KeyNewRef, dir.RefID,
		logger.KeyCount, len(res.Items))
	return dir, nil
}

func (s *Service) moveFile(ctx context.Context, file *metadata.File, target *Path) (*metadata.File, error) {
	destDir := target.Directory()
	if destDir == nil {
		return nil, vfserrors.NewNotFoundError(target.Path(), "Target directory not found.")
	}

	if err := s.ensureFree(ctx, destDir.ID, file.Name); err != nil {
		return nil, err
	}

	moved, err := s.backend.MoveFile(ctx, file.Item(), destDir.Item())
	if err != nil {
		return nil, contentError(target.Path(), "move file", err)
	}

	oldRef := file.RefID
	file.RefID = moved.RefID
	file.DirectoryID = destDir.ID
	if err := s.store.UpdateFile(ctx, file); err != nil {
		return nil, s.inconsistent(ctx, content.TypeFile, oldRef, moved.RefID, err)
	}

	logger.InfoCtx(ctx, "File moved", logger.KeyOldRef, oldRef, logger.KeyNewRef, file.RefID)
	return file, nil
}

// applyChanges rewrites the references of every moved descendant.
func (s *Service) applyChanges(ctx context.Context, changes []content.Change) error {
	for _, c := range changes {
		var err error
		if c.New.Type == content.TypeDirectory {
			_, err = s.store.UpdateDirectoryRef(ctx, c.Old.RefID, c.New.RefID)
		} else {
			_, err = s.store.UpdateFileRef(ctx, c.Old.RefID, c.New.RefID)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// inconsistent reports content that moved while its metadata did not follow.
func (s *Service) inconsistent(ctx context.Context, t content.ItemType, oldRef, newRef string, cause error) error {
	logger.ErrorCtx(ctx, "Content moved but metadata update failed",
		logger.KeyType, string(t),
		logger.KeyOldRef, oldRef,
		logger.KeyNewRef, newRef,
		logger.KeyError, cause)
	if s.opts.Metrics != nil {
		s.opts.Metrics.RecordMoveInconsistency(t)
	}
	return vfserrors.NewBackendFailure("persist moved "+string(t), cause)
}

// isWithin reports whether ref is root or lies below it.
func isWithin(ref, root string) bool {
	ref = strings.TrimSuffix(path.Clean("/"+ref), "/")
	root = strings.TrimSuffix(path.Clean("/"+root), "/")
	return ref == root || strings.HasPrefix(ref, root+"/")
}

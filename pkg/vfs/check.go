package vfs

import (
	"context"
	"path"
	"time"

	"github.com/marmos91/filebank/internal/logger"
	"github.com/marmos91/filebank/internal/telemetry"
	"github.com/marmos91/filebank/pkg/content"
	"github.com/marmos91/filebank/pkg/metadata"
)

// Anomaly is a metadata entry whose content is missing from the backend.
type Anomaly struct {
	ID    string           `json:"id"`
	Type  content.ItemType `json:"type"`
	Path  string           `json:"path"`
	RefID string           `json:"refId"`
}

// CheckReport summarizes a consistency walk.
type CheckReport struct {
	Directories int       `json:"directories"`
	Files       int       `json:"files"`
	Missing     []Anomaly `json:"missing"`
}

// Consistent reports whether no anomaly was found.
func (r *CheckReport) Consistent() bool { return len(r.Missing) == 0 }

// Check walks the whole metadata tree and reports every entry whose RefID
// does not exist in the content backend.
func (s *Service) Check(ctx context.Context) (report *CheckReport, err error) {
	defer func(start time.Time) { s.observe("check", start, err) }(time.Now())
	ctx, span := telemetry.StartFSSpan(ctx, telemetry.SpanCheck, "/")
	defer func() { telemetry.EndSpan(span, err) }()

	report = &CheckReport{Missing: []Anomaly{}}
	if err := s.checkDir(ctx, nil, "/", report); err != nil {
		return nil, err
	}

	logger.InfoCtx(ctx, "Consistency check finished",
		"directories", report.Directories,
		"files", report.Files,
		"missing", len(report.Missing))
	return report, nil
}

func (s *Service) checkDir(ctx context.Context, dir *metadata.Directory, dirPath string, report *CheckReport) error {
	entries, err := ListItems(ctx, s.store, dir)
	if err != nil {
		return err
	}

	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}

		p := path.Join(dirPath, e.Name())
		ok, err := s.backend.Exists(ctx, e.RefID())
		if err != nil {
			return contentError(p, "check content", err)
		}
		if e.Directory != nil {
			report.Directories++
		} else {
			report.Files++
		}
		if !ok {
			a := Anomaly{Type: e.Type(), Path: p, RefID: e.RefID()}
			if e.Directory != nil {
				a.ID = e.Directory.ID
			} else {
				a.ID = e.File.ID
			}
			report.Missing = append(report.Missing, a)
			logger.WarnCtx(ctx, "Content missing for metadata entry",
				logger.KeyPath, p, logger.KeyRefID, a.RefID, logger.KeyType, string(a.Type))
		}

		if e.Directory != nil {
			if err := s.checkDir(ctx, e.Directory, p, report); err != nil {
				return err
			}
		}
	}
	return nil
}

package project

import (
	"context"
	"os"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/layout"
)

// RemoveProjectFile removes file_id's database rows (which cascade to its
// FileTargets and Artifacts) and then removes the file's own stored copy
// plus every legacy-plane artifact path (xliff, jliff, tag-map) it produced,
// per spec.md §4.9.
func (s *Service) RemoveProjectFile(ctx context.Context, projectID, fileID uuid.UUID) error {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return err
	}

	file, err := s.store.GetProjectFile(ctx, fileID)
	if err != nil {
		return err
	}
	if file == nil || file.ProjectID != projectID {
		return apperr.NotFound("file %s not found in project %s", fileID, projectID)
	}

	conversions, err := s.store.ListConversionsByProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.store.RemoveProjectFile(ctx, fileID); err != nil {
		return err
	}

	absOriginal := filepathJoin(p.RootPath, file.StoredRelPath)
	if err := layout.RemoveFileAndCleanup(p.RootPath, absOriginal); err != nil {
		s.log.Warn("failed to remove stored file on disk", applog.F("path", absOriginal), applog.F("err", err))
	}

	for _, c := range conversions {
		if c.ProjectFileID != fileID {
			continue
		}
		for _, relPath := range []*string{c.XLIFFRelPath, c.JLIFFRelPath, c.TagMapRelPath} {
			if relPath == nil {
				continue
			}
			abs := filepathJoin(p.RootPath, *relPath)
			if err := layout.RemoveFileAndCleanup(p.RootPath, abs); err != nil && !os.IsNotExist(err) {
				s.log.Warn("failed to remove legacy artifact on disk", applog.F("path", abs), applog.F("err", err))
			}
		}
	}

	s.log.Info("removed project file", applog.F("project_id", projectID), applog.F("file_id", fileID))
	return nil
}

// DeleteProject deletes project_id's rows (cascading to every child
// aggregate) and, if any rows were affected, recursively removes its
// directory tree, tolerating the directory already being gone.
func (s *Service) DeleteProject(ctx context.Context, projectID uuid.UUID) error {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, projectID); err != nil {
		return err
	}

	if p == nil {
		return nil
	}
	if err := os.RemoveAll(p.RootPath); err != nil && !os.IsNotExist(err) {
		return apperr.Internal(err, "failed to remove project directory %s", p.RootPath)
	}

	s.log.Info("deleted project", applog.F("project_id", projectID))
	return nil
}

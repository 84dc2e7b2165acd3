package project

import (
	"context"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/model"
)

// ListProjects passes through to the store; kept on the façade so callers
// depend on one surface rather than reaching past it into internal/store.
func (s *Service) ListProjects(ctx context.Context) ([]model.Project, error) {
	return s.store.ListProjects(ctx)
}

// ProjectDetails aggregates a project with its files, language pairs, and
// file targets, the shape the CLI's "show" command and the conversion
// commands need.
type ProjectDetails struct {
	Project       model.Project
	Files         []model.ProjectFile
	LanguagePairs []model.ProjectLanguagePair
	FileTargets   map[uuid.UUID][]model.FileTarget // keyed by file id
}

// GetProjectDetails loads a project along with its files, language pairs,
// and each file's FileTargets.
func (s *Service) GetProjectDetails(ctx context.Context, projectID uuid.UUID) (*ProjectDetails, error) {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	files, err := s.store.ListProjectFiles(ctx, projectID)
	if err != nil {
		return nil, err
	}
	pairs, err := s.store.ListLanguagePairs(ctx, projectID)
	if err != nil {
		return nil, err
	}

	targets := make(map[uuid.UUID][]model.FileTarget, len(files))
	for _, f := range files {
		ft, err := s.store.ListFileTargets(ctx, f.ID)
		if err != nil {
			return nil, err
		}
		targets[f.ID] = ft
	}

	return &ProjectDetails{
		Project:       *p,
		Files:         files,
		LanguagePairs: pairs,
		FileTargets:   targets,
	}, nil
}

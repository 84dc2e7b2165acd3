// Package project is the Project Service Façade (C9): the orchestration
// layer above internal/store, internal/layout, internal/jliff, and
// internal/filelock. Each exported method validates its inputs, stages
// filesystem effects, then commits the corresponding database rows, rolling
// back any filesystem work it staged if the database step fails.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/filelock"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/store"
)

// Service wires the project store, layout manager, XLIFF/JLIFF converter,
// and per-path write coordinator into the operations spec.md §4.9 describes.
type Service struct {
	store      store.ProjectStore
	locks      *filelock.Registry
	projectDir string // <projects_root>, parent of every project's own directory
	log        *applog.Logger
}

// New returns a Service rooted at projectsRoot, the parent directory under
// which every project's <project_id>-<slug> folder is allocated.
func New(st store.ProjectStore, projectsRoot string) *Service {
	return &Service{
		store:      st,
		locks:      filelock.New(),
		projectDir: projectsRoot,
		log:        applog.New("project"),
	}
}

// validateProjectName enforces spec.md §3: 2-120 chars, at least one
// alphanumeric.
func validateProjectName(name string) error {
	trimmed := strings.TrimSpace(name)
	if n := utf8.RuneCountInString(trimmed); n < 2 || n > 120 {
		return apperr.Validation("project name must be between 2 and 120 characters")
	}
	hasAlnum := false
	for _, r := range trimmed {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			hasAlnum = true
			break
		}
	}
	if !hasAlnum {
		return apperr.Validation("project name must contain at least one alphanumeric character")
	}
	return nil
}

// trimmedLangOrNil trims lang and returns nil when the result is empty, per
// spec.md §4.9 step 1 ("trim, empty→None").
func trimmedLangOrNil(lang string) *string {
	trimmed := strings.TrimSpace(lang)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// StagedFile is one caller-supplied absolute source path validated and
// deduplicated by create/add-files, ready to be copied into a project
// directory.
type StagedFile struct {
	AbsPath string
	Role    model.FileRole
}

// validateAndDedupeFiles canonicalizes every path, rejects missing files and
// disallowed extensions, and deduplicates by canonical path, per spec.md
// §4.9 step 2.
func validateAndDedupeFiles(files []StagedFile) ([]StagedFile, error) {
	seen := make(map[string]bool, len(files))
	var out []StagedFile
	for _, f := range files {
		abs, err := filepath.Abs(f.AbsPath)
		if err != nil {
			return nil, apperr.Validation("cannot resolve file path %q: %v", f.AbsPath, err)
		}
		abs = filepath.Clean(abs)
		if seen[abs] {
			continue
		}
		info, err := os.Stat(abs)
		if err != nil {
			return nil, apperr.Validation("file %q does not exist or is unreadable", abs)
		}
		if info.IsDir() {
			return nil, apperr.Validation("path %q is a directory, not a file", abs)
		}
		ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(abs)), ".")
		if !model.IsAllowedExtension(ext) {
			return nil, apperr.Validation("file %q has unsupported extension %q", abs, ext)
		}
		seen[abs] = true
		role := f.Role
		if role == "" {
			role = model.FileRoleSource
		}
		out = append(out, StagedFile{AbsPath: abs, Role: role})
	}
	if len(out) == 0 {
		return nil, apperr.Validation("no files to import after validation and deduplication")
	}
	return out, nil
}

// nextAvailableName returns name unless dir/name already exists, in which
// case it appends "-N" (before the extension) for increasing N until the
// candidate is free. Grounded on the original's next_available_file_name.
func nextAvailableName(dir, name string) string {
	candidate := name
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for n := 1; ; n++ {
		if _, err := os.Stat(filepath.Join(dir, candidate)); os.IsNotExist(err) {
			return candidate
		}
		candidate = fmt.Sprintf("%s-%d%s", stem, n, ext)
	}
}

// copiedFile tracks one file actually written to disk during a staging pass,
// so a later failure can remove exactly what was copied.
type copiedFile struct {
	absPath string
}

// removeStagedOnFailure best-effort removes every path staged before an
// operation failed partway through.
func removeStagedOnFailure(log *applog.Logger, copied []copiedFile) {
	for _, c := range copied {
		if err := os.Remove(c.absPath); err != nil && !os.IsNotExist(err) {
			log.Warn("cleanup after failure could not remove staged file", applog.F("path", c.absPath), applog.F("err", err))
		}
	}
}

// resolveProjectRoot loads a project by id and returns it. A missing project
// surfaces as the store's own not-found error.
func (s *Service) resolveProjectRoot(ctx context.Context, projectID uuid.UUID) (*model.Project, error) {
	p, err := s.store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, apperr.NotFound("project %s not found", projectID)
	}
	return p, nil
}

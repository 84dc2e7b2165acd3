package project

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/layout"
	"github.com/wegentic/translator-core/internal/model"
)

// maxConcurrentCopies bounds how many files copyFilesIntoRoot copies at
// once, the same bounded-fan-out shape internal/backfill uses for its disk
// scan.
const maxConcurrentCopies = 4

// CreateProjectResult is returned by CreateProject, per spec.md §4.9 step 6.
type CreateProjectResult struct {
	ProjectID uuid.UUID
	Slug      string
	Folder    string
	FileCount int
}

// CreateProject validates name/type/langs/files, allocates the project
// directory, copies every file into it, and inserts the Project and
// ProjectFile rows transactionally. Any filesystem or database failure
// unwinds everything staged so far.
func (s *Service) CreateProject(
	ctx context.Context,
	name string,
	projectType model.ProjectType,
	ownerUserID uuid.UUID,
	defaultSrcLang, defaultTrgLang string,
	files []StagedFile,
) (*CreateProjectResult, error) {
	if err := validateProjectName(name); err != nil {
		return nil, err
	}
	switch projectType {
	case model.ProjectTypeTranslation, model.ProjectTypeRAG:
	default:
		return nil, apperr.Validation("unsupported project type %q", projectType)
	}

	staged, err := validateAndDedupeFiles(files)
	if err != nil {
		return nil, err
	}

	projectID := uuid.New()
	slug := layout.BuildProjectSlug(name, projectID)
	folderName := fmt.Sprintf("%s-%s", projectID.String(), slug)
	root := filepathJoin(s.projectDir, folderName)

	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, apperr.Internal(err, "failed to create project directory")
	}

	copied, newFiles, err := s.copyFilesIntoRoot(root, staged)
	if err != nil {
		removeStagedOnFailure(s.log, copied)
		_ = os.RemoveAll(root)
		return nil, err
	}

	np := model.NewProject{
		ID:             projectID,
		Name:           name,
		Slug:           slug,
		ProjectType:    projectType,
		RootPath:       root,
		OwnerUserID:    ownerUserID,
		DefaultSrcLang: trimmedLangOrNil(defaultSrcLang),
		DefaultTgtLang: trimmedLangOrNil(defaultTrgLang),
	}

	_, storedFiles, err := s.store.InsertProjectWithFiles(ctx, np, newFiles)
	if err != nil {
		removeStagedOnFailure(s.log, copied)
		_ = os.RemoveAll(root)
		return nil, err
	}

	s.log.Info("created project", applog.F("project_id", projectID), applog.F("slug", slug), applog.F("files", len(storedFiles)))

	return &CreateProjectResult{
		ProjectID: projectID,
		Slug:      slug,
		Folder:    root,
		FileCount: len(storedFiles),
	}, nil
}

// AddFilesToProject copies the given files into an existing project's
// directory, inserts their ProjectFile rows, and seeds pending Conversion
// rows for every convertible file using the project's default language pair.
// When the project lacks a default source or target language, no Conversion
// rows are seeded.
func (s *Service) AddFilesToProject(ctx context.Context, projectID uuid.UUID, files []StagedFile) ([]model.ProjectFile, error) {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	staged, err := validateAndDedupeFiles(files)
	if err != nil {
		return nil, err
	}

	copied, newFiles, err := s.copyFilesIntoRoot(p.RootPath, staged)
	if err != nil {
		removeStagedOnFailure(s.log, copied)
		return nil, err
	}

	stored, err := s.store.AddFilesToProject(ctx, projectID, newFiles)
	if err != nil {
		removeStagedOnFailure(s.log, copied)
		return nil, err
	}

	srcLang, trgLang := "", ""
	if p.DefaultSrcLang != nil {
		srcLang = *p.DefaultSrcLang
	}
	if p.DefaultTgtLang != nil {
		trgLang = *p.DefaultTgtLang
	}
	if srcLang != "" && trgLang != "" {
		for _, f := range stored {
			if !model.IsConvertibleExtension(f.Ext) {
				continue
			}
			if _, err := s.store.FindOrCreateConversionForFile(ctx, f.ID, model.ConversionRequest{
				SrcLang: srcLang, TrgLang: trgLang, Version: "2.0", Paragraph: true, Embed: true,
			}); err != nil {
				s.log.Warn("failed to seed conversion for added file", applog.F("file_id", f.ID), applog.F("err", err))
			}
		}
	}

	s.log.Info("added files to project", applog.F("project_id", projectID), applog.F("files", len(stored)))
	return stored, nil
}

// copyFilesIntoRoot copies every staged file into root, resolving name
// collisions with nextAvailableName, and builds the corresponding
// model.NewProjectFile rows. On any copy error it returns the list of files
// it had already written, so the caller can clean them up.
func (s *Service) copyFilesIntoRoot(root string, staged []StagedFile) ([]copiedFile, []model.NewProjectFile, error) {
	destAbsPaths := make([]string, len(staged))
	results := make([]model.NewProjectFile, len(staged))

	// Claiming destination names and creating parent directories must happen
	// sequentially, since nextAvailableName reads the directory's current
	// contents; the copy+checksum of each file's bytes is the expensive part
	// and is safe to fan out once every destination path is claimed.
	for i, f := range staged {
		fileID := uuid.New()
		originalName := baseName(f.AbsPath)

		relPath := layout.BuildOriginalStoredRelPath(fileID, originalName)
		destAbs := filepathJoin(root, relPath)
		destDir := dirOf(destAbs)
		if err := os.MkdirAll(destDir, 0o755); err != nil {
			return nil, nil, apperr.Internal(err, "failed to create directory for imported file")
		}
		destAbs = filepathJoin(destDir, nextAvailableName(destDir, baseName(destAbs)))
		destAbsPaths[i] = destAbs

		rel, err := relOf(root, destAbs)
		if err != nil {
			return nil, nil, apperr.Internal(err, "failed to compute stored relative path")
		}

		results[i] = model.NewProjectFile{
			ID:            fileID,
			OriginalName:  originalName,
			OriginalPath:  f.AbsPath,
			StoredRelPath: rel,
			Ext:           extOf(originalName),
			Role:          f.Role,
		}
	}

	g, _ := errgroup.WithContext(context.Background())
	g.SetLimit(maxConcurrentCopies)
	for i, f := range staged {
		i, f := i, f
		g.Go(func() error {
			size, checksum, err := copyFileWithChecksum(f.AbsPath, destAbsPaths[i])
			if err != nil {
				return apperr.Internal(err, "failed to copy file %q into project", f.AbsPath)
			}
			results[i].SizeBytes = &size
			results[i].ChecksumSHA256 = &checksum
			return nil
		})
	}

	waitErr := g.Wait()

	var copied []copiedFile
	for _, p := range destAbsPaths {
		if _, err := os.Stat(p); err == nil {
			copied = append(copied, copiedFile{absPath: p})
		}
	}

	if waitErr != nil {
		return copied, nil, waitErr
	}

	return copied, results, nil
}

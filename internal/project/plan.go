package project

import (
	"context"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/layout"
	"github.com/wegentic/translator-core/internal/model"
)

// ConversionTask is one planned XLIFF extraction, per spec.md §4.9's
// build_conversions_plan.
type ConversionTask struct {
	ConversionID  uuid.UUID
	ProjectFileID uuid.UUID
	InputAbsPath  string
	OutputAbsPath string
	SrcLang       string
	TrgLang       string
	Version       string
	Paragraph     bool
	Embed         bool
}

// BuildConversionsPlan returns one ConversionTask for every convertible file
// whose Conversion row still lacks an xliff_rel_path, deriving (src, trg,
// version) from the conversion row or falling back to the project's
// defaults, per spec.md §4.9.
func (s *Service) BuildConversionsPlan(ctx context.Context, projectID uuid.UUID) ([]ConversionTask, error) {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	if _, err := layout.EnsureSubdir(p.RootPath, layout.DirXLIFF); err != nil {
		return nil, apperr.Internal(err, "failed to create xliff output directory")
	}

	if p.DefaultSrcLang != nil && p.DefaultTgtLang != nil {
		if _, err := s.store.ListPendingConversions(ctx, projectID, *p.DefaultSrcLang, *p.DefaultTgtLang); err != nil {
			return nil, err
		}
	}

	files, err := s.store.ListProjectFiles(ctx, projectID)
	if err != nil {
		return nil, err
	}
	fileByID := make(map[uuid.UUID]model.ProjectFile, len(files))
	for _, f := range files {
		fileByID[f.ID] = f
	}

	conversions, err := s.store.ListConversionsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	projectSrc, projectTrg := "", ""
	if p.DefaultSrcLang != nil {
		projectSrc = *p.DefaultSrcLang
	}
	if p.DefaultTgtLang != nil {
		projectTrg = *p.DefaultTgtLang
	}

	var tasks []ConversionTask
	for _, c := range conversions {
		if c.XLIFFRelPath != nil {
			continue
		}
		file, ok := fileByID[c.ProjectFileID]
		if !ok {
			continue
		}

		src := c.SrcLang
		if strings.TrimSpace(src) == "" {
			src = projectSrc
		}
		trg := c.TrgLang
		if strings.TrimSpace(trg) == "" {
			trg = projectTrg
		}

		stem := stemOfStoredRelPath(file.StoredRelPath)
		outputRel := layout.BuildLegacyXLIFFRelPath(stem, src, trg)

		tasks = append(tasks, ConversionTask{
			ConversionID:  c.ID,
			ProjectFileID: file.ID,
			InputAbsPath:  filepathJoin(p.RootPath, file.StoredRelPath),
			OutputAbsPath: filepathJoin(p.RootPath, outputRel),
			SrcLang:       src,
			TrgLang:       trg,
			Version:       c.Version,
			Paragraph:     c.Paragraph,
			Embed:         c.Embed,
		})
	}

	return tasks, nil
}

// stemOfStoredRelPath returns the base name of relPath with its extension
// removed, the way the original's file_stem() does.
func stemOfStoredRelPath(relPath string) string {
	base := baseName(relPath)
	if i := strings.LastIndex(base, "."); i > 0 {
		return base[:i]
	}
	return base
}

// ExecutionOutcome reports what ExecuteConversionsPlan did with one task.
type ExecutionOutcome struct {
	ConversionID uuid.UUID
	Converted    bool
	Err          error
}

// ExecuteConversionsPlan drives ConvertXLIFFToJLIFF for every task whose
// XLIFF output already exists on disk (produced out of band by an
// extraction tool this module does not implement), then records the result
// via UpsertConversionStatus. A task whose XLIFF file is still missing is
// left pending and reported with a non-nil Err rather than failing the
// whole batch, grounded on the original's conversion-plan integration test.
func (s *Service) ExecuteConversionsPlan(ctx context.Context, projectID uuid.UUID, tasks []ConversionTask, operator string) ([]ExecutionOutcome, error) {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	outcomes := make([]ExecutionOutcome, 0, len(tasks))

	for _, t := range tasks {
		outcome := ExecutionOutcome{ConversionID: t.ConversionID}

		if !fileExists(t.OutputAbsPath) {
			outcome.Err = apperr.Validation("XLIFF input %q for conversion %s does not exist yet", t.OutputAbsPath, t.ConversionID)
			outcomes = append(outcomes, outcome)
			continue
		}

		if _, err := s.store.UpsertConversionStatus(ctx, t.ConversionID, model.ConversionRunning, nil, nil, nil, nil); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		result, err := s.ConvertXLIFFToJLIFF(ctx, projectID, t.ConversionID, t.OutputAbsPath, operator)
		if err != nil {
			msg := err.Error()
			if _, statusErr := s.store.UpsertConversionStatus(ctx, t.ConversionID, model.ConversionFailed, nil, nil, nil, &msg); statusErr != nil {
				s.log.Error("failed to record conversion failure", applog.F("conversion_id", t.ConversionID), applog.F("err", statusErr))
			}
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		xliffRel, err := relOf(p.RootPath, t.OutputAbsPath)
		if err != nil {
			xliffRel = t.OutputAbsPath
		}
		if _, err := s.store.UpsertConversionStatus(ctx, t.ConversionID, model.ConversionCompleted, &xliffRel, &result.JLIFFRelPath, &result.TagMapRelPath, nil); err != nil {
			outcome.Err = err
			outcomes = append(outcomes, outcome)
			continue
		}

		outcome.Converted = true
		outcomes = append(outcomes, outcome)
	}

	return outcomes, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

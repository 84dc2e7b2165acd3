package project

import (
	"context"
	"encoding/json"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/jliff"
	"github.com/wegentic/translator-core/internal/layout"
	"github.com/wegentic/translator-core/internal/model"
)

// JLIFFConversionResult is the abs/rel path pair ConvertXLIFFToJLIFF hands
// back to the caller, who is responsible for persisting them via
// UpsertConversionStatus.
type JLIFFConversionResult struct {
	ConversionID uuid.UUID
	FileID       string
	JLIFFAbsPath string
	JLIFFRelPath string
	TagMapAbsPath string
	TagMapRelPath string
}

// ConvertXLIFFToJLIFF loads conversionID's row (validating it belongs to
// projectID), ensures root/jliff exists, and runs the streaming XLIFF→JLIFF
// converter (C7) against xliffAbsPath. If the document contains more than
// one <file> element, the first is converted and the rest are logged and
// skipped, per spec.md §4.9. The caller applies the returned status via
// UpsertConversionStatus; this method never mutates the Conversion row.
func (s *Service) ConvertXLIFFToJLIFF(ctx context.Context, projectID, conversionID uuid.UUID, xliffAbsPath, operator string) (*JLIFFConversionResult, error) {
	p, err := s.resolveProjectRoot(ctx, projectID)
	if err != nil {
		return nil, err
	}

	conversion, err := s.store.GetConversion(ctx, conversionID)
	if err != nil {
		return nil, apperr.Validation("conversion was not found for project")
	}
	if file, err := s.store.GetProjectFile(ctx, conversion.ProjectFileID); err != nil || file == nil || file.ProjectID != projectID {
		return nil, apperr.Validation("conversion was not found for project")
	}

	if _, err := layout.EnsureSubdir(p.RootPath, layout.DirJLIFF); err != nil {
		return nil, apperr.Internal(err, "failed to create jliff output directory")
	}

	operator = strings.TrimSpace(operator)
	if operator == "" {
		operator = "Unknown operator"
	}

	result, err := s.convertOneFile(p, conversion, xliffAbsPath, operator)
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) convertOneFile(p *model.Project, conversion *model.Conversion, xliffAbsPath, operator string) (*JLIFFConversionResult, error) {
	f, err := os.Open(xliffAbsPath)
	if err != nil {
		return nil, apperr.Validation("cannot open XLIFF file %q: %v", xliffAbsPath, err)
	}
	defer f.Close()

	opts := jliff.DefaultOptions()
	opts.ProjectName = p.Name
	opts.ProjectID = p.ID.String()
	opts.User = operator

	conversions, err := jliff.Convert(f, opts)
	if err != nil {
		return nil, err
	}
	if len(conversions) == 0 {
		return nil, apperr.Internal(nil, "no <file> element found in XLIFF document")
	}
	if len(conversions) > 1 {
		s.log.Warn("XLIFF document contains multiple <file> elements; converting the first and skipping the rest",
			applog.F("conversion_id", conversion.ID), applog.F("file_count", len(conversions)))
	}
	fc := conversions[0]

	stem := fileStem(conversion, xliffAbsPath)
	jliffRel := layout.BuildLegacyJLIFFRelPath(stem, conversion.SrcLang, conversion.TrgLang)
	tagMapRel := layout.BuildLegacyTagMapRelPath(stem, conversion.SrcLang, conversion.TrgLang)
	jliffAbs := filepathJoin(p.RootPath, jliffRel)
	tagMapAbs := filepathJoin(p.RootPath, tagMapRel)

	if err := s.locks.WithLock(jliffAbs, func() error { return writeJSONPretty(jliffAbs, fc.JLIFF) }); err != nil {
		return nil, apperr.Internal(err, "failed to write JLIFF document")
	}
	if err := s.locks.WithLock(tagMapAbs, func() error { return writeJSONPretty(tagMapAbs, fc.TagMap) }); err != nil {
		return nil, apperr.Internal(err, "failed to write tag-map document")
	}

	return &JLIFFConversionResult{
		ConversionID:  conversion.ID,
		FileID:        fc.FileID,
		JLIFFAbsPath:  jliffAbs,
		JLIFFRelPath:  jliffRel,
		TagMapAbsPath: tagMapAbs,
		TagMapRelPath: tagMapRel,
	}, nil
}

// fileStem derives the conversion's output stem from its XLIFF input path,
// stripping the "<stem>.<src>-<trg>" suffix convention build_conversions_plan
// produces, falling back to the XLIFF file's own base name.
func fileStem(conversion *model.Conversion, xliffAbsPath string) string {
	base := baseName(xliffAbsPath)
	base = strings.TrimSuffix(base, ".xlf")
	base = strings.TrimSuffix(base, ".xliff")
	suffix := "." + conversion.SrcLang + "-" + conversion.TrgLang
	if strings.HasSuffix(base, suffix) {
		return strings.TrimSuffix(base, suffix)
	}
	return base
}

func writeJSONPretty(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

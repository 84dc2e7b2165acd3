package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/model"
)

func TestConvertXLIFFToJLIFF(t *testing.T) {
	svc, st := newTestService(t)
	ctx := context.Background()
	src := writeTempFile(t, "welcome.docx", "ignored")

	result, err := svc.CreateProject(ctx, "Convert Project", model.ProjectTypeTranslation, uuid.New(), "en-US", "fr-FR", []StagedFile{{AbsPath: src}})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	details, err := svc.GetProjectDetails(ctx, result.ProjectID)
	if err != nil {
		t.Fatalf("GetProjectDetails failed: %v", err)
	}
	fileID := details.Files[0].ID

	conversion, err := st.FindOrCreateConversionForFile(ctx, fileID, model.ConversionRequest{
		SrcLang: "en-US", TrgLang: "fr-FR", Version: "2.0", Paragraph: true, Embed: true,
	})
	if err != nil {
		t.Fatalf("FindOrCreateConversionForFile failed: %v", err)
	}

	xliffPath := filepath.Join(t.TempDir(), "welcome.en-US-fr-FR.xlf")
	if err := os.WriteFile(xliffPath, []byte(sampleXLIFF), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cr, err := svc.ConvertXLIFFToJLIFF(ctx, result.ProjectID, conversion.ID, xliffPath, "")
	if err != nil {
		t.Fatalf("ConvertXLIFFToJLIFF failed: %v", err)
	}
	if cr.FileID != "f1" {
		t.Errorf("FileID = %q, want f1", cr.FileID)
	}
	if _, err := os.Stat(cr.JLIFFAbsPath); err != nil {
		t.Errorf("JLIFF file should exist: %v", err)
	}
	if _, err := os.Stat(cr.TagMapAbsPath); err != nil {
		t.Errorf("tag-map file should exist: %v", err)
	}
}

func TestConvertXLIFFToJLIFFUnknownConversion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	src := writeTempFile(t, "a.docx", "x")

	result, err := svc.CreateProject(ctx, "No Conversion Project", model.ProjectTypeTranslation, uuid.New(), "", "", []StagedFile{{AbsPath: src}})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}

	xliffPath := writeTempFile(t, "a.xlf", sampleXLIFF)
	_, err = svc.ConvertXLIFFToJLIFF(ctx, result.ProjectID, uuid.New(), xliffPath, "")
	if !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

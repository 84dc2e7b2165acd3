package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/model"
)

func seedConvertibleProject(t *testing.T, svc *Service, src, trg string) (uuid.UUID, uuid.UUID) {
	t.Helper()
	ctx := context.Background()
	file := writeTempFile(t, "welcome.docx", "ignored")

	result, err := svc.CreateProject(ctx, "Plan Project", model.ProjectTypeTranslation, uuid.New(), src, trg, []StagedFile{{AbsPath: file}})
	if err != nil {
		t.Fatalf("CreateProject failed: %v", err)
	}
	added, err := svc.AddFilesToProject(ctx, result.ProjectID, []StagedFile{{AbsPath: writeTempFile(t, "report.docx", "ignored")}})
	if err != nil {
		t.Fatalf("AddFilesToProject failed: %v", err)
	}
	return result.ProjectID, added[0].ID
}

func TestBuildConversionsPlan(t *testing.T) {
	svc, _ := newTestService(t)
	projectID, _ := seedConvertibleProject(t, svc, "en-US", "fr-FR")

	tasks, err := svc.BuildConversionsPlan(context.Background(), projectID)
	if err != nil {
		t.Fatalf("BuildConversionsPlan failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 task, got %d", len(tasks))
	}
	task := tasks[0]
	if task.SrcLang != "en-US" || task.TrgLang != "fr-FR" {
		t.Errorf("task langs = %s/%s, want en-US/fr-FR", task.SrcLang, task.TrgLang)
	}
	if !task.Paragraph || !task.Embed {
		t.Error("expected paragraph and embed to default true")
	}
	if filepath.Ext(task.OutputAbsPath) != ".xlf" {
		t.Errorf("OutputAbsPath = %q, want .xlf extension", task.OutputAbsPath)
	}
}

func TestExecuteConversionsPlanReportsMissingXLIFF(t *testing.T) {
	svc, _ := newTestService(t)
	projectID, _ := seedConvertibleProject(t, svc, "en-US", "fr-FR")

	tasks, err := svc.BuildConversionsPlan(context.Background(), projectID)
	if err != nil {
		t.Fatalf("BuildConversionsPlan failed: %v", err)
	}

	outcomes, err := svc.ExecuteConversionsPlan(context.Background(), projectID, tasks, "tester")
	if err != nil {
		t.Fatalf("ExecuteConversionsPlan failed: %v", err)
	}
	if len(outcomes) != len(tasks) {
		t.Fatalf("expected %d outcomes, got %d", len(tasks), len(outcomes))
	}
	for _, o := range outcomes {
		if o.Converted {
			t.Error("expected no conversion to succeed without a pre-existing XLIFF file")
		}
		if o.Err == nil {
			t.Error("expected a reported error for the missing XLIFF input")
		}
	}
}

func TestExecuteConversionsPlanConvertsExistingXLIFF(t *testing.T) {
	svc, st := newTestService(t)
	projectID, _ := seedConvertibleProject(t, svc, "en-US", "fr-FR")

	tasks, err := svc.BuildConversionsPlan(context.Background(), projectID)
	if err != nil {
		t.Fatalf("BuildConversionsPlan failed: %v", err)
	}
	if len(tasks) == 0 {
		t.Fatal("expected at least one task")
	}
	task := tasks[0]

	if err := os.MkdirAll(filepath.Dir(task.OutputAbsPath), 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(task.OutputAbsPath, []byte(sampleXLIFF), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	outcomes, err := svc.ExecuteConversionsPlan(context.Background(), projectID, []ConversionTask{task}, "tester")
	if err != nil {
		t.Fatalf("ExecuteConversionsPlan failed: %v", err)
	}
	if len(outcomes) != 1 || !outcomes[0].Converted {
		t.Fatalf("expected the planned conversion to succeed, got %+v", outcomes)
	}

	conv, err := st.GetConversion(context.Background(), task.ConversionID)
	if err != nil {
		t.Fatalf("GetConversion failed: %v", err)
	}
	if conv.Status != model.ConversionCompleted {
		t.Errorf("conversion status = %v, want completed", conv.Status)
	}
	if conv.JLIFFRelPath == nil {
		t.Error("expected jliff_rel_path to be set")
	}
}

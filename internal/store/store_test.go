package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/storedb"
)

func openTestStore(t *testing.T) *SQLiteProjectStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storedb.Open(dbPath, storedb.JournalModeWAL, storedb.SynchronousNormal)
	if err != nil {
		t.Fatalf("storedb.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func newTestProject(t *testing.T, s *SQLiteProjectStore, name string) *model.Project {
	t.Helper()
	ctx := context.Background()
	np := model.NewProject{
		ID:          uuid.New(),
		Name:        name,
		Slug:        name,
		ProjectType: model.ProjectTypeTranslation,
		RootPath:    "/tmp/" + name,
		OwnerUserID: uuid.New(),
	}
	p, _, err := s.InsertProjectWithFiles(ctx, np, nil)
	if err != nil {
		t.Fatalf("InsertProjectWithFiles failed: %v", err)
	}
	return p
}

func TestInsertProjectWithFiles(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	np := model.NewProject{
		ID:          uuid.New(),
		Name:        "demo",
		Slug:        "demo",
		ProjectType: model.ProjectTypeTranslation,
		RootPath:    "/tmp/demo",
		OwnerUserID: uuid.New(),
	}
	files := []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/src/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	}

	p, insertedFiles, err := s.InsertProjectWithFiles(ctx, np, files)
	if err != nil {
		t.Fatalf("InsertProjectWithFiles failed: %v", err)
	}
	if p.ID != np.ID {
		t.Errorf("project ID = %v, want %v", p.ID, np.ID)
	}
	if len(insertedFiles) != 1 {
		t.Fatalf("inserted files = %d, want 1", len(insertedFiles))
	}

	got, err := s.GetProject(ctx, np.ID)
	if err != nil {
		t.Fatalf("GetProject failed: %v", err)
	}
	if got.Name != "demo" {
		t.Errorf("Name = %q, want demo", got.Name)
	}

	list, err := s.ListProjectFiles(ctx, np.ID)
	if err != nil {
		t.Fatalf("ListProjectFiles failed: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("ListProjectFiles = %d, want 1", len(list))
	}
}

func TestInsertProjectDuplicateNameConflicts(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	owner := uuid.New()

	np1 := model.NewProject{ID: uuid.New(), Name: "dup", Slug: "dup", ProjectType: model.ProjectTypeTranslation, RootPath: "/tmp/dup1", OwnerUserID: owner}
	if _, _, err := s.InsertProjectWithFiles(ctx, np1, nil); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	np2 := model.NewProject{ID: uuid.New(), Name: "dup", Slug: "dup2", ProjectType: model.ProjectTypeTranslation, RootPath: "/tmp/dup2", OwnerUserID: owner}
	_, _, err := s.InsertProjectWithFiles(ctx, np2, nil)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestGetProjectNotFound(t *testing.T) {
	s := openTestStore(t)
	_, err := s.GetProject(context.Background(), uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestDeleteProjectCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "cascade")

	files, err := s.AddFilesToProject(ctx, p.ID, []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	})
	if err != nil {
		t.Fatalf("AddFilesToProject failed: %v", err)
	}

	pair, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "fr-FR")
	if err != nil {
		t.Fatalf("EnsureLanguagePair failed: %v", err)
	}
	target, err := s.EnsureFileTarget(ctx, files[0].ID, pair.PairID)
	if err != nil {
		t.Fatalf("EnsureFileTarget failed: %v", err)
	}

	if err := s.DeleteProject(ctx, p.ID); err != nil {
		t.Fatalf("DeleteProject failed: %v", err)
	}

	if _, err := s.GetProject(ctx, p.ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("project should be gone, got %v", err)
	}
	if _, err := s.GetProjectFile(ctx, files[0].ID); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("file should cascade-delete, got %v", err)
	}
	targets, err := s.ListFileTargets(ctx, files[0].ID)
	if err != nil {
		t.Fatalf("ListFileTargets failed: %v", err)
	}
	if len(targets) != 0 {
		t.Errorf("file targets should cascade-delete, still have %d (target %v)", len(targets), target.FileTargetID)
	}
}

func TestEnsureLanguagePairIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "idem")

	first, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "de-DE")
	if err != nil {
		t.Fatalf("first EnsureLanguagePair failed: %v", err)
	}
	second, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "de-DE")
	if err != nil {
		t.Fatalf("second EnsureLanguagePair failed: %v", err)
	}
	if first.PairID != second.PairID {
		t.Errorf("EnsureLanguagePair should return the same row, got %v and %v", first.PairID, second.PairID)
	}
}

func TestFileTargetStatusLattice(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "lattice")
	files, _ := s.AddFilesToProject(ctx, p.ID, []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	})
	pair, _ := s.EnsureLanguagePair(ctx, p.ID, "en-US", "fr-FR")
	target, err := s.EnsureFileTarget(ctx, files[0].ID, pair.PairID)
	if err != nil {
		t.Fatalf("EnsureFileTarget failed: %v", err)
	}

	if err := s.UpdateFileTargetStatus(ctx, target.FileTargetID, model.FileTargetExtracted); err != nil {
		t.Fatalf("pending->extracted should succeed: %v", err)
	}
	if err := s.UpdateFileTargetStatus(ctx, target.FileTargetID, model.FileTargetPending); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("extracted->pending should be rejected by the lattice, got %v", err)
	}
}

func TestConversionStateMachine(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "conv")
	files, _ := s.AddFilesToProject(ctx, p.ID, []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	})

	conv, err := s.FindOrCreateConversionForFile(ctx, files[0].ID, model.ConversionRequest{
		SrcLang: "en-US", TrgLang: "fr-FR", Version: "2.0",
	})
	if err != nil {
		t.Fatalf("FindOrCreateConversionForFile failed: %v", err)
	}
	if conv.Status != model.ConversionPending {
		t.Fatalf("new conversion status = %s, want pending", conv.Status)
	}

	conv, err = s.UpsertConversionStatus(ctx, conv.ID, model.ConversionRunning, nil, nil, nil, nil)
	if err != nil {
		t.Fatalf("pending->running failed: %v", err)
	}
	if conv.StartedAt == nil {
		t.Error("started_at should be set once running")
	}

	xliffPath := "source/a.xliff"
	conv, err = s.UpsertConversionStatus(ctx, conv.ID, model.ConversionCompleted, &xliffPath, nil, nil, nil)
	if err != nil {
		t.Fatalf("running->completed failed: %v", err)
	}
	if conv.CompletedAt == nil || conv.XLIFFRelPath == nil || *conv.XLIFFRelPath != xliffPath {
		t.Error("completed conversion should record completed_at and xliff_rel_path")
	}

	other, err := s.FindOrCreateConversionForFile(ctx, files[0].ID, model.ConversionRequest{
		SrcLang: "en-US", TrgLang: "de-DE", Version: "2.0",
	})
	if err != nil {
		t.Fatalf("FindOrCreateConversionForFile failed: %v", err)
	}
	if _, err := s.UpsertConversionStatus(ctx, other.ID, model.ConversionCompleted, nil, nil, nil, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("completed without an xliff_rel_path should be rejected as a validation error, got %v", err)
	}

	same, err := s.FindOrCreateConversionForFile(ctx, files[0].ID, model.ConversionRequest{
		SrcLang: "en-US", TrgLang: "fr-FR", Version: "2.0",
	})
	if err != nil {
		t.Fatalf("re-find failed: %v", err)
	}
	if same.ID != conv.ID {
		t.Error("FindOrCreateConversionForFile should be idempotent on the unique key")
	}
}

func TestUpsertArtifactReplacesExisting(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "artifacts")
	files, _ := s.AddFilesToProject(ctx, p.ID, []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	})
	pair, _ := s.EnsureLanguagePair(ctx, p.ID, "en-US", "fr-FR")
	target, _ := s.EnsureFileTarget(ctx, files[0].ID, pair.PairID)

	a, err := s.UpsertArtifact(ctx, model.Artifact{
		FileTargetID: target.FileTargetID,
		Kind:         model.ArtifactKindXLIFF,
		RelPath:      "xliff/a.xlf",
		Checksum:     "deadbeef",
		Status:       model.ArtifactStatusGenerated,
	})
	if err != nil {
		t.Fatalf("UpsertArtifact failed: %v", err)
	}

	a2, err := s.UpsertArtifact(ctx, model.Artifact{
		FileTargetID: target.FileTargetID,
		Kind:         model.ArtifactKindXLIFF,
		RelPath:      "xliff/a.xlf",
		Checksum:     "newchecksum",
		Status:       model.ArtifactStatusGenerated,
	})
	if err != nil {
		t.Fatalf("second UpsertArtifact failed: %v", err)
	}
	if a2.ArtifactID != a.ArtifactID {
		t.Error("UpsertArtifact should replace the row, not create a second one")
	}
	if a2.Checksum != "newchecksum" {
		t.Errorf("Checksum = %q, want newchecksum", a2.Checksum)
	}

	list, err := s.ListArtifactsByFileTarget(ctx, target.FileTargetID)
	if err != nil {
		t.Fatalf("ListArtifactsByFileTarget failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}
}

func TestJobLifecycle(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "jobs")

	job, err := s.UpsertJob(ctx, model.Job{
		ProjectID: p.ID,
		JobType:   model.JobTypeExtractXLIFF,
		JobKey:    "extract:" + p.ID.String(),
	})
	if err != nil {
		t.Fatalf("UpsertJob failed: %v", err)
	}
	if job.State != model.JobStatePending {
		t.Fatalf("new job state = %s, want pending", job.State)
	}

	same, err := s.UpsertJob(ctx, model.Job{
		ProjectID: p.ID,
		JobType:   model.JobTypeExtractXLIFF,
		JobKey:    "extract:" + p.ID.String(),
	})
	if err != nil {
		t.Fatalf("second UpsertJob failed: %v", err)
	}
	if same.JobID != job.JobID {
		t.Error("UpsertJob should be idempotent on job_key")
	}

	job, updated, err := s.TransitionJobState(ctx, job.JobID, model.JobStatePending, model.JobStateRunning, nil)
	if err != nil {
		t.Fatalf("pending->running failed: %v", err)
	}
	if !updated {
		t.Error("pending->running should report updated = true")
	}
	if job.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", job.Attempts)
	}

	if _, stale, err := s.TransitionJobState(ctx, job.JobID, model.JobStatePending, model.JobStateRunning, nil); err != nil {
		t.Fatalf("stale CAS should not error: %v", err)
	} else if stale {
		t.Error("CAS against a stale from-state should report updated = false")
	}

	job, updated, err = s.TransitionJobState(ctx, job.JobID, model.JobStateRunning, model.JobStateSucceeded, nil)
	if err != nil {
		t.Fatalf("running->succeeded failed: %v", err)
	}
	if !updated {
		t.Error("running->succeeded should report updated = true")
	}
	if job.FinishedAt == nil {
		t.Error("finished_at should be set on terminal state")
	}

	if _, _, err := s.TransitionJobState(ctx, job.JobID, model.JobStateSucceeded, model.JobStateRunning, nil); !apperr.Is(err, apperr.KindValidation) {
		t.Error("succeeded->running should be rejected as a validation error")
	}

	list, err := s.ListJobsByState(ctx, model.JobStateSucceeded)
	if err != nil {
		t.Fatalf("ListJobsByState failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("len(list) = %d, want 1", len(list))
	}
}

func TestNotesAndValidations(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	p := newTestProject(t, s, "notes")
	files, _ := s.AddFilesToProject(ctx, p.ID, []model.NewProjectFile{
		{ID: uuid.New(), OriginalName: "a.xliff", OriginalPath: "/a.xliff", StoredRelPath: "source/a.xliff", Ext: ".xliff", Role: model.FileRoleSource},
	})
	pair, _ := s.EnsureLanguagePair(ctx, p.ID, "en-US", "fr-FR")
	target, _ := s.EnsureFileTarget(ctx, files[0].ID, pair.PairID)
	artifact, err := s.UpsertArtifact(ctx, model.Artifact{
		FileTargetID: target.FileTargetID,
		Kind:         model.ArtifactKindJLIFF,
		RelPath:      "jliff/a.jliff.json",
		Checksum:     "abc123",
		Status:       model.ArtifactStatusGenerated,
	})
	if err != nil {
		t.Fatalf("UpsertArtifact failed: %v", err)
	}

	if _, err := s.AddNote(ctx, p.ID, p.OwnerUserID, "first note"); err != nil {
		t.Fatalf("AddNote failed: %v", err)
	}
	notes, err := s.ListNotes(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListNotes failed: %v", err)
	}
	if len(notes) != 1 || notes[0].Body != "first note" {
		t.Errorf("notes = %+v, want one note with body 'first note'", notes)
	}

	if _, err := s.RecordValidation(ctx, artifact.ArtifactID, "qa-tagcheck", true, nil); err != nil {
		t.Fatalf("RecordValidation failed: %v", err)
	}
	validations, err := s.ListValidations(ctx, artifact.ArtifactID)
	if err != nil {
		t.Fatalf("ListValidations failed: %v", err)
	}
	if len(validations) != 1 || !validations[0].Passed {
		t.Errorf("validations = %+v, want one passed validation", validations)
	}
}

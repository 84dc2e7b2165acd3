package backfill

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/model"
)

func writeArtifactFile(t *testing.T, root, relDir, stem, ext, body string) {
	t.Helper()
	dir := filepath.Join(root, relDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, stem+ext), []byte(body), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
}

func TestBackfillArtifactsFromDiskRegistersMatchingPairDirectory(t *testing.T) {
	root := t.TempDir()
	s := openBackfillTestStore(t)
	ctx := context.Background()
	p := newBackfillTestProject(t, s, "disk-demo", root)
	fileID := insertTestFile(t, s, p.ID)

	pair, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "fr-FR")
	if err != nil {
		t.Fatalf("EnsureLanguagePair failed: %v", err)
	}

	writeArtifactFile(t, root, filepath.Join("artifacts", "xliff", "en-US__fr-FR"), fileID.String(), ".xlf", "xliff-body")

	w := NewWorker(s, 2)
	out, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("BackfillArtifactsFromDisk failed: %v", err)
	}
	if out.ProjectsScanned != 1 || out.XLIFFRegistered != 1 || out.JLIFFRegistered != 0 {
		t.Fatalf("unexpected outcome: %+v", out)
	}

	targets, err := s.ListFileTargets(ctx, fileID)
	if err != nil {
		t.Fatalf("ListFileTargets failed: %v", err)
	}
	if len(targets) != 1 || targets[0].PairID != pair.PairID {
		t.Fatalf("expected one target bound to the matching pair, got %+v", targets)
	}
	if targets[0].Status != model.FileTargetExtracted {
		t.Fatalf("expected extracted status, got %v", targets[0].Status)
	}

	art, err := s.GetArtifactByKind(ctx, targets[0].FileTargetID, model.ArtifactKindXLIFF)
	if err != nil {
		t.Fatalf("GetArtifactByKind failed: %v", err)
	}
	wantRel := filepath.Join("artifacts", "xliff", "en-US__fr-FR", fileID.String()+".xlf")
	if art.RelPath != wantRel {
		t.Fatalf("RelPath = %q, want %q", art.RelPath, wantRel)
	}
	if art.Checksum == "" {
		t.Error("expected a non-empty checksum")
	}
}

func TestBackfillArtifactsFromDiskIsIdempotent(t *testing.T) {
	root := t.TempDir()
	s := openBackfillTestStore(t)
	ctx := context.Background()
	p := newBackfillTestProject(t, s, "disk-idem", root)
	fileID := insertTestFile(t, s, p.ID)

	if _, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "de-DE"); err != nil {
		t.Fatalf("EnsureLanguagePair failed: %v", err)
	}
	writeArtifactFile(t, root, filepath.Join("xliff", "en-US__de-DE"), fileID.String(), ".xlf", "xliff-body")

	w := NewWorker(s, 1)
	if _, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	out, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if out.AlreadyIndexed != 1 || out.XLIFFRegistered != 0 {
		t.Fatalf("second run should detect the already-indexed artifact, got %+v", out)
	}
}

func TestBackfillArtifactsFromDiskCreatesPairFromFileConversion(t *testing.T) {
	root := t.TempDir()
	s := openBackfillTestStore(t)
	ctx := context.Background()
	p := newBackfillTestProject(t, s, "disk-conv-pair", root)
	fileID := insertTestFile(t, s, p.ID)

	if _, err := s.FindOrCreateConversionForFile(ctx, fileID, model.ConversionRequest{
		SrcLang: "en-US", TrgLang: "ja-JP", Version: "2.0",
	}); err != nil {
		t.Fatalf("FindOrCreateConversionForFile failed: %v", err)
	}

	writeArtifactFile(t, root, filepath.Join("jliff", "en-US__ja-JP"), fileID.String(), ".jliff.json", "{}")

	w := NewWorker(s, 1)
	out, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("BackfillArtifactsFromDisk failed: %v", err)
	}
	if out.JLIFFRegistered != 1 {
		t.Fatalf("expected one jliff artifact registered, got %+v", out)
	}

	pairs, err := s.ListLanguagePairs(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListLanguagePairs failed: %v", err)
	}
	if len(pairs) != 1 || pairs[0].SrcLang != "en-US" || pairs[0].TrgLang != "ja-JP" {
		t.Fatalf("expected the pair to be created from the file's conversion, got %+v", pairs)
	}
}

func TestBackfillArtifactsFromDiskSkipsNonUUIDStems(t *testing.T) {
	root := t.TempDir()
	s := openBackfillTestStore(t)
	ctx := context.Background()
	p := newBackfillTestProject(t, s, "disk-skip", root)

	if _, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "pt-BR"); err != nil {
		t.Fatalf("EnsureLanguagePair failed: %v", err)
	}
	writeArtifactFile(t, root, filepath.Join("xliff", "en-US__pt-BR"), "not-a-uuid", ".xlf", "body")

	w := NewWorker(s, 1)
	out, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("BackfillArtifactsFromDisk failed: %v", err)
	}
	if out.Skipped != 1 || out.XLIFFRegistered != 0 {
		t.Fatalf("expected the non-UUID stem to be skipped, got %+v", out)
	}
}

func TestBackfillArtifactsFromDiskSkipsTagMapSidecars(t *testing.T) {
	root := t.TempDir()
	s := openBackfillTestStore(t)
	ctx := context.Background()
	p := newBackfillTestProject(t, s, "disk-sidecar", root)
	fileID := insertTestFile(t, s, p.ID)

	if _, err := s.EnsureLanguagePair(ctx, p.ID, "en-US", "es-ES"); err != nil {
		t.Fatalf("EnsureLanguagePair failed: %v", err)
	}
	dir := filepath.Join("artifacts", "jliff", "en-US__es-ES")
	writeArtifactFile(t, root, dir, fileID.String(), ".jliff.json", "{}")
	writeArtifactFile(t, root, dir, fileID.String(), ".tags.json", "{}")

	w := NewWorker(s, 1)
	out, err := w.BackfillArtifactsFromDisk(ctx, []uuid.UUID{p.ID})
	if err != nil {
		t.Fatalf("BackfillArtifactsFromDisk failed: %v", err)
	}
	if out.JLIFFRegistered != 1 {
		t.Fatalf("expected exactly one jliff artifact, the sidecar should be skipped, got %+v", out)
	}
}

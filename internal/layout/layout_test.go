package layout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/model"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"  Marketing Launch  ": "marketing-launch",
		"Hello, World!":        "hello-world",
		"   ":                  defaultSlug,
		"项目":                   defaultSlug,
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Errorf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildProjectSlug(t *testing.T) {
	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	got := BuildProjectSlug("Marketing Launch", id)
	if got != "marketing-launch-12345678" {
		t.Errorf("BuildProjectSlug = %q, want marketing-launch-12345678", got)
	}
}

func TestBuildLanguageDirectoryName(t *testing.T) {
	got := BuildLanguageDirectoryName("en-US", "fr-FR")
	if got != "en-US__fr-FR" {
		t.Errorf("BuildLanguageDirectoryName = %q, want en-US__fr-FR", got)
	}
}

func TestBuildLanguageDirectoryNameSanitizesUnsafeChars(t *testing.T) {
	got := BuildLanguageDirectoryName("en/US", "../evil")
	if got == "" || got == "unknown__unknown" {
		t.Errorf("expected a non-degenerate sanitized name, got %q", got)
	}
	if filepath.Base(got) != got {
		t.Errorf("sanitized name %q should not contain path separators", got)
	}
}

func TestBuildLanguageDirectoryNameFallsBackToUnknown(t *testing.T) {
	got := BuildLanguageDirectoryName("???", "///")
	if got != "unknown__unknown" {
		t.Errorf("BuildLanguageDirectoryName = %q, want unknown__unknown", got)
	}
}

func TestBuildOriginalStoredRelPath(t *testing.T) {
	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	got := BuildOriginalStoredRelPath(id, "sample.docx")
	want := filepath.Join("original", id.String()+"__sample.docx")
	if got != want {
		t.Errorf("BuildOriginalStoredRelPath = %q, want %q", got, want)
	}
}

func TestBuildOriginalStoredRelPathNoExtension(t *testing.T) {
	id := uuid.New()
	got := BuildOriginalStoredRelPath(id, "README")
	want := filepath.Join("original", id.String()+"__readme")
	if got != want {
		t.Errorf("BuildOriginalStoredRelPath = %q, want %q", got, want)
	}
}

func TestBuildLegacyRelPaths(t *testing.T) {
	if got, want := BuildLegacyXLIFFRelPath("report", "en", "fr"), filepath.Join("xliff", "report.en-fr.xlf"); got != want {
		t.Errorf("BuildLegacyXLIFFRelPath = %q, want %q", got, want)
	}
	if got, want := BuildLegacyJLIFFRelPath("report", "en", "fr"), filepath.Join("jliff", "report.en-fr.jliff.json"); got != want {
		t.Errorf("BuildLegacyJLIFFRelPath = %q, want %q", got, want)
	}
	if got, want := BuildLegacyTagMapRelPath("report", "en", "fr"), filepath.Join("jliff", "report.en-fr.tags.json"); got != want {
		t.Errorf("BuildLegacyTagMapRelPath = %q, want %q", got, want)
	}
}

func TestBuildArtifactRelPath(t *testing.T) {
	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	got := BuildArtifactRelPath("en-US", "fr-FR", model.ArtifactKindJLIFF, id)
	want := filepath.Join("artifacts", "xjliff", "en-US__fr-FR", id.String()+".jliff.json")
	if got != want {
		t.Errorf("BuildArtifactRelPath = %q, want %q", got, want)
	}

	gotXLIFF := BuildArtifactRelPath("en-US", "fr-FR", model.ArtifactKindXLIFF, id)
	wantXLIFF := filepath.Join("artifacts", "xliff", "en-US__fr-FR", id.String()+".xlf")
	if gotXLIFF != wantXLIFF {
		t.Errorf("BuildArtifactRelPath(xliff) = %q, want %q", gotXLIFF, wantXLIFF)
	}
}

func TestBuildTagMapRelPath(t *testing.T) {
	id := uuid.MustParse("12345678-1234-5678-1234-567812345678")
	got := BuildTagMapRelPath("en-US", "fr-FR", id)
	want := filepath.Join("artifacts", "xjliff", "en-US__fr-FR", id.String()+".tags.json")
	if got != want {
		t.Errorf("BuildTagMapRelPath = %q, want %q", got, want)
	}
}

func TestEnsureSubdir(t *testing.T) {
	root := t.TempDir()
	abs, err := EnsureSubdir(root, "en-US_fr-FR", "xliff")
	if err != nil {
		t.Fatalf("EnsureSubdir failed: %v", err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		t.Errorf("EnsureSubdir should create %s as a directory", abs)
	}
}

func TestResolveProjectRelativePathRejectsEscape(t *testing.T) {
	root := t.TempDir()
	if _, err := ResolveProjectRelativePath(root, "../../etc/passwd"); err == nil {
		t.Error("ResolveProjectRelativePath should reject a path that escapes root")
	}
}

func TestResolveProjectRelativePathAcceptsNested(t *testing.T) {
	root := t.TempDir()
	abs, err := ResolveProjectRelativePath(root, filepath.Join("source", "a.xliff"))
	if err != nil {
		t.Fatalf("ResolveProjectRelativePath failed: %v", err)
	}
	wantPrefix, _ := filepath.Abs(root)
	if !filepathHasPrefix(abs, wantPrefix) {
		t.Errorf("resolved path %q should be nested under %q", abs, wantPrefix)
	}
}

func filepathHasPrefix(path, prefix string) bool {
	rel, err := filepath.Rel(prefix, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func TestRemoveFileAndCleanupRemovesEmptyParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "en-US_fr-FR", "xliff")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	file := filepath.Join(nested, "a.xlf")
	if err := os.WriteFile(file, []byte("data"), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := RemoveFileAndCleanup(root, file); err != nil {
		t.Fatalf("RemoveFileAndCleanup failed: %v", err)
	}

	if _, err := os.Stat(file); !os.IsNotExist(err) {
		t.Error("file should have been removed")
	}
	if _, err := os.Stat(filepath.Join(root, "en-US_fr-FR")); !os.IsNotExist(err) {
		t.Error("now-empty parent directories should have been removed")
	}
	if _, err := os.Stat(root); err != nil {
		t.Error("root itself should not be removed")
	}
}

func TestRemoveFileAndCleanupKeepsNonEmptyParents(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "en-US_fr-FR", "xliff")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	keep := filepath.Join(nested, "keep.xlf")
	remove := filepath.Join(nested, "remove.xlf")
	os.WriteFile(keep, []byte("data"), 0o644)
	os.WriteFile(remove, []byte("data"), 0o644)

	if err := RemoveFileAndCleanup(root, remove); err != nil {
		t.Fatalf("RemoveFileAndCleanup failed: %v", err)
	}
	if _, err := os.Stat(nested); err != nil {
		t.Error("directory with remaining files should not be removed")
	}
	if _, err := os.Stat(keep); err != nil {
		t.Error("sibling file should be untouched")
	}
}

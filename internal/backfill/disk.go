package backfill

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/layout"
	"github.com/wegentic/translator-core/internal/model"
)

// candidateDirs lists every directory, relative to a project's root, that
// legacy exports may have deposited artifacts under, per spec.md §4.6.
var candidateDirs = []struct {
	relPath string
	kind    model.ArtifactKind
}{
	{filepath.Join("artifacts", "xliff"), model.ArtifactKindXLIFF},
	{"xliff", model.ArtifactKindXLIFF},
	{filepath.Join("artifacts", "xjliff"), model.ArtifactKindJLIFF},
	{filepath.Join("artifacts", "jliff"), model.ArtifactKindJLIFF},
	{"xjliff", model.ArtifactKindJLIFF},
	{"jliff", model.ArtifactKindJLIFF},
}

const legacyImportTool = "LegacyImport"
const checksumBlockSize = 8 * 1024

// DiskOutcome aggregates the counts BackfillArtifactsFromDisk returns, per
// spec.md §4.6.
type DiskOutcome struct {
	ProjectsScanned  int
	XLIFFRegistered  int
	JLIFFRegistered  int
	AlreadyIndexed   int
	Skipped          int
	ChecksumFailures int
}

func (d *DiskOutcome) add(o DiskOutcome) {
	d.ProjectsScanned += o.ProjectsScanned
	d.XLIFFRegistered += o.XLIFFRegistered
	d.JLIFFRegistered += o.JLIFFRegistered
	d.AlreadyIndexed += o.AlreadyIndexed
	d.Skipped += o.Skipped
	d.ChecksumFailures += o.ChecksumFailures
}

// BackfillArtifactsFromDisk enumerates each candidate artifact directory
// under every target project's root, registering an Artifact row (with a
// streamed SHA-256 checksum) for every file whose stem is a UUID. Projects
// are walked with bounded concurrency via errgroup.
func (w *Worker) BackfillArtifactsFromDisk(ctx context.Context, projectIDs []uuid.UUID) (DiskOutcome, error) {
	var total DiskOutcome

	projects, err := w.resolveProjects(ctx, projectIDs)
	if err != nil {
		return total, err
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)

	for _, project := range projects {
		project := project
		g.Go(func() error {
			out, err := w.scanProjectDisk(gctx, project)
			mu.Lock()
			total.add(out)
			mu.Unlock()
			if err != nil {
				w.log.Error("scan project disk failed", applog.F("project_id", project.ID), applog.F("err", err))
			}
			return nil
		})
	}
	_ = g.Wait()

	return total, nil
}

func (w *Worker) scanProjectDisk(ctx context.Context, project model.Project) (DiskOutcome, error) {
	var out DiskOutcome
	out.ProjectsScanned = 1

	pairs, err := w.store.ListLanguagePairs(ctx, project.ID)
	if err != nil {
		return out, err
	}
	pairByDirName := make(map[string]model.ProjectLanguagePair, len(pairs))
	for _, p := range pairs {
		pairByDirName[strings.ToLower(layout.BuildLanguageDirectoryName(p.SrcLang, p.TrgLang))] = p
	}

	conversions, err := w.store.ListConversionsByProject(ctx, project.ID)
	if err != nil {
		return out, err
	}
	conversionsByFile := make(map[uuid.UUID][]model.Conversion, len(conversions))
	for _, c := range conversions {
		conversionsByFile[c.ProjectFileID] = append(conversionsByFile[c.ProjectFileID], c)
	}

	for _, candidate := range candidateDirs {
		root := filepath.Join(project.RootPath, candidate.relPath)
		entries, err := os.ReadDir(root)
		if err != nil {
			continue // candidate bucket absent for this project; not an error
		}

		for _, langEntry := range entries {
			if !langEntry.IsDir() {
				continue
			}
			select {
			case <-ctx.Done():
				return out, ctx.Err()
			default:
			}

			w.scanLanguageDir(ctx, project.ID, project.RootPath, filepath.Join(root, langEntry.Name()),
				strings.ToLower(langEntry.Name()), candidate.kind, pairByDirName, conversionsByFile, &out)
		}
	}

	return out, nil
}

// resolveLanguageDir implements spec.md §4.6 step 1 for one file: prefer an
// exact case-insensitive match against the project's existing pairs keyed by
// sanitized directory name; otherwise, if this file's own Conversion rows
// include a distinct (src, trg) that sanitizes to the same directory name,
// create that pair on demand.
func (w *Worker) resolveLanguageDir(
	ctx context.Context,
	projectID uuid.UUID,
	dirKey string,
	pairByDirName map[string]model.ProjectLanguagePair,
	fileConversions []model.Conversion,
) (model.ProjectLanguagePair, bool) {
	if pair, ok := pairByDirName[dirKey]; ok {
		return pair, true
	}

	for _, c := range fileConversions {
		if strings.ToLower(layout.BuildLanguageDirectoryName(c.SrcLang, c.TrgLang)) != dirKey {
			continue
		}
		pair, err := w.store.EnsureLanguagePair(ctx, projectID, c.SrcLang, c.TrgLang)
		if err != nil {
			return model.ProjectLanguagePair{}, false
		}
		pairByDirName[dirKey] = *pair
		return *pair, true
	}
	return model.ProjectLanguagePair{}, false
}

func (w *Worker) scanLanguageDir(
	ctx context.Context,
	projectID uuid.UUID,
	projectRoot, dir, dirKey string,
	kind model.ArtifactKind,
	pairByDirName map[string]model.ProjectLanguagePair,
	conversionsByFile map[uuid.UUID][]model.Conversion,
	out *DiskOutcome,
) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return
	}

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		name := f.Name()
		if kind == model.ArtifactKindJLIFF && strings.HasSuffix(name, ".tags.json") {
			continue
		}

		stem, _, _ := strings.Cut(name, ".")
		fileID, err := uuid.Parse(stem)
		if err != nil {
			out.Skipped++
			continue
		}

		pair, ok := w.resolveLanguageDir(ctx, projectID, dirKey, pairByDirName, conversionsByFile[fileID])
		if !ok {
			out.Skipped++
			continue
		}

		target, err := w.store.EnsureFileTarget(ctx, fileID, pair.PairID)
		if err != nil {
			out.Skipped++
			continue
		}
		if target.Status != model.FileTargetExtracted && model.CanTransitionFileTarget(target.Status, model.FileTargetExtracted) {
			_ = w.store.UpdateFileTargetStatus(ctx, target.FileTargetID, model.FileTargetExtracted)
		}

		absPath := filepath.Join(dir, name)
		checksum, size, err := hashFile(absPath)
		if err != nil {
			out.ChecksumFailures++
			continue
		}

		relPath, err := filepath.Rel(projectRoot, absPath)
		if err != nil {
			relPath = absPath
		}

		if existing, err := w.store.GetArtifactByKind(ctx, target.FileTargetID, kind); err == nil &&
			existing.RelPath == relPath && existing.Checksum == checksum &&
			existing.SizeBytes != nil && *existing.SizeBytes == size &&
			existing.Status == model.ArtifactStatusGenerated && existing.Tool != nil && *existing.Tool == legacyImportTool {
			out.AlreadyIndexed++
			continue
		}

		if _, err := w.store.UpsertArtifact(ctx, model.Artifact{
			FileTargetID: target.FileTargetID,
			Kind:         kind,
			RelPath:      relPath,
			SizeBytes:    &size,
			Checksum:     checksum,
			Tool:         strPtr(legacyImportTool),
			Status:       model.ArtifactStatusGenerated,
		}); err != nil {
			out.Skipped++
			continue
		}

		if kind == model.ArtifactKindXLIFF {
			out.XLIFFRegistered++
		} else {
			out.JLIFFRegistered++
		}
	}
}

// hashFile streams the file in checksumBlockSize chunks, returning its
// lowercase hex SHA-256 digest and byte length.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, checksumBlockSize)
	var size int64
	for {
		n, readErr := f.Read(buf)
		if n > 0 {
			h.Write(buf[:n])
			size += int64(n)
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return "", 0, readErr
		}
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}

package backfill

import (
	"context"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/model"
)

// BridgeOutcome aggregates the counts BackfillFileTargetsFromLegacy returns,
// per spec.md §4.6.
type BridgeOutcome struct {
	Scanned       int
	Bridged       int
	NewPairs      int
	NewTargets    int
	StatusUpdates int
	XLIFFUpserts  int
	JLIFFUpserts  int
}

// artifactTool is stamped on every artifact row the legacy bridge produces.
const artifactTool = "OpenXLIFF"

// BackfillFileTargetsFromLegacy reads every Conversion row for each target
// project and ensures the corresponding LanguagePair, FileTarget, and
// Artifact rows exist, deriving FileTarget status from the Conversion's own
// status. Idempotent: re-running against an already-bridged project produces
// the same rows and reports no new pairs, targets, or status updates. Scanned,
// Bridged, and the XLIFF/JLIFF upsert counts repeat on every run, since each
// rel-path a Conversion carries is upserted again without comparing it to the
// existing Artifact row.
func (w *Worker) BackfillFileTargetsFromLegacy(ctx context.Context, projectIDs []uuid.UUID) (BridgeOutcome, error) {
	var out BridgeOutcome

	projects, err := w.resolveProjects(ctx, projectIDs)
	if err != nil {
		return out, err
	}

	for _, project := range projects {
		if err := w.bridgeProject(ctx, project, &out); err != nil {
			w.log.Error("bridge project failed", applog.F("project_id", project.ID), applog.F("err", err))
			continue
		}
	}
	return out, nil
}

func (w *Worker) bridgeProject(ctx context.Context, project model.Project, out *BridgeOutcome) error {
	conversions, err := w.store.ListConversionsByProject(ctx, project.ID)
	if err != nil {
		return err
	}

	existingPairs, err := w.store.ListLanguagePairs(ctx, project.ID)
	if err != nil {
		return err
	}
	knownPair := make(map[[2]string]bool, len(existingPairs))
	for _, p := range existingPairs {
		knownPair[[2]string{p.SrcLang, p.TrgLang}] = true
	}

	for _, conv := range conversions {
		out.Scanned++

		key := [2]string{conv.SrcLang, conv.TrgLang}
		pair, err := w.store.EnsureLanguagePair(ctx, project.ID, conv.SrcLang, conv.TrgLang)
		if err != nil {
			w.log.Error("ensure language pair failed", applog.F("conversion_id", conv.ID), applog.F("err", err))
			continue
		}
		if !knownPair[key] {
			knownPair[key] = true
			out.NewPairs++
		}

		existingTargets, err := w.store.ListFileTargets(ctx, conv.ProjectFileID)
		if err != nil {
			w.log.Error("list file targets failed", applog.F("file_id", conv.ProjectFileID), applog.F("err", err))
			continue
		}
		hadTarget := false
		for _, t := range existingTargets {
			if t.PairID == pair.PairID {
				hadTarget = true
				break
			}
		}

		target, err := w.store.EnsureFileTarget(ctx, conv.ProjectFileID, pair.PairID)
		if err != nil {
			w.log.Error("ensure file target failed", applog.F("file_id", conv.ProjectFileID), applog.F("err", err))
			continue
		}
		if !hadTarget {
			out.NewTargets++
		}

		desired := bridgedStatus(conv)
		if target.Status != desired && model.CanTransitionFileTarget(target.Status, desired) {
			if err := w.store.UpdateFileTargetStatus(ctx, target.FileTargetID, desired); err != nil {
				w.log.Error("update file target status failed", applog.F("file_target_id", target.FileTargetID), applog.F("err", err))
				continue
			}
			out.StatusUpdates++
		}

		if conv.XLIFFRelPath != nil {
			if _, err := w.store.UpsertArtifact(ctx, model.Artifact{
				FileTargetID: target.FileTargetID,
				Kind:         model.ArtifactKindXLIFF,
				RelPath:      *conv.XLIFFRelPath,
				Checksum:     "",
				Tool:         strPtr(artifactTool),
				Status:       model.ArtifactStatusGenerated,
			}); err != nil {
				w.log.Error("upsert xliff artifact failed", applog.F("conversion_id", conv.ID), applog.F("err", err))
			} else {
				out.XLIFFUpserts++
			}
		}
		if conv.JLIFFRelPath != nil {
			if _, err := w.store.UpsertArtifact(ctx, model.Artifact{
				FileTargetID: target.FileTargetID,
				Kind:         model.ArtifactKindJLIFF,
				RelPath:      *conv.JLIFFRelPath,
				Checksum:     "",
				Tool:         strPtr(artifactTool),
				Status:       model.ArtifactStatusGenerated,
			}); err != nil {
				w.log.Error("upsert jliff artifact failed", applog.F("conversion_id", conv.ID), applog.F("err", err))
			} else {
				out.JLIFFUpserts++
			}
		}

		out.Bridged++
	}
	return nil
}

// bridgedStatus derives a FileTarget status from a Conversion's own status,
// per spec.md §4.6: completed with an xliff path means the text has been
// extracted; failed carries over as failed; anything else is still pending.
func bridgedStatus(conv model.Conversion) model.FileTargetStatus {
	switch {
	case conv.Status == model.ConversionCompleted && conv.XLIFFRelPath != nil:
		return model.FileTargetExtracted
	case conv.Status == model.ConversionFailed:
		return model.FileTargetFailed
	default:
		return model.FileTargetPending
	}
}

func strPtr(s string) *string { return &s }

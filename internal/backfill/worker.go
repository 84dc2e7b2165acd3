// Package backfill implements the Legacy Backfill (C6): two idempotent,
// project-filterable reconciliation passes that bridge the legacy Conversion
// plane and the on-disk artifact tree into the FileTarget/Artifact rows the
// rest of the store works against. Both passes follow the teacher's "sync
// until unchanged" shape in internal/sync/worker.go: read the current state,
// upsert only what changed, and return aggregate counts rather than erroring
// out of the whole run on a single bad row.
package backfill

import (
	"context"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/store"
)

// Worker runs the backfill passes against a ProjectStore.
type Worker struct {
	store       store.ProjectStore
	log         *applog.Logger
	concurrency int
}

// DefaultConcurrency bounds the number of projects walked in parallel by
// BackfillArtifactsFromDisk.
const DefaultConcurrency = 4

// NewWorker returns a Worker with the given concurrency for disk walks. A
// concurrency of 0 or less falls back to DefaultConcurrency.
func NewWorker(st store.ProjectStore, concurrency int) *Worker {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	return &Worker{store: st, log: applog.New("backfill"), concurrency: concurrency}
}

// resolveProjects returns the projects to scan: exactly the given IDs if
// non-empty, otherwise every project in the store.
func (w *Worker) resolveProjects(ctx context.Context, projectIDs []uuid.UUID) ([]model.Project, error) {
	if len(projectIDs) == 0 {
		return w.store.ListProjects(ctx)
	}
	out := make([]model.Project, 0, len(projectIDs))
	for _, id := range projectIDs {
		p, err := w.store.GetProject(ctx, id)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

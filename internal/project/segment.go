package project

import (
	"encoding/json"
	"os"
	"time"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/layout"
	"github.com/wegentic/translator-core/internal/model"
)

// UpdateSegmentResult reports how many translation units were updated and
// when, mirroring the original's UpdateJliffSegmentResult.
type UpdateSegmentResult struct {
	UpdatedCount int
	UpdatedAt    time.Time
}

// UpdateSegment reads the JLIFF document at jliffRelPath under project's
// root, rewrites every translation unit matching transUnitID with
// newTarget, and writes the document back — all while holding the
// per-artifact write lock (C8) for that path, so a concurrent edit of the
// same document never interleaves its read/modify/write cycle with this
// one.
func (s *Service) UpdateSegment(p *model.Project, jliffRelPath, transUnitID, newTarget string) (*UpdateSegmentResult, error) {
	artifactPath, err := layout.ResolveProjectRelativePath(p.RootPath, jliffRelPath)
	if err != nil {
		return nil, err
	}

	var result UpdateSegmentResult
	lockErr := s.locks.WithLock(artifactPath, func() error {
		raw, err := os.ReadFile(artifactPath)
		if err != nil {
			if os.IsNotExist(err) {
				return apperr.Validation("JLIFF document %q was not found for the requested project", jliffRelPath)
			}
			return apperr.Internal(err, "failed to read JLIFF document")
		}

		var doc model.JLIFFDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return apperr.Internal(err, "stored JLIFF document is corrupted")
		}

		updated := 0
		for i := range doc.TransUnits {
			if doc.TransUnits[i].TransUnitID == transUnitID {
				doc.TransUnits[i].TargetTranslation = newTarget
				updated++
			}
		}
		if updated == 0 {
			return apperr.Validation("translation unit %q was not found in the provided JLIFF document", transUnitID)
		}

		if err := writeJSONPretty(artifactPath, doc); err != nil {
			return apperr.Internal(err, "failed to write updated JLIFF document")
		}

		result = UpdateSegmentResult{UpdatedCount: updated, UpdatedAt: time.Now().UTC()}
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return &result, nil
}

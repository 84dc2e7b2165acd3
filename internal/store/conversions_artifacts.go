package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/storedb"
)

const selectConversion = `
	SELECT id, project_file_id, src_lang, trg_lang, version, paragraph, embed,
		xliff_rel_path, jliff_rel_path, tag_map_rel_path, status,
		started_at, completed_at, failed_at, error_message
	FROM conversions`

// FindOrCreateConversionForFile returns the (file, src, trg, version)
// conversion row, inserting a pending one if absent.
func (s *SQLiteProjectStore) FindOrCreateConversionForFile(ctx context.Context, fileID uuid.UUID, req model.ConversionRequest) (*model.Conversion, error) {
	var conv *model.Conversion
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectConversion+
			" WHERE project_file_id = ? AND src_lang = ? AND trg_lang = ? AND version = ?",
			fileID.String(), req.SrcLang, req.TrgLang, req.Version)
		existing, err := scanConversion(row)
		if err == nil {
			conv = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup conversion: %w", err)
		}

		newConv := model.Conversion{
			ID:            uuid.New(),
			ProjectFileID: fileID,
			SrcLang:       req.SrcLang,
			TrgLang:       req.TrgLang,
			Version:       req.Version,
			Paragraph:     req.Paragraph,
			Embed:         req.Embed,
			Status:        model.ConversionPending,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO conversions (id, project_file_id, src_lang, trg_lang, version,
				paragraph, embed, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			newConv.ID.String(), newConv.ProjectFileID.String(), newConv.SrcLang, newConv.TrgLang,
			newConv.Version, storedb.BoolToInt(newConv.Paragraph), storedb.BoolToInt(newConv.Embed),
			string(newConv.Status))
		if err != nil {
			if isUniqueViolation(err, "conversions", "project_file_id", "src_lang", "trg_lang", "version") {
				row := tx.QueryRowContext(ctx, selectConversion+
					" WHERE project_file_id = ? AND src_lang = ? AND trg_lang = ? AND version = ?",
					fileID.String(), req.SrcLang, req.TrgLang, req.Version)
				existing, selErr := scanConversion(row)
				if selErr != nil {
					return fmt.Errorf("reselect conversion after conflict: %w", selErr)
				}
				conv = existing
				return nil
			}
			return fmt.Errorf("insert conversion: %w", err)
		}
		conv = &newConv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return conv, nil
}

// UpsertConversionStatus transitions a conversion's status per the state
// table in spec.md §4.4, stamping started_at/completed_at/failed_at and
// recording any produced rel-paths or error message.
func (s *SQLiteProjectStore) UpsertConversionStatus(ctx context.Context, conversionID uuid.UUID, status model.ConversionStatus, xliffRelPath, jliffRelPath, tagMapRelPath, errMsg *string) (*model.Conversion, error) {
	var result *model.Conversion
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectConversion+" WHERE id = ?", conversionID.String())
		current, err := scanConversion(row)
		if err == sql.ErrNoRows {
			return apperr.NotFound("conversion %s not found", conversionID)
		}
		if err != nil {
			return fmt.Errorf("lookup conversion: %w", err)
		}
		if !model.CanTransitionConversion(current.Status, status) {
			return apperr.Validation("cannot transition conversion from %s to %s", current.Status, status)
		}
		if status == model.ConversionCompleted && xliffRelPath == nil && current.XLIFFRelPath == nil {
			return apperr.Validation("conversion %s cannot be marked completed without an xliff_rel_path", conversionID)
		}

		now := storedb.Now()
		startedAt, completedAt, failedAt := current.StartedAt, current.CompletedAt, current.FailedAt
		switch status {
		case model.ConversionRunning:
			startedAt = &now
			completedAt, failedAt = nil, nil
		case model.ConversionCompleted:
			completedAt = &now
			failedAt = nil
		case model.ConversionFailed:
			failedAt = &now
		case model.ConversionPending:
			startedAt, completedAt, failedAt = nil, nil, nil
		}

		if xliffRelPath != nil {
			current.XLIFFRelPath = xliffRelPath
		}
		if jliffRelPath != nil {
			current.JLIFFRelPath = jliffRelPath
		}
		if tagMapRelPath != nil {
			current.TagMapRelPath = tagMapRelPath
		}
		if errMsg != nil {
			current.ErrorMessage = errMsg
		} else if status != model.ConversionFailed {
			current.ErrorMessage = nil
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE conversions SET status = ?, xliff_rel_path = ?, jliff_rel_path = ?,
				tag_map_rel_path = ?, started_at = ?, completed_at = ?, failed_at = ?,
				error_message = ?
			WHERE id = ?`,
			string(status), storedb.NullString(current.XLIFFRelPath), storedb.NullString(current.JLIFFRelPath),
			storedb.NullString(current.TagMapRelPath), storedb.NullTime(startedAt), storedb.NullTime(completedAt),
			storedb.NullTime(failedAt), storedb.NullString(current.ErrorMessage), conversionID.String())
		if err != nil {
			return fmt.Errorf("update conversion status: %w", err)
		}

		current.Status = status
		current.StartedAt, current.CompletedAt, current.FailedAt = startedAt, completedAt, failedAt
		result = current
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListPendingConversions materializes and returns every conversion still
// requiring processing (status pending or failed) for one project/language
// pair, per spec.md §4.4: for every convertible, already-imported file that
// lacks a conversion row for (srcLang, trgLang, "2.0"), it creates one via
// FindOrCreateConversionForFile, then reports the pending/failed set.
// Files whose extension is already XLIFF-like (the skip-conversion set) are
// never considered, matching the original's list_pending_conversions.
func (s *SQLiteProjectStore) ListPendingConversions(ctx context.Context, projectID uuid.UUID, srcLang, trgLang string) ([]model.Conversion, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		"SELECT id, ext, import_status FROM project_files WHERE project_id = ?", projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list project files for pending conversions: %w", err)
	}

	var candidates []uuid.UUID
	for rows.Next() {
		var idRaw, ext, importStatus string
		if err := rows.Scan(&idRaw, &ext, &importStatus); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan project file: %w", err)
		}
		if !model.IsConvertibleExtension(ext) {
			continue
		}
		if importStatus != string(model.ImportStatusImported) {
			continue
		}
		id, err := storedb.ParseUUID("id", idRaw)
		if err != nil {
			rows.Close()
			return nil, err
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	req := model.ConversionRequest{SrcLang: srcLang, TrgLang: trgLang, Version: "2.0", Paragraph: true, Embed: true}
	var out []model.Conversion
	for _, fileID := range candidates {
		conv, err := s.FindOrCreateConversionForFile(ctx, fileID, req)
		if err != nil {
			return nil, err
		}
		if conv.Status == model.ConversionPending || conv.Status == model.ConversionFailed {
			out = append(out, *conv)
		}
	}
	return out, nil
}

// ListConversionsByProject returns every conversion row belonging to any file
// of the given project, for the legacy backfill walk.
func (s *SQLiteProjectStore) ListConversionsByProject(ctx context.Context, projectID uuid.UUID) ([]model.Conversion, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT c.id, c.project_file_id, c.src_lang, c.trg_lang, c.version, c.paragraph, c.embed,
			c.xliff_rel_path, c.jliff_rel_path, c.tag_map_rel_path, c.status,
			c.started_at, c.completed_at, c.failed_at, c.error_message
		FROM conversions c
		JOIN project_files pf ON pf.id = c.project_file_id
		WHERE pf.project_id = ?
		ORDER BY c.id`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list conversions by project: %w", err)
	}
	defer rows.Close()

	var out []model.Conversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, fmt.Errorf("scan conversion: %w", err)
		}
		out = append(out, *c)
	}
	return out, rows.Err()
}

// GetConversion returns a conversion by id.
func (s *SQLiteProjectStore) GetConversion(ctx context.Context, id uuid.UUID) (*model.Conversion, error) {
	row := s.db.DB().QueryRowContext(ctx, selectConversion+" WHERE id = ?", id.String())
	c, err := scanConversion(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("conversion %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get conversion: %w", err)
	}
	return c, nil
}

func scanConversion(row rowScanner) (*model.Conversion, error) {
	var (
		id, projectFileID, srcLang, trgLang, version string
		paragraph, embed                             int64
		xliffRelPath, jliffRelPath, tagMapRelPath     sql.NullString
		status                                        string
		startedAt, completedAt, failedAt              sql.NullTime
		errorMessage                                  sql.NullString
	)
	if err := row.Scan(&id, &projectFileID, &srcLang, &trgLang, &version, &paragraph, &embed,
		&xliffRelPath, &jliffRelPath, &tagMapRelPath, &status,
		&startedAt, &completedAt, &failedAt, &errorMessage); err != nil {
		return nil, err
	}

	convID, err := storedb.ParseUUID("id", id)
	if err != nil {
		return nil, err
	}
	fileID, err := storedb.ParseUUID("project_file_id", projectFileID)
	if err != nil {
		return nil, err
	}
	parsedStatus, err := model.ParseConversionStatus(status)
	if err != nil {
		return nil, err
	}

	return &model.Conversion{
		ID:            convID,
		ProjectFileID: fileID,
		SrcLang:       srcLang,
		TrgLang:       trgLang,
		Version:       version,
		Paragraph:     storedb.IntToBool(paragraph),
		Embed:         storedb.IntToBool(embed),
		XLIFFRelPath:  storedb.StringPtr(xliffRelPath),
		JLIFFRelPath:  storedb.StringPtr(jliffRelPath),
		TagMapRelPath: storedb.StringPtr(tagMapRelPath),
		Status:        parsedStatus,
		StartedAt:     storedb.TimePtr(startedAt),
		CompletedAt:   storedb.TimePtr(completedAt),
		FailedAt:      storedb.TimePtr(failedAt),
		ErrorMessage:  storedb.StringPtr(errorMessage),
	}, nil
}

const selectArtifact = `
	SELECT artifact_id, file_target_id, kind, rel_path, size_bytes, checksum,
		tool, status, created_at, updated_at
	FROM artifacts`

// UpsertArtifact inserts or replaces the artifact for (file_target_id, kind),
// since each target has at most one artifact per kind (ux_artifacts_target_kind).
func (s *SQLiteProjectStore) UpsertArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error) {
	if a.ArtifactID == uuid.Nil {
		a.ArtifactID = uuid.New()
	}
	now := storedb.Now()
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO artifacts (artifact_id, file_target_id, kind, rel_path, size_bytes,
				checksum, tool, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (file_target_id, kind) DO UPDATE SET
				rel_path = excluded.rel_path,
				size_bytes = excluded.size_bytes,
				checksum = excluded.checksum,
				tool = excluded.tool,
				status = excluded.status`,
			a.ArtifactID.String(), a.FileTargetID.String(), string(a.Kind), a.RelPath,
			storedb.NullInt64(a.SizeBytes), a.Checksum, storedb.NullString(a.Tool),
			string(a.Status), now, now)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("upsert artifact: %w", err)
	}

	row := s.db.DB().QueryRowContext(ctx, selectArtifact+" WHERE file_target_id = ? AND kind = ?",
		a.FileTargetID.String(), string(a.Kind))
	return scanArtifact(row)
}

// ListArtifactsByFileTarget returns every artifact for a target.
func (s *SQLiteProjectStore) ListArtifactsByFileTarget(ctx context.Context, fileTargetID uuid.UUID) ([]model.Artifact, error) {
	rows, err := s.db.DB().QueryContext(ctx, selectArtifact+" WHERE file_target_id = ? ORDER BY kind",
		fileTargetID.String())
	if err != nil {
		return nil, fmt.Errorf("list artifacts: %w", err)
	}
	defer rows.Close()

	var out []model.Artifact
	for rows.Next() {
		a, err := scanArtifact(rows)
		if err != nil {
			return nil, fmt.Errorf("scan artifact: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

// GetArtifactByKind returns the artifact of the given kind for a target, if any.
func (s *SQLiteProjectStore) GetArtifactByKind(ctx context.Context, fileTargetID uuid.UUID, kind model.ArtifactKind) (*model.Artifact, error) {
	row := s.db.DB().QueryRowContext(ctx, selectArtifact+" WHERE file_target_id = ? AND kind = ?",
		fileTargetID.String(), string(kind))
	a, err := scanArtifact(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("no %s artifact for file target %s", kind, fileTargetID)
	}
	if err != nil {
		return nil, fmt.Errorf("get artifact by kind: %w", err)
	}
	return a, nil
}

func scanArtifact(row rowScanner) (*model.Artifact, error) {
	var (
		artifactID, fileTargetID, kind, relPath, checksum, status string
		sizeBytes                                                 sql.NullInt64
		tool                                                      sql.NullString
		createdAt, updatedAt                                      sql.NullTime
	)
	if err := row.Scan(&artifactID, &fileTargetID, &kind, &relPath, &sizeBytes,
		&checksum, &tool, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	aID, err := storedb.ParseUUID("artifact_id", artifactID)
	if err != nil {
		return nil, err
	}
	ftID, err := storedb.ParseUUID("file_target_id", fileTargetID)
	if err != nil {
		return nil, err
	}
	parsedKind, err := model.ParseArtifactKind(kind)
	if err != nil {
		return nil, err
	}
	parsedStatus, err := model.ParseArtifactStatus(status)
	if err != nil {
		return nil, err
	}

	return &model.Artifact{
		ArtifactID:   aID,
		FileTargetID: ftID,
		Kind:         parsedKind,
		RelPath:      relPath,
		SizeBytes:    storedb.Int64Ptr(sizeBytes),
		Checksum:     checksum,
		Tool:         storedb.StringPtr(tool),
		Status:       parsedStatus,
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}

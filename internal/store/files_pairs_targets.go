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

// AddFilesToProject inserts additional files into an existing project.
func (s *SQLiteProjectStore) AddFilesToProject(ctx context.Context, projectID uuid.UUID, files []model.NewProjectFile) ([]model.ProjectFile, error) {
	now := storedb.Now()
	var out []model.ProjectFile
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, nf := range files {
			pf := model.ProjectFile{
				ID:             nf.ID,
				ProjectID:      projectID,
				OriginalName:   nf.OriginalName,
				OriginalPath:   nf.OriginalPath,
				StoredRelPath:  nf.StoredRelPath,
				Ext:            nf.Ext,
				SizeBytes:      nf.SizeBytes,
				ChecksumSHA256: nf.ChecksumSHA256,
				ImportStatus:   model.ImportStatusPending,
				Role:           nf.Role,
				StorageState:   model.StorageStateStaged,
				MimeType:       nf.MimeType,
				Importer:       nf.Importer,
				CreatedAt:      now,
				UpdatedAt:      now,
			}
			if err := insertProjectFileTx(ctx, tx, pf); err != nil {
				return err
			}
			out = append(out, pf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetProjectFile returns a file by id.
func (s *SQLiteProjectStore) GetProjectFile(ctx context.Context, id uuid.UUID) (*model.ProjectFile, error) {
	row := s.db.DB().QueryRowContext(ctx, selectProjectFile+" WHERE id = ?", id.String())
	pf, err := scanProjectFile(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("project file %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project file: %w", err)
	}
	return pf, nil
}

// ListProjectFiles returns every file belonging to a project.
func (s *SQLiteProjectStore) ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]model.ProjectFile, error) {
	rows, err := s.db.DB().QueryContext(ctx,
		selectProjectFile+" WHERE project_id = ? ORDER BY created_at", projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list project files: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectFile
	for rows.Next() {
		pf, err := scanProjectFile(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project file: %w", err)
		}
		out = append(out, *pf)
	}
	return out, rows.Err()
}

// RemoveProjectFile deletes a file row; cascades to its file_targets, their
// artifacts, and its conversions via ON DELETE CASCADE. Jobs that referenced
// a removed file target keep their row with file_target_id set to NULL. The
// backing disk file is left in place; the façade removes it after this call.
func (s *SQLiteProjectStore) RemoveProjectFile(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM project_files WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("delete project file: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("project file %s not found", id)
		}
		return nil
	})
}

// SetFileStorageState updates a project file's storage_state.
func (s *SQLiteProjectStore) SetFileStorageState(ctx context.Context, id uuid.UUID, state model.StorageState) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE project_files SET storage_state = ? WHERE id = ?", string(state), id.String())
		if err != nil {
			return fmt.Errorf("update storage_state: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("project file %s not found", id)
		}
		return nil
	})
}

const selectProjectFile = `
	SELECT id, project_id, original_name, original_path, stored_rel_path, ext,
		size_bytes, checksum_sha256, import_status, role, storage_state,
		mime_type, hash_sha256, importer, created_at, updated_at
	FROM project_files`

func scanProjectFile(row rowScanner) (*model.ProjectFile, error) {
	var (
		id, projectID                                  string
		originalName, originalPath, storedRelPath, ext  string
		sizeBytes                                       sql.NullInt64
		checksumSHA256                                  sql.NullString
		importStatus, role, storageState                string
		mimeType, hashSHA256, importer                  sql.NullString
		createdAt, updatedAt                             sql.NullTime
	)
	if err := row.Scan(&id, &projectID, &originalName, &originalPath, &storedRelPath, &ext,
		&sizeBytes, &checksumSHA256, &importStatus, &role, &storageState,
		&mimeType, &hashSHA256, &importer, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	fileID, err := storedb.ParseUUID("id", id)
	if err != nil {
		return nil, err
	}
	projID, err := storedb.ParseUUID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	parsedImportStatus, err := model.ParseImportStatus(importStatus)
	if err != nil {
		return nil, err
	}
	parsedRole, err := model.ParseFileRole(role)
	if err != nil {
		return nil, err
	}
	parsedStorageState, err := model.ParseStorageState(storageState)
	if err != nil {
		return nil, err
	}

	return &model.ProjectFile{
		ID:             fileID,
		ProjectID:      projID,
		OriginalName:   originalName,
		OriginalPath:   originalPath,
		StoredRelPath:  storedRelPath,
		Ext:            ext,
		SizeBytes:      storedb.Int64Ptr(sizeBytes),
		ChecksumSHA256: storedb.StringPtr(checksumSHA256),
		ImportStatus:   parsedImportStatus,
		Role:           parsedRole,
		StorageState:   parsedStorageState,
		MimeType:       storedb.StringPtr(mimeType),
		HashSHA256:     storedb.StringPtr(hashSHA256),
		Importer:       storedb.StringPtr(importer),
		CreatedAt:      createdAt.Time,
		UpdatedAt:      updatedAt.Time,
	}, nil
}

// selectLanguagePairByCode looks up a project's language pair matching
// srcLang/trgLang case-insensitively, per spec.md §3 ("Language codes
// case-insensitive unique per project").
const selectLanguagePairByCode = `
	SELECT pair_id, project_id, src_lang, trg_lang, created_at
	FROM project_language_pairs
	WHERE project_id = ? AND src_lang = ? COLLATE NOCASE AND trg_lang = ? COLLATE NOCASE`

// EnsureLanguagePair returns the (project, src, trg) pair row, inserting it
// if absent. Idempotent: concurrent callers racing to create the same pair
// converge on one row via the unique index and a re-select on conflict.
func (s *SQLiteProjectStore) EnsureLanguagePair(ctx context.Context, projectID uuid.UUID, srcLang, trgLang string) (*model.ProjectLanguagePair, error) {
	var pair *model.ProjectLanguagePair
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectLanguagePairByCode, projectID.String(), srcLang, trgLang)
		existing, err := scanLanguagePair(row)
		if err == nil {
			pair = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup language pair: %w", err)
		}

		newPair := model.ProjectLanguagePair{
			PairID:    uuid.New(),
			ProjectID: projectID,
			SrcLang:   srcLang,
			TrgLang:   trgLang,
			CreatedAt: storedb.Now(),
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO project_language_pairs (pair_id, project_id, src_lang, trg_lang, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			newPair.PairID.String(), newPair.ProjectID.String(), newPair.SrcLang, newPair.TrgLang, newPair.CreatedAt)
		if err != nil {
			if isUniqueViolation(err, "project_language_pairs", "project_id", "src_lang", "trg_lang") {
				row := tx.QueryRowContext(ctx, selectLanguagePairByCode, projectID.String(), srcLang, trgLang)
				existing, selErr := scanLanguagePair(row)
				if selErr != nil {
					return fmt.Errorf("reselect language pair after conflict: %w", selErr)
				}
				pair = existing
				return nil
			}
			return fmt.Errorf("insert language pair: %w", err)
		}
		pair = &newPair
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// ListLanguagePairs returns every language pair declared for a project.
func (s *SQLiteProjectStore) ListLanguagePairs(ctx context.Context, projectID uuid.UUID) ([]model.ProjectLanguagePair, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT pair_id, project_id, src_lang, trg_lang, created_at
		FROM project_language_pairs WHERE project_id = ? ORDER BY created_at`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list language pairs: %w", err)
	}
	defer rows.Close()

	var out []model.ProjectLanguagePair
	for rows.Next() {
		p, err := scanLanguagePair(rows)
		if err != nil {
			return nil, fmt.Errorf("scan language pair: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func scanLanguagePair(row rowScanner) (*model.ProjectLanguagePair, error) {
	var pairID, projectID, srcLang, trgLang string
	var createdAt sql.NullTime
	if err := row.Scan(&pairID, &projectID, &srcLang, &trgLang, &createdAt); err != nil {
		return nil, err
	}
	pID, err := storedb.ParseUUID("pair_id", pairID)
	if err != nil {
		return nil, err
	}
	projID, err := storedb.ParseUUID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	return &model.ProjectLanguagePair{
		PairID:    pID,
		ProjectID: projID,
		SrcLang:   srcLang,
		TrgLang:   trgLang,
		CreatedAt: createdAt.Time,
	}, nil
}

// EnsureFileTarget returns the (file, pair) target row, inserting it as
// pending if absent.
func (s *SQLiteProjectStore) EnsureFileTarget(ctx context.Context, fileID, pairID uuid.UUID) (*model.FileTarget, error) {
	var target *model.FileTarget
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, `
			SELECT file_target_id, file_id, pair_id, status, created_at, updated_at
			FROM file_targets WHERE file_id = ? AND pair_id = ?`, fileID.String(), pairID.String())
		existing, err := scanFileTarget(row)
		if err == nil {
			target = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup file target: %w", err)
		}

		now := storedb.Now()
		newTarget := model.FileTarget{
			FileTargetID: uuid.New(),
			FileID:       fileID,
			PairID:       pairID,
			Status:       model.FileTargetPending,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO file_targets (file_target_id, file_id, pair_id, status, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			newTarget.FileTargetID.String(), newTarget.FileID.String(), newTarget.PairID.String(),
			string(newTarget.Status), newTarget.CreatedAt, newTarget.UpdatedAt)
		if err != nil {
			if isUniqueViolation(err, "file_targets", "file_id", "pair_id") {
				row := tx.QueryRowContext(ctx, `
					SELECT file_target_id, file_id, pair_id, status, created_at, updated_at
					FROM file_targets WHERE file_id = ? AND pair_id = ?`, fileID.String(), pairID.String())
				existing, selErr := scanFileTarget(row)
				if selErr != nil {
					return fmt.Errorf("reselect file target after conflict: %w", selErr)
				}
				target = existing
				return nil
			}
			return fmt.Errorf("insert file target: %w", err)
		}
		target = &newTarget
		return nil
	})
	if err != nil {
		return nil, err
	}
	return target, nil
}

// UpdateFileTargetStatus transitions a file target's status, rejecting
// transitions the lattice in model.CanTransitionFileTarget forbids.
func (s *SQLiteProjectStore) UpdateFileTargetStatus(ctx context.Context, fileTargetID uuid.UUID, status model.FileTargetStatus) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx,
			"SELECT status FROM file_targets WHERE file_target_id = ?", fileTargetID.String())
		var raw string
		if err := row.Scan(&raw); err != nil {
			if err == sql.ErrNoRows {
				return apperr.NotFound("file target %s not found", fileTargetID)
			}
			return fmt.Errorf("lookup file target status: %w", err)
		}
		current, err := model.ParseFileTargetStatus(raw)
		if err != nil {
			return err
		}
		if !model.CanTransitionFileTarget(current, status) {
			return apperr.Validation("cannot transition file target from %s to %s", current, status)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE file_targets SET status = ? WHERE file_target_id = ?", string(status), fileTargetID.String())
		if err != nil {
			return fmt.Errorf("update file target status: %w", err)
		}
		return nil
	})
}

// ListFileTargets returns every target declared for a file.
func (s *SQLiteProjectStore) ListFileTargets(ctx context.Context, fileID uuid.UUID) ([]model.FileTarget, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT file_target_id, file_id, pair_id, status, created_at, updated_at
		FROM file_targets WHERE file_id = ? ORDER BY created_at`, fileID.String())
	if err != nil {
		return nil, fmt.Errorf("list file targets: %w", err)
	}
	defer rows.Close()

	var out []model.FileTarget
	for rows.Next() {
		ft, err := scanFileTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("scan file target: %w", err)
		}
		out = append(out, *ft)
	}
	return out, rows.Err()
}

func scanFileTarget(row rowScanner) (*model.FileTarget, error) {
	var fileTargetID, fileID, pairID, status string
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&fileTargetID, &fileID, &pairID, &status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	ftID, err := storedb.ParseUUID("file_target_id", fileTargetID)
	if err != nil {
		return nil, err
	}
	fID, err := storedb.ParseUUID("file_id", fileID)
	if err != nil {
		return nil, err
	}
	pID, err := storedb.ParseUUID("pair_id", pairID)
	if err != nil {
		return nil, err
	}
	parsedStatus, err := model.ParseFileTargetStatus(status)
	if err != nil {
		return nil, err
	}
	return &model.FileTarget{
		FileTargetID: ftID,
		FileID:       fID,
		PairID:       pID,
		Status:       parsedStatus,
		CreatedAt:    createdAt.Time,
		UpdatedAt:    updatedAt.Time,
	}, nil
}

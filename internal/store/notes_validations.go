package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/storedb"
)

// AddNote appends a free-text annotation to a project's activity log.
func (s *SQLiteProjectStore) AddNote(ctx context.Context, projectID, authorUserID uuid.UUID, body string) (*model.Note, error) {
	note := model.Note{
		NoteID:       uuid.New(),
		ProjectID:    projectID,
		AuthorUserID: authorUserID,
		Body:         body,
		CreatedAt:    storedb.Now(),
	}
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO notes (note_id, project_id, author_user_id, body, created_at)
			VALUES (?, ?, ?, ?, ?)`,
			note.NoteID.String(), note.ProjectID.String(), note.AuthorUserID.String(), note.Body, note.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return &note, nil
}

// ListNotes returns every note for a project, oldest first.
func (s *SQLiteProjectStore) ListNotes(ctx context.Context, projectID uuid.UUID) ([]model.Note, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT note_id, project_id, author_user_id, body, created_at
		FROM notes WHERE project_id = ? ORDER BY created_at`, projectID.String())
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []model.Note
	for rows.Next() {
		var noteID, projID, authorID, body string
		var createdAt sql.NullTime
		if err := rows.Scan(&noteID, &projID, &authorID, &body, &createdAt); err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		nID, err := storedb.ParseUUID("note_id", noteID)
		if err != nil {
			return nil, err
		}
		pID, err := storedb.ParseUUID("project_id", projID)
		if err != nil {
			return nil, err
		}
		aID, err := storedb.ParseUUID("author_user_id", authorID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Note{
			NoteID:       nID,
			ProjectID:    pID,
			AuthorUserID: aID,
			Body:         body,
			CreatedAt:    createdAt.Time,
		})
	}
	return out, rows.Err()
}

// RecordValidation appends a QA validation result against an artifact.
func (s *SQLiteProjectStore) RecordValidation(ctx context.Context, artifactID uuid.UUID, validator string, passed bool, resultJSON *string) (*model.Validation, error) {
	v := model.Validation{
		ValidationID: uuid.New(),
		ArtifactID:   artifactID,
		Validator:    validator,
		Passed:       passed,
		ResultJSON:   resultJSON,
		CreatedAt:    storedb.Now(),
	}
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO validations (validation_id, artifact_id, validator, passed, result_json, created_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			v.ValidationID.String(), v.ArtifactID.String(), v.Validator,
			storedb.BoolToInt(v.Passed), storedb.NullString(v.ResultJSON), v.CreatedAt)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("insert validation: %w", err)
	}
	return &v, nil
}

// ListValidations returns every validation recorded against an artifact,
// oldest first.
func (s *SQLiteProjectStore) ListValidations(ctx context.Context, artifactID uuid.UUID) ([]model.Validation, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT validation_id, artifact_id, validator, passed, result_json, created_at
		FROM validations WHERE artifact_id = ? ORDER BY created_at`, artifactID.String())
	if err != nil {
		return nil, fmt.Errorf("list validations: %w", err)
	}
	defer rows.Close()

	var out []model.Validation
	for rows.Next() {
		var validationID, artID, validator string
		var passed int64
		var resultJSON sql.NullString
		var createdAt sql.NullTime
		if err := rows.Scan(&validationID, &artID, &validator, &passed, &resultJSON, &createdAt); err != nil {
			return nil, fmt.Errorf("scan validation: %w", err)
		}
		vID, err := storedb.ParseUUID("validation_id", validationID)
		if err != nil {
			return nil, err
		}
		aID, err := storedb.ParseUUID("artifact_id", artID)
		if err != nil {
			return nil, err
		}
		out = append(out, model.Validation{
			ValidationID: vID,
			ArtifactID:   aID,
			Validator:    validator,
			Passed:       storedb.IntToBool(passed),
			ResultJSON:   storedb.StringPtr(resultJSON),
			CreatedAt:    createdAt.Time,
		})
	}
	return out, rows.Err()
}

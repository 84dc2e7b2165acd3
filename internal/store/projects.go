package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/apperr"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/storedb"
)

// InsertProjectWithFiles inserts a project row and its initial files inside a
// single transaction: either all of it lands, or none of it does. A
// duplicate (owner_user_id, name) is reported as a conflict, matching
// spec.md §7's "unique-index violation on create" case.
func (s *SQLiteProjectStore) InsertProjectWithFiles(ctx context.Context, np model.NewProject, files []model.NewProjectFile) (*model.Project, []model.ProjectFile, error) {
	now := storedb.Now()
	project := model.Project{
		ID:              np.ID,
		Name:            np.Name,
		Slug:            np.Slug,
		ProjectType:     np.ProjectType,
		RootPath:        np.RootPath,
		Status:          model.ProjectStatusActive,
		LifecycleStatus: model.LifecycleCreating,
		OwnerUserID:     np.OwnerUserID,
		ClientID:        np.ClientID,
		DomainID:        np.DomainID,
		DefaultSrcLang:  np.DefaultSrcLang,
		DefaultTgtLang:  np.DefaultTgtLang,
		CreatedAt:       now,
		UpdatedAt:       now,
		Metadata:        np.Metadata,
	}

	var insertedFiles []model.ProjectFile
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO projects (id, name, slug, project_type, root_path, status,
				lifecycle_status, owner_user_id, client_id, domain_id,
				default_src_lang, default_tgt_lang, created_at, updated_at, metadata)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			project.ID.String(), project.Name, project.Slug, string(project.ProjectType),
			project.RootPath, string(project.Status), string(project.LifecycleStatus),
			project.OwnerUserID.String(), storedb.NullUUID(project.ClientID), storedb.NullUUID(project.DomainID),
			storedb.NullString(project.DefaultSrcLang), storedb.NullString(project.DefaultTgtLang),
			project.CreatedAt, project.UpdatedAt, storedb.NullString(project.Metadata),
		)
		if err != nil {
			if isUniqueViolation(err, "projects", "owner_user_id", "name") {
				return apperr.Conflict("a project named %q already exists for this owner", project.Name)
			}
			return fmt.Errorf("insert project: %w", err)
		}

		for _, nf := range files {
			pf := model.ProjectFile{
				ID:             nf.ID,
				ProjectID:      project.ID,
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
			insertedFiles = append(insertedFiles, pf)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return &project, insertedFiles, nil
}

func insertProjectFileTx(ctx context.Context, tx *sql.Tx, pf model.ProjectFile) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO project_files (id, project_id, original_name, original_path,
			stored_rel_path, ext, size_bytes, checksum_sha256, import_status, role,
			storage_state, mime_type, hash_sha256, importer, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pf.ID.String(), pf.ProjectID.String(), pf.OriginalName, pf.OriginalPath,
		pf.StoredRelPath, pf.Ext, storedb.NullInt64(pf.SizeBytes), storedb.NullString(pf.ChecksumSHA256),
		string(pf.ImportStatus), string(pf.Role), string(pf.StorageState),
		storedb.NullString(pf.MimeType), storedb.NullString(pf.HashSHA256), storedb.NullString(pf.Importer),
		pf.CreatedAt, pf.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "project_files", "project_id", "stored_rel_path") {
			return apperr.Conflict("a file already exists at %q in this project", pf.StoredRelPath)
		}
		return fmt.Errorf("insert project file: %w", err)
	}
	return nil
}

// GetProject returns a project by id, or a not-found error if it is absent.
func (s *SQLiteProjectStore) GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	row := s.db.DB().QueryRowContext(ctx, `
		SELECT id, name, slug, project_type, root_path, status, lifecycle_status,
			owner_user_id, client_id, domain_id, default_src_lang, default_tgt_lang,
			created_at, updated_at, archived_at, metadata
		FROM projects WHERE id = ?`, id.String())
	p, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, apperr.NotFound("project %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	return p, nil
}

// ListProjects returns every project, most recently created first.
func (s *SQLiteProjectStore) ListProjects(ctx context.Context) ([]model.Project, error) {
	rows, err := s.db.DB().QueryContext(ctx, `
		SELECT id, name, slug, project_type, root_path, status, lifecycle_status,
			owner_user_id, client_id, domain_id, default_src_lang, default_tgt_lang,
			created_at, updated_at, archived_at, metadata
		FROM projects ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var out []model.Project
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// DeleteProject removes a project and, via ON DELETE CASCADE, every row
// hanging off it (files, pairs, targets, artifacts, jobs, notes).
func (s *SQLiteProjectStore) DeleteProject(ctx context.Context, id uuid.UUID) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id.String())
		if err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("project %s not found", id)
		}
		return nil
	})
}

// SetProjectLifecycleStatus updates a project's lifecycle_status. The
// status and archived_at columns are left unchanged.
func (s *SQLiteProjectStore) SetProjectLifecycleStatus(ctx context.Context, id uuid.UUID, status model.LifecycleStatus) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE projects SET lifecycle_status = ? WHERE id = ?",
			string(status), id.String())
		if err != nil {
			return fmt.Errorf("update lifecycle_status: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			return apperr.NotFound("project %s not found", id)
		}
		return nil
	})
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*model.Project, error) {
	var (
		id, ownerID                        string
		name, slug, projectType, rootPath  string
		status, lifecycleStatus            string
		clientID, domainID                 sql.NullString
		defaultSrcLang, defaultTgtLang      sql.NullString
		createdAt, updatedAt, archivedAt    sql.NullTime
		metadata                           sql.NullString
	)
	if err := row.Scan(&id, &name, &slug, &projectType, &rootPath, &status, &lifecycleStatus,
		&ownerID, &clientID, &domainID, &defaultSrcLang, &defaultTgtLang,
		&createdAt, &updatedAt, &archivedAt, &metadata); err != nil {
		return nil, err
	}

	pID, err := storedb.ParseUUID("id", id)
	if err != nil {
		return nil, err
	}
	ownerUUID, err := storedb.ParseUUID("owner_user_id", ownerID)
	if err != nil {
		return nil, err
	}
	pType, err := model.ParseProjectType(projectType)
	if err != nil {
		return nil, err
	}
	pStatus, err := model.ParseProjectStatus(status)
	if err != nil {
		return nil, err
	}
	pLifecycle, err := model.ParseLifecycleStatus(lifecycleStatus)
	if err != nil {
		return nil, err
	}
	clientPtr, err := storedb.ParseNullUUID("client_id", clientID)
	if err != nil {
		return nil, err
	}
	domainPtr, err := storedb.ParseNullUUID("domain_id", domainID)
	if err != nil {
		return nil, err
	}

	return &model.Project{
		ID:              pID,
		Name:            name,
		Slug:            slug,
		ProjectType:     pType,
		RootPath:        rootPath,
		Status:          pStatus,
		LifecycleStatus: pLifecycle,
		OwnerUserID:     ownerUUID,
		ClientID:        clientPtr,
		DomainID:        domainPtr,
		DefaultSrcLang:  storedb.StringPtr(defaultSrcLang),
		DefaultTgtLang:  storedb.StringPtr(defaultTgtLang),
		CreatedAt:       createdAt.Time,
		UpdatedAt:       updatedAt.Time,
		ArchivedAt:      storedb.TimePtr(archivedAt),
		Metadata:        storedb.StringPtr(metadata),
	}, nil
}

// isUniqueViolation reports whether err is a SQLite unique-constraint
// violation against the given table/column set, by substring match on
// modernc.org's error text, e.g.
// "UNIQUE constraint failed: projects.owner_user_id, projects.name".
func isUniqueViolation(err error, table string, columns ...string) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	if !strings.Contains(msg, "UNIQUE constraint failed") {
		return false
	}
	for _, col := range columns {
		if !strings.Contains(msg, table+"."+col) {
			return false
		}
	}
	return true
}

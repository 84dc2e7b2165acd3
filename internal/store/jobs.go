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

const selectJob = `
	SELECT job_id, project_id, job_type, job_key, file_target_id, artifact_id,
		state, attempts, error, created_at, started_at, finished_at
	FROM jobs`

// UpsertJob inserts a job by its idempotency key (job_key), returning the
// existing row unchanged if a job with that key already exists, whatever its
// state.
func (s *SQLiteProjectStore) UpsertJob(ctx context.Context, j model.Job) (*model.Job, error) {
	if j.JobID == uuid.Nil {
		j.JobID = uuid.New()
	}
	if j.State == "" {
		j.State = model.JobStatePending
	}
	var result *model.Job
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectJob+" WHERE job_key = ?", j.JobKey)
		existing, err := scanJob(row)
		if err == nil {
			result = existing
			return nil
		}
		if err != sql.ErrNoRows {
			return fmt.Errorf("lookup job by key: %w", err)
		}

		now := storedb.Now()
		_, err = tx.ExecContext(ctx, `
			INSERT INTO jobs (job_id, project_id, job_type, job_key, file_target_id,
				artifact_id, state, attempts, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			j.JobID.String(), j.ProjectID.String(), string(j.JobType), j.JobKey,
			storedb.NullUUID(j.FileTargetID), storedb.NullUUID(j.ArtifactID),
			string(j.State), j.Attempts, now)
		if err != nil {
			if isUniqueViolation(err, "jobs", "job_key") {
				row := tx.QueryRowContext(ctx, selectJob+" WHERE job_key = ?", j.JobKey)
				existing, selErr := scanJob(row)
				if selErr != nil {
					return fmt.Errorf("reselect job after conflict: %w", selErr)
				}
				result = existing
				return nil
			}
			return fmt.Errorf("insert job: %w", err)
		}
		j.CreatedAt = now
		result = &j
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// TransitionJobState performs a compare-and-swap on a job's state: it only
// applies if the row's current state equals from, per spec.md §4.4's
// transition_job_state(job, from, to). A CAS miss (the row has already moved
// on to some other state) is reported by the updated return value being
// false rather than as an error; an update that violates model.CanTransitionJob
// is rejected as a Validation error regardless of whether from matched.
// Moving to running bumps attempts and stamps started_at; moving to a
// terminal state stamps finished_at.
func (s *SQLiteProjectStore) TransitionJobState(ctx context.Context, jobID uuid.UUID, from, to model.JobState, errMsg *string) (job *model.Job, updated bool, err error) {
	var result *model.Job
	var didUpdate bool
	err = s.db.WithTx(ctx, func(tx *sql.Tx) error {
		row := tx.QueryRowContext(ctx, selectJob+" WHERE job_id = ?", jobID.String())
		current, err := scanJob(row)
		if err == sql.ErrNoRows {
			return apperr.NotFound("job %s not found", jobID)
		}
		if err != nil {
			return fmt.Errorf("lookup job: %w", err)
		}
		if !model.CanTransitionJob(from, to) {
			return apperr.Validation("cannot transition job from %s to %s", from, to)
		}
		if current.State != from {
			result = current
			didUpdate = false
			return nil
		}

		now := storedb.Now()
		attempts := current.Attempts
		startedAt := current.StartedAt
		finishedAt := current.FinishedAt
		if to == model.JobStateRunning {
			attempts++
			startedAt = &now
		}
		if model.IsTerminalJobState(to) {
			finishedAt = &now
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE jobs SET state = ?, attempts = ?, error = ?, started_at = ?, finished_at = ?
			WHERE job_id = ? AND state = ?`,
			string(to), attempts, storedb.NullString(errMsg), storedb.NullTime(startedAt),
			storedb.NullTime(finishedAt), jobID.String(), string(from))
		if err != nil {
			return fmt.Errorf("update job state: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if n == 0 {
			result = current
			didUpdate = false
			return nil
		}

		current.State = to
		current.Attempts = attempts
		current.StartedAt = startedAt
		current.FinishedAt = finishedAt
		current.Error = errMsg
		result = current
		didUpdate = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, didUpdate, nil
}

// ListJobsByState returns every job in the given state, oldest first.
func (s *SQLiteProjectStore) ListJobsByState(ctx context.Context, state model.JobState) ([]model.Job, error) {
	rows, err := s.db.DB().QueryContext(ctx, selectJob+" WHERE state = ? ORDER BY created_at", string(state))
	if err != nil {
		return nil, fmt.Errorf("list jobs by state: %w", err)
	}
	defer rows.Close()

	var out []model.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, *j)
	}
	return out, rows.Err()
}

func scanJob(row rowScanner) (*model.Job, error) {
	var (
		jobID, projectID, jobType, jobKey string
		fileTargetID, artifactID          sql.NullString
		state                             string
		attempts                          int
		jobErr                            sql.NullString
		createdAt                         sql.NullTime
		startedAt, finishedAt             sql.NullTime
	)
	if err := row.Scan(&jobID, &projectID, &jobType, &jobKey, &fileTargetID, &artifactID,
		&state, &attempts, &jobErr, &createdAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}

	jID, err := storedb.ParseUUID("job_id", jobID)
	if err != nil {
		return nil, err
	}
	pID, err := storedb.ParseUUID("project_id", projectID)
	if err != nil {
		return nil, err
	}
	parsedType, err := model.ParseJobType(jobType)
	if err != nil {
		return nil, err
	}
	parsedState, err := model.ParseJobState(state)
	if err != nil {
		return nil, err
	}
	ftID, err := storedb.ParseNullUUID("file_target_id", fileTargetID)
	if err != nil {
		return nil, err
	}
	aID, err := storedb.ParseNullUUID("artifact_id", artifactID)
	if err != nil {
		return nil, err
	}

	return &model.Job{
		JobID:        jID,
		ProjectID:    pID,
		JobType:      parsedType,
		JobKey:       jobKey,
		FileTargetID: ftID,
		ArtifactID:   aID,
		State:        parsedState,
		Attempts:     attempts,
		Error:        storedb.StringPtr(jobErr),
		CreatedAt:    createdAt.Time,
		StartedAt:    storedb.TimePtr(startedAt),
		FinishedAt:   storedb.TimePtr(finishedAt),
	}, nil
}

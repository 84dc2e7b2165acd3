// Package store implements the Project Store (C4): the queries the façade
// uses to create, inspect, and mutate projects, files, language pairs, file
// targets, conversions, artifacts, jobs, notes, and validations. It builds
// on internal/storedb's pool/pragma/migration layer and internal/model's
// typed rows.
package store

import (
	"context"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/applog"
	"github.com/wegentic/translator-core/internal/model"
	"github.com/wegentic/translator-core/internal/storedb"
)

// ProjectStore is the data access interface the façade (internal/project)
// and the CLI depend on. Grouped by aggregate, mirroring the teacher's
// Repository interface banners.
type ProjectStore interface {
	// Projects

	InsertProjectWithFiles(ctx context.Context, np model.NewProject, files []model.NewProjectFile) (*model.Project, []model.ProjectFile, error)
	GetProject(ctx context.Context, id uuid.UUID) (*model.Project, error)
	ListProjects(ctx context.Context) ([]model.Project, error)
	DeleteProject(ctx context.Context, id uuid.UUID) error
	SetProjectLifecycleStatus(ctx context.Context, id uuid.UUID, status model.LifecycleStatus) error

	// Files

	AddFilesToProject(ctx context.Context, projectID uuid.UUID, files []model.NewProjectFile) ([]model.ProjectFile, error)
	GetProjectFile(ctx context.Context, id uuid.UUID) (*model.ProjectFile, error)
	ListProjectFiles(ctx context.Context, projectID uuid.UUID) ([]model.ProjectFile, error)
	RemoveProjectFile(ctx context.Context, id uuid.UUID) error
	SetFileStorageState(ctx context.Context, id uuid.UUID, state model.StorageState) error

	// Language pairs & file targets

	EnsureLanguagePair(ctx context.Context, projectID uuid.UUID, srcLang, trgLang string) (*model.ProjectLanguagePair, error)
	ListLanguagePairs(ctx context.Context, projectID uuid.UUID) ([]model.ProjectLanguagePair, error)
	EnsureFileTarget(ctx context.Context, fileID, pairID uuid.UUID) (*model.FileTarget, error)
	UpdateFileTargetStatus(ctx context.Context, fileTargetID uuid.UUID, status model.FileTargetStatus) error
	ListFileTargets(ctx context.Context, fileID uuid.UUID) ([]model.FileTarget, error)

	// Conversions (legacy plane)

	FindOrCreateConversionForFile(ctx context.Context, fileID uuid.UUID, req model.ConversionRequest) (*model.Conversion, error)
	UpsertConversionStatus(ctx context.Context, conversionID uuid.UUID, status model.ConversionStatus, xliffRelPath, jliffRelPath, tagMapRelPath, errMsg *string) (*model.Conversion, error)
	ListPendingConversions(ctx context.Context, projectID uuid.UUID, srcLang, trgLang string) ([]model.Conversion, error)
	ListConversionsByProject(ctx context.Context, projectID uuid.UUID) ([]model.Conversion, error)
	GetConversion(ctx context.Context, id uuid.UUID) (*model.Conversion, error)

	// Artifacts

	UpsertArtifact(ctx context.Context, a model.Artifact) (*model.Artifact, error)
	ListArtifactsByFileTarget(ctx context.Context, fileTargetID uuid.UUID) ([]model.Artifact, error)
	GetArtifactByKind(ctx context.Context, fileTargetID uuid.UUID, kind model.ArtifactKind) (*model.Artifact, error)

	// Jobs

	UpsertJob(ctx context.Context, j model.Job) (*model.Job, error)
	TransitionJobState(ctx context.Context, jobID uuid.UUID, from, to model.JobState, errMsg *string) (job *model.Job, updated bool, err error)
	ListJobsByState(ctx context.Context, state model.JobState) ([]model.Job, error)

	// Notes & validations

	AddNote(ctx context.Context, projectID, authorUserID uuid.UUID, body string) (*model.Note, error)
	ListNotes(ctx context.Context, projectID uuid.UUID) ([]model.Note, error)
	RecordValidation(ctx context.Context, artifactID uuid.UUID, validator string, passed bool, resultJSON *string) (*model.Validation, error)
	ListValidations(ctx context.Context, artifactID uuid.UUID) ([]model.Validation, error)
}

// SQLiteProjectStore implements ProjectStore over an internal/storedb.Store.
type SQLiteProjectStore struct {
	db  *storedb.Store
	log *applog.Logger
}

// New wraps db as a ProjectStore.
func New(db *storedb.Store) *SQLiteProjectStore {
	return &SQLiteProjectStore{db: db, log: applog.New("store")}
}

var _ ProjectStore = (*SQLiteProjectStore)(nil)

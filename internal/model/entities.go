package model

import (
	"time"

	"github.com/google/uuid"
)

// Project is the root of the aggregate (spec.md §3).
type Project struct {
	ID                uuid.UUID
	Name              string
	Slug              string
	ProjectType       ProjectType
	RootPath          string
	Status            ProjectStatus
	LifecycleStatus   LifecycleStatus
	OwnerUserID       uuid.UUID
	ClientID          *uuid.UUID
	DomainID          *uuid.UUID
	DefaultSrcLang    *string
	DefaultTgtLang    *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
	ArchivedAt        *time.Time
	Metadata          *string
}

// ProjectFile is a file imported into a project.
type ProjectFile struct {
	ID             uuid.UUID
	ProjectID      uuid.UUID
	OriginalName   string
	OriginalPath   string
	StoredRelPath  string
	Ext            string
	SizeBytes      *int64
	ChecksumSHA256 *string
	ImportStatus   ImportStatus
	Role           FileRole
	StorageState   StorageState
	MimeType       *string
	HashSHA256     *string
	Importer       *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ProjectLanguagePair binds a project to one (src, trg) pair.
type ProjectLanguagePair struct {
	PairID    uuid.UUID
	ProjectID uuid.UUID
	SrcLang   string
	TrgLang   string
	CreatedAt time.Time
}

// FileTarget binds one file to one language pair.
type FileTarget struct {
	FileTargetID uuid.UUID
	FileID       uuid.UUID
	PairID       uuid.UUID
	Status       FileTargetStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Conversion is the legacy plane coexisting with FileTarget (spec.md §3).
type Conversion struct {
	ID              uuid.UUID
	ProjectFileID   uuid.UUID
	SrcLang         string
	TrgLang         string
	Version         string
	Paragraph       bool
	Embed           bool
	XLIFFRelPath    *string
	JLIFFRelPath    *string
	TagMapRelPath   *string
	Status          ConversionStatus
	StartedAt       *time.Time
	CompletedAt     *time.Time
	FailedAt        *time.Time
	ErrorMessage    *string
}

// Artifact is a content-addressable derived file.
type Artifact struct {
	ArtifactID   uuid.UUID
	FileTargetID uuid.UUID
	Kind         ArtifactKind
	RelPath      string
	SizeBytes    *int64
	Checksum     string
	Tool         *string
	Status       ArtifactStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Job is a durable record of a background task.
type Job struct {
	JobID        uuid.UUID
	ProjectID    uuid.UUID
	JobType      JobType
	JobKey       string
	FileTargetID *uuid.UUID
	ArtifactID   *uuid.UUID
	State        JobState
	Attempts     int
	Error        *string
	CreatedAt    time.Time
	StartedAt    *time.Time
	FinishedAt   *time.Time
}

// Validation is an append-only QA record against an artifact.
type Validation struct {
	ValidationID uuid.UUID
	ArtifactID   uuid.UUID
	Validator    string
	Passed       bool
	ResultJSON   *string
	CreatedAt    time.Time
}

// Note is an append-only free-text annotation on a project.
type Note struct {
	NoteID       uuid.UUID
	ProjectID    uuid.UUID
	AuthorUserID uuid.UUID
	Body         string
	CreatedAt    time.Time
}

// NewProject carries the arguments for inserting a project.
type NewProject struct {
	ID              uuid.UUID
	Name            string
	Slug            string
	ProjectType     ProjectType
	RootPath        string
	OwnerUserID     uuid.UUID
	ClientID        *uuid.UUID
	DomainID        *uuid.UUID
	DefaultSrcLang  *string
	DefaultTgtLang  *string
	Metadata        *string
}

// NewProjectFile carries the arguments for inserting a project file.
type NewProjectFile struct {
	ID             uuid.UUID
	OriginalName   string
	OriginalPath   string
	StoredRelPath  string
	Ext            string
	SizeBytes      *int64
	ChecksumSHA256 *string
	Role           FileRole
	MimeType       *string
	Importer       *string
}

// ConversionRequest carries the arguments for find_or_create_conversion.
type ConversionRequest struct {
	SrcLang   string
	TrgLang   string
	Version   string
	Paragraph bool
	Embed     bool
}

// Package model holds the typed row model (C3): domain entities and the
// closed-set enumerations backing their SQL CHECK constraints. Every enum has
// a String() codec and a ParseX() decoder; an invalid stored value produces a
// structured InvalidEnum error rather than a silent coercion, per spec.md §4.3.
package model

import "fmt"

// InvalidEnum reports a raw value read from storage that does not belong to
// a column's closed set.
type InvalidEnum struct {
	Column string
	Raw    string
}

func (e *InvalidEnum) Error() string {
	return fmt.Sprintf("invalid value %q for column %s", e.Raw, e.Column)
}

// ProjectType enumerates project.project_type.
type ProjectType string

const (
	ProjectTypeTranslation ProjectType = "translation"
	ProjectTypeRAG         ProjectType = "rag"
)

func ParseProjectType(raw string) (ProjectType, error) {
	switch ProjectType(raw) {
	case ProjectTypeTranslation, ProjectTypeRAG:
		return ProjectType(raw), nil
	default:
		return "", &InvalidEnum{Column: "project_type", Raw: raw}
	}
}

// ProjectStatus enumerates project.status.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusArchived ProjectStatus = "archived"
)

func ParseProjectStatus(raw string) (ProjectStatus, error) {
	switch ProjectStatus(raw) {
	case ProjectStatusActive, ProjectStatusArchived:
		return ProjectStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "status", Raw: raw}
	}
}

// LifecycleStatus enumerates project.lifecycle_status.
type LifecycleStatus string

const (
	LifecycleCreating   LifecycleStatus = "creating"
	LifecycleReady      LifecycleStatus = "ready"
	LifecycleInProgress LifecycleStatus = "in_progress"
	LifecycleCompleted  LifecycleStatus = "completed"
	LifecycleError      LifecycleStatus = "error"
)

func ParseLifecycleStatus(raw string) (LifecycleStatus, error) {
	switch LifecycleStatus(raw) {
	case LifecycleCreating, LifecycleReady, LifecycleInProgress, LifecycleCompleted, LifecycleError:
		return LifecycleStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "lifecycle_status", Raw: raw}
	}
}

// ImportStatus enumerates project_files.import_status.
type ImportStatus string

const (
	ImportStatusPending  ImportStatus = "pending"
	ImportStatusImported ImportStatus = "imported"
	ImportStatusFailed   ImportStatus = "failed"
)

func ParseImportStatus(raw string) (ImportStatus, error) {
	switch ImportStatus(raw) {
	case ImportStatusPending, ImportStatusImported, ImportStatusFailed:
		return ImportStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "import_status", Raw: raw}
	}
}

// FileRole enumerates project_files.role.
type FileRole string

const (
	FileRoleSource     FileRole = "source"
	FileRoleReference  FileRole = "reference"
	FileRoleTM         FileRole = "tm"
	FileRoleTermbase   FileRole = "termbase"
	FileRoleStyleguide FileRole = "styleguide"
	FileRoleOther      FileRole = "other"
)

func ParseFileRole(raw string) (FileRole, error) {
	switch FileRole(raw) {
	case FileRoleSource, FileRoleReference, FileRoleTM, FileRoleTermbase, FileRoleStyleguide, FileRoleOther:
		return FileRole(raw), nil
	default:
		return "", &InvalidEnum{Column: "role", Raw: raw}
	}
}

// StorageState enumerates project_files.storage_state.
type StorageState string

const (
	StorageStateStaged  StorageState = "staged"
	StorageStateCopied  StorageState = "copied"
	StorageStateMissing StorageState = "missing"
	StorageStateDeleted StorageState = "deleted"
)

func ParseStorageState(raw string) (StorageState, error) {
	switch StorageState(raw) {
	case StorageStateStaged, StorageStateCopied, StorageStateMissing, StorageStateDeleted:
		return StorageState(raw), nil
	default:
		return "", &InvalidEnum{Column: "storage_state", Raw: raw}
	}
}

// FileTargetStatus enumerates file_targets.status.
type FileTargetStatus string

const (
	FileTargetPending   FileTargetStatus = "pending"
	FileTargetExtracted FileTargetStatus = "extracted"
	FileTargetFailed    FileTargetStatus = "failed"
)

func ParseFileTargetStatus(raw string) (FileTargetStatus, error) {
	switch FileTargetStatus(raw) {
	case FileTargetPending, FileTargetExtracted, FileTargetFailed:
		return FileTargetStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "status", Raw: raw}
	}
}

// CanTransitionFileTarget reports whether the (from, to) transition is
// allowed by the lattice in spec.md §3: pending -> extracted, pending ->
// failed, extracted <-> failed; no transition leaves extracted except to
// failed.
func CanTransitionFileTarget(from, to FileTargetStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case FileTargetPending:
		return to == FileTargetExtracted || to == FileTargetFailed
	case FileTargetExtracted:
		return to == FileTargetFailed
	case FileTargetFailed:
		return to == FileTargetExtracted
	default:
		return false
	}
}

// ConversionStatus enumerates conversions.status.
type ConversionStatus string

const (
	ConversionPending   ConversionStatus = "pending"
	ConversionRunning   ConversionStatus = "running"
	ConversionCompleted ConversionStatus = "completed"
	ConversionFailed    ConversionStatus = "failed"
)

func ParseConversionStatus(raw string) (ConversionStatus, error) {
	switch ConversionStatus(raw) {
	case ConversionPending, ConversionRunning, ConversionCompleted, ConversionFailed:
		return ConversionStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "status", Raw: raw}
	}
}

// CanTransitionConversion implements the state machine table in spec.md §4.4.
func CanTransitionConversion(from, to ConversionStatus) bool {
	switch from {
	case ConversionPending:
		return to == ConversionRunning || to == ConversionCompleted || to == ConversionFailed
	case ConversionRunning:
		return to == ConversionRunning || to == ConversionCompleted || to == ConversionFailed
	case ConversionCompleted:
		return to == ConversionPending || to == ConversionRunning || to == ConversionFailed
	case ConversionFailed:
		return to == ConversionPending || to == ConversionRunning || to == ConversionCompleted
	default:
		return false
	}
}

// ArtifactKind enumerates artifacts.kind. A unit's tag-map JSON is a sidecar
// of the jliff artifact's rel_path (see Conversion.TagMapRelPath), not a
// distinct artifact row, so it is deliberately absent from this set.
type ArtifactKind string

const (
	ArtifactKindXLIFF    ArtifactKind = "xliff"
	ArtifactKindJLIFF    ArtifactKind = "jliff"
	ArtifactKindQAReport ArtifactKind = "qa_report"
	ArtifactKindPreview  ArtifactKind = "preview"
)

func ParseArtifactKind(raw string) (ArtifactKind, error) {
	switch ArtifactKind(raw) {
	case ArtifactKindXLIFF, ArtifactKindJLIFF, ArtifactKindQAReport, ArtifactKindPreview:
		return ArtifactKind(raw), nil
	default:
		return "", &InvalidEnum{Column: "kind", Raw: raw}
	}
}

// ArtifactStatus enumerates artifacts.status.
type ArtifactStatus string

const (
	ArtifactStatusGenerated ArtifactStatus = "generated"
	ArtifactStatusFailed    ArtifactStatus = "failed"
)

func ParseArtifactStatus(raw string) (ArtifactStatus, error) {
	switch ArtifactStatus(raw) {
	case ArtifactStatusGenerated, ArtifactStatusFailed:
		return ArtifactStatus(raw), nil
	default:
		return "", &InvalidEnum{Column: "status", Raw: raw}
	}
}

// JobType enumerates jobs.job_type.
type JobType string

const (
	JobTypeCopyFile      JobType = "copy_file"
	JobTypeExtractXLIFF  JobType = "extract_xliff"
	JobTypeConvertJLIFF  JobType = "convert_jliff"
	JobTypeValidate      JobType = "validate"
)

func ParseJobType(raw string) (JobType, error) {
	switch JobType(raw) {
	case JobTypeCopyFile, JobTypeExtractXLIFF, JobTypeConvertJLIFF, JobTypeValidate:
		return JobType(raw), nil
	default:
		return "", &InvalidEnum{Column: "job_type", Raw: raw}
	}
}

// JobState enumerates jobs.state.
type JobState string

const (
	JobStatePending   JobState = "pending"
	JobStateRunning   JobState = "running"
	JobStateSucceeded JobState = "succeeded"
	JobStateFailed    JobState = "failed"
	JobStateCancelled JobState = "cancelled"
)

func ParseJobState(raw string) (JobState, error) {
	switch JobState(raw) {
	case JobStatePending, JobStateRunning, JobStateSucceeded, JobStateFailed, JobStateCancelled:
		return JobState(raw), nil
	default:
		return "", &InvalidEnum{Column: "state", Raw: raw}
	}
}

// CanTransitionJob implements: pending->running->{succeeded,failed,cancelled};
// running->cancelled permitted.
func CanTransitionJob(from, to JobState) bool {
	switch from {
	case JobStatePending:
		return to == JobStateRunning
	case JobStateRunning:
		return to == JobStateSucceeded || to == JobStateFailed || to == JobStateCancelled
	default:
		return false
	}
}

// IsTerminalJobState reports whether state is a terminal job state.
func IsTerminalJobState(s JobState) bool {
	switch s {
	case JobStateSucceeded, JobStateFailed, JobStateCancelled:
		return true
	default:
		return false
	}
}

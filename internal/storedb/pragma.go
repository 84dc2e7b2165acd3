package storedb

import "github.com/wegentic/translator-core/internal/apperr"

// JournalMode enumerates the SQLite journal_mode pragma values this store
// accepts. Only the two modes the config layer exposes are closed-set here;
// any other value is a validation error rather than passed through verbatim.
type JournalMode string

const (
	JournalModeWAL    JournalMode = "WAL"
	JournalModeDelete JournalMode = "DELETE"
)

// ParseJournalMode validates a raw journal_mode setting.
func ParseJournalMode(raw string) (JournalMode, error) {
	switch JournalMode(raw) {
	case JournalModeWAL, JournalModeDelete:
		return JournalMode(raw), nil
	default:
		return "", apperr.Validation("invalid database_journal_mode %q", raw)
	}
}

// Synchronous enumerates the SQLite synchronous pragma values this store
// accepts.
type Synchronous string

const (
	SynchronousOff    Synchronous = "OFF"
	SynchronousNormal Synchronous = "NORMAL"
	SynchronousFull   Synchronous = "FULL"
	SynchronousExtra  Synchronous = "EXTRA"
)

// ParseSynchronous validates a raw synchronous setting.
func ParseSynchronous(raw string) (Synchronous, error) {
	switch Synchronous(raw) {
	case SynchronousOff, SynchronousNormal, SynchronousFull, SynchronousExtra:
		return Synchronous(raw), nil
	default:
		return "", apperr.Validation("invalid database_synchronous %q", raw)
	}
}

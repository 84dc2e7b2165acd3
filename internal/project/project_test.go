package project

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/wegentic/translator-core/internal/store"
	"github.com/wegentic/translator-core/internal/storedb"
)

func newTestService(t *testing.T) (*Service, store.ProjectStore) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := storedb.Open(dbPath, storedb.JournalModeWAL, storedb.SynchronousNormal)
	if err != nil {
		t.Fatalf("storedb.Open failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st := store.New(db)
	projectsRoot := t.TempDir()
	return New(st, projectsRoot), st
}

// writeTempFile creates a file with the given name and content inside a
// fresh temp directory and returns its absolute path.
func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

const sampleXLIFF = `<?xml version="1.0" encoding="UTF-8"?>
<xliff xmlns="urn:oasis:names:tc:xliff:document:2.0" version="2.0" srcLang="en-US" trgLang="fr-FR">
  <file id="f1" original="welcome.docx">
    <unit id="u1">
      <segment id="s1">
        <source>Hello <ph id="1"/>world</source>
        <target>Bonjour <ph id="1"/>monde</target>
      </segment>
    </unit>
  </file>
</xliff>`


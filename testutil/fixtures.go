package testutil

import (
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// SampleHistoryJSON is a persisted history collection, newest first
const SampleHistoryJSON = `[
  {"id":1760000002000,"task":"write a poem","lazy_prompt":"poem about rain","enhanced_prompt":"Write a 4-stanza poem about rain.","created_at":"10/9/2025, 8:53:22 AM","task_id":"task-b"},
  {"id":1760000001000,"task":"summarize","lazy_prompt":"summarize this article","enhanced_prompt":"You are an expert editor. Summarize the article.","created_at":"10/9/2025, 8:53:21 AM","task_id":"task-a"}
]`

// CreateSQLiteFixture creates a SQLite history database on disk with sample data
func CreateSQLiteFixture(t *testing.T, dbPath string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if _, err := db.Exec(createKVTableSQL); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	InsertKV(t, db, "saved_prompts", SampleHistoryJSON)
}

// CreateFileFixture writes a JSON history file the way the file backend stores it
func CreateFileFixture(t *testing.T, dir string) {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create fixture directory: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "saved_prompts.json"), []byte(SampleHistoryJSON), 0644); err != nil {
		t.Fatalf("Failed to write history fixture: %v", err)
	}
}

// WriteConfigFixture writes a config.yaml into dir
func WriteConfigFixture(t *testing.T, dir, contents string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("Failed to create config directory: %v", err)
	}
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write config fixture: %v", err)
	}
	return path
}

package internal

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/iksnae/enhance-session/testutil"
)

func newLoadedStore(t *testing.T) *HistoryStore {
	t.Helper()
	store := NewHistoryStore(NewSQLiteKV(testutil.CreateTestDB(t)))
	if err := store.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	return store
}

func TestHistoryStore_LoadAll(t *testing.T) {
	store := newLoadedStore(t)

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	if entries[0].TaskID != "task-b" || entries[1].TaskID != "task-a" {
		t.Errorf("Entries() order = %s,%s, want task-b,task-a", entries[0].TaskID, entries[1].TaskID)
	}
}

func TestHistoryStore_LoadAll_Empty(t *testing.T) {
	store := NewHistoryStore(NewMemoryKV())
	if err := store.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0", store.Len())
	}
}

func TestHistoryStore_LoadAll_Corrupt(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(HistoryKey, "not valid json")

	store := NewHistoryStore(kv)
	err := store.LoadAll()
	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Fatalf("LoadAll() error = %v, want *StoreError", err)
	}
	if storeErr.Op != "decode" {
		t.Errorf("StoreError.Op = %q, want decode", storeErr.Op)
	}
	if store.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after corrupt load", store.Len())
	}
}

func TestHistoryStore_Create(t *testing.T) {
	kv := NewMemoryKV()
	store := NewHistoryStore(kv)
	now := time.Date(2025, 10, 9, 8, 53, 21, 0, time.Local)

	first, err := store.Create(NewHistoryEntry("write a poem", "poem about rain", "Write a poem.", "task-1", now))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	// Same millisecond: the second ID must still be unique and larger.
	second, err := store.Create(NewHistoryEntry("edit", "draft", "Result", "task-2", now))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if second.ID <= first.ID {
		t.Errorf("second ID %d should be greater than first ID %d", second.ID, first.ID)
	}

	entries := store.Entries()
	if entries[0].TaskID != "task-2" {
		t.Errorf("newest entry should be first, got %s", entries[0].TaskID)
	}
	if first.CreatedAt != "10/9/2025, 8:53:21 AM" {
		t.Errorf("CreatedAt = %q", first.CreatedAt)
	}

	raw, ok, _ := kv.Get(HistoryKey)
	if !ok {
		t.Fatal("collection was not persisted")
	}
	var persisted []HistoryEntry
	testutil.JSONUnmarshal(t, []byte(raw), &persisted)
	if len(persisted) != 2 || persisted[0].TaskID != "task-2" {
		t.Errorf("persisted collection = %+v", persisted)
	}
}

func TestHistoryStore_Update(t *testing.T) {
	store := newLoadedStore(t)
	before := store.Entries()

	if err := store.Update(before[1].ID, "Edited artifact"); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	after := store.Entries()
	if len(after) != len(before) {
		t.Fatalf("Update() changed length %d -> %d", len(before), len(after))
	}
	for i := range before {
		want := before[i]
		if i == 1 {
			want.EnhancedPrompt = "Edited artifact"
		}
		if after[i] != want {
			t.Errorf("entry %d = %+v, want %+v", i, after[i], want)
		}
	}
}

func TestHistoryStore_Update_NotFound(t *testing.T) {
	store := newLoadedStore(t)
	if err := store.Update(42, "x"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("Update() error = %v, want ErrEntryNotFound", err)
	}
}

func TestHistoryStore_Delete(t *testing.T) {
	store := newLoadedStore(t)
	entries := store.Entries()

	if err := store.Delete(entries[0].ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", store.Len())
	}
	if _, ok := store.Get(entries[0].ID); ok {
		t.Error("deleted entry still found")
	}
	if got, ok := store.Get(entries[1].ID); !ok || got != entries[1] {
		t.Errorf("remaining entry = %+v, %v", got, ok)
	}
}

func TestHistoryStore_Delete_Missing(t *testing.T) {
	kv := NewMemoryKV()
	_ = kv.Set(HistoryKey, testutil.SampleHistoryJSON)
	store := NewHistoryStore(kv)
	if err := store.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	before := store.Entries()
	writes := kv.Writes

	if err := store.Delete(12345); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	after := store.Entries()
	if len(after) != len(before) {
		t.Fatalf("Delete(missing) changed length")
	}
	for i := range before {
		if before[i] != after[i] {
			t.Errorf("entry %d changed", i)
		}
	}
	if kv.Writes != writes {
		t.Error("Delete(missing) should not write")
	}
}

func TestHistoryStore_PersistFailureKeepsMemory(t *testing.T) {
	kv := NewMemoryKV()
	kv.FailWrites = true
	store := NewHistoryStore(kv)

	entry, err := store.Create(NewHistoryEntry("t", "p", "r", "task-x", time.Now()))
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || storeErr.Op != "save" {
		t.Fatalf("Create() error = %v, want save StoreError", err)
	}
	if got, ok := store.Get(entry.ID); !ok || got.TaskID != "task-x" {
		t.Errorf("entry should remain in memory after failed persist")
	}
}

func TestHistoryStore_ReloadAfterWrite(t *testing.T) {
	db := testutil.CreateInMemoryDB(t)
	store := NewHistoryStore(NewSQLiteKV(db))
	created, err := store.Create(NewHistoryEntry("task", "lazy", "enhanced", "tid", time.Now()))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	reloaded := NewHistoryStore(NewSQLiteKV(db))
	if err := reloaded.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	got, ok := reloaded.Get(created.ID)
	if !ok {
		t.Fatal("created entry not found after reload")
	}
	if got != created {
		t.Errorf("reloaded = %+v, want %+v", got, created)
	}
}

func TestHistoryEntry_JSONFieldNames(t *testing.T) {
	entry := HistoryEntry{ID: 1, Task: "t", LazyPrompt: "l", EnhancedPrompt: "e", CreatedAt: "c", TaskID: "id"}
	var fields map[string]interface{}
	if err := json.Unmarshal(testutil.JSONMarshal(t, entry), &fields); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, key := range []string{"id", "task", "lazy_prompt", "enhanced_prompt", "created_at", "task_id"} {
		if _, ok := fields[key]; !ok {
			t.Errorf("missing JSON field %q", key)
		}
	}
}

func TestHistoryEntry_Title(t *testing.T) {
	tests := []struct {
		name  string
		entry HistoryEntry
		want  string
	}{
		{name: "task", entry: HistoryEntry{Task: "write a poem"}, want: "write a poem"},
		{name: "falls back to prompt", entry: HistoryEntry{LazyPrompt: "poem\nmore"}, want: "poem"},
		{name: "untitled", entry: HistoryEntry{}, want: "Untitled"},
		{name: "long", entry: HistoryEntry{Task: string(make([]byte, 60))}, want: string(make([]byte, 47)) + "..."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.entry.Title(); got != tt.want {
				t.Errorf("Title() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestHistoryStore_LoadAll_SavedCollection(t *testing.T) {
	kv := NewMemoryKV()
	if err := kv.Set(HistoryKey, string(testutil.LoadFixture(t, "saved_prompts.json"))); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	store := NewHistoryStore(kv)
	if err := store.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("Entries() len = %d, want 2", len(entries))
	}
	if entries[0].ID != 1760097600000 || entries[0].TaskID == "" {
		t.Errorf("first entry = %+v", entries[0])
	}
	// entries written before task ids were recorded decode with an empty id
	if entries[1].TaskID != "" {
		t.Errorf("second entry TaskID = %q, want empty", entries[1].TaskID)
	}
	if entries[1].Title() == "" {
		t.Error("Title() of a legacy entry is empty")
	}
}

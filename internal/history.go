package internal

import (
	"encoding/json"
	"errors"
	"sync"
)

// HistoryKey is the well-known key the history collection is stored under
const HistoryKey = "saved_prompts"

// ErrEntryNotFound is returned when no history entry has the requested ID
var ErrEntryNotFound = errors.New("history entry not found")

// HistoryStore keeps the ordered (newest-first) collection of saved sessions
// and persists the whole collection on every change. Persistence failures
// are returned to the caller but the in-memory collection still reflects the
// change.
type HistoryStore struct {
	kv      KVStore
	mu      sync.Mutex
	entries []HistoryEntry
}

// NewHistoryStore creates an empty store backed by kv. Call LoadAll to read
// previously persisted entries.
func NewHistoryStore(kv KVStore) *HistoryStore {
	return &HistoryStore{
		kv:      kv,
		entries: make([]HistoryEntry, 0),
	}
}

// LoadAll reconstructs the in-memory collection from the medium. Unreadable
// or corrupt data leaves the collection empty and is reported as an error.
func (h *HistoryStore) LoadAll() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = make([]HistoryEntry, 0)

	raw, ok, err := h.kv.Get(HistoryKey)
	if err != nil {
		return &StoreError{Op: "load", Key: HistoryKey, Err: err}
	}
	if !ok || raw == "" {
		return nil
	}

	var entries []HistoryEntry
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		return &StoreError{Op: "decode", Key: HistoryKey, Err: err}
	}
	if entries != nil {
		h.entries = entries
	}
	LogDebug("Loaded %d history entr(ies)", len(h.entries))
	return nil
}

// Entries returns a copy of the collection, newest first
func (h *HistoryStore) Entries() []HistoryEntry {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len returns the number of entries
func (h *HistoryStore) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.entries)
}

// Get looks an entry up by exact ID
func (h *HistoryStore) Get(id int64) (HistoryEntry, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, e := range h.entries {
		if e.ID == id {
			return e, true
		}
	}
	return HistoryEntry{}, false
}

// Create prepends entry and persists the collection. The entry's ID is
// bumped past every existing ID so IDs stay unique and increasing.
func (h *HistoryStore) Create(entry HistoryEntry) (HistoryEntry, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, e := range h.entries {
		if e.ID >= entry.ID {
			entry.ID = e.ID + 1
		}
	}

	next := make([]HistoryEntry, 0, len(h.entries)+1)
	next = append(next, entry)
	next = append(next, h.entries...)
	h.entries = next

	return entry, h.persist()
}

// Update replaces the enhanced prompt of the entry with the given ID. All
// other fields and the order of entries are left untouched.
func (h *HistoryStore) Update(id int64, enhancedPrompt string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(id)
	if idx < 0 {
		return ErrEntryNotFound
	}

	next := make([]HistoryEntry, len(h.entries))
	copy(next, h.entries)
	next[idx].EnhancedPrompt = enhancedPrompt
	h.entries = next

	return h.persist()
}

// Delete removes the entry with the given ID. Deleting a missing ID is a no-op.
func (h *HistoryStore) Delete(id int64) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := h.indexOf(id)
	if idx < 0 {
		return nil
	}

	next := make([]HistoryEntry, 0, len(h.entries)-1)
	next = append(next, h.entries[:idx]...)
	next = append(next, h.entries[idx+1:]...)
	h.entries = next

	return h.persist()
}

func (h *HistoryStore) indexOf(id int64) int {
	for i, e := range h.entries {
		if e.ID == id {
			return i
		}
	}
	return -1
}

// persist writes the whole collection; callers hold h.mu
func (h *HistoryStore) persist() error {
	data, err := json.Marshal(h.entries)
	if err != nil {
		return &StoreError{Op: "encode", Key: HistoryKey, Err: err}
	}
	if err := h.kv.Set(HistoryKey, string(data)); err != nil {
		return &StoreError{Op: "save", Key: HistoryKey, Err: err}
	}
	return nil
}

package internal

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// KVStore is the persistent key-value medium behind the history store
type KVStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Close() error
}

// Supported history backends
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
)

// NewKVStore opens the medium named by backend at path
func NewKVStore(backend, path string) (KVStore, error) {
	switch strings.ToLower(backend) {
	case "", BackendSQLite:
		db, err := OpenDatabase(path)
		if err != nil {
			return nil, &StoreError{Op: "open", Key: path, Err: err}
		}
		return NewSQLiteKV(db), nil
	case BackendFile:
		return NewFileKV(path)
	default:
		return nil, fmt.Errorf("unsupported history backend: %s (supported: sqlite, file)", backend)
	}
}

// SQLiteKV stores values in the kv table of a SQLite database
type SQLiteKV struct {
	db *sql.DB
}

// NewSQLiteKV creates a new SQLiteKV instance
func NewSQLiteKV(db *sql.DB) *SQLiteKV {
	return &SQLiteKV{db: db}
}

// Get returns the value stored under key
func (s *SQLiteKV) Get(key string) (string, bool, error) {
	return QueryKV(s.db, key)
}

// Set stores value under key
func (s *SQLiteKV) Set(key, value string) error {
	return UpsertKV(s.db, key, value)
}

// Close closes the underlying database
func (s *SQLiteKV) Close() error {
	return s.db.Close()
}

// FileKV stores each key as a JSON file in a directory. Writes go through a
// temp file and a rename so readers never see a partial value.
type FileKV struct {
	dir string
}

// NewFileKV creates a FileKV rooted at dir
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, &StoreError{Op: "open", Key: dir, Err: err}
	}
	return &FileKV{dir: dir}, nil
}

func (f *FileKV) path(key string) string {
	return filepath.Join(f.dir, key+".json")
}

// Get returns the value stored under key
func (f *FileKV) Get(key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return string(data), true, nil
}

// Set stores value under key
func (f *FileKV) Set(key, value string) error {
	target := f.path(key)
	tmp, err := os.CreateTemp(f.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.WriteString(value); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, target)
}

// Close is a no-op for FileKV
func (f *FileKV) Close() error {
	return nil
}

// MemoryKV is an in-process KVStore. FailWrites makes Set return an error,
// which lets callers exercise persistence failures.
type MemoryKV struct {
	mu         sync.Mutex
	values     map[string]string
	FailWrites bool
	Writes     int
}

// NewMemoryKV creates an empty MemoryKV
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{values: make(map[string]string)}
}

// Get returns the value stored under key
func (m *MemoryKV) Get(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set stores value under key
func (m *MemoryKV) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailWrites {
		return errors.New("memory kv: writes disabled")
	}
	m.values[key] = value
	m.Writes++
	return nil
}

// Close is a no-op for MemoryKV
func (m *MemoryKV) Close() error {
	return nil
}

package internal

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/iksnae/enhance-session/testutil"
)

func TestNewCacheManager(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	cm := NewCacheManager(cacheDir)
	if cm == nil {
		t.Fatal("NewCacheManager() returned nil")
	}
	if cm.GetCacheDir() != cacheDir {
		t.Errorf("GetCacheDir() = %q, want %q", cm.GetCacheDir(), cacheDir)
	}
}

func TestCacheManager_EnsureCacheDir(t *testing.T) {
	cacheDir := filepath.Join(testutil.CreateTempDir(t), "nested", "cache")
	cm := NewCacheManager(cacheDir)

	if err := cm.EnsureCacheDir(); err != nil {
		t.Errorf("EnsureCacheDir() error = %v", err)
	}
	if _, err := os.Stat(cacheDir); os.IsNotExist(err) {
		t.Error("Cache directory was not created")
	}
}

func TestCacheManager_GetModelsPath(t *testing.T) {
	cacheDir := testutil.CreateTempDir(t)
	cm := NewCacheManager(cacheDir)

	expected := filepath.Join(cacheDir, "models.yaml")
	if got := cm.GetModelsPath(); got != expected {
		t.Errorf("GetModelsPath() = %q, want %q", got, expected)
	}
}

func TestCacheManager_SaveAndLoadModels(t *testing.T) {
	cm := NewCacheManager(filepath.Join(testutil.CreateTempDir(t), "cache"))
	fetched := time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)

	if err := cm.SaveModels([]string{"gpt-5.1", "claude-sonnet"}, "https://models.example/v1", fetched); err != nil {
		t.Fatalf("SaveModels() error = %v", err)
	}

	index, err := cm.LoadModels()
	if err != nil {
		t.Fatalf("LoadModels() error = %v", err)
	}
	if len(index.Models) != 2 || index.Models[0] != "gpt-5.1" {
		t.Errorf("Models = %v", index.Models)
	}
	if !index.Metadata.FetchedAt.Equal(fetched) {
		t.Errorf("FetchedAt = %v, want %v", index.Metadata.FetchedAt, fetched)
	}
}

func TestCacheManager_IsCacheValid(t *testing.T) {
	const source = "https://models.example/v1"
	fetched := time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		save   bool
		source string
		now    time.Time
		want   bool
	}{
		{name: "no cache", save: false, source: source, now: fetched, want: false},
		{name: "fresh", save: true, source: source, now: fetched.Add(30 * time.Minute), want: true},
		{name: "expired", save: true, source: source, now: fetched.Add(2 * time.Hour), want: false},
		{name: "different source", save: true, source: "https://other/v1", now: fetched, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cm := NewCacheManager(testutil.CreateTempDir(t))
			if tt.save {
				if err := cm.SaveModels([]string{"m"}, source, fetched); err != nil {
					t.Fatalf("SaveModels() error = %v", err)
				}
			}
			got, err := cm.IsCacheValid(tt.source, time.Hour, tt.now)
			if err != nil {
				t.Fatalf("IsCacheValid() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("IsCacheValid() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCacheManager_Clear(t *testing.T) {
	cm := NewCacheManager(testutil.CreateTempDir(t))
	if err := cm.Clear(); err != nil {
		t.Errorf("Clear() on empty cache error = %v", err)
	}
	if err := cm.SaveModels([]string{"m"}, "src", time.Now()); err != nil {
		t.Fatalf("SaveModels() error = %v", err)
	}
	if err := cm.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if _, err := os.Stat(cm.GetModelsPath()); !os.IsNotExist(err) {
		t.Error("models.yaml still present after Clear()")
	}
}

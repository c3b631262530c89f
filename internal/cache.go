package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const modelCacheVersion = "1.0"

// CacheManager handles caching of the model catalog
type CacheManager struct {
	cacheDir string
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	Source       string    `yaml:"source"`
	CacheVersion string    `yaml:"cache_version"`
	FetchedAt    time.Time `yaml:"fetched_at"`
}

// ModelIndex is the YAML document written to models.yaml
type ModelIndex struct {
	Models   []string      `yaml:"models"`
	Metadata CacheMetadata `yaml:"metadata"`
}

// NewCacheManager creates a new cache manager
func NewCacheManager(cacheDir string) *CacheManager {
	return &CacheManager{
		cacheDir: cacheDir,
	}
}

// EnsureCacheDir ensures the cache directory exists
func (cm *CacheManager) EnsureCacheDir() error {
	return os.MkdirAll(cm.cacheDir, 0755)
}

// GetCacheDir returns the cache directory path
func (cm *CacheManager) GetCacheDir() string {
	return cm.cacheDir
}

// GetModelsPath returns the path to the model catalog cache
func (cm *CacheManager) GetModelsPath() string {
	return filepath.Join(cm.cacheDir, "models.yaml")
}

// IsCacheValid reports whether the cached catalog came from source and is
// younger than ttl
func (cm *CacheManager) IsCacheValid(source string, ttl time.Duration, now time.Time) (bool, error) {
	index, err := cm.LoadModels()
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if index.Metadata.Source != source || index.Metadata.CacheVersion != modelCacheVersion {
		return false, nil
	}
	return now.Sub(index.Metadata.FetchedAt) < ttl, nil
}

// LoadModels loads the cached catalog
func (cm *CacheManager) LoadModels() (*ModelIndex, error) {
	data, err := os.ReadFile(cm.GetModelsPath())
	if err != nil {
		return nil, err
	}

	var index ModelIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model cache: %w", err)
	}
	return &index, nil
}

// SaveModels writes the catalog fetched from source
func (cm *CacheManager) SaveModels(models []string, source string, fetchedAt time.Time) error {
	if err := cm.EnsureCacheDir(); err != nil {
		return err
	}

	index := ModelIndex{
		Models: models,
		Metadata: CacheMetadata{
			Source:       source,
			CacheVersion: modelCacheVersion,
			FetchedAt:    fetchedAt,
		},
	}
	data, err := yaml.Marshal(&index)
	if err != nil {
		return fmt.Errorf("failed to marshal model cache: %w", err)
	}
	return os.WriteFile(cm.GetModelsPath(), data, 0644)
}

// Clear removes the cached catalog
func (cm *CacheManager) Clear() error {
	err := os.Remove(cm.GetModelsPath())
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

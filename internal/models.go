package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"
)

// ModelInfo is one entry of the model catalog response
type ModelInfo struct {
	ID string `json:"id"`
}

// modelList accepts both a bare array and the {"data": [...]} envelope
type modelList []ModelInfo

func (m *modelList) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var items []ModelInfo
		if err := json.Unmarshal(data, &items); err != nil {
			return err
		}
		*m = items
		return nil
	}
	var envelope struct {
		Data []ModelInfo `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}
	*m = envelope.Data
	return nil
}

// ParseModelList decodes a catalog response into sorted, de-duplicated
// display names
func ParseModelList(data []byte) ([]string, error) {
	var list modelList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse model list: %w", err)
	}

	seen := make(map[string]bool, len(list))
	names := make([]string, 0, len(list))
	for _, m := range list {
		name := FormatModelName(m.ID)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// FormatModelName strips the provider prefix: "openai/gpt-5.1" -> "gpt-5.1"
func FormatModelName(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}

// FetchModels retrieves the catalog from url
func FetchModels(ctx context.Context, client *http.Client, url string) ([]string, error) {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch models: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch models: %s", resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return nil, fmt.Errorf("failed to read model list: %w", err)
	}
	return ParseModelList(data)
}

// ModelCatalog serves the model list from cache when fresh
type ModelCatalog struct {
	URL    string
	TTL    time.Duration
	Cache  *CacheManager
	Client *http.Client
	Now    func() time.Time
}

// Models returns the catalog and whether it came from cache. With refresh
// set the cache is bypassed. A failed fetch falls back to a stale cache.
func (c *ModelCatalog) Models(ctx context.Context, refresh bool) ([]string, bool, error) {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}

	if !refresh && c.Cache != nil {
		valid, err := c.Cache.IsCacheValid(c.URL, c.TTL, now())
		if err != nil {
			LogWarn("Ignoring unreadable model cache: %v", err)
		}
		if valid {
			if index, err := c.Cache.LoadModels(); err == nil {
				LogDebug("Using cached model list (%d models)", len(index.Models))
				return index.Models, true, nil
			}
		}
	}

	models, err := FetchModels(ctx, c.Client, c.URL)
	if err != nil {
		if c.Cache != nil {
			if index, cacheErr := c.Cache.LoadModels(); cacheErr == nil && len(index.Models) > 0 {
				LogWarn("Model fetch failed, using stale cache: %v", err)
				return index.Models, true, nil
			}
		}
		return nil, false, err
	}

	if c.Cache != nil {
		if err := c.Cache.SaveModels(models, c.URL, now()); err != nil {
			LogWarn("Failed to cache model list: %v", err)
		}
	}
	return models, false, nil
}

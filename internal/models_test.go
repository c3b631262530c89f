package internal

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/iksnae/enhance-session/testutil"
)

func TestFormatModelName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"openai/gpt-5.1", "gpt-5.1"},
		{"google/gemini/2.5-pro", "2.5-pro"},
		{"plain-model", "plain-model"},
		{"  spaced/name ", "name"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := FormatModelName(tt.in); got != tt.want {
			t.Errorf("FormatModelName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseModelList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    []string
		wantErr bool
	}{
		{
			name: "array",
			body: `[{"id":"openai/gpt-5.1"},{"id":"anthropic/claude-sonnet"}]`,
			want: []string{"claude-sonnet", "gpt-5.1"},
		},
		{
			name: "data envelope",
			body: `{"object":"list","data":[{"id":"qwen/qwen3-32b"},{"id":"moonshotai/kimi-k2"}]}`,
			want: []string{"kimi-k2", "qwen3-32b"},
		},
		{
			name: "duplicates and blanks",
			body: `[{"id":"a/x"},{"id":"b/x"},{"id":""}]`,
			want: []string{"x"},
		},
		{name: "invalid", body: `not json`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModelList([]byte(tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModelList() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseModelList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFetchModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/models" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"id":"openai/gpt-5.1"}]}`))
	}))
	defer srv.Close()

	models, err := FetchModels(context.Background(), srv.Client(), srv.URL+"/v1/models")
	if err != nil {
		t.Fatalf("FetchModels() error = %v", err)
	}
	if !reflect.DeepEqual(models, []string{"gpt-5.1"}) {
		t.Errorf("FetchModels() = %v", models)
	}

	if _, err := FetchModels(context.Background(), srv.Client(), srv.URL+"/missing"); err == nil {
		t.Error("FetchModels() on 404 should fail")
	}
}

func TestModelCatalog_Models(t *testing.T) {
	var hits int32
	var failing atomic.Bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if failing.Load() {
			http.Error(w, "down", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`[{"id":"openai/gpt-5.1"}]`))
	}))
	defer srv.Close()

	now := time.Date(2025, 10, 9, 12, 0, 0, 0, time.UTC)
	catalog := &ModelCatalog{
		URL:    srv.URL,
		TTL:    time.Hour,
		Cache:  NewCacheManager(testutil.CreateTempDir(t)),
		Client: srv.Client(),
		Now:    func() time.Time { return now },
	}
	ctx := context.Background()

	models, cached, err := catalog.Models(ctx, false)
	if err != nil || cached || len(models) != 1 {
		t.Fatalf("first Models() = %v, cached %v, err %v", models, cached, err)
	}

	_, cached, err = catalog.Models(ctx, false)
	if err != nil || !cached {
		t.Errorf("second Models() should hit cache, cached %v, err %v", cached, err)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Errorf("server hits = %d, want 1", atomic.LoadInt32(&hits))
	}

	_, cached, err = catalog.Models(ctx, true)
	if err != nil || cached {
		t.Errorf("refresh should bypass cache, cached %v, err %v", cached, err)
	}

	failing.Store(true)
	now = now.Add(2 * time.Hour)
	models, cached, err = catalog.Models(ctx, false)
	if err != nil || !cached || len(models) != 1 {
		t.Errorf("stale fallback Models() = %v, cached %v, err %v", models, cached, err)
	}

	empty := &ModelCatalog{URL: srv.URL, TTL: time.Hour, Cache: NewCacheManager(testutil.CreateTempDir(t)), Client: srv.Client()}
	if _, _, err := empty.Models(ctx, false); err == nil {
		t.Error("Models() with failing server and no cache should fail")
	}
}

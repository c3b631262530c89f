package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/testutil"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupCommandEnv isolates config, data and cache directories and points
// the history at a fresh database. It returns the history path.
func setupCommandEnv(t *testing.T) string {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "ENHANCE_") {
			key := kv[:strings.IndexByte(kv, '=')]
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
	dir := testutil.CreateTempDir(t)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	// Unroutable so no test reaches the real catalog
	t.Setenv("ENHANCE_MODELS_URL", "http://127.0.0.1:1/models")

	historyPath := filepath.Join(dir, "history.db")
	t.Setenv("ENHANCE_HISTORY_PATH", historyPath)
	return historyPath
}

// executeCommand runs rootCmd with args and fresh flag state
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if !f.Changed {
			return
		}
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// seedHistory writes entries to the sqlite history at path, oldest first
func seedHistory(t *testing.T, path string, entries ...internal.HistoryEntry) []internal.HistoryEntry {
	t.Helper()
	kv, err := internal.NewKVStore(internal.BackendSQLite, path)
	if err != nil {
		t.Fatalf("NewKVStore() error = %v", err)
	}
	defer kv.Close()

	store := internal.NewHistoryStore(kv)
	created := make([]internal.HistoryEntry, 0, len(entries))
	for _, e := range entries {
		c, err := store.Create(e)
		if err != nil {
			t.Fatalf("Create() error = %v", err)
		}
		created = append(created, c)
	}
	return created
}

// loadHistory reads the collection back from path
func loadHistory(t *testing.T, path string) []internal.HistoryEntry {
	t.Helper()
	kv, err := internal.NewKVStore(internal.BackendSQLite, path)
	if err != nil {
		t.Fatalf("NewKVStore() error = %v", err)
	}
	defer kv.Close()

	store := internal.NewHistoryStore(kv)
	if err := store.LoadAll(); err != nil {
		t.Fatalf("LoadAll() error = %v", err)
	}
	return store.Entries()
}

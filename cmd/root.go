package cmd

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	verbose     bool
	configPath  string
	storagePath string
	version     string = "dev"
	commit      string = "unknown"
	date        string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "enhance-session",
	Short: "Turn rough prompts into enhanced prompts from the terminal",
	Long: `A CLI client for an interactive prompt-enhancement service.

Each enhancement runs as a task over a WebSocket channel. The service may
ask clarifying questions before it answers, and finished prompts are kept
in a local history you can revisit, edit and export.

Features:
  • Enhance a rough prompt with style, model and web search options
  • Answer or decline clarifying questions interactively
  • Continue a result with follow-up edit instructions
  • Browse, edit, delete and export saved prompts (JSONL, Markdown, YAML, JSON)
  • Cached model catalog for target model names

Quick Start:
  enhance-session enhance -t "write a poem" -p "poem about rain"
  enhance-session history list
  enhance-session edit <entry-id> -i "make it rhyme" --save
  enhance-session history export --format md --out prompts.md`,
	Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		internal.SetVerbose(verbose)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		internal.SyncLogger()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		internal.PrintError(fmt.Sprintf("Error: %v", err))
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a config file (default is config.yaml in the user config directory)")
	rootCmd.PersistentFlags().StringVar(&storagePath, "storage", "", "Custom history location (database file or directory, depending on history_backend)")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}

// environment is the resolved configuration shared by every command
type environment struct {
	paths internal.Paths
	cfg   internal.Config
}

func loadEnvironment() (*environment, error) {
	paths, err := internal.GetPaths("")
	if err != nil {
		return nil, fmt.Errorf("failed to detect paths: %w", err)
	}
	cfg, err := internal.LoadConfig(paths, configPath)
	if err != nil {
		return nil, err
	}
	if storagePath != "" {
		cfg.HistoryPath = storagePath
	}
	return &environment{paths: paths, cfg: cfg}, nil
}

// openHistory opens the configured medium and loads the collection. The
// returned close func must be called when the command finishes.
func (e *environment) openHistory() (*internal.HistoryStore, func(), error) {
	kv, err := internal.NewKVStore(e.cfg.HistoryBackend, e.cfg.HistoryPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	closeFn := func() {
		if err := kv.Close(); err != nil {
			internal.LogWarn("Failed to close history: %v", err)
		}
	}

	store := internal.NewHistoryStore(kv)
	if err := store.LoadAll(); err != nil {
		// A corrupt collection starts empty; the next write replaces it
		internal.LogWarn("Failed to load history, starting empty: %v", err)
	}
	return store, closeFn, nil
}

func (e *environment) newClient(history protocol.History, answerer protocol.Answerer, observer protocol.Observer) *protocol.Client {
	return protocol.NewClient(protocol.ClientOptions{
		Dialer:       protocol.NewWSDialer(e.cfg.WebSocketBase(), e.cfg.Origin),
		History:      history,
		Answerer:     answerer,
		Timeout:      e.cfg.TaskTimeout,
		Observer:     observer,
		LegacyCancel: e.cfg.LegacyCancelSentinel,
	})
}

func (e *environment) modelCatalog() *internal.ModelCatalog {
	return &internal.ModelCatalog{
		URL:    e.cfg.ModelsURL,
		TTL:    e.cfg.ModelsCacheTTL,
		Cache:  internal.NewCacheManager(e.paths.CacheDir),
		Client: &http.Client{Timeout: 15 * time.Second},
	}
}

package internal

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// AppName is the directory name used under the per-user config and data roots.
const AppName = "enhance-session"

// Paths holds the detected locations for configuration, history and caches
type Paths struct {
	ConfigDir string // holds config.yaml and an optional .env
	DataDir   string // holds the history medium
	CacheDir  string // holds the model catalog cache
}

// DetectPaths detects the per-user paths based on the operating system
func DetectPaths() (Paths, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("failed to get home directory: %w", err)
	}

	var configBase, dataBase, cacheBase string
	switch runtime.GOOS {
	case "darwin":
		configBase = filepath.Join(home, "Library/Application Support")
		dataBase = configBase
		cacheBase = filepath.Join(home, "Library/Caches")
	case "linux", "freebsd", "openbsd", "netbsd":
		configBase = envOr("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
		dataBase = envOr("XDG_DATA_HOME", filepath.Join(home, ".local/share"))
		cacheBase = envOr("XDG_CACHE_HOME", filepath.Join(home, ".cache"))
	case "windows":
		appData := envOr("APPDATA", filepath.Join(home, "AppData", "Roaming"))
		localAppData := envOr("LOCALAPPDATA", filepath.Join(home, "AppData", "Local"))
		configBase = appData
		dataBase = appData
		cacheBase = localAppData
	default:
		return Paths{}, fmt.Errorf("unsupported OS: %s", runtime.GOOS)
	}

	return Paths{
		ConfigDir: filepath.Join(configBase, AppName),
		DataDir:   filepath.Join(dataBase, AppName),
		CacheDir:  filepath.Join(cacheBase, AppName),
	}, nil
}

// GetPaths returns detected paths, or paths rooted at custom when it is set.
// A custom root keeps config, data and cache side by side, which is what
// tests and portable installs want.
func GetPaths(custom string) (Paths, error) {
	if custom == "" {
		return DetectPaths()
	}
	abs, err := filepath.Abs(custom)
	if err != nil {
		return Paths{}, fmt.Errorf("failed to resolve %s: %w", custom, err)
	}
	return Paths{
		ConfigDir: abs,
		DataDir:   abs,
		CacheDir:  filepath.Join(abs, "cache"),
	}, nil
}

// ConfigFile returns the path of the YAML configuration file
func (p Paths) ConfigFile() string {
	return filepath.Join(p.ConfigDir, "config.yaml")
}

// EnvFile returns the path of the optional .env file
func (p Paths) EnvFile() string {
	return filepath.Join(p.ConfigDir, ".env")
}

// HistoryDBPath returns the default SQLite history database path
func (p Paths) HistoryDBPath() string {
	return filepath.Join(p.DataDir, "history.db")
}

// HistoryFilePath returns the default JSON history directory
func (p Paths) HistoryFilePath() string {
	return filepath.Join(p.DataDir, "history")
}

// EnsureDirs creates every directory in p.
func (p Paths) EnsureDirs() error {
	for _, dir := range []string{p.ConfigDir, p.DataDir, p.CacheDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

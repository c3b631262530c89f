package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/iksnae/enhance-session/internal"
	"github.com/spf13/cobra"
)

var configForce bool

// configCmd prints the resolved configuration
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	Long: `Print the configuration after applying the config file, .env files and
ENHANCE_* environment variables.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		data, err := env.cfg.Marshal()
		if err != nil {
			return err
		}
		_, _ = cmd.OutOrStdout().Write(data)
		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the built-in defaults",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			paths, err := internal.GetPaths("")
			if err != nil {
				return fmt.Errorf("failed to detect paths: %w", err)
			}
			path = paths.ConfigFile()
		}

		if _, err := os.Stat(path); err == nil && !configForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return &internal.ConfigError{Path: path, Err: err}
		}

		if err := internal.WriteConfig(path, internal.DefaultConfig()); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite an existing config file")
}

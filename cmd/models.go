package cmd

import (
	"fmt"

	"github.com/iksnae/enhance-session/internal"
	"github.com/spf13/cobra"
)

var modelsRefresh bool

// modelsCmd represents the models command
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List target model names",
	Long: `List the model names accepted by --model. The catalog is cached for
models_cache_ttl; --refresh fetches it again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		models, cached, err := env.modelCatalog().Models(cmd.Context(), modelsRefresh)
		if err != nil {
			return fmt.Errorf("failed to load model catalog: %w", err)
		}
		if cached {
			internal.LogInfo("Loaded %d model(s) from cache", len(models))
		}
		for _, m := range models {
			marker := " "
			if m == env.cfg.Defaults.TargetModel {
				marker = "*"
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", marker, m)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.Flags().BoolVar(&modelsRefresh, "refresh", false, "Bypass the model cache")
}

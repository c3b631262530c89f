package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/internal/export"
	"github.com/spf13/cobra"
)

var (
	format     string
	outputPath string
)

// exportCmd represents the history export command
var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved prompts to a file",
	Long: `Export the saved prompt collection to jsonl, md, yaml or json.

Without --out the export is written to stdout.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Create exporter first so a bad format fails before touching storage
		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		store, closeStore, err := openHistoryFromFlags()
		if err != nil {
			return err
		}
		defer closeStore()
		entries := store.Entries()

		if outputPath == "" || outputPath == "-" {
			if err := exporter.Export(entries, cmd.OutOrStdout()); err != nil {
				return &internal.ExportError{Format: format, Path: "stdout", Err: err}
			}
			return nil
		}

		err = internal.ShowProgress(cmd.Context(), fmt.Sprintf("Exporting %d prompt(s) to %s", len(entries), outputPath), func() error {
			return writeExport(exporter, entries, outputPath)
		})
		if err != nil {
			return err
		}
		internal.PrintSuccess(fmt.Sprintf("Export complete: %d prompt(s) exported to %s", len(entries), outputPath))
		return nil
	},
}

// writeExport writes entries to path, appending the format's extension
// when path has none
func writeExport(exporter export.Exporter, entries []internal.HistoryEntry, path string) error {
	if filepath.Ext(path) == "" {
		path += "." + exporter.Extension()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := exporter.Export(entries, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	internal.LogDebug("Wrote %d entr(ies) to %s", len(entries), path)
	return nil
}

func init() {
	historyCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputPath, "out", "o", "", "Output file (default stdout)")
}

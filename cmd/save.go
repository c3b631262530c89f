package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/iksnae/enhance-session/internal"
	"github.com/spf13/cobra"
)

var saveFile string

// saveCmd replaces a saved prompt with text edited by hand
var saveCmd = &cobra.Command{
	Use:   "save <entry-id>",
	Short: "Overwrite a saved prompt with your own revision",
	Long: `Replace the enhanced prompt of a history entry with text you edited
yourself. The text is read from --file, or from stdin when --file is
omitted or "-". Nothing is written when the text matches the entry.`,
	Example: `  enhance-session history show 1760011200000 --raw > prompt.md
  $EDITOR prompt.md
  enhance-session history save 1760011200000 --file prompt.md`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseEntryID(args[0])
		if err != nil {
			return err
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		store, closeStore, err := env.openHistory()
		if err != nil {
			return err
		}
		defer closeStore()
		client := env.newClient(store, nil, nil)

		var text string
		err = internal.ShowProgressWithSteps(cmd.Context(), []internal.ProgressStep{
			{
				Message: "Reading revision",
				Fn: func() error {
					revision, err := readRevision(cmd.InOrStdin(), saveFile)
					text = revision
					return err
				},
			},
			{
				Message: fmt.Sprintf("Loading entry %d", id),
				Fn: func() error {
					if _, err := client.Load(id); err != nil {
						return fmt.Errorf("entry %d: %w", id, err)
					}
					return nil
				},
			},
		})
		if err != nil {
			return err
		}

		client.SetArtifact(text)
		if !client.Modified() {
			internal.PrintInfo(fmt.Sprintf("Entry %d unchanged; nothing to save", id))
			return nil
		}
		if err := internal.ShowProgress(cmd.Context(), "Saving changes", client.SaveChanges); err != nil {
			return fmt.Errorf("failed to save entry %d: %w", id, err)
		}
		internal.PrintSuccess(fmt.Sprintf("Entry %d updated", id))
		return nil
	},
}

// readRevision reads the replacement prompt from path, or from in for "" and "-"
func readRevision(in io.Reader, path string) (string, error) {
	var data []byte
	var err error
	if path == "" || path == "-" {
		if internal.IsTerminal(in) {
			return "", errors.New("replacement text is required (use --file or pipe it on stdin)")
		}
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read revision: %w", err)
	}

	text := strings.TrimRight(string(data), "\r\n")
	if strings.TrimSpace(text) == "" {
		return "", errors.New("replacement text is empty")
	}
	return text, nil
}

func init() {
	historyCmd.AddCommand(saveCmd)
	saveCmd.Flags().StringVarP(&saveFile, "file", "f", "", "Read the revision from this file (\"-\" for stdin)")
}

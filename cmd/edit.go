package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	editInstructions string
	editSave         bool
	editNoInput      bool
	editStyle        styleFlags
)

// editCmd represents the edit command
var editCmd = &cobra.Command{
	Use:   "edit <entry-id>",
	Short: "Revise a saved prompt with follow-up instructions",
	Long: `Load a history entry, send it with your instructions to the enhancement
service and print the revised prompt. The edit continues the entry's
original task so the service keeps its context.

The entry is only changed with --save.`,
	Example: `  enhance-session edit 1760011200000 -i "make it rhyme"
  enhance-session edit 1760011200000 -i "shorter" --length Concise --save`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid entry id %q (use 'enhance-session history list')", args[0])
		}
		if strings.TrimSpace(editInstructions) == "" {
			return errors.New("edit instructions are required (use --instructions)")
		}

		env, err := loadEnvironment()
		if err != nil {
			return err
		}
		model, reasoning, style, err := editStyle.resolve(cmd, env.cfg.Defaults)
		if err != nil {
			return err
		}

		store, closeStore, err := env.openHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		spinner := internal.NewSpinner(os.Stderr)
		defer spinner.Stop()
		client := env.newClient(store, clarificationAnswerer(editNoInput, spinner), progressObserver(spinner))

		if _, err := client.Load(id); err != nil {
			return fmt.Errorf("entry %d: %w", id, err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out, err := client.Edit(ctx, protocol.EditOptions{
			Instructions:      editInstructions,
			TargetModel:       model,
			IsReasoningNative: reasoning,
			Style:             style,
		})
		spinner.Stop()
		if err != nil {
			return taskFailure(out, err)
		}
		if out.State == protocol.StateIdle {
			return fmt.Errorf("entry %d has no prompt to edit", id)
		}
		printOutcome(cmd, out)

		if !editSave {
			_, _ = fmt.Fprintln(os.Stderr, noteStyle.Render("Not saved; rerun with --save to update the entry"))
			return nil
		}
		if err := client.SaveChanges(); err != nil {
			return fmt.Errorf("failed to save entry %d: %w", id, err)
		}
		_, _ = fmt.Fprintln(os.Stderr, noteStyle.Render(fmt.Sprintf("Entry %d updated", id)))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(editCmd)
	editCmd.Flags().StringVarP(&editInstructions, "instructions", "i", "", "How the prompt should change")
	editCmd.Flags().BoolVar(&editSave, "save", false, "Write the revised prompt back to the entry")
	editCmd.Flags().BoolVar(&editNoInput, "no-input", false, "Never prompt; decline clarifying questions")
	editStyle.register(editCmd)
}

package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	enhanceTask        string
	enhancePrompt      string
	enhanceWebSearch   bool
	enhanceSearchQuery string
	enhanceEdits       []string
	enhanceNoInput     bool
	enhanceStyle       styleFlags
)

// enhanceCmd represents the enhance command
var enhanceCmd = &cobra.Command{
	Use:   "enhance",
	Short: "Enhance a rough prompt",
	Long: `Send a task and a rough prompt to the enhancement service and print the
enhanced prompt. The result is saved to history.

The service may ask clarifying questions first. On a terminal they are
shown as a form; with --no-input, or when stdin is not a terminal, every
round is declined and the service continues without answers.

Each --edit applies a follow-up instruction to the latest result.`,
	Example: `  enhance-session enhance -t "write a poem" -p "poem about rain"
  enhance-session enhance -p "summarize a paper" --length Concise --technique cot
  enhance-session enhance -p "api docs" --edit "add an example" --edit "shorter"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := loadEnvironment()
		if err != nil {
			return err
		}

		input := internal.RequestInput{Task: enhanceTask, LazyPrompt: enhancePrompt}
		if strings.TrimSpace(input.LazyPrompt) == "" {
			if enhanceNoInput || !internal.IsTerminal(os.Stdin) {
				return errors.New("a prompt is required (use --prompt)")
			}
			input, err = internal.PromptRequest(os.Stdin, os.Stderr, input)
			if err != nil {
				return err
			}
		}

		model, reasoning, style, err := enhanceStyle.resolve(cmd, env.cfg.Defaults)
		if err != nil {
			return err
		}
		webSearch := env.cfg.Defaults.WebSearch
		if cmd.Flags().Changed("web-search") {
			webSearch = enhanceWebSearch
		}

		store, closeStore, err := env.openHistory()
		if err != nil {
			return err
		}
		defer closeStore()

		spinner := internal.NewSpinner(os.Stderr)
		defer spinner.Stop()
		client := env.newClient(store, clarificationAnswerer(enhanceNoInput, spinner), progressObserver(spinner))

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		out, err := client.Enhance(ctx, protocol.SessionRequest{
			Task:                   input.Task,
			LazyPrompt:             input.LazyPrompt,
			UseWebSearch:           webSearch,
			AdditionalContextQuery: enhanceSearchQuery,
			TargetModel:            model,
			IsReasoningNative:      reasoning,
			Style:                  style,
		})
		spinner.Stop()
		if err != nil {
			return taskFailure(out, err)
		}
		printOutcome(cmd, out)
		for _, entry := range store.Entries() {
			if entry.TaskID == out.TaskID {
				_, _ = fmt.Fprintln(os.Stderr, noteStyle.Render(fmt.Sprintf("Saved as history entry %d", entry.ID)))
				break
			}
		}

		for _, instructions := range enhanceEdits {
			out, err = client.Edit(ctx, protocol.EditOptions{
				Instructions:      instructions,
				TargetModel:       model,
				IsReasoningNative: reasoning,
				Style:             style,
			})
			spinner.Stop()
			if err != nil {
				return taskFailure(out, err)
			}
			if out.State == protocol.StateIdle {
				internal.LogWarn("Skipping empty edit instruction")
				continue
			}
			printOutcome(cmd, out)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enhanceCmd)
	enhanceCmd.Flags().StringVarP(&enhanceTask, "task", "t", "", "What the prompt should accomplish")
	enhanceCmd.Flags().StringVarP(&enhancePrompt, "prompt", "p", "", "The rough prompt to enhance")
	enhanceCmd.Flags().BoolVar(&enhanceWebSearch, "web-search", true, "Let the service search the web for context")
	enhanceCmd.Flags().StringVar(&enhanceSearchQuery, "search-query", "", "Extra query for the web search")
	enhanceCmd.Flags().StringArrayVar(&enhanceEdits, "edit", nil, "Follow-up edit instruction (repeatable)")
	enhanceCmd.Flags().BoolVar(&enhanceNoInput, "no-input", false, "Never prompt; decline clarifying questions")
	enhanceStyle.register(enhanceCmd)
}

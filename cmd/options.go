package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/enhance-session/internal"
	"github.com/iksnae/enhance-session/internal/protocol"
	"github.com/spf13/cobra"
)

var (
	resultHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("212"))

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// styleFlags are the model and style options shared by enhance and edit
type styleFlags struct {
	model     string
	reasoning bool
	format    string
	length    string
	technique string
}

func (s *styleFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.model, "model", "", "Target model the prompt is written for (see 'enhance-session models')")
	cmd.Flags().BoolVar(&s.reasoning, "reasoning-native", false, "Target model reasons natively")
	cmd.Flags().StringVar(&s.format, "format", "", "Output formatting (Any, Markdown, XML, Plain Text)")
	cmd.Flags().StringVar(&s.length, "length", "", "Output length (Concise, Detailed, Comprehensive)")
	cmd.Flags().StringVar(&s.technique, "technique", "", "Prompting technique (Any, Zero-Shot, Few-Shot, Chain-of-Thought)")
}

// resolve fills unset flags from the configured defaults
func (s *styleFlags) resolve(cmd *cobra.Command, d internal.Defaults) (string, bool, protocol.PromptStyle, error) {
	model := s.model
	if model == "" {
		model = d.TargetModel
	}
	reasoning := d.ReasoningNative
	if cmd.Flags().Changed("reasoning-native") {
		reasoning = s.reasoning
	}
	pick := func(flag, def string) string {
		if flag != "" {
			return flag
		}
		return def
	}
	style, err := protocol.ParsePromptStyle(
		pick(s.format, d.Formatting),
		pick(s.length, d.Length),
		pick(s.technique, d.Technique),
	)
	if err != nil {
		return "", false, protocol.PromptStyle{}, err
	}
	return model, reasoning, style, nil
}

// progressObserver drives spinner from task transitions
func progressObserver(spinner *internal.Spinner) protocol.Observer {
	return func(t protocol.Transition) {
		internal.LogDebug("%s task %s: %s -> %s", t.Kind, t.TaskID, t.From, t.To)
		switch t.To {
		case protocol.StateConnecting:
			spinner.Start("Connecting to the enhancement service")
		case protocol.StateAwaitingAcknowledgement:
			spinner.Start("Waiting for the service")
		case protocol.StateProcessing:
			if t.Kind == protocol.KindEdit {
				spinner.Start("Applying edit")
			} else {
				spinner.Start("Enhancing prompt")
			}
		default:
			spinner.Stop()
		}
	}
}

// clarificationAnswerer returns an interactive form on a terminal and
// declines every round otherwise
func clarificationAnswerer(noInput bool, spinner *internal.Spinner) protocol.Answerer {
	if noInput || !internal.IsTerminal(os.Stdin) {
		return protocol.CancelAnswerer
	}
	return &internal.ClarificationForm{In: os.Stdin, Out: os.Stderr, BeforeRun: spinner.Stop}
}

// printOutcome writes the result to cmd's output and notes to stderr
func printOutcome(cmd *cobra.Command, out protocol.Outcome) {
	if out.Advisory != "" {
		internal.PrintWarning(out.Advisory)
	}
	if internal.IsTerminal(os.Stdout) {
		title := "Enhanced prompt"
		if out.Kind == protocol.KindEdit {
			title = "Edited prompt"
		}
		_, _ = fmt.Fprintln(cmd.OutOrStdout(), resultHeaderStyle.Render(title))
		_, _ = fmt.Fprintln(cmd.OutOrStdout())
	}
	_, _ = fmt.Fprintln(cmd.OutOrStdout(), out.Result)
}

// taskFailure turns a failed outcome into a command error
func taskFailure(out protocol.Outcome, err error) error {
	switch out.State {
	case protocol.StateTimedOut:
		return fmt.Errorf("%s task %s: %w", out.Kind, out.TaskID, err)
	case protocol.StateSuperseded:
		return fmt.Errorf("%s task was replaced by a newer one", out.Kind)
	}
	return fmt.Errorf("%s failed: %w", out.Kind, err)
}

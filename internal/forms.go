package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/huh"
)

// ClarificationForm asks the user a round of server questions with huh.
// Accessible mode is used when In is not a terminal.
type ClarificationForm struct {
	In  io.Reader
	Out io.Writer
	// BeforeRun is called before the form takes over the terminal
	BeforeRun func()
}

// Answer shows one text field per question plus a submit/cancel choice.
// Declining or aborting returns ErrClarificationCancelled.
func (f *ClarificationForm) Answer(ctx context.Context, questions []string) ([]string, error) {
	if f.BeforeRun != nil {
		f.BeforeRun()
	}

	answers := make([]string, len(questions))
	fields := make([]huh.Field, 0, len(questions)+2)
	fields = append(fields, huh.NewNote().
		Title("The enhancement service needs more detail").
		Description(fmt.Sprintf("%d question(s). Leave a field empty to skip it.", len(questions))))
	for i, q := range questions {
		fields = append(fields, huh.NewText().
			Title(q).
			Lines(3).
			Value(&answers[i]))
	}
	submit := true
	fields = append(fields, huh.NewConfirm().
		Title("Send these answers?").
		Affirmative("Submit").
		Negative("Cancel").
		Value(&submit))

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(f.In).
		WithOutput(f.Out)
	if !IsTerminal(f.In) {
		form = form.WithAccessible(true)
	}

	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return nil, ErrClarificationCancelled
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("clarification form failed: %w", err)
	}
	if !submit {
		return nil, ErrClarificationCancelled
	}

	for i := range answers {
		answers[i] = strings.TrimSpace(answers[i])
	}
	return answers, nil
}

// RequestInput holds the fields collected by PromptRequest
type RequestInput struct {
	Task       string
	LazyPrompt string
}

// PromptRequest asks for whichever of task and prompt is still empty
func PromptRequest(in io.Reader, out io.Writer, initial RequestInput) (RequestInput, error) {
	result := initial
	var fields []huh.Field
	if strings.TrimSpace(result.Task) == "" {
		fields = append(fields, huh.NewInput().
			Title("Task").
			Description("What should the prompt accomplish?").
			Placeholder("write a poem").
			Value(&result.Task))
	}
	if strings.TrimSpace(result.LazyPrompt) == "" {
		fields = append(fields, huh.NewText().
			Title("Prompt").
			Description("Your rough prompt to enhance").
			Placeholder("poem about rain").
			Value(&result.LazyPrompt).
			Validate(func(s string) error {
				if strings.TrimSpace(s) == "" {
					return fmt.Errorf("prompt is required")
				}
				return nil
			}))
	}
	if len(fields) == 0 {
		return result, nil
	}

	form := huh.NewForm(huh.NewGroup(fields...)).
		WithInput(in).
		WithOutput(out)
	if !IsTerminal(in) {
		form = form.WithAccessible(true)
	}
	if err := form.Run(); err != nil {
		return result, fmt.Errorf("input form failed: %w", err)
	}

	result.Task = strings.TrimSpace(result.Task)
	result.LazyPrompt = strings.TrimSpace(result.LazyPrompt)
	return result, nil
}

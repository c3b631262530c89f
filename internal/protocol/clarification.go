package protocol

import (
	"context"

	"github.com/iksnae/enhance-session/internal"
)

// Clarification is one round of server questions with the user's answers.
// Values are immutable: SetAnswer returns a new round.
type Clarification struct {
	questions []string
	answers   []string
}

// NewClarification starts a round with one empty answer per question
func NewClarification(questions []string) *Clarification {
	q := make([]string, len(questions))
	copy(q, questions)
	return &Clarification{questions: q, answers: make([]string, len(q))}
}

// Len returns the number of questions, which always equals the number of answers
func (c *Clarification) Len() int {
	return len(c.questions)
}

func (c *Clarification) Questions() []string {
	out := make([]string, len(c.questions))
	copy(out, c.questions)
	return out
}

func (c *Clarification) Answers() []string {
	out := make([]string, len(c.answers))
	copy(out, c.answers)
	return out
}

// SetAnswer returns a copy of the round with answer i replaced. Out of
// range indexes return the round unchanged.
func (c *Clarification) SetAnswer(i int, answer string) *Clarification {
	if i < 0 || i >= len(c.answers) {
		return c
	}
	answers := make([]string, len(c.answers))
	copy(answers, c.answers)
	answers[i] = answer
	return &Clarification{questions: c.questions, answers: answers}
}

// Answerer collects answers for a clarification round. Returning
// ErrClarificationCancelled declines the round. Implementations must
// return promptly once ctx is done.
type Answerer interface {
	Answer(ctx context.Context, questions []string) ([]string, error)
}

// AnswererFunc adapts a function to Answerer
type AnswererFunc func(ctx context.Context, questions []string) ([]string, error)

func (f AnswererFunc) Answer(ctx context.Context, questions []string) ([]string, error) {
	return f(ctx, questions)
}

// CancelAnswerer declines every round
var CancelAnswerer = AnswererFunc(func(context.Context, []string) ([]string, error) {
	return nil, ErrClarificationCancelled
})

// clarifier owns the active round of one task and replies on its channel
type clarifier struct {
	ch     Channel
	legacy bool
	round  *Clarification
}

func newClarifier(ch Channel, legacy bool) *clarifier {
	return &clarifier{ch: ch, legacy: legacy}
}

// Activate replaces any active round with a fresh one
func (c *clarifier) Activate(questions []string) *Clarification {
	c.round = NewClarification(questions)
	return c.round
}

func (c *clarifier) Active() *Clarification {
	return c.round
}

func (c *clarifier) SetAnswer(i int, answer string) {
	if c.round != nil {
		c.round = c.round.SetAnswer(i, answer)
	}
}

// Submit sends every answer, empty ones included, and clears the round
func (c *clarifier) Submit() error {
	round := c.round
	if round == nil {
		return nil
	}
	c.round = nil
	return c.ch.Send(NewSubmitMessage(round.Answers(), c.legacy))
}

// Cancel clears the round and, if the channel is still open, tells the
// server the user declined
func (c *clarifier) Cancel() error {
	round := c.round
	c.round = nil
	if round == nil || !c.ch.Ready() {
		return nil
	}
	internal.LogDebug("Cancelling clarification round of %d question(s)", round.Len())
	return c.ch.Send(NewCancelMessage(c.legacy))
}

// Clear drops the round without contacting the server
func (c *clarifier) Clear() {
	c.round = nil
}

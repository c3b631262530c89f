package protocol

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClarification_AnswersMatchQuestions(t *testing.T) {
	for n := 1; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d questions", n), func(t *testing.T) {
			questions := make([]string, n)
			for i := range questions {
				questions[i] = fmt.Sprintf("q%d?", i)
			}
			round := NewClarification(questions)
			assert.Equal(t, n, round.Len())
			assert.Len(t, round.Answers(), n)

			for i := -1; i <= n; i++ {
				round = round.SetAnswer(i, "x")
				assert.Len(t, round.Answers(), n)
				assert.Len(t, round.Questions(), n)
			}
		})
	}
}

func TestClarification_SetAnswerCopiesOnWrite(t *testing.T) {
	original := NewClarification([]string{"a?", "b?"})
	first := original.SetAnswer(0, "one")
	second := first.SetAnswer(1, "two")

	assert.Equal(t, []string{"", ""}, original.Answers())
	assert.Equal(t, []string{"one", ""}, first.Answers())
	assert.Equal(t, []string{"one", "two"}, second.Answers())
}

func TestClarification_DoesNotAliasInput(t *testing.T) {
	questions := []string{"a?"}
	round := NewClarification(questions)
	questions[0] = "changed"
	assert.Equal(t, []string{"a?"}, round.Questions())

	answers := round.Answers()
	answers[0] = "leaked"
	assert.Equal(t, []string{""}, round.Answers())
}

func TestClarifier_SubmitSendsEveryAnswer(t *testing.T) {
	ch := newFakeChannel(true)
	c := newClarifier(ch, false)
	c.Activate([]string{"a?", "b?", "c?"})
	c.SetAnswer(1, "middle")

	require.NoError(t, c.Submit())
	assert.Nil(t, c.Active())

	sent := ch.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, NewSubmitMessage([]string{"", "middle", ""}, false), sent[0])
}

func TestClarifier_Cancel(t *testing.T) {
	tests := []struct {
		name     string
		ready    bool
		wantSent int
	}{
		{name: "open channel", ready: true, wantSent: 1},
		{name: "closed channel", ready: false, wantSent: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := newFakeChannel(tt.ready)
			c := newClarifier(ch, false)
			c.Activate([]string{"a?", "b?"})
			c.SetAnswer(0, "partial")

			require.NoError(t, c.Cancel())
			assert.Nil(t, c.Active(), "cancel must clear the round")
			assert.Len(t, ch.Sent(), tt.wantSent)
			if tt.wantSent > 0 {
				assert.Equal(t, NewCancelMessage(false), ch.Sent()[0])
			}
		})
	}
}

func TestClarifier_NoActiveRound(t *testing.T) {
	ch := newFakeChannel(true)
	c := newClarifier(ch, false)

	require.NoError(t, c.Submit())
	require.NoError(t, c.Cancel())
	assert.Empty(t, ch.Sent())
}

func TestClarifier_ActivateReplacesRound(t *testing.T) {
	c := newClarifier(newFakeChannel(true), false)
	first := c.Activate([]string{"a?"})
	c.SetAnswer(0, "x")
	second := c.Activate([]string{"b?", "c?"})

	assert.NotSame(t, first, second)
	assert.Equal(t, []string{"", ""}, c.Active().Answers())
}

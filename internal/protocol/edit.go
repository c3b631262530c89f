package protocol

import (
	"context"
	"strings"

	"github.com/iksnae/enhance-session/internal"
)

// EditOptions are the user inputs of an edit-continuation task
type EditOptions struct {
	Instructions      string
	TargetModel       string
	IsReasoningNative bool
	Style             PromptStyle
}

// originTaskID picks the task an edit continues: the selected entry's task
// when it has one, otherwise the last enhance task. Callers hold c.mu.
func (c *Client) originTaskID() string {
	if c.selected != nil && c.selected.TaskID != "" {
		return c.selected.TaskID
	}
	return c.lastTaskID
}

// Edit asks the server to revise the current artifact. Without an artifact
// or instructions nothing is sent and the outcome is StateIdle. On success
// the artifact is replaced but no history entry is written; SaveChanges
// persists it over the selected entry.
func (c *Client) Edit(ctx context.Context, opts EditOptions) (Outcome, error) {
	c.mu.Lock()
	artifact := c.artifact
	if strings.TrimSpace(artifact) == "" || strings.TrimSpace(opts.Instructions) == "" {
		c.mu.Unlock()
		internal.LogDebug("Edit skipped: nothing to edit or no instructions")
		return Outcome{Kind: KindEdit, State: StateIdle}, nil
	}
	req := EditRequest{
		CurrentPrompt:     artifact,
		EditInstructions:  opts.Instructions,
		TargetModel:       opts.TargetModel,
		IsReasoningNative: opts.IsReasoningNative,
		Style:             opts.Style,
		EnhancementTaskID: c.originTaskID(),
	}
	sctx, gen := c.begin(ctx, KindEdit)
	c.mu.Unlock()

	taskID := c.opts.NewTaskID()
	internal.LogInfo("Starting edit task %s (continuing %s)", taskID, req.EnhancementTaskID)
	out := c.newSession(KindEdit, taskID, NewEditMessage(req)).run(sctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(KindEdit, gen) {
		return c.superseded(out), ErrSuperseded
	}
	if out.State != StateComplete {
		return out, out.Err
	}
	c.artifact = out.Result
	return out, nil
}

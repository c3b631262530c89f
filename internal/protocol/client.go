package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/iksnae/enhance-session/internal"
)

// History is the persistence the client needs; *internal.HistoryStore
// satisfies it.
type History interface {
	Create(entry internal.HistoryEntry) (internal.HistoryEntry, error)
	Update(id int64, enhancedPrompt string) error
	Delete(id int64) error
	Get(id int64) (internal.HistoryEntry, bool)
}

// ClientOptions configures a Client
type ClientOptions struct {
	Dialer       Dialer
	History      History
	Answerer     Answerer
	Timeout      time.Duration
	Observer     Observer
	LegacyCancel bool

	// Now and NewTaskID default to time.Now and random UUIDs
	Now       func() time.Time
	NewTaskID func() string
}

// flow tracks the in-flight task of one kind
type flow struct {
	generation uint64
	cancel     context.CancelCauseFunc
}

// Client owns the current artifact, the selected history entry and the
// in-flight tasks. It is safe for use from multiple goroutines.
type Client struct {
	opts ClientOptions

	mu         sync.Mutex
	artifact   string
	selected   *internal.HistoryEntry
	lastTaskID string
	flows      map[Kind]*flow
}

// NewClient creates a client; Dialer and History are required
func NewClient(opts ClientOptions) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewTaskID == nil {
		opts.NewTaskID = func() string { return uuid.New().String() }
	}
	return &Client{
		opts: opts,
		flows: map[Kind]*flow{
			KindEnhance: {},
			KindEdit:    {},
		},
	}
}

// begin supersedes any in-flight task of kind and returns the context and
// generation of the new one
func (c *Client) begin(ctx context.Context, kind Kind) (context.Context, uint64) {
	f := c.flows[kind]
	if f.cancel != nil {
		internal.LogDebug("Superseding in-flight %s task", kind)
		f.cancel(ErrSuperseded)
	}
	f.generation++
	ctx, cancel := context.WithCancelCause(ctx)
	f.cancel = cancel
	return ctx, f.generation
}

// end releases the flow and reports whether gen is still current
func (c *Client) end(kind Kind, gen uint64) bool {
	f := c.flows[kind]
	if f.generation != gen {
		return false
	}
	if f.cancel != nil {
		f.cancel(nil)
		f.cancel = nil
	}
	return true
}

func (c *Client) newSession(kind Kind, taskID string, request interface{}) *session {
	return &session{
		kind:     kind,
		taskID:   taskID,
		request:  request,
		dialer:   c.opts.Dialer,
		answerer: c.opts.Answerer,
		timeout:  c.opts.Timeout,
		observer: c.opts.Observer,
		legacy:   c.opts.LegacyCancel,
	}
}

// Enhance runs one enhance task. Starting it supersedes any enhance task
// already in flight and clears the history selection. On success the
// result becomes the current artifact and a history entry is created.
// The returned error is the outcome's error.
func (c *Client) Enhance(ctx context.Context, req SessionRequest) (Outcome, error) {
	taskID := c.opts.NewTaskID()

	c.mu.Lock()
	c.selected = nil
	sctx, gen := c.begin(ctx, KindEnhance)
	c.mu.Unlock()

	internal.LogInfo("Starting enhance task %s", taskID)
	out := c.newSession(KindEnhance, taskID, NewEnhanceMessage(req)).run(sctx)

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.end(KindEnhance, gen) {
		return c.superseded(out), ErrSuperseded
	}
	if out.State != StateComplete {
		return out, out.Err
	}

	c.artifact = out.Result
	c.lastTaskID = taskID
	entry := internal.NewHistoryEntry(req.Task, req.LazyPrompt, out.Result, taskID, c.opts.Now())
	if _, err := c.opts.History.Create(entry); err != nil {
		internal.LogWarn("Failed to save history entry for task %s: %v", taskID, err)
	}
	return out, nil
}

// superseded rewrites an outcome that lost its generation
func (c *Client) superseded(out Outcome) Outcome {
	out.State = StateSuperseded
	out.Result = ""
	out.Advisory = ""
	out.Err = ErrSuperseded
	return out
}

// Load selects a history entry and makes its artifact current
func (c *Client) Load(id int64) (internal.HistoryEntry, error) {
	entry, ok := c.opts.History.Get(id)
	if !ok {
		return internal.HistoryEntry{}, ErrEntryNotFound
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selected = &entry
	c.artifact = entry.EnhancedPrompt
	return entry, nil
}

// SaveChanges writes the current artifact over the selected entry
func (c *Client) SaveChanges() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return ErrNoSelection
	}
	if err := c.opts.History.Update(c.selected.ID, c.artifact); err != nil {
		return err
	}
	c.selected.EnhancedPrompt = c.artifact
	return nil
}

// Delete removes an entry, dropping the selection if it pointed there
func (c *Client) Delete(id int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected != nil && c.selected.ID == id {
		c.selected = nil
	}
	return c.opts.History.Delete(id)
}

// SetArtifact replaces the current artifact, as a user edit would
func (c *Client) SetArtifact(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.artifact = text
}

func (c *Client) Artifact() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifact
}

// Selected returns the selected history entry as last loaded or saved
func (c *Client) Selected() (internal.HistoryEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return internal.HistoryEntry{}, false
	}
	return *c.selected, true
}

// LastTaskID returns the identifier of the last completed enhance task
func (c *Client) LastTaskID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastTaskID
}

// Modified reports whether the artifact differs from the selected entry
func (c *Client) Modified() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected != nil && c.selected.EnhancedPrompt != c.artifact
}

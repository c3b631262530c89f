package protocol

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/iksnae/enhance-session/internal"
	"golang.org/x/net/websocket"
)

// ChannelEventType tags events delivered by a Channel
type ChannelEventType int

const (
	ChannelOpen ChannelEventType = iota
	ChannelMessage
	ChannelError
	ChannelClosed
)

func (t ChannelEventType) String() string {
	switch t {
	case ChannelOpen:
		return "open"
	case ChannelMessage:
		return "message"
	case ChannelError:
		return "error"
	case ChannelClosed:
		return "closed"
	}
	return fmt.Sprintf("ChannelEventType(%d)", int(t))
}

// ChannelEvent is one item of a channel's event stream
type ChannelEvent struct {
	Type  ChannelEventType
	Event Event // set for ChannelMessage
	Err   error // set for ChannelError
}

// Channel is a single-use bidirectional connection scoped to one task.
// Events arrive in order and the stream is closed when the channel ends.
type Channel interface {
	Events() <-chan ChannelEvent
	// Send writes msg as one frame; it is a no-op unless the channel is open
	Send(msg interface{}) error
	Ready() bool
	Close() error
}

// Dialer opens task channels. Open returns immediately; the outcome of the
// connection attempt is the first event on the channel.
type Dialer interface {
	Open(ctx context.Context, kind Kind, taskID string) Channel
}

// WSDialer opens channels over WebSocket at {BaseURL}/ws/{kind}/{taskID}/
type WSDialer struct {
	BaseURL string
	Origin  string
	Header  http.Header
}

// NewWSDialer creates a dialer for the given ws:// or wss:// base URL
func NewWSDialer(baseURL, origin string) *WSDialer {
	if origin == "" {
		origin = "http://localhost/"
	}
	return &WSDialer{BaseURL: baseURL, Origin: origin}
}

// URL returns the channel address for a task
func (d *WSDialer) URL(kind Kind, taskID string) string {
	return fmt.Sprintf("%s/ws/%s/%s/", strings.TrimRight(d.BaseURL, "/"), kind, taskID)
}

// Open starts connecting and returns the channel at once
func (d *WSDialer) Open(ctx context.Context, kind Kind, taskID string) Channel {
	ctx, cancel := context.WithCancel(ctx)
	ch := &wsChannel{
		kind:   kind,
		taskID: taskID,
		events: make(chan ChannelEvent, 8),
		done:   make(chan struct{}),
		cancel: cancel,
	}
	go ch.run(ctx, d.URL(kind, taskID), d.Origin, d.Header)
	return ch
}

type channelState int

const (
	stateConnecting channelState = iota
	stateOpen
	stateClosed
)

type wsChannel struct {
	kind   Kind
	taskID string
	events chan ChannelEvent
	done   chan struct{}
	cancel context.CancelFunc

	closeOnce sync.Once
	writeMu   sync.Mutex
	mu        sync.Mutex
	state     channelState
	conn      *websocket.Conn
}

func (c *wsChannel) Events() <-chan ChannelEvent {
	return c.events
}

func (c *wsChannel) Ready() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateOpen
}

// Send writes one frame. Writes hold writeMu only, so Close never waits on them.
func (c *wsChannel) Send(msg interface{}) error {
	c.mu.Lock()
	open, conn := c.state == stateOpen, c.conn
	c.mu.Unlock()
	if !open {
		internal.LogDebug("Channel %s/%s not open, dropping outbound frame", c.kind, c.taskID)
		return nil
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := websocket.JSON.Send(conn, msg); err != nil {
		return c.wrap("send", err)
	}
	return nil
}

func (c *wsChannel) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.mu.Lock()
		conn := c.conn
		c.state = stateClosed
		c.mu.Unlock()

		close(c.done)
		c.cancel()
		if conn != nil {
			err = conn.Close()
		}
	})
	return err
}

func (c *wsChannel) run(ctx context.Context, url, origin string, header http.Header) {
	defer close(c.events)
	defer c.cancel()

	cfg, err := websocket.NewConfig(url, origin)
	if err != nil {
		c.emit(ChannelEvent{Type: ChannelError, Err: c.wrap("dial", err)})
		return
	}
	if header != nil {
		cfg.Header = header.Clone()
	}

	internal.LogDebug("Dialing %s", url)
	conn, err := cfg.DialContext(ctx)
	if err != nil {
		c.emit(ChannelEvent{Type: ChannelError, Err: c.wrap("dial", err)})
		return
	}

	c.mu.Lock()
	if c.state == stateClosed {
		c.mu.Unlock()
		_ = conn.Close()
		return
	}
	c.conn = conn
	c.state = stateOpen
	c.mu.Unlock()

	if !c.emit(ChannelEvent{Type: ChannelOpen}) {
		return
	}

	for {
		var ev Event
		err := websocket.JSON.Receive(conn, &ev)
		if err != nil {
			if c.closed() {
				return
			}
			if isDecodeError(err) {
				internal.LogWarn("Skipping undecodable frame on %s/%s: %v", c.kind, c.taskID, err)
				continue
			}
			c.markClosed()
			if errors.Is(err, io.EOF) {
				c.emit(ChannelEvent{Type: ChannelClosed})
			} else {
				c.emit(ChannelEvent{Type: ChannelError, Err: c.wrap("receive", err)})
			}
			return
		}
		if !c.emit(ChannelEvent{Type: ChannelMessage, Event: ev}) {
			return
		}
	}
}

// emit delivers ev unless the channel was closed by its owner
func (c *wsChannel) emit(ev ChannelEvent) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.events <- ev:
		return true
	case <-c.done:
		return false
	}
}

func (c *wsChannel) closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// markClosed stops Send from writing to a connection the peer has dropped
func (c *wsChannel) markClosed() {
	c.mu.Lock()
	if c.state == stateOpen {
		c.state = stateClosed
	}
	c.mu.Unlock()
}

func (c *wsChannel) wrap(op string, err error) error {
	return &internal.ChannelError{Kind: string(c.kind), TaskID: c.taskID, Op: op, Err: err}
}

func isDecodeError(err error) bool {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	return errors.As(err, &syntaxErr) || errors.As(err, &typeErr)
}

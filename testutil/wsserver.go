package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"golang.org/x/net/websocket"
)

// Frame is a decoded JSON frame received by the fake server
type Frame map[string]interface{}

// Type returns the frame's "type" discriminator
func (f Frame) Type() string {
	s, _ := f["type"].(string)
	return s
}

// String returns a string field or ""
func (f Frame) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Received is a frame together with the channel path it arrived on
type Received struct {
	Path  string
	Frame Frame
}

// WSConn is the server side of one task channel
type WSConn struct {
	*websocket.Conn
	Path   string
	server *FakeEnhanceServer
}

// Receive reads one JSON frame, recording it on the server. It returns nil
// once the client has gone away or nothing arrives within the read timeout.
func (c *WSConn) Receive() Frame {
	_ = c.SetReadDeadline(time.Now().Add(c.server.ReadTimeout))
	var f Frame
	if err := websocket.JSON.Receive(c.Conn, &f); err != nil {
		return nil
	}
	c.server.record(c.Path, f)
	return f
}

// Send writes v as one JSON frame
func (c *WSConn) Send(v interface{}) {
	_ = websocket.JSON.Send(c.Conn, v)
}

// SendRaw writes a text frame without JSON encoding
func (c *WSConn) SendRaw(text string) {
	_ = websocket.Message.Send(c.Conn, text)
}

// WaitClosed blocks until the client closes its side
func (c *WSConn) WaitClosed() {
	_ = c.SetReadDeadline(time.Time{})
	var discard string
	for websocket.Message.Receive(c.Conn, &discard) == nil {
	}
}

// FakeEnhanceServer is an in-process enhancement service whose behaviour
// per connection is given by a script
type FakeEnhanceServer struct {
	*httptest.Server
	ReadTimeout time.Duration

	mu       sync.Mutex
	received []Received
	paths    []string
	frames   chan Received
}

// NewFakeEnhanceServer starts a server serving /ws/ with script and closes
// it when the test ends
func NewFakeEnhanceServer(t *testing.T, script func(conn *WSConn)) *FakeEnhanceServer {
	t.Helper()
	s := &FakeEnhanceServer{
		ReadTimeout: 5 * time.Second,
		frames:      make(chan Received, 64),
	}
	ws := websocket.Handler(func(conn *websocket.Conn) {
		path := conn.Request().URL.Path
		s.mu.Lock()
		s.paths = append(s.paths, path)
		s.mu.Unlock()
		script(&WSConn{Conn: conn, Path: path, server: s})
	})
	mux := http.NewServeMux()
	mux.Handle("/ws/", ws)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Server.Close)
	return s
}

// BaseURL returns the ws:// address of the server
func (s *FakeEnhanceServer) BaseURL() string {
	return "ws" + strings.TrimPrefix(s.Server.URL, "http")
}

func (s *FakeEnhanceServer) record(path string, f Frame) {
	s.mu.Lock()
	s.received = append(s.received, Received{Path: path, Frame: f})
	s.mu.Unlock()
	select {
	case s.frames <- Received{Path: path, Frame: f}:
	default:
	}
}

// Received returns every frame recorded so far
func (s *FakeEnhanceServer) Received() []Received {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Received, len(s.received))
	copy(out, s.received)
	return out
}

// Connections returns the request paths of every accepted channel
func (s *FakeEnhanceServer) Connections() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.paths))
	copy(out, s.paths)
	return out
}

// WaitFrame waits for the next recorded frame
func (s *FakeEnhanceServer) WaitFrame(t *testing.T, timeout time.Duration) Received {
	t.Helper()
	select {
	case r := <-s.frames:
		return r
	case <-time.After(timeout):
		t.Fatalf("no frame received within %s", timeout)
		return Received{}
	}
}

// DecodeFrame re-encodes a frame into a typed value
func DecodeFrame(t *testing.T, f Frame, v interface{}) {
	t.Helper()
	data, err := json.Marshal(f)
	if err != nil {
		t.Fatalf("marshal frame: %v", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		t.Fatalf("unmarshal frame: %v", err)
	}
}

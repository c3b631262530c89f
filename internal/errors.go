package internal

import (
	"errors"
	"fmt"
)

// ErrClarificationCancelled is returned by an answerer when the user declines
// to answer a clarification round
var ErrClarificationCancelled = errors.New("clarification cancelled")

// StoreError represents errors reading or writing the history medium
type StoreError struct {
	Op  string // "load", "save", "decode", "encode"
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// ChannelError represents a transport failure on a task channel
type ChannelError struct {
	Kind   string // "enhance", "edit"
	TaskID string
	Op     string // "dial", "send", "receive"
	Err    error
}

func (e *ChannelError) Error() string {
	return fmt.Sprintf("channel error [%s/%s] %s: %v", e.Kind, e.TaskID, e.Op, e.Err)
}

func (e *ChannelError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}

// ConfigError represents errors loading the configuration file
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

package protocol

import (
	"errors"

	"github.com/iksnae/enhance-session/internal"
)

var (
	// ErrTransport is the generic failure reported when a channel cannot
	// open or drops before the task finished
	ErrTransport = errors.New("connection to the enhancement service failed")

	ErrTimedOut   = errors.New("enhancement task timed out waiting for the server")
	ErrSuperseded = errors.New("task superseded by a newer request")

	ErrClarificationCancelled = internal.ErrClarificationCancelled
	ErrNoSelection            = errors.New("no history entry selected")
	ErrEntryNotFound          = internal.ErrEntryNotFound
)

// TaskError is a failure reported by the server in a task_error event
type TaskError struct {
	Message string
}

func (e *TaskError) Error() string {
	return e.Message
}

// TransportError carries the underlying cause of a transport failure while
// presenting the generic ErrTransport text to users
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return ErrTransport.Error()
}

func (e *TransportError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrTransport}
	}
	return []error{ErrTransport, e.Err}
}

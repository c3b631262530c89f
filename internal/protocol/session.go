package protocol

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/iksnae/enhance-session/internal"
)

// DefaultTimeout bounds how long a task may go without any server event.
// The backend waits five minutes for clarification answers, so this leaves
// a margin past that.
const DefaultTimeout = 6 * time.Minute

// FallbackAdvisory is shown when the server completed on its fallback model
const FallbackAdvisory = "Using fallback model due to service downtime."

// State is a task session lifecycle state
type State int

const (
	StateIdle State = iota
	StateConnecting
	StateAwaitingAcknowledgement
	StateProcessing
	StateAwaitingClarification
	StateComplete
	StateFailed
	StateTimedOut
	StateSuperseded
)

var stateNames = map[State]string{
	StateIdle:                    "idle",
	StateConnecting:              "connecting",
	StateAwaitingAcknowledgement: "awaiting-acknowledgement",
	StateProcessing:              "processing",
	StateAwaitingClarification:   "awaiting-clarification",
	StateComplete:                "complete",
	StateFailed:                  "failed",
	StateTimedOut:                "timed-out",
	StateSuperseded:              "superseded",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Terminal reports whether no further transitions can happen
func (s State) Terminal() bool {
	switch s {
	case StateComplete, StateFailed, StateTimedOut, StateSuperseded:
		return true
	}
	return false
}

// Transition describes one state change of a task
type Transition struct {
	Kind   Kind
	TaskID string
	From   State
	To     State
	// Questions is set when entering StateAwaitingClarification
	Questions []string
}

// Observer is called synchronously on every transition
type Observer func(Transition)

// Outcome is the final result of a task session
type Outcome struct {
	TaskID     string
	Kind       Kind
	State      State
	Result     string
	IsFallback bool
	Advisory   string
	Err        error
}

// answerResult reports a finished Answerer back to the consume loop
type answerResult struct {
	round   *Clarification
	answers []string
	err     error
}

// session drives one task from submission to a terminal state. All fields
// are owned by the goroutine running run.
type session struct {
	kind     Kind
	taskID   string
	request  interface{}
	dialer   Dialer
	answerer Answerer
	timeout  time.Duration
	observer Observer
	legacy   bool

	state       State
	ch          Channel
	clarify     *clarifier
	answers     chan answerResult
	stopAnswers context.CancelFunc
}

func (s *session) transition(to State, questions []string) {
	from := s.state
	if from == to {
		return
	}
	s.state = to
	internal.Logger().Debugw("task state changed", "kind", s.kind, "task", s.taskID, "from", from.String(), "to", to.String())
	if s.observer != nil {
		s.observer(Transition{Kind: s.kind, TaskID: s.taskID, From: from, To: to, Questions: questions})
	}
}

// run opens the channel and consumes its events until the task ends
func (s *session) run(ctx context.Context) Outcome {
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	s.answers = make(chan answerResult, 1)

	s.transition(StateConnecting, nil)
	s.ch = s.dialer.Open(ctx, s.kind, s.taskID)
	s.clarify = newClarifier(s.ch, s.legacy)
	defer s.ch.Close()
	defer s.stopAnswerer()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	events := s.ch.Events()

	for {
		select {
		case <-ctx.Done():
			return s.cancelled(ctx)

		case <-timer.C:
			internal.LogWarn("Task %s/%s timed out after %s in state %s", s.kind, s.taskID, s.timeout, s.state)
			s.clarify.Clear()
			return s.finish(Outcome{State: StateTimedOut, Err: ErrTimedOut})

		case res := <-s.answers:
			if res.round != s.clarify.Active() {
				internal.LogDebug("Ignoring answers for a replaced clarification round")
				continue
			}
			if err := s.reply(res); err != nil {
				return s.fail(err)
			}
			timer.Reset(s.timeout)

		case cev, ok := <-events:
			if !ok {
				return s.fail(&TransportError{Err: errors.New("channel ended before the task finished")})
			}
			switch cev.Type {
			case ChannelOpen:
				if err := s.ch.Send(s.request); err != nil {
					return s.fail(&TransportError{Err: err})
				}
				s.transition(StateAwaitingAcknowledgement, nil)
			case ChannelError:
				if ctx.Err() != nil {
					return s.cancelled(ctx)
				}
				internal.LogDebug("Task %s/%s transport error: %v", s.kind, s.taskID, cev.Err)
				return s.fail(&TransportError{Err: cev.Err})
			case ChannelClosed:
				return s.fail(&TransportError{Err: errors.New("server closed the connection")})
			case ChannelMessage:
				timer.Reset(s.timeout)
				if out, done := s.handle(ctx, cev.Event); done {
					return out
				}
			}
		}
	}
}

// handle applies one server event; done is true once the task has ended
func (s *session) handle(ctx context.Context, ev Event) (Outcome, bool) {
	switch ev.Type {
	case EventProcessing:
		if s.state == StateAwaitingAcknowledgement {
			s.transition(StateProcessing, nil)
		}

	case EventUserQuestion:
		questions := ev.QuestionList()
		if len(questions) == 0 {
			internal.LogWarn("Task %s/%s: ignoring user_question without questions", s.kind, s.taskID)
			return Outcome{}, false
		}
		s.stopAnswerer()
		round := s.clarify.Activate(questions)
		s.transition(StateAwaitingClarification, round.Questions())
		s.startAnswerer(ctx, round)

	case EventAnswerReceived:
		s.stopAnswerer()
		s.clarify.Clear()
		if s.state == StateAwaitingClarification {
			s.transition(StateProcessing, nil)
		}

	case EventTaskComplete:
		s.stopAnswerer()
		s.clarify.Clear()
		out := Outcome{State: StateComplete, Result: ev.Result, IsFallback: ev.IsFallback}
		if ev.IsFallback {
			out.Advisory = FallbackAdvisory
		}
		return s.finish(out), true

	case EventTaskError:
		s.stopAnswerer()
		s.clarify.Clear()
		msg := ev.Error
		if msg == "" {
			msg = "the enhancement service reported an unspecified error"
		}
		return s.finish(Outcome{State: StateFailed, Err: &TaskError{Message: msg}}), true

	default:
		internal.LogDebug("Task %s/%s: ignoring event type %q", s.kind, s.taskID, ev.Type)
	}
	return Outcome{}, false
}

// reply sends the user's decision for the active round
func (s *session) reply(res answerResult) error {
	if s.stopAnswers != nil {
		s.stopAnswers()
		s.stopAnswers = nil
	}
	var err error
	switch {
	case res.err == nil:
		for i, a := range res.answers {
			s.clarify.SetAnswer(i, a)
		}
		err = s.clarify.Submit()
	case errors.Is(res.err, ErrClarificationCancelled):
		err = s.clarify.Cancel()
	default:
		internal.LogWarn("Clarification input failed, declining round: %v", res.err)
		err = s.clarify.Cancel()
	}
	if err != nil {
		return &TransportError{Err: err}
	}
	s.transition(StateProcessing, nil)
	return nil
}

func (s *session) startAnswerer(ctx context.Context, round *Clarification) {
	if s.answerer == nil {
		s.answers <- answerResult{round: round, err: ErrClarificationCancelled}
		return
	}
	actx, cancel := context.WithCancel(ctx)
	s.stopAnswers = cancel
	questions := round.Questions()
	results := s.answers
	go func() {
		answers, err := s.answerer.Answer(actx, questions)
		select {
		case results <- answerResult{round: round, answers: answers, err: err}:
		case <-actx.Done():
		}
	}()
}

// stopAnswerer tears down any clarification prompt still running
func (s *session) stopAnswerer() {
	if s.stopAnswers != nil {
		s.stopAnswers()
		s.stopAnswers = nil
	}
	select {
	case <-s.answers:
	default:
	}
}

func (s *session) cancelled(ctx context.Context) Outcome {
	s.clarify.Clear()
	if errors.Is(context.Cause(ctx), ErrSuperseded) {
		return s.finish(Outcome{State: StateSuperseded, Err: ErrSuperseded})
	}
	return s.finish(Outcome{State: StateFailed, Err: ctx.Err()})
}

func (s *session) fail(err error) Outcome {
	s.clarify.Clear()
	return s.finish(Outcome{State: StateFailed, Err: err})
}

func (s *session) finish(out Outcome) Outcome {
	out.TaskID = s.taskID
	out.Kind = s.kind
	s.transition(out.State, nil)
	return out
}

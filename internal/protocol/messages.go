package protocol

import (
	"fmt"
	"strings"
)

// Kind identifies a task flow and the URL segment its channel lives under
type Kind string

const (
	KindEnhance Kind = "enhance"
	KindEdit    Kind = "edit"
)

// Formatting is the requested output formatting of an enhanced prompt
type Formatting string

const (
	FormattingAny       Formatting = "Any"
	FormattingMarkdown  Formatting = "Markdown"
	FormattingXML       Formatting = "XML"
	FormattingPlainText Formatting = "Plain Text"
)

// Length is the requested verbosity of an enhanced prompt
type Length string

const (
	LengthConcise       Length = "Concise"
	LengthDetailed      Length = "Detailed"
	LengthComprehensive Length = "Comprehensive"
)

// Technique is the prompting technique the server should apply
type Technique string

const (
	TechniqueAny            Technique = "Any"
	TechniqueZeroShot       Technique = "Zero-Shot"
	TechniqueFewShot        Technique = "Few-Shot"
	TechniqueChainOfThought Technique = "Chain-of-Thought"
)

// normalizeChoice lowercases and strips separators so "Plain Text",
// "plaintext" and "plain-text" compare equal
func normalizeChoice(s string) string {
	r := strings.NewReplacer(" ", "", "-", "", "_", "")
	return strings.ToLower(r.Replace(strings.TrimSpace(s)))
}

// ParseFormatting parses a formatting name; empty selects the default
func ParseFormatting(s string) (Formatting, error) {
	switch normalizeChoice(s) {
	case "", "any":
		return FormattingAny, nil
	case "markdown", "md":
		return FormattingMarkdown, nil
	case "xml":
		return FormattingXML, nil
	case "plaintext", "plain", "text":
		return FormattingPlainText, nil
	}
	return "", fmt.Errorf("unknown formatting %q (supported: Any, Markdown, XML, Plain Text)", s)
}

// ParseLength parses a length name; empty selects the default
func ParseLength(s string) (Length, error) {
	switch normalizeChoice(s) {
	case "", "detailed":
		return LengthDetailed, nil
	case "concise":
		return LengthConcise, nil
	case "comprehensive":
		return LengthComprehensive, nil
	}
	return "", fmt.Errorf("unknown length %q (supported: Concise, Detailed, Comprehensive)", s)
}

// ParseTechnique parses a technique name; empty selects the default
func ParseTechnique(s string) (Technique, error) {
	switch normalizeChoice(s) {
	case "", "any":
		return TechniqueAny, nil
	case "zeroshot":
		return TechniqueZeroShot, nil
	case "fewshot":
		return TechniqueFewShot, nil
	case "chainofthought", "cot":
		return TechniqueChainOfThought, nil
	}
	return "", fmt.Errorf("unknown technique %q (supported: Any, Zero-Shot, Few-Shot, Chain-of-Thought)", s)
}

// PromptStyle groups the style options sent with every request
type PromptStyle struct {
	Formatting Formatting `json:"formatting" yaml:"formatting"`
	Length     Length     `json:"length" yaml:"length"`
	Technique  Technique  `json:"technique" yaml:"technique"`
}

// DefaultPromptStyle returns Any / Detailed / Any
func DefaultPromptStyle() PromptStyle {
	return PromptStyle{
		Formatting: FormattingAny,
		Length:     LengthDetailed,
		Technique:  TechniqueAny,
	}
}

// ParsePromptStyle parses the three style names at once
func ParsePromptStyle(formatting, length, technique string) (PromptStyle, error) {
	f, err := ParseFormatting(formatting)
	if err != nil {
		return PromptStyle{}, err
	}
	l, err := ParseLength(length)
	if err != nil {
		return PromptStyle{}, err
	}
	tq, err := ParseTechnique(technique)
	if err != nil {
		return PromptStyle{}, err
	}
	return PromptStyle{Formatting: f, Length: l, Technique: tq}, nil
}

func (s PromptStyle) withDefaults() PromptStyle {
	d := DefaultPromptStyle()
	if s.Formatting == "" {
		s.Formatting = d.Formatting
	}
	if s.Length == "" {
		s.Length = d.Length
	}
	if s.Technique == "" {
		s.Technique = d.Technique
	}
	return s
}

// SessionRequest is what the user submits to start an enhance task
type SessionRequest struct {
	Task                   string
	LazyPrompt             string
	UseWebSearch           bool
	AdditionalContextQuery string
	TargetModel            string
	IsReasoningNative      bool
	Style                  PromptStyle
}

// EditRequest is the payload of an edit-continuation task
type EditRequest struct {
	CurrentPrompt     string
	EditInstructions  string
	TargetModel       string
	IsReasoningNative bool
	Style             PromptStyle
	EnhancementTaskID string
}

// Outbound message type discriminators
const (
	TypeEnhance     = "enhance"
	TypeEditRequest = "edit_request"
	TypeUserAnswer  = "user_answer"
)

// Answer actions and the legacy cancellation value
const (
	ActionSubmit         = "submit"
	ActionCancel         = "cancel"
	LegacyCancelSentinel = "CANCEL"
)

// EnhanceMessage is the first frame sent on an enhance channel
type EnhanceMessage struct {
	Type                   string      `json:"type"`
	Task                   string      `json:"task"`
	LazyPrompt             string      `json:"lazy_prompt"`
	UseWebSearch           bool        `json:"use_web_search"`
	AdditionalContextQuery string      `json:"additional_context_query"`
	TargetModel            string      `json:"target_model"`
	IsReasoningNative      bool        `json:"is_reasoning_native"`
	PromptStyle            PromptStyle `json:"prompt_style"`
}

// NewEnhanceMessage builds the wire form of req
func NewEnhanceMessage(req SessionRequest) EnhanceMessage {
	return EnhanceMessage{
		Type:                   TypeEnhance,
		Task:                   req.Task,
		LazyPrompt:             req.LazyPrompt,
		UseWebSearch:           req.UseWebSearch,
		AdditionalContextQuery: req.AdditionalContextQuery,
		TargetModel:            req.TargetModel,
		IsReasoningNative:      req.IsReasoningNative,
		PromptStyle:            req.Style.withDefaults(),
	}
}

// EditMessage is the first frame sent on an edit channel
type EditMessage struct {
	Type              string      `json:"type"`
	CurrentPrompt     string      `json:"current_prompt"`
	EditInstructions  string      `json:"edit_instructions"`
	TargetModel       string      `json:"target_model"`
	IsReasoningNative bool        `json:"is_reasoning_native"`
	PromptStyle       PromptStyle `json:"prompt_style"`
	EnhancementTaskID string      `json:"enhancement_task_id"`
}

// NewEditMessage builds the wire form of req
func NewEditMessage(req EditRequest) EditMessage {
	return EditMessage{
		Type:              TypeEditRequest,
		CurrentPrompt:     req.CurrentPrompt,
		EditInstructions:  req.EditInstructions,
		TargetModel:       req.TargetModel,
		IsReasoningNative: req.IsReasoningNative,
		PromptStyle:       req.Style.withDefaults(),
		EnhancementTaskID: req.EnhancementTaskID,
	}
}

// AnswerMessage replies to a clarification round. Answers holds either a
// []string or, in legacy mode, the LegacyCancelSentinel string.
type AnswerMessage struct {
	Type    string      `json:"type"`
	Action  string      `json:"action,omitempty"`
	Answers interface{} `json:"answers,omitempty"`
}

// NewSubmitMessage builds a user_answer frame carrying answers
func NewSubmitMessage(answers []string, legacy bool) AnswerMessage {
	msg := AnswerMessage{Type: TypeUserAnswer, Answers: answers}
	if !legacy {
		msg.Action = ActionSubmit
	}
	return msg
}

// NewCancelMessage builds a user_answer frame declining the round
func NewCancelMessage(legacy bool) AnswerMessage {
	if legacy {
		return AnswerMessage{Type: TypeUserAnswer, Answers: LegacyCancelSentinel}
	}
	return AnswerMessage{Type: TypeUserAnswer, Action: ActionCancel}
}

// EventType discriminates inbound server events
type EventType string

const (
	EventProcessing     EventType = "processing"
	EventUserQuestion   EventType = "user_question"
	EventAnswerReceived EventType = "answer_received"
	EventTaskComplete   EventType = "task_complete"
	EventTaskError      EventType = "task_error"
)

// Event is one decoded server frame
type Event struct {
	Type       EventType `json:"type"`
	Questions  []string  `json:"questions,omitempty"`
	Question   string    `json:"question,omitempty"`
	Result     string    `json:"result,omitempty"`
	IsFallback bool      `json:"is_fallback,omitempty"`
	Error      string    `json:"error,omitempty"`
	Status     string    `json:"status,omitempty"`
}

// QuestionList returns the questions of a user_question event. Older
// servers send a single "question" string instead of a list.
func (e Event) QuestionList() []string {
	if len(e.Questions) > 0 {
		out := make([]string, len(e.Questions))
		copy(out, e.Questions)
		return out
	}
	if strings.TrimSpace(e.Question) != "" {
		return []string{e.Question}
	}
	return nil
}

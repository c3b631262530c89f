package internal

import (
	"strings"
	"time"
)

// CreatedAtLayout is the human-readable timestamp stored with each entry
const CreatedAtLayout = "1/2/2006, 3:04:05 PM"

// HistoryEntry represents one completed enhancement saved to history
type HistoryEntry struct {
	ID             int64  `json:"id" yaml:"id"`
	Task           string `json:"task" yaml:"task"`
	LazyPrompt     string `json:"lazy_prompt" yaml:"lazy_prompt"`
	EnhancedPrompt string `json:"enhanced_prompt" yaml:"enhanced_prompt"`
	CreatedAt      string `json:"created_at" yaml:"created_at"`
	TaskID         string `json:"task_id" yaml:"task_id"`
}

// NewHistoryEntry builds an entry stamped with now. The ID is assigned by the
// store on Create.
func NewHistoryEntry(task, lazyPrompt, enhanced, taskID string, now time.Time) HistoryEntry {
	return HistoryEntry{
		ID:             now.UnixMilli(),
		Task:           task,
		LazyPrompt:     lazyPrompt,
		EnhancedPrompt: enhanced,
		CreatedAt:      now.Format(CreatedAtLayout),
		TaskID:         taskID,
	}
}

// Title returns a one-line label for listings
func (e HistoryEntry) Title() string {
	title := strings.TrimSpace(e.Task)
	if title == "" {
		title = strings.TrimSpace(e.LazyPrompt)
	}
	if title == "" {
		return "Untitled"
	}
	return Truncate(firstLine(title), 50)
}

// Created returns the entry's creation time derived from its ID
func (e HistoryEntry) Created() time.Time {
	return time.UnixMilli(e.ID)
}

// Truncate shortens s to max runes, marking the cut with "..."
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i])
	}
	return s
}

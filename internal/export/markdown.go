package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/enhance-session/internal"
)

// MarkdownExporter exports the collection as a readable document
type MarkdownExporter struct{}

func (e *MarkdownExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	_, _ = fmt.Fprintf(w, "# Prompt History\n\n")
	_, _ = fmt.Fprintf(w, "**Entries:** %d\n\n", len(entries))

	for _, entry := range entries {
		_, _ = fmt.Fprintf(w, "---\n\n")
		_, _ = fmt.Fprintf(w, "## %s\n\n", escapeMarkdown(entry.Title()))
		_, _ = fmt.Fprintf(w, "**ID:** %d  \n", entry.ID)
		if entry.CreatedAt != "" {
			_, _ = fmt.Fprintf(w, "**Created:** %s  \n", entry.CreatedAt)
		}
		if entry.TaskID != "" {
			_, _ = fmt.Fprintf(w, "**Task ID:** `%s`  \n", entry.TaskID)
		}
		if entry.Task != "" {
			_, _ = fmt.Fprintf(w, "**Task:** %s\n", escapeMarkdown(entry.Task))
		}
		_, _ = fmt.Fprintf(w, "\n")

		if entry.LazyPrompt != "" {
			_, _ = fmt.Fprintf(w, "### Original prompt\n\n%s\n\n", quote(entry.LazyPrompt))
		}
		// The enhanced prompt is usually markdown already, so it is written as is
		_, _ = fmt.Fprintf(w, "### Enhanced prompt\n\n%s\n\n", strings.TrimRight(entry.EnhancedPrompt, "\n"))
	}

	return nil
}

// quote renders text as a markdown blockquote
func quote(text string) string {
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight("> "+escapeMarkdown(line), " ")
	}
	return strings.Join(lines, "\n")
}

// escapeMarkdown escapes emphasis markers in user text
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "**", "\\*\\*")
	text = strings.ReplaceAll(text, "__", "\\_\\_")
	return text
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}

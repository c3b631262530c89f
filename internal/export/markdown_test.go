package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/enhance-session/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	tests := []struct {
		name    string
		entries []internal.HistoryEntry
		want    []string
		notWant []string
	}{
		{
			name:    "entries",
			entries: sampleEntries(),
			want: []string{
				"# Prompt History",
				"**Entries:** 2",
				"## write a poem",
				"**Task ID:** `11111111-2222-3333-4444-555555555555`",
				"### Original prompt\n\n> poem about rain",
				"### Enhanced prompt\n\n# Role\nYou are a poet.",
				"rain **falls**",
				"## summarize \\_\\_init\\_\\_ files",
			},
		},
		{
			name:    "no task id",
			entries: sampleEntries()[1:],
			want:    []string{"**Entries:** 1"},
			notWant: []string{"**Task ID:**", "**Task:**"},
		},
		{
			name:    "empty",
			entries: nil,
			want:    []string{"**Entries:** 0"},
			notWant: []string{"---"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (&MarkdownExporter{}).Export(tt.entries, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(out, nw) {
					t.Errorf("output should not contain %q:\n%s", nw, out)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain", "plain"},
		{"**bold**", "\\*\\*bold\\*\\*"},
		{"__dunder__", "\\_\\_dunder\\_\\_"},
		{"single *star* and _under_", "single *star* and _under_"},
	}
	for _, tt := range tests {
		if got := escapeMarkdown(tt.in); got != tt.want {
			t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestQuote(t *testing.T) {
	got := quote("line one\n\nline two\n")
	want := "> line one\n>\n> line two"
	if got != want {
		t.Errorf("quote() = %q, want %q", got, want)
	}
}

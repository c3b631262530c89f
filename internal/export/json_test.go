package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/enhance-session/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	exporter := &JSONExporter{}
	var buf bytes.Buffer
	if err := exporter.Export(sampleEntries(), &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	var got []internal.HistoryEntry
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d entries, want 2", len(got))
	}
	if got[0].TaskID != sampleEntries()[0].TaskID {
		t.Errorf("task_id = %q", got[0].TaskID)
	}
	if !strings.Contains(buf.String(), "\n  {") {
		t.Error("JSON output should be indented")
	}
	if !strings.Contains(buf.String(), `"lazy_prompt": "poem about rain"`) {
		t.Errorf("missing lazy_prompt field: %s", buf.String())
	}
}

func TestJSONExporter_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONExporter{}).Export(nil, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "[]" {
		t.Errorf("empty export = %q, want []", buf.String())
	}
}

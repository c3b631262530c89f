package export

import (
	"encoding/json"
	"io"

	"github.com/iksnae/enhance-session/internal"
)

// JSONExporter writes the collection as one pretty-printed array, the same
// shape the history store persists
type JSONExporter struct{}

func (e *JSONExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	if entries == nil {
		entries = []internal.HistoryEntry{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}

// Extension returns the file extension for this format
func (e *JSONExporter) Extension() string {
	return "json"
}

package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/enhance-session/internal"
)

// JSONLExporter exports one entry per line
type JSONLExporter struct{}

func (e *JSONLExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, entry := range entries {
		if err := enc.Encode(entry); err != nil {
			return fmt.Errorf("failed to encode entry %d: %w", entry.ID, err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}

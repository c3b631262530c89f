package export

import (
	"io"

	"github.com/iksnae/enhance-session/internal"
	"gopkg.in/yaml.v3"
)

// YAMLExporter exports the collection as a YAML sequence
type YAMLExporter struct{}

func (e *YAMLExporter) Export(entries []internal.HistoryEntry, w io.Writer) error {
	if entries == nil {
		entries = []internal.HistoryEntry{}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()

	return enc.Encode(entries)
}

// Extension returns the file extension for this format
func (e *YAMLExporter) Extension() string {
	return "yaml"
}

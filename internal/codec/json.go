package codec

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONExporter serializes a theory document as indented JSON.
type JSONExporter struct{}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter() *JSONExporter {
	return &JSONExporter{}
}

// Format returns the exporter format identifier.
func (e *JSONExporter) Format() string {
	return "json"
}

// Export writes the document as JSON.
func (e *JSONExporter) Export(doc *Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

package codec

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// YAMLExporter serializes a theory document as YAML.
type YAMLExporter struct{}

// NewYAMLExporter creates a new YAML exporter.
func NewYAMLExporter() *YAMLExporter {
	return &YAMLExporter{}
}

// Format returns the exporter format identifier.
func (e *YAMLExporter) Format() string {
	return "yaml"
}

// Export writes the document as YAML.
func (e *YAMLExporter) Export(doc *Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()

	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}
	return nil
}

// Package codec builds and serializes theory documents: the
// dependency-ordered enumeration of a registry's declarations, with
// verified and incomplete material kept strictly apart.
package codec

import (
	"fmt"
	"io"
)

// Exporter serializes a theory document to one output format.
type Exporter interface {
	Export(doc *Document, w io.Writer) error
	Format() string
}

// ExporterFor returns the exporter for a format identifier.
func ExporterFor(format string) (Exporter, error) {
	switch format {
	case "json":
		return NewJSONExporter(), nil
	case "yaml":
		return NewYAMLExporter(), nil
	case "markdown", "md":
		return NewMarkdownExporter(), nil
	default:
		return nil, fmt.Errorf("unknown export format %q", format)
	}
}

// Formats lists the supported export format identifiers.
func Formats() []string {
	return []string{"json", "yaml", "markdown"}
}

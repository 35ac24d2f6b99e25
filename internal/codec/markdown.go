package codec

import (
	"fmt"
	"io"
	"strings"
)

// MarkdownExporter renders a theory document as a cheat sheet: one table
// per kind for the verified material, and a clearly marked incomplete
// section at the end.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Format returns the exporter format identifier.
func (e *MarkdownExporter) Format() string {
	return "markdown"
}

var sectionTitles = map[string]string{
	"sort":       "Sorts",
	"relation":   "Relations",
	"compound":   "Compound Entities",
	"axiom":      "Axioms",
	"definition": "Definitions",
	"lemma":      "Lemmas",
	"theorem":    "Theorems",
}

// Export writes the document as Markdown.
func (e *MarkdownExporter) Export(doc *Document, w io.Writer) error {
	var b strings.Builder

	title := "Theory"
	if doc.Theory != "" {
		title = doc.Theory
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated %s.\n\n", doc.GeneratedAt.Format("2006-01-02 15:04:05 UTC"))

	for _, section := range doc.Verified {
		heading, ok := sectionTitles[string(section.Kind)]
		if !ok {
			heading = string(section.Kind)
		}
		fmt.Fprintf(&b, "## %s\n\n", heading)
		b.WriteString("| Name | Signature | Cites |\n")
		b.WriteString("|------|-----------|-------|\n")
		for _, entry := range section.Entries {
			fmt.Fprintf(&b, "| %s | `%s` | %s |\n",
				entry.Name, escapePipes(entry.Signature), strings.Join(entry.Citations, ", "))
		}
		b.WriteString("\n")
	}

	if len(doc.Incomplete) > 0 {
		b.WriteString("## Incomplete (unverified)\n\n")
		b.WriteString("These declarations carry admitted or gapped proofs and are not part of the verified theory.\n\n")
		b.WriteString("| Name | Kind | Signature | Cites |\n")
		b.WriteString("|------|------|-----------|-------|\n")
		for _, entry := range doc.Incomplete {
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s |\n",
				entry.Name, entry.Kind, escapePipes(entry.Signature), strings.Join(entry.Citations, ", "))
		}
		b.WriteString("\n")
	}

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write markdown: %w", err)
	}
	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", "\\|")
}

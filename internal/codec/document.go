package codec

import (
	"fmt"
	"strings"
	"time"

	"axiomarium/internal/domain"
)

// sectionOrder fixes the grouping order of exported declarations.
var sectionOrder = []domain.Kind{
	domain.KindSort,
	domain.KindRelation,
	domain.KindCompound,
	domain.KindAxiom,
	domain.KindDefinition,
	domain.KindLemma,
	domain.KindTheorem,
}

// Entry is one exported declaration: name, rendered signature, and the
// proof citation list for proved kinds.
type Entry struct {
	Name      string       `json:"name" yaml:"name"`
	Kind      domain.Kind  `json:"kind" yaml:"kind"`
	State     domain.State `json:"state" yaml:"state"`
	Signature string       `json:"signature" yaml:"signature"`
	Citations []string     `json:"citations,omitempty" yaml:"citations,omitempty"`
}

// Section groups entries of one kind, preserving registration order.
type Section struct {
	Kind    domain.Kind `json:"kind" yaml:"kind"`
	Entries []Entry     `json:"entries" yaml:"entries"`
}

// Document is the exportable view of a registry: verified declarations
// grouped by kind in dependency (registration) order, with flagged
// declarations in a separate incomplete section, never merged.
type Document struct {
	Theory      string    `json:"theory,omitempty" yaml:"theory,omitempty"`
	GeneratedAt time.Time `json:"generated_at" yaml:"generated_at"`
	Verified    []Section `json:"verified" yaml:"verified"`
	Incomplete  []Entry   `json:"incomplete,omitempty" yaml:"incomplete,omitempty"`
}

// BuildDocument assembles a Document from declarations in registration
// order.
func BuildDocument(theory string, decls []*domain.Declaration) *Document {
	doc := &Document{
		Theory:      theory,
		GeneratedAt: time.Now().UTC(),
	}

	byKind := make(map[domain.Kind][]Entry)
	for _, decl := range decls {
		entry := Entry{
			Name:      decl.Name,
			Kind:      decl.Kind,
			State:     decl.State,
			Signature: Signature(decl),
			Citations: decl.Citations(),
		}
		if decl.State == domain.StateFlagged {
			doc.Incomplete = append(doc.Incomplete, entry)
			continue
		}
		byKind[decl.Kind] = append(byKind[decl.Kind], entry)
	}

	for _, kind := range sectionOrder {
		if entries := byKind[kind]; len(entries) > 0 {
			doc.Verified = append(doc.Verified, Section{Kind: kind, Entries: entries})
		}
	}
	return doc
}

// Signature renders a declaration's type or statement in compact form.
func Signature(decl *domain.Declaration) string {
	switch decl.Kind {
	case domain.KindSort:
		return "sort"
	case domain.KindRelation:
		rel := decl.Relation
		sig := fmt.Sprintf("relation(%s)", strings.Join(rel.ArgTypes, ", "))
		if len(rel.Capabilities) > 0 {
			tags := make([]string, 0, len(rel.Capabilities))
			for _, c := range rel.Capabilities {
				tags = append(tags, string(c))
			}
			sig += " [" + strings.Join(tags, ", ") + "]"
		}
		return sig
	case domain.KindCompound:
		c := decl.Compound
		fields := make([]string, 0, len(c.Fields))
		for _, f := range c.Fields {
			fields = append(fields, fmt.Sprintf("%s: %s", f.Name, f.Type))
		}
		sig := "record {" + strings.Join(fields, ", ") + "}"
		if n := len(c.Invariants); n > 0 {
			sig += fmt.Sprintf(" with %d invariant(s)", n)
		}
		return sig
	default:
		if decl.Statement != nil {
			return decl.Statement.String()
		}
		return ""
	}
}

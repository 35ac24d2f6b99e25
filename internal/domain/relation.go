package domain

// Capability tags a relation with an equivalence property. The tags are
// consumed by the registry's explicit scaffold composition, never by any
// automatic rewriting.
type Capability string

const (
	CapReflexive  Capability = "reflexive"
	CapSymmetric  Capability = "symmetric"
	CapTransitive Capability = "transitive"
)

// Capabilities lists every valid tag.
var Capabilities = []Capability{CapReflexive, CapSymmetric, CapTransitive}

// IsValid reports whether c is a known capability tag.
func (c Capability) IsValid() bool {
	for _, known := range Capabilities {
		if c == known {
			return true
		}
	}
	return false
}

// Relation is a named predicate over a fixed ordered list of argument
// types (sorts or compounds). Arity is fixed at declaration time.
type Relation struct {
	Name         string       `json:"name"`
	ArgTypes     []string     `json:"arg_types"`
	Capabilities []Capability `json:"capabilities,omitempty"`
}

// Arity returns the number of arguments the relation takes.
func (r *Relation) Arity() int { return len(r.ArgTypes) }

// HasCapability reports whether the relation carries the given tag.
func (r *Relation) HasCapability(c Capability) bool {
	for _, have := range r.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// IsEquivalence reports whether the relation carries all three equivalence
// tags.
func (r *Relation) IsEquivalence() bool {
	return r.HasCapability(CapReflexive) &&
		r.HasCapability(CapSymmetric) &&
		r.HasCapability(CapTransitive)
}

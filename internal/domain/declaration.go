package domain

import "time"

// Kind identifies what a declaration introduces into a theory.
type Kind string

const (
	KindSort       Kind = "sort"
	KindRelation   Kind = "relation"
	KindCompound   Kind = "compound"
	KindAxiom      Kind = "axiom"
	KindDefinition Kind = "definition"
	KindLemma      Kind = "lemma"
	KindTheorem    Kind = "theorem"
)

// StatementKinds lists the kinds that carry a Statement.
var StatementKinds = []Kind{KindAxiom, KindDefinition, KindLemma, KindTheorem}

// ProvedKinds lists the kinds that require a Proof.
var ProvedKinds = []Kind{KindDefinition, KindLemma, KindTheorem}

// IsProved reports whether k is a derived kind (carries a proof).
func (k Kind) IsProved() bool {
	for _, pk := range ProvedKinds {
		if k == pk {
			return true
		}
	}
	return false
}

// State is the verification state of a declaration.
//
// Declared is the entry state and is transient: registration validates
// atomically, so every stored entry is already Verified or Flagged and
// Declared is never observable through the registry. Axioms are trusted
// and move to Verified by fiat; a theorem with a complete proof over
// verified citations is Verified; a theorem with an admitted proof, a
// deferred citation, or a flagged citation is Flagged. Flagged is
// terminal: the registry never mutates an entry in place, so a repaired
// proof must be re-registered under a fresh name.
type State string

const (
	StateDeclared State = "declared"
	StateVerified State = "verified"
	StateFlagged  State = "flagged"
)

// Declaration is one append-only registry entry.
//
// Exactly one of Sort, Relation, Compound is set for structural kinds;
// Statement is set for axiom/definition/lemma/theorem, and Proof for the
// proved kinds.
type Declaration struct {
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	State        State     `json:"state"`
	Seq          int       `json:"seq"`
	RegisteredAt time.Time `json:"registered_at"`

	Sort      *Sort      `json:"sort,omitempty"`
	Relation  *Relation  `json:"relation,omitempty"`
	Compound  *Compound  `json:"compound,omitempty"`
	Statement *Statement `json:"statement,omitempty"`
	Proof     *Proof     `json:"proof,omitempty"`
}

// Citations returns the resolved citation names of the declaration's proof,
// or nil for unproved kinds.
func (d *Declaration) Citations() []string {
	if d.Proof == nil {
		return nil
	}
	return d.Proof.Citations()
}

// Sort is an opaque primitive type with no internal structure, only
// identity (e.g. Point).
type Sort struct {
	Name string `json:"name"`
}

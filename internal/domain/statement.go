package domain

import (
	"fmt"
	"sort"
	"strings"
)

// EqualityRelation is the builtin identity predicate. It is always in
// scope, takes two like-typed arguments, and never appears in Symbols().
const EqualityRelation = "eq"

// TypedVar is a universally quantified variable with its sort (or compound
// type).
type TypedVar struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// Atom applies a relation to variables. Negated expresses the complement,
// which is how distinctness obligations are written (eq(a, b) negated).
type Atom struct {
	Relation string   `json:"relation"`
	Args     []string `json:"args"`
	Negated  bool     `json:"negated,omitempty"`
}

func (a Atom) String() string {
	s := fmt.Sprintf("%s(%s)", a.Relation, strings.Join(a.Args, ", "))
	if a.Negated {
		return "!" + s
	}
	return s
}

// Statement is a universally quantified implication: for all Vars, the
// conjunction of Hypotheses entails the conjunction of Conclusions. An
// axiom or theorem with no hypotheses is an unconditional assertion.
type Statement struct {
	Vars        []TypedVar `json:"vars"`
	Hypotheses  []Atom     `json:"hypotheses,omitempty"`
	Conclusions []Atom     `json:"conclusions"`
}

// Atoms returns hypotheses followed by conclusions.
func (s *Statement) Atoms() []Atom {
	out := make([]Atom, 0, len(s.Hypotheses)+len(s.Conclusions))
	out = append(out, s.Hypotheses...)
	out = append(out, s.Conclusions...)
	return out
}

// Symbols returns the sorted, de-duplicated set of declared names the
// statement references: variable types and relation names. The builtin
// equality is excluded.
func (s *Statement) Symbols() []string {
	set := make(map[string]struct{})
	for _, v := range s.Vars {
		set[v.Type] = struct{}{}
	}
	for _, atom := range s.Atoms() {
		if atom.Relation != EqualityRelation {
			set[atom.Relation] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for name := range set {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Validate checks the statement's internal structure: at least one
// conclusion, unique variable names, and every atom argument bound by a
// quantified variable. Symbol resolution against a registry is a separate
// concern.
func (s *Statement) Validate() error {
	if len(s.Conclusions) == 0 {
		return fmt.Errorf("statement has no conclusions")
	}

	bound := make(map[string]struct{}, len(s.Vars))
	for _, v := range s.Vars {
		if v.Name == "" {
			return fmt.Errorf("statement binds a variable with no name")
		}
		if v.Type == "" {
			return fmt.Errorf("variable %q has no type", v.Name)
		}
		if _, dup := bound[v.Name]; dup {
			return fmt.Errorf("variable %q bound twice", v.Name)
		}
		bound[v.Name] = struct{}{}
	}

	for _, atom := range s.Atoms() {
		if atom.Relation == "" {
			return fmt.Errorf("atom has no relation")
		}
		if len(atom.Args) == 0 {
			return fmt.Errorf("atom %s has no arguments", atom.Relation)
		}
		for _, arg := range atom.Args {
			if _, ok := bound[arg]; !ok {
				return fmt.Errorf("atom %s references unbound variable %q", atom.Relation, arg)
			}
		}
	}
	return nil
}

// String renders the statement in a compact ASCII form, e.g.
// "forall x y z : Point. B(x, y, z) -> B(z, y, x)".
func (s *Statement) String() string {
	var b strings.Builder

	if len(s.Vars) > 0 {
		b.WriteString("forall ")
		// Group consecutive variables of the same type.
		for i := 0; i < len(s.Vars); {
			j := i
			for j < len(s.Vars) && s.Vars[j].Type == s.Vars[i].Type {
				j++
			}
			if i > 0 {
				b.WriteString(", ")
			}
			names := make([]string, 0, j-i)
			for _, v := range s.Vars[i:j] {
				names = append(names, v.Name)
			}
			fmt.Fprintf(&b, "%s : %s", strings.Join(names, " "), s.Vars[i].Type)
			i = j
		}
		b.WriteString(". ")
	}

	if len(s.Hypotheses) > 0 {
		b.WriteString(joinAtoms(s.Hypotheses))
		b.WriteString(" -> ")
	}
	b.WriteString(joinAtoms(s.Conclusions))
	return b.String()
}

func joinAtoms(atoms []Atom) string {
	parts := make([]string, 0, len(atoms))
	for _, a := range atoms {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " & ")
}

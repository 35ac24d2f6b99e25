// Package loader parses theory files: YAML documents listing a theory's
// declarations in registration order. The loader only parses; every
// registration rule is applied when the entries are fed through the
// service, so a theory file cannot bypass validation.
package loader

import (
	"fmt"
	"io"
	"os"

	"axiomarium/internal/domain"
	"axiomarium/internal/registry"

	"gopkg.in/yaml.v3"
)

// Theory is a parsed theory file.
type Theory struct {
	Version     int
	Name        string
	Description string
	Entries     []Entry // file order
}

// Entry is one declaration in a theory file. Exactly one field is set.
type Entry struct {
	Sort        *SortDecl
	Relation    *RelationDecl
	Compound    *CompoundDecl
	Axiom       *AxiomDecl
	Theorem     *TheoremDecl
	Equivalence *EquivalenceDecl
}

// SortDecl declares an opaque primitive type.
type SortDecl struct {
	Name string
}

// RelationDecl declares a predicate symbol.
type RelationDecl struct {
	Name         string
	ArgTypes     []string
	Capabilities []domain.Capability
}

// CompoundDecl declares a record schema with invariants.
type CompoundDecl struct {
	Name       string
	Fields     []domain.Field
	Invariants []domain.Statement
}

// AxiomDecl registers a trusted statement.
type AxiomDecl struct {
	Name      string
	Statement domain.Statement
}

// TheoremDecl registers a proved statement (definition, lemma, or theorem).
type TheoremDecl struct {
	Name      string
	Kind      domain.Kind
	Statement domain.Statement
	Proof     domain.Proof
}

// EquivalenceDecl requests scaffold composition for a tagged relation.
type EquivalenceDecl struct {
	Relation   string
	Primitives registry.EquivalencePrimitives
}

// YAML wire structures. Kept separate from the domain types so the file
// format can stay stable independently of internal representation.

type theoryYAML struct {
	Version      int               `yaml:"version"`
	Name         string            `yaml:"name"`
	Description  string            `yaml:"description,omitempty"`
	Declarations []declarationYAML `yaml:"declarations"`
}

type declarationYAML struct {
	Sort        string           `yaml:"sort,omitempty"`
	Relation    *relationYAML    `yaml:"relation,omitempty"`
	Compound    *compoundYAML    `yaml:"compound,omitempty"`
	Axiom       *axiomYAML       `yaml:"axiom,omitempty"`
	Theorem     *theoremYAML     `yaml:"theorem,omitempty"`
	Equivalence *equivalenceYAML `yaml:"equivalence,omitempty"`
}

type relationYAML struct {
	Name         string   `yaml:"name"`
	Args         []string `yaml:"args"`
	Capabilities []string `yaml:"capabilities,omitempty"`
}

type compoundYAML struct {
	Name       string          `yaml:"name"`
	Fields     []fieldYAML     `yaml:"fields"`
	Invariants []statementYAML `yaml:"invariants,omitempty"`
}

type fieldYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type axiomYAML struct {
	Name      string        `yaml:"name"`
	Statement statementYAML `yaml:"statement"`
}

type theoremYAML struct {
	Name      string        `yaml:"name"`
	Kind      string        `yaml:"kind,omitempty"` // definition|lemma|theorem, default theorem
	Statement statementYAML `yaml:"statement"`
	Proof     proofYAML     `yaml:"proof"`
}

type equivalenceYAML struct {
	Relation     string `yaml:"relation"`
	Symmetry     string `yaml:"symmetry"`
	Transitivity string `yaml:"transitivity"`
	Seed         string `yaml:"seed"`
}

type statementYAML struct {
	Vars        []varYAML  `yaml:"vars,omitempty"`
	Hypotheses  []atomYAML `yaml:"hypotheses,omitempty"`
	Conclusions []atomYAML `yaml:"conclusions"`
}

type varYAML struct {
	Name string `yaml:"name"`
	Type string `yaml:"type"`
}

type atomYAML struct {
	Relation string   `yaml:"relation"`
	Args     []string `yaml:"args"`
	Negated  bool     `yaml:"negated,omitempty"`
}

type proofYAML struct {
	Incomplete bool       `yaml:"incomplete,omitempty"`
	Steps      []stepYAML `yaml:"steps,omitempty"`
}

type stepYAML struct {
	Cites    string `yaml:"cites"`
	Deferred bool   `yaml:"deferred,omitempty"`
	Note     string `yaml:"note,omitempty"`
}

// LoadFile parses the theory file at path.
func LoadFile(path string) (*Theory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open theory file: %w", err)
	}
	defer f.Close()

	theory, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return theory, nil
}

// Parse reads a theory document from r.
func Parse(r io.Reader) (*Theory, error) {
	var ty theoryYAML
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ty); err != nil {
		return nil, fmt.Errorf("failed to parse theory YAML: %w", err)
	}

	if ty.Name == "" {
		return nil, fmt.Errorf("theory has no name")
	}

	theory := &Theory{
		Version:     ty.Version,
		Name:        ty.Name,
		Description: ty.Description,
	}

	for i, dy := range ty.Declarations {
		entry, err := convertEntry(dy)
		if err != nil {
			return nil, fmt.Errorf("declaration %d: %w", i, err)
		}
		theory.Entries = append(theory.Entries, entry)
	}
	return theory, nil
}

func convertEntry(dy declarationYAML) (Entry, error) {
	set := 0
	var entry Entry

	if dy.Sort != "" {
		set++
		entry.Sort = &SortDecl{Name: dy.Sort}
	}
	if dy.Relation != nil {
		set++
		caps := make([]domain.Capability, 0, len(dy.Relation.Capabilities))
		for _, c := range dy.Relation.Capabilities {
			cap := domain.Capability(c)
			if !cap.IsValid() {
				return Entry{}, fmt.Errorf("relation %q: unknown capability %q", dy.Relation.Name, c)
			}
			caps = append(caps, cap)
		}
		entry.Relation = &RelationDecl{
			Name:         dy.Relation.Name,
			ArgTypes:     dy.Relation.Args,
			Capabilities: caps,
		}
	}
	if dy.Compound != nil {
		set++
		fields := make([]domain.Field, 0, len(dy.Compound.Fields))
		for _, f := range dy.Compound.Fields {
			fields = append(fields, domain.Field{Name: f.Name, Type: f.Type})
		}
		invariants := make([]domain.Statement, 0, len(dy.Compound.Invariants))
		for _, sy := range dy.Compound.Invariants {
			invariants = append(invariants, convertStatement(sy))
		}
		entry.Compound = &CompoundDecl{
			Name:       dy.Compound.Name,
			Fields:     fields,
			Invariants: invariants,
		}
	}
	if dy.Axiom != nil {
		set++
		entry.Axiom = &AxiomDecl{
			Name:      dy.Axiom.Name,
			Statement: convertStatement(dy.Axiom.Statement),
		}
	}
	if dy.Theorem != nil {
		set++
		kind := domain.KindTheorem
		if dy.Theorem.Kind != "" {
			kind = domain.Kind(dy.Theorem.Kind)
			if !kind.IsProved() {
				return Entry{}, fmt.Errorf("theorem %q: invalid kind %q", dy.Theorem.Name, dy.Theorem.Kind)
			}
		}
		entry.Theorem = &TheoremDecl{
			Name:      dy.Theorem.Name,
			Kind:      kind,
			Statement: convertStatement(dy.Theorem.Statement),
			Proof:     convertProof(dy.Theorem.Proof),
		}
	}
	if dy.Equivalence != nil {
		set++
		entry.Equivalence = &EquivalenceDecl{
			Relation: dy.Equivalence.Relation,
			Primitives: registry.EquivalencePrimitives{
				Symmetry:     dy.Equivalence.Symmetry,
				Transitivity: dy.Equivalence.Transitivity,
				Seed:         dy.Equivalence.Seed,
			},
		}
	}

	if set != 1 {
		return Entry{}, fmt.Errorf("expected exactly one of sort, relation, compound, axiom, theorem, equivalence; got %d", set)
	}
	return entry, nil
}

func convertStatement(sy statementYAML) domain.Statement {
	stmt := domain.Statement{}
	for _, v := range sy.Vars {
		stmt.Vars = append(stmt.Vars, domain.TypedVar{Name: v.Name, Type: v.Type})
	}
	for _, a := range sy.Hypotheses {
		stmt.Hypotheses = append(stmt.Hypotheses, convertAtom(a))
	}
	for _, a := range sy.Conclusions {
		stmt.Conclusions = append(stmt.Conclusions, convertAtom(a))
	}
	return stmt
}

func convertAtom(ay atomYAML) domain.Atom {
	return domain.Atom{Relation: ay.Relation, Args: ay.Args, Negated: ay.Negated}
}

func convertProof(py proofYAML) domain.Proof {
	proof := domain.Proof{Incomplete: py.Incomplete}
	for _, s := range py.Steps {
		proof.Steps = append(proof.Steps, domain.ProofStep{
			Cites:    s.Cites,
			Deferred: s.Deferred,
			Note:     s.Note,
		})
	}
	return proof
}

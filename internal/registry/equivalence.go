package registry

import (
	"fmt"
	"strings"

	"axiomarium/internal/domain"
)

// EquivalencePrimitives names the minimal trusted base an equivalence
// scaffold is composed from: a symmetry axiom, a transitivity axiom, and
// one seeded instance. Reflexivity is derived from the three rather than
// assumed wholesale, keeping the primitive trust surface small.
type EquivalencePrimitives struct {
	Symmetry     string `json:"symmetry"`
	Transitivity string `json:"transitivity"`
	Seed         string `json:"seed"`
}

// ComposeEquivalence registers the reflexivity, symmetry, and transitivity
// lemmas for a relation tagged with all three equivalence capabilities.
// The relation must compare like-typed tuples: even arity with the first
// half of the argument types equal to the second half (a binary relation
// is the k=1 case).
//
// The three lemmas are registered as one atomic group; every check runs
// before the first registration.
func (r *Registry) ComposeEquivalence(relation string, prims EquivalencePrimitives) ([]*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	relDecl, ok := r.decls[relation]
	if !ok || relDecl.Kind != domain.KindRelation {
		return nil, domain.NewError(domain.ErrUnknownSymbol, relation, "not a declared relation")
	}
	rel := relDecl.Relation
	if !rel.IsEquivalence() {
		return nil, fmt.Errorf("relation %q is not tagged reflexive, symmetric, and transitive", relation)
	}
	if rel.Arity()%2 != 0 {
		return nil, fmt.Errorf("relation %q has odd arity %d; equivalence composition needs like-typed halves", relation, rel.Arity())
	}
	half := rel.Arity() / 2
	for i := 0; i < half; i++ {
		if rel.ArgTypes[i] != rel.ArgTypes[half+i] {
			return nil, fmt.Errorf("relation %q compares unlike types %q and %q", relation, rel.ArgTypes[i], rel.ArgTypes[half+i])
		}
	}

	for _, prim := range []string{prims.Symmetry, prims.Transitivity, prims.Seed} {
		cited, ok := r.decls[prim]
		if !ok || !citable(cited.Kind) {
			return nil, domain.NewError(domain.ErrUnknownSymbol, prim,
				"equivalence primitive for %q is not a registered statement", relation)
		}
	}

	base := strings.ToLower(relation)
	names := [3]string{base + "_reflexive", base + "_symmetric", base + "_transitive"}
	for _, name := range names {
		if err := r.checkFresh(name); err != nil {
			return nil, err
		}
	}

	xs := tupleVars("x", half, rel.ArgTypes[:half])
	ys := tupleVars("y", half, rel.ArgTypes[:half])
	zs := tupleVars("z", half, rel.ArgTypes[:half])

	lemmas := []struct {
		name  string
		stmt  domain.Statement
		steps []domain.ProofStep
	}{
		{
			name: names[0],
			stmt: domain.Statement{
				Vars:        xs,
				Conclusions: []domain.Atom{apply(relation, xs, xs)},
			},
			steps: []domain.ProofStep{
				{Cites: prims.Symmetry, Note: "orient the seeded instance"},
				{Cites: prims.Transitivity, Note: "chain with its mirror"},
				{Cites: prims.Seed},
			},
		},
		{
			name: names[1],
			stmt: domain.Statement{
				Vars:        concat(xs, ys),
				Hypotheses:  []domain.Atom{apply(relation, xs, ys)},
				Conclusions: []domain.Atom{apply(relation, ys, xs)},
			},
			steps: []domain.ProofStep{{Cites: prims.Symmetry}},
		},
		{
			name: names[2],
			stmt: domain.Statement{
				Vars:        concat(xs, ys, zs),
				Hypotheses:  []domain.Atom{apply(relation, xs, ys), apply(relation, ys, zs)},
				Conclusions: []domain.Atom{apply(relation, xs, zs)},
			},
			steps: []domain.ProofStep{{Cites: prims.Transitivity}},
		},
	}

	out := make([]*domain.Declaration, 0, len(lemmas))
	for _, l := range lemmas {
		decl, err := r.registerTheorem(domain.KindLemma, l.name, l.stmt, domain.Proof{Steps: l.steps})
		if err != nil {
			// Unreachable after the prechecks above; surface it rather than
			// leave a partial scaffold silently.
			return nil, fmt.Errorf("composing %q: %w", l.name, err)
		}
		out = append(out, decl)
	}
	return out, nil
}

func tupleVars(prefix string, n int, types []string) []domain.TypedVar {
	vars := make([]domain.TypedVar, n)
	for i := 0; i < n; i++ {
		name := prefix
		if n > 1 {
			name = fmt.Sprintf("%s%d", prefix, i+1)
		}
		vars[i] = domain.TypedVar{Name: name, Type: types[i]}
	}
	return vars
}

func apply(relation string, tuples ...[]domain.TypedVar) domain.Atom {
	var args []string
	for _, tuple := range tuples {
		for _, v := range tuple {
			args = append(args, v.Name)
		}
	}
	return domain.Atom{Relation: relation, Args: args}
}

func concat(tuples ...[]domain.TypedVar) []domain.TypedVar {
	var out []domain.TypedVar
	for _, tuple := range tuples {
		out = append(out, tuple...)
	}
	return out
}

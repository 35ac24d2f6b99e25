package registry

import (
	"errors"
	"testing"

	"axiomarium/internal/domain"
)

func congPrimitives() EquivalencePrimitives {
	return EquivalencePrimitives{
		Symmetry:     "cong_symmetry",
		Transitivity: "cong_transitivity",
		Seed:         "between_identity", // any citable statement works as seed
	}
}

func TestComposeEquivalence(t *testing.T) {
	r := newGeometry(t)
	before := r.Len()

	decls, err := r.ComposeEquivalence("D", congPrimitives())
	if err != nil {
		t.Fatalf("ComposeEquivalence() error = %v", err)
	}
	if len(decls) != 3 {
		t.Fatalf("got %d lemmas, want 3", len(decls))
	}
	if r.Len() != before+3 {
		t.Errorf("Len() = %d, want %d", r.Len(), before+3)
	}

	wantNames := []string{"d_reflexive", "d_symmetric", "d_transitive"}
	for i, decl := range decls {
		if decl.Name != wantNames[i] {
			t.Errorf("decls[%d].Name = %q, want %q", i, decl.Name, wantNames[i])
		}
		if decl.Kind != domain.KindLemma {
			t.Errorf("%s: Kind = %s, want lemma", decl.Name, decl.Kind)
		}
		if decl.State != domain.StateVerified {
			t.Errorf("%s: State = %s, want verified", decl.Name, decl.State)
		}
	}

	t.Run("reflexivity is derived from all three primitives", func(t *testing.T) {
		refl, err := r.Query("d_reflexive")
		if err != nil {
			t.Fatal(err)
		}
		cites := refl.Citations()
		if len(cites) != 3 {
			t.Fatalf("d_reflexive cites %v, want 3 primitives", cites)
		}
	})

	t.Run("statements range over point pairs", func(t *testing.T) {
		symm, err := r.Query("d_symmetric")
		if err != nil {
			t.Fatal(err)
		}
		want := "forall x1 x2 y1 y2 : Point. D(x1, x2, y1, y2) -> D(y1, y2, x1, x2)"
		if got := symm.Statement.String(); got != want {
			t.Errorf("statement = %q, want %q", got, want)
		}
	})
}

func TestComposeEquivalenceBinaryRelation(t *testing.T) {
	r := New()
	if _, err := r.DeclareSort("Line"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.DeclareRelation("Par", []string{"Line", "Line"},
		domain.CapReflexive, domain.CapSymmetric, domain.CapTransitive); err != nil {
		t.Fatal(err)
	}
	for _, name := range []string{"par_symmetry_ax", "par_transitivity_ax", "par_seed_ax"} {
		if _, err := r.RegisterAxiom(name, domain.Statement{
			Vars:        []domain.TypedVar{{Name: "l", Type: "Line"}, {Name: "m", Type: "Line"}},
			Hypotheses:  []domain.Atom{{Relation: "Par", Args: []string{"l", "m"}}},
			Conclusions: []domain.Atom{{Relation: "Par", Args: []string{"m", "l"}}},
		}); err != nil {
			t.Fatal(err)
		}
	}

	decls, err := r.ComposeEquivalence("Par", EquivalencePrimitives{
		Symmetry:     "par_symmetry_ax",
		Transitivity: "par_transitivity_ax",
		Seed:         "par_seed_ax",
	})
	if err != nil {
		t.Fatalf("ComposeEquivalence() error = %v", err)
	}

	// k=1 uses plain x, y, z variable names.
	refl := decls[0]
	if got := refl.Statement.String(); got != "forall x : Line. Par(x, x)" {
		t.Errorf("reflexive statement = %q, want %q", got, "forall x : Line. Par(x, x)")
	}
}

func TestComposeEquivalenceRejections(t *testing.T) {
	t.Run("relation missing tags", func(t *testing.T) {
		r := newGeometry(t)
		if _, err := r.ComposeEquivalence("B", congPrimitives()); err == nil {
			t.Error("ComposeEquivalence() on untagged relation succeeded")
		}
	})

	t.Run("odd arity", func(t *testing.T) {
		r := newGeometry(t)
		if _, err := r.DeclareRelation("Mid", []string{"Point", "Point", "Point"},
			domain.CapReflexive, domain.CapSymmetric, domain.CapTransitive); err != nil {
			t.Fatal(err)
		}
		if _, err := r.ComposeEquivalence("Mid", congPrimitives()); err == nil {
			t.Error("ComposeEquivalence() on odd arity succeeded")
		}
	})

	t.Run("unlike halves", func(t *testing.T) {
		r := newGeometry(t)
		if _, err := r.DeclareSort("Line"); err != nil {
			t.Fatal(err)
		}
		if _, err := r.DeclareRelation("Mixed", []string{"Point", "Line"},
			domain.CapReflexive, domain.CapSymmetric, domain.CapTransitive); err != nil {
			t.Fatal(err)
		}
		if _, err := r.ComposeEquivalence("Mixed", congPrimitives()); err == nil {
			t.Error("ComposeEquivalence() on unlike halves succeeded")
		}
	})

	t.Run("unknown primitive", func(t *testing.T) {
		r := newGeometry(t)
		prims := congPrimitives()
		prims.Seed = "no_such_axiom"
		if _, err := r.ComposeEquivalence("D", prims); !errors.Is(err, domain.ErrUnknownSymbol) {
			t.Errorf("error = %v, want ErrUnknownSymbol", err)
		}
	})

	t.Run("lemma name collision leaves no partial scaffold", func(t *testing.T) {
		r := newGeometry(t)
		// Occupy the last of the three generated names.
		if _, err := r.RegisterTheorem(domain.KindLemma, "d_transitive", betweenSymmetry(),
			domain.Proof{Steps: []domain.ProofStep{{Cites: "between_identity"}}}); err != nil {
			t.Fatal(err)
		}

		if _, err := r.ComposeEquivalence("D", congPrimitives()); !errors.Is(err, domain.ErrDuplicateName) {
			t.Fatalf("error = %v, want ErrDuplicateName", err)
		}
		if _, err := r.Query("d_reflexive"); !errors.Is(err, domain.ErrNotFound) {
			t.Errorf("d_reflexive registered despite collision")
		}
	})
}

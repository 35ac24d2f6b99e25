package domain

import (
	"errors"
	"testing"
)

func TestCompoundValidateInvariants(t *testing.T) {
	segment := func(invariants ...Statement) *Compound {
		return &Compound{
			Name: "Segment",
			Fields: []Field{
				{Name: "a", Type: "Point"},
				{Name: "b", Type: "Point"},
			},
			Invariants: invariants,
		}
	}

	t.Run("invariant over fields", func(t *testing.T) {
		c := segment(Statement{
			Conclusions: []Atom{{Relation: EqualityRelation, Args: []string{"a", "b"}, Negated: true}},
		})
		if err := c.ValidateInvariants(); err != nil {
			t.Errorf("ValidateInvariants() error = %v", err)
		}
	})

	t.Run("invariant references non-field", func(t *testing.T) {
		c := segment(Statement{
			Conclusions: []Atom{{Relation: EqualityRelation, Args: []string{"a", "c"}, Negated: true}},
		})
		err := c.ValidateInvariants()
		if !errors.Is(err, ErrInvalidInvariant) {
			t.Errorf("ValidateInvariants() error = %v, want ErrInvalidInvariant", err)
		}
	})

	t.Run("invariant binds non-field", func(t *testing.T) {
		c := segment(Statement{
			Vars:        []TypedVar{{Name: "w", Type: "Point"}},
			Conclusions: []Atom{{Relation: EqualityRelation, Args: []string{"a", "b"}}},
		})
		err := c.ValidateInvariants()
		if !errors.Is(err, ErrInvalidInvariant) {
			t.Errorf("ValidateInvariants() error = %v, want ErrInvalidInvariant", err)
		}
	})
}

func TestRegistryErrorMessage(t *testing.T) {
	err := NewError(ErrUnknownSort, "Foo", "argument type of relation %q is not declared", "B")
	if !errors.Is(err, ErrUnknownSort) {
		t.Fatalf("errors.Is(err, ErrUnknownSort) = false")
	}
	want := `unknown sort: "Foo": argument type of relation "B" is not declared`
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

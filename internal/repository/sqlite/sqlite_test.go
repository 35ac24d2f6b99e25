package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"axiomarium/internal/domain"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func sampleDecl(seq int, name string, kind domain.Kind, state domain.State) *domain.Declaration {
	decl := &domain.Declaration{
		Name:         name,
		Kind:         kind,
		State:        state,
		Seq:          seq,
		RegisteredAt: time.Now(),
	}
	switch kind {
	case domain.KindSort:
		decl.Sort = &domain.Sort{Name: name}
	case domain.KindAxiom, domain.KindTheorem:
		decl.Statement = &domain.Statement{
			Vars:        []domain.TypedVar{{Name: "x", Type: "Point"}},
			Conclusions: []domain.Atom{{Relation: "eq", Args: []string{"x", "x"}}},
		}
		if kind == domain.KindTheorem {
			decl.Proof = &domain.Proof{Steps: []domain.ProofStep{{Cites: "ax"}}}
		}
	}
	return decl
}

func TestAppendAndList(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	decls := []*domain.Declaration{
		sampleDecl(0, "Point", domain.KindSort, domain.StateVerified),
		sampleDecl(1, "between_identity", domain.KindAxiom, domain.StateVerified),
		sampleDecl(2, "gapped", domain.KindTheorem, domain.StateFlagged),
	}
	for _, decl := range decls {
		if err := repo.Append(ctx, decl); err != nil {
			t.Fatalf("Append(%s) error = %v", decl.Name, err)
		}
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != len(decls) {
		t.Fatalf("List() returned %d declarations, want %d", len(stored), len(decls))
	}

	for i, got := range stored {
		want := decls[i]
		if got.Seq != want.Seq || got.Name != want.Name || got.Kind != want.Kind || got.State != want.State {
			t.Errorf("stored[%d] = {%d %s %s %s}, want {%d %s %s %s}",
				i, got.Seq, got.Name, got.Kind, got.State,
				want.Seq, want.Name, want.Kind, want.State)
		}
	}

	// The JSON blob must round-trip nested structures.
	thm := stored[2]
	if thm.Statement == nil || thm.Proof == nil {
		t.Fatalf("theorem lost statement or proof: %+v", thm)
	}
	if thm.Proof.Steps[0].Cites != "ax" {
		t.Errorf("proof citation = %q, want %q", thm.Proof.Steps[0].Cites, "ax")
	}
}

func TestAppendDuplicateName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, sampleDecl(0, "Point", domain.KindSort, domain.StateVerified)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, sampleDecl(1, "Point", domain.KindSort, domain.StateVerified)); err == nil {
		t.Error("Append() with duplicate name succeeded, want UNIQUE violation")
	}
}

func TestCountByState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i, state := range []domain.State{
		domain.StateVerified, domain.StateVerified, domain.StateFlagged,
	} {
		decl := sampleDecl(i, string(rune('a'+i)), domain.KindAxiom, state)
		if err := repo.Append(ctx, decl); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := repo.CountByState(ctx)
	if err != nil {
		t.Fatalf("CountByState() error = %v", err)
	}
	if counts[domain.StateVerified] != 2 || counts[domain.StateFlagged] != 1 {
		t.Errorf("counts = %v, want verified:2 flagged:1", counts)
	}
}

func TestReplaceAll(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	if err := repo.Append(ctx, sampleDecl(0, "Point", domain.KindSort, domain.StateVerified)); err != nil {
		t.Fatal(err)
	}
	if err := repo.Append(ctx, sampleDecl(1, "between_identity", domain.KindAxiom, domain.StateVerified)); err != nil {
		t.Fatal(err)
	}

	// Names from the old log may be reused by the replacement.
	replacement := []*domain.Declaration{
		sampleDecl(0, "Point", domain.KindSort, domain.StateVerified),
		sampleDecl(1, "Line", domain.KindSort, domain.StateVerified),
	}
	if err := repo.ReplaceAll(ctx, replacement); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Fatalf("List() returned %d declarations, want 2", len(stored))
	}
	if stored[1].Name != "Line" {
		t.Errorf("stored[1].Name = %q, want %q", stored[1].Name, "Line")
	}

	t.Run("empty replacement drops the log", func(t *testing.T) {
		if err := repo.ReplaceAll(ctx, nil); err != nil {
			t.Fatalf("ReplaceAll(nil) error = %v", err)
		}
		stored, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(stored) != 0 {
			t.Errorf("List() returned %d declarations, want 0", len(stored))
		}
	})

	t.Run("failed replacement keeps the old log", func(t *testing.T) {
		if err := repo.Append(ctx, sampleDecl(0, "Point", domain.KindSort, domain.StateVerified)); err != nil {
			t.Fatal(err)
		}

		// A duplicate name inside the replacement violates UNIQUE and
		// must roll the whole swap back.
		bad := []*domain.Declaration{
			sampleDecl(0, "Circle", domain.KindSort, domain.StateVerified),
			sampleDecl(1, "Circle", domain.KindSort, domain.StateVerified),
		}
		if err := repo.ReplaceAll(ctx, bad); err == nil {
			t.Fatal("ReplaceAll() with duplicate names succeeded, want UNIQUE violation")
		}

		stored, err := repo.List(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(stored) != 1 || stored[0].Name != "Point" {
			t.Errorf("log after failed replacement = %+v, want the original Point row", stored)
		}
	})
}

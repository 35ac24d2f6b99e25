package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"axiomarium/internal/codec"
	"axiomarium/internal/domain"
	"axiomarium/internal/loader"
	"axiomarium/internal/registry"
	"axiomarium/internal/repository"
)

// TheoryService coordinates the registry, the persistent declaration log,
// and event publishing. All registration traffic goes through it so the
// log and the in-memory registry stay in step.
type TheoryService struct {
	mu       sync.RWMutex
	reg      *registry.Registry
	theory   string
	repo     repository.Repository
	eventBus *EventBus
	metrics  *Metrics
}

// NewTheoryService creates a theory service. repo and metrics may be nil
// for purely in-memory use.
func NewTheoryService(repo repository.Repository, eventBus *EventBus, metrics *Metrics) *TheoryService {
	return &TheoryService{
		reg:      registry.New(),
		repo:     repo,
		eventBus: eventBus,
		metrics:  metrics,
	}
}

// TheoryName returns the name of the loaded theory, if any.
func (s *TheoryService) TheoryName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theory
}

// SetTheoryName records the name of the loaded theory.
func (s *TheoryService) SetTheoryName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.theory = name
}

// Replay rebuilds the registry from the persistent log. Every stored
// declaration is re-run through registration, so a log that no longer
// validates fails loudly instead of resurrecting silently.
func (s *TheoryService) Replay(ctx context.Context) (int, error) {
	if s.repo == nil {
		return 0, nil
	}

	stored, err := s.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to read declaration log: %w", err)
	}

	reg := registry.New()
	for i := range stored {
		d := &stored[i]
		decl, err := replayOne(reg, d)
		// ErrProofGap only rides along with a registered declaration;
		// any error without one means the log no longer validates.
		if decl == nil {
			return 0, fmt.Errorf("log entry %d (%s): %w", d.Seq, d.Name, err)
		}
		if err != nil && !errors.Is(err, domain.ErrProofGap) {
			return 0, fmt.Errorf("log entry %d (%s): %w", d.Seq, d.Name, err)
		}
		decl.RegisteredAt = d.RegisteredAt
	}

	s.mu.Lock()
	s.reg = reg
	s.mu.Unlock()
	s.syncSizeMetric()
	return len(stored), nil
}

func replayOne(reg *registry.Registry, d *domain.Declaration) (*domain.Declaration, error) {
	switch d.Kind {
	case domain.KindSort:
		return reg.DeclareSort(d.Name)
	case domain.KindRelation:
		return reg.DeclareRelation(d.Name, d.Relation.ArgTypes, d.Relation.Capabilities...)
	case domain.KindCompound:
		return reg.DeclareCompound(d.Name, d.Compound.Fields, d.Compound.Invariants)
	case domain.KindAxiom:
		return reg.RegisterAxiom(d.Name, *d.Statement)
	default:
		return reg.RegisterTheorem(d.Kind, d.Name, *d.Statement, *d.Proof)
	}
}

// DeclareSort introduces a new opaque primitive type.
func (s *TheoryService) DeclareSort(ctx context.Context, name string) (*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decl, err := reg.DeclareSort(name)
	if err != nil {
		s.metrics.observeError(err)
		return nil, err
	}
	return decl, s.persist(ctx, decl)
}

// DeclareRelation introduces a predicate symbol.
func (s *TheoryService) DeclareRelation(ctx context.Context, name string, argTypes []string, caps ...domain.Capability) (*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decl, err := reg.DeclareRelation(name, argTypes, caps...)
	if err != nil {
		s.metrics.observeError(err)
		return nil, err
	}
	return decl, s.persist(ctx, decl)
}

// DeclareCompound introduces a record schema with invariants.
func (s *TheoryService) DeclareCompound(ctx context.Context, name string, fields []domain.Field, invariants []domain.Statement) (*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decl, err := reg.DeclareCompound(name, fields, invariants)
	if err != nil {
		s.metrics.observeError(err)
		return nil, err
	}
	return decl, s.persist(ctx, decl)
}

// RegisterAxiom adds a trusted statement.
func (s *TheoryService) RegisterAxiom(ctx context.Context, name string, stmt domain.Statement) (*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decl, err := reg.RegisterAxiom(name, stmt)
	if err != nil {
		s.metrics.observeError(err)
		return nil, err
	}
	return decl, s.persist(ctx, decl)
}

// RegisterTheorem adds a proved statement. When the proof carries gaps the
// declaration is still registered and persisted in the flagged state; the
// returned error then wraps the proof-gap condition so the caller can
// surface it alongside the valid declaration.
func (s *TheoryService) RegisterTheorem(ctx context.Context, kind domain.Kind, name string, stmt domain.Statement, proof domain.Proof) (*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decl, regErr := reg.RegisterTheorem(kind, name, stmt, proof)
	if decl == nil {
		s.metrics.observeError(regErr)
		return nil, regErr
	}

	if err := s.persist(ctx, decl); err != nil {
		return nil, err
	}
	return decl, regErr
}

// ComposeEquivalence builds and registers the equivalence scaffold for a
// tagged relation from its primitive lemmas.
func (s *TheoryService) ComposeEquivalence(ctx context.Context, relation string, prims registry.EquivalencePrimitives) ([]*domain.Declaration, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	decls, err := reg.ComposeEquivalence(relation, prims)
	if err != nil {
		s.metrics.observeError(err)
		return nil, err
	}

	names := make([]string, 0, len(decls))
	for _, decl := range decls {
		if err := s.persist(ctx, decl); err != nil {
			return nil, err
		}
		names = append(names, decl.Name)
	}
	if s.eventBus != nil {
		s.eventBus.Publish(Event{
			Type:    EventEquivalenceComposed,
			Payload: map[string]interface{}{"relation": relation, "lemmas": names},
		})
	}
	return decls, nil
}

// Query returns the declaration registered under name.
func (s *TheoryService) Query(name string) (*domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Query(name)
}

// Declarations returns every declaration in registration order.
func (s *TheoryService) Declarations() []*domain.Declaration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Declarations()
}

// Closure returns the transitive proof dependencies of name.
func (s *TheoryService) Closure(name string) ([]*domain.Declaration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Closure(name)
}

// CountByState tallies declarations per verification state.
func (s *TheoryService) CountByState() map[domain.State]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.CountByState()
}

// LoadResult summarizes a theory file load.
type LoadResult struct {
	Theory     string   `json:"theory"`
	Registered int      `json:"registered"`
	Flagged    []string `json:"flagged,omitempty"`
}

// LoadTheory applies a parsed theory file to the live registry, entry by
// entry. Proof gaps flag the declaration and continue; any other failure
// aborts the load at the offending entry.
func (s *TheoryService) LoadTheory(ctx context.Context, theory *loader.Theory) (*LoadResult, error) {
	s.mu.RLock()
	reg := s.reg
	s.mu.RUnlock()

	result := &LoadResult{Theory: theory.Name}
	for i, entry := range theory.Entries {
		decls, err := applyEntry(reg, entry)
		// A proof gap is only tolerable when the entry actually
		// registered; an err with no declarations is a hard rejection.
		if err != nil && (len(decls) == 0 || !errors.Is(err, domain.ErrProofGap)) {
			s.metrics.observeError(err)
			return nil, fmt.Errorf("theory %q declaration %d: %w", theory.Name, i, err)
		}
		for _, decl := range decls {
			if perr := s.persist(ctx, decl); perr != nil {
				return nil, perr
			}
			result.Registered++
			if decl.State == domain.StateFlagged {
				result.Flagged = append(result.Flagged, decl.Name)
			}
		}
	}

	s.SetTheoryName(theory.Name)
	return result, nil
}

// Reload rebuilds the registry from a theory file. The file is applied to
// a scratch registry first; the live registry and the persistent log are
// only replaced once the whole file has validated.
func (s *TheoryService) Reload(ctx context.Context, theory *loader.Theory) (*LoadResult, error) {
	scratch := registry.New()
	result := &LoadResult{Theory: theory.Name}
	for i, entry := range theory.Entries {
		decls, err := applyEntry(scratch, entry)
		if err != nil && (len(decls) == 0 || !errors.Is(err, domain.ErrProofGap)) {
			s.metrics.observeError(err)
			return nil, fmt.Errorf("theory %q declaration %d: %w", theory.Name, i, err)
		}
		for _, decl := range decls {
			result.Registered++
			if decl.State == domain.StateFlagged {
				result.Flagged = append(result.Flagged, decl.Name)
			}
		}
	}

	s.mu.Lock()
	s.reg = scratch
	s.theory = theory.Name
	s.mu.Unlock()

	if s.repo != nil {
		if err := s.repo.ReplaceAll(ctx, scratch.Declarations()); err != nil {
			return nil, fmt.Errorf("failed to replace declaration log: %w", err)
		}
	}

	s.syncSizeMetric()
	if s.eventBus != nil {
		s.eventBus.Publish(Event{
			Type:    EventTheoryReloaded,
			Payload: result,
		})
	}
	return result, nil
}

// applyEntry registers one theory-file entry. A returned ErrProofGap
// accompanies successfully registered (but flagged) declarations.
func applyEntry(reg *registry.Registry, entry loader.Entry) ([]*domain.Declaration, error) {
	switch {
	case entry.Sort != nil:
		decl, err := reg.DeclareSort(entry.Sort.Name)
		return wrapOne(decl, err)
	case entry.Relation != nil:
		decl, err := reg.DeclareRelation(entry.Relation.Name, entry.Relation.ArgTypes, entry.Relation.Capabilities...)
		return wrapOne(decl, err)
	case entry.Compound != nil:
		decl, err := reg.DeclareCompound(entry.Compound.Name, entry.Compound.Fields, entry.Compound.Invariants)
		return wrapOne(decl, err)
	case entry.Axiom != nil:
		decl, err := reg.RegisterAxiom(entry.Axiom.Name, entry.Axiom.Statement)
		return wrapOne(decl, err)
	case entry.Theorem != nil:
		decl, err := reg.RegisterTheorem(entry.Theorem.Kind, entry.Theorem.Name, entry.Theorem.Statement, entry.Theorem.Proof)
		return wrapOne(decl, err)
	case entry.Equivalence != nil:
		return reg.ComposeEquivalence(entry.Equivalence.Relation, entry.Equivalence.Primitives)
	default:
		return nil, fmt.Errorf("empty theory entry")
	}
}

func wrapOne(decl *domain.Declaration, err error) ([]*domain.Declaration, error) {
	if decl == nil {
		return nil, err
	}
	return []*domain.Declaration{decl}, err
}

// Export serializes the registry in the requested format.
func (s *TheoryService) Export(format string, w io.Writer) error {
	exporter, err := codec.ExporterFor(format)
	if err != nil {
		return err
	}

	doc := codec.BuildDocument(s.TheoryName(), s.Declarations())
	return exporter.Export(doc, w)
}

// persist appends the declaration to the log, publishes the registration
// event, and updates metrics.
func (s *TheoryService) persist(ctx context.Context, decl *domain.Declaration) error {
	if s.repo != nil {
		if err := s.repo.Append(ctx, decl); err != nil {
			return fmt.Errorf("failed to persist %q: %w", decl.Name, err)
		}
	}

	s.metrics.observe(decl)
	s.syncSizeMetric()

	if s.eventBus != nil {
		eventType := EventDeclarationRegistered
		if decl.State == domain.StateFlagged {
			eventType = EventDeclarationFlagged
		}
		s.eventBus.Publish(Event{
			Type: eventType,
			Payload: map[string]string{
				"name":  decl.Name,
				"kind":  string(decl.Kind),
				"state": string(decl.State),
			},
		})
	}
	return nil
}

func (s *TheoryService) syncSizeMetric() {
	if s.metrics == nil {
		return
	}
	s.mu.RLock()
	n := s.reg.Len()
	s.mu.RUnlock()
	s.metrics.RegistrySize.Set(float64(n))
}

// Package registry implements the append-only declaration registry: the
// dependency-ordered store of sorts, relations, compound schemas, axioms,
// and proved statements, with well-formedness validation on every
// registration.
//
// Registration is atomic: every validation runs before any mutation, so a
// failed call leaves the registry unchanged. Entries are never mutated or
// retracted once added.
package registry

import (
	"sort"
	"sync"
	"time"

	"axiomarium/internal/domain"
)

// Registry is the in-memory declaration store. A single writer appends;
// any number of readers may query concurrently.
type Registry struct {
	mu        sync.RWMutex
	decls     map[string]*domain.Declaration
	order     []string
	citations map[string][]string // resolved proof edges, by declaration name
	pending   map[string][]string // deferred edges; targets may be unregistered
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{
		decls:     make(map[string]*domain.Declaration),
		citations: make(map[string][]string),
		pending:   make(map[string][]string),
	}
}

// Len returns the number of registered declarations.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Query returns the declaration registered under name.
func (r *Registry) Query(name string) (*domain.Declaration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	decl, ok := r.decls[name]
	if !ok {
		return nil, domain.NewError(domain.ErrNotFound, name, "no declaration registered")
	}
	return decl, nil
}

// Declarations returns every declaration in registration order.
func (r *Registry) Declarations() []*domain.Declaration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*domain.Declaration, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.decls[name])
	}
	return out
}

// CountByState tallies declarations per verification state.
func (r *Registry) CountByState() map[domain.State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	counts := make(map[domain.State]int)
	for _, name := range r.order {
		counts[r.decls[name].State]++
	}
	return counts
}

// DeclareSort introduces a new opaque primitive type.
func (r *Registry) DeclareSort(name string) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFresh(name); err != nil {
		return nil, err
	}

	decl := &domain.Declaration{
		Name:  name,
		Kind:  domain.KindSort,
		State: domain.StateVerified,
		Sort:  &domain.Sort{Name: name},
	}
	r.append(decl)
	return decl, nil
}

// DeclareRelation introduces a predicate symbol over previously declared
// sorts or compound types.
func (r *Registry) DeclareRelation(name string, argTypes []string, caps ...domain.Capability) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFresh(name); err != nil {
		return nil, err
	}
	if len(argTypes) == 0 {
		return nil, domain.NewError(domain.ErrUnknownSort, name, "relation declares no arguments")
	}
	for _, argType := range argTypes {
		if !r.typeDeclared(argType) {
			return nil, domain.NewError(domain.ErrUnknownSort, argType,
				"argument type of relation %q is not declared", name)
		}
	}
	for _, c := range caps {
		if !c.IsValid() {
			return nil, domain.NewError(domain.ErrUnknownSymbol, string(c),
				"unknown capability on relation %q", name)
		}
	}

	decl := &domain.Declaration{
		Name:  name,
		Kind:  domain.KindRelation,
		State: domain.StateVerified,
		Relation: &domain.Relation{
			Name:         name,
			ArgTypes:     append([]string(nil), argTypes...),
			Capabilities: append([]domain.Capability(nil), caps...),
		},
	}
	r.append(decl)
	return decl, nil
}

// DeclareCompound introduces a record type whose fields are declared
// sorts or compounds and whose invariants are proof obligations over
// those fields.
func (r *Registry) DeclareCompound(name string, fields []domain.Field, invariants []domain.Statement) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFresh(name); err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, domain.NewError(domain.ErrUnknownSort, name, "compound declares no fields")
	}

	seen := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		if _, dup := seen[f.Name]; dup {
			return nil, domain.NewError(domain.ErrDuplicateName, f.Name,
				"field declared twice on compound %q", name)
		}
		seen[f.Name] = struct{}{}
		if !r.typeDeclared(f.Type) {
			return nil, domain.NewError(domain.ErrUnknownSort, f.Type,
				"field %q of compound %q has undeclared type", f.Name, name)
		}
	}

	compound := &domain.Compound{
		Name:       name,
		Fields:     append([]domain.Field(nil), fields...),
		Invariants: append([]domain.Statement(nil), invariants...),
	}
	if err := compound.ValidateInvariants(); err != nil {
		return nil, err
	}
	for i := range compound.Invariants {
		for _, atom := range compound.Invariants[i].Atoms() {
			if err := r.checkAtomRelation(atom); err != nil {
				return nil, err
			}
		}
	}

	decl := &domain.Declaration{
		Name:     name,
		Kind:     domain.KindCompound,
		State:    domain.StateVerified,
		Compound: compound,
	}
	r.append(decl)
	return decl, nil
}

// RegisterAxiom adds an unproved statement as a trusted primitive. Axioms
// are Verified by fiat.
func (r *Registry) RegisterAxiom(name string, stmt domain.Statement) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkFresh(name); err != nil {
		return nil, err
	}
	if err := r.checkStatement(&stmt); err != nil {
		return nil, err
	}

	decl := &domain.Declaration{
		Name:      name,
		Kind:      domain.KindAxiom,
		State:     domain.StateVerified,
		Statement: &stmt,
	}
	r.append(decl)
	return decl, nil
}

// RegisterTheorem adds a derived statement (definition, lemma, or theorem)
// whose proof cites already-registered declarations.
//
// A structurally invalid proof (no steps without being admitted, or a
// step citing nothing) is rejected with ErrMalformedProof and nothing is
// registered. A proof that is admitted or leans on deferred citations is
// still registered, in state Flagged, and the call reports ErrProofGap so
// the caller can surface the gap; the returned declaration is valid
// either way. A theorem citing a Flagged declaration is itself Flagged.
func (r *Registry) RegisterTheorem(kind domain.Kind, name string, stmt domain.Statement, proof domain.Proof) (*domain.Declaration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.registerTheorem(kind, name, stmt, proof)
}

// registerTheorem requires r.mu held for writing.
func (r *Registry) registerTheorem(kind domain.Kind, name string, stmt domain.Statement, proof domain.Proof) (*domain.Declaration, error) {
	if !kind.IsProved() {
		return nil, domain.NewError(domain.ErrUnknownSymbol, string(kind),
			"kind is not a proved declaration kind")
	}
	if err := r.checkFresh(name); err != nil {
		return nil, err
	}
	if err := r.checkStatement(&stmt); err != nil {
		return nil, err
	}
	if err := proof.Validate(); err != nil {
		return nil, domain.NewError(domain.ErrMalformedProof, name, "%v", err)
	}

	resolved := proof.Citations()
	deferred := proof.DeferredCitations()

	flagged := proof.HasGaps()
	for _, cite := range resolved {
		cited, ok := r.decls[cite]
		if !ok {
			if cite == name {
				// A self-citation is a cycle, not a missing symbol.
				return nil, cycleError([]string{name, name})
			}
			return nil, domain.NewError(domain.ErrUnknownSymbol, cite,
				"proof of %q cites an unregistered declaration", name)
		}
		if !citable(cited.Kind) {
			return nil, domain.NewError(domain.ErrUnknownSymbol, cite,
				"proof of %q cites a %s; only axioms, definitions, lemmas, and theorems are citable",
				name, cited.Kind)
		}
		if cited.State == domain.StateFlagged {
			flagged = true
		}
	}

	if path := r.findCycle(name, append(append([]string(nil), resolved...), deferred...)); path != nil {
		return nil, cycleError(path)
	}

	state := domain.StateVerified
	if flagged {
		state = domain.StateFlagged
	}

	decl := &domain.Declaration{
		Name:      name,
		Kind:      kind,
		State:     state,
		Statement: &stmt,
		Proof:     &proof,
	}
	r.append(decl)
	r.citations[name] = resolved
	r.pending[name] = deferred

	if proof.HasGaps() {
		return decl, domain.NewError(domain.ErrProofGap, name,
			"registered with an incomplete proof; flagged until re-registered under a fresh name")
	}
	return decl, nil
}

// Closure returns every declaration name transitively depends on through
// resolved proof citations, in registration order. The result never
// contains name itself and is recomputed on each call.
func (r *Registry) Closure(name string) ([]*domain.Declaration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.decls[name]; !ok {
		return nil, domain.NewError(domain.ErrNotFound, name, "no declaration registered")
	}

	visited := make(map[string]struct{})
	var walk func(n string)
	walk = func(n string) {
		for _, cite := range r.citations[n] {
			if _, done := visited[cite]; done {
				continue
			}
			visited[cite] = struct{}{}
			walk(cite)
		}
	}
	walk(name)

	out := make([]*domain.Declaration, 0, len(visited))
	for member := range visited {
		out = append(out, r.decls[member])
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

// Internal helpers; all require r.mu held.

func (r *Registry) checkFresh(name string) error {
	if name == "" {
		return domain.NewError(domain.ErrDuplicateName, name, "declaration name is required")
	}
	if name == domain.EqualityRelation {
		return domain.NewError(domain.ErrDuplicateName, name, "name is reserved for builtin equality")
	}
	if _, exists := r.decls[name]; exists {
		return domain.NewError(domain.ErrDuplicateName, name, "already registered")
	}
	return nil
}

func (r *Registry) typeDeclared(name string) bool {
	decl, ok := r.decls[name]
	if !ok {
		return false
	}
	return decl.Kind == domain.KindSort || decl.Kind == domain.KindCompound
}

// checkStatement validates structure and resolves every referenced symbol.
func (r *Registry) checkStatement(stmt *domain.Statement) error {
	if err := stmt.Validate(); err != nil {
		return domain.NewError(domain.ErrUnknownSymbol, "", "malformed statement: %v", err)
	}
	for _, v := range stmt.Vars {
		if !r.typeDeclared(v.Type) {
			return domain.NewError(domain.ErrUnknownSymbol, v.Type,
				"variable %q has undeclared type", v.Name)
		}
	}
	for _, atom := range stmt.Atoms() {
		if err := r.checkAtomRelation(atom); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) checkAtomRelation(atom domain.Atom) error {
	if atom.Relation == domain.EqualityRelation {
		if len(atom.Args) != 2 {
			return domain.NewError(domain.ErrUnknownSymbol, domain.EqualityRelation,
				"equality takes 2 arguments, got %d", len(atom.Args))
		}
		return nil
	}

	decl, ok := r.decls[atom.Relation]
	if !ok || decl.Kind != domain.KindRelation {
		return domain.NewError(domain.ErrUnknownSymbol, atom.Relation,
			"atom references an undeclared relation")
	}
	if got, want := len(atom.Args), decl.Relation.Arity(); got != want {
		return domain.NewError(domain.ErrUnknownSymbol, atom.Relation,
			"relation expects %d arguments, got %d", want, got)
	}
	return nil
}

func (r *Registry) append(decl *domain.Declaration) {
	decl.Seq = len(r.order)
	decl.RegisteredAt = time.Now()
	r.decls[decl.Name] = decl
	r.order = append(r.order, decl.Name)
}

func citable(k domain.Kind) bool {
	if k == domain.KindAxiom {
		return true
	}
	return k.IsProved()
}

package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"axiomarium/internal/domain"
	"axiomarium/internal/loader"
	"axiomarium/internal/registry"
	"axiomarium/internal/service"
)

// Reloader allows triggering a theory reload from the handler
type Reloader interface {
	TriggerReload() error
}

// TheoryHandler handles registry API requests
type TheoryHandler struct {
	svc      *service.TheoryService
	reloader Reloader
}

// NewTheoryHandler creates a new theory handler
func NewTheoryHandler(svc *service.TheoryService) *TheoryHandler {
	return &TheoryHandler{svc: svc}
}

// SetReloader sets the theory reloader
func (h *TheoryHandler) SetReloader(r Reloader) {
	h.reloader = r
}

// Error response structure
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// Request bodies. Statements and proofs arrive in the same shape the
// theory files use.

type statementBody struct {
	Vars        []varBody  `json:"vars,omitempty"`
	Hypotheses  []atomBody `json:"hypotheses,omitempty"`
	Conclusions []atomBody `json:"conclusions"`
}

type varBody struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

type atomBody struct {
	Relation string   `json:"relation"`
	Args     []string `json:"args"`
	Negated  bool     `json:"negated,omitempty"`
}

type proofBody struct {
	Incomplete bool       `json:"incomplete,omitempty"`
	Steps      []stepBody `json:"steps,omitempty"`
}

type stepBody struct {
	Cites    string `json:"cites"`
	Deferred bool   `json:"deferred,omitempty"`
	Note     string `json:"note,omitempty"`
}

func (b statementBody) toDomain() domain.Statement {
	stmt := domain.Statement{}
	for _, v := range b.Vars {
		stmt.Vars = append(stmt.Vars, domain.TypedVar{Name: v.Name, Type: v.Type})
	}
	for _, a := range b.Hypotheses {
		stmt.Hypotheses = append(stmt.Hypotheses, domain.Atom{Relation: a.Relation, Args: a.Args, Negated: a.Negated})
	}
	for _, a := range b.Conclusions {
		stmt.Conclusions = append(stmt.Conclusions, domain.Atom{Relation: a.Relation, Args: a.Args, Negated: a.Negated})
	}
	return stmt
}

func (b proofBody) toDomain() domain.Proof {
	proof := domain.Proof{Incomplete: b.Incomplete}
	for _, s := range b.Steps {
		proof.Steps = append(proof.Steps, domain.ProofStep{Cites: s.Cites, Deferred: s.Deferred, Note: s.Note})
	}
	return proof
}

// DeclareSort creates a new sort
func (h *TheoryHandler) DeclareSort(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	decl, err := h.svc.DeclareSort(r.Context(), req.Name)
	if err != nil {
		h.writeRegistryError(w, "Failed to declare sort", err)
		return
	}
	h.writeJSON(w, decl, http.StatusCreated)
}

// DeclareRelation creates a new relation
func (h *TheoryHandler) DeclareRelation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string   `json:"name"`
		Args         []string `json:"args"`
		Capabilities []string `json:"capabilities,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	caps := make([]domain.Capability, 0, len(req.Capabilities))
	for _, c := range req.Capabilities {
		caps = append(caps, domain.Capability(c))
	}

	decl, err := h.svc.DeclareRelation(r.Context(), req.Name, req.Args, caps...)
	if err != nil {
		h.writeRegistryError(w, "Failed to declare relation", err)
		return
	}
	h.writeJSON(w, decl, http.StatusCreated)
}

// DeclareCompound creates a new compound schema
func (h *TheoryHandler) DeclareCompound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Fields []struct {
			Name string `json:"name"`
			Type string `json:"type"`
		} `json:"fields"`
		Invariants []statementBody `json:"invariants,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	fields := make([]domain.Field, 0, len(req.Fields))
	for _, f := range req.Fields {
		fields = append(fields, domain.Field{Name: f.Name, Type: f.Type})
	}
	invariants := make([]domain.Statement, 0, len(req.Invariants))
	for _, inv := range req.Invariants {
		invariants = append(invariants, inv.toDomain())
	}

	decl, err := h.svc.DeclareCompound(r.Context(), req.Name, fields, invariants)
	if err != nil {
		h.writeRegistryError(w, "Failed to declare compound", err)
		return
	}
	h.writeJSON(w, decl, http.StatusCreated)
}

// RegisterAxiom creates a new axiom
func (h *TheoryHandler) RegisterAxiom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string        `json:"name"`
		Statement statementBody `json:"statement"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	decl, err := h.svc.RegisterAxiom(r.Context(), req.Name, req.Statement.toDomain())
	if err != nil {
		h.writeRegistryError(w, "Failed to register axiom", err)
		return
	}
	h.writeJSON(w, decl, http.StatusCreated)
}

// TheoremResponse carries a registered theorem plus the proof-gap warning
// when the declaration was flagged on entry.
type TheoremResponse struct {
	Declaration *domain.Declaration `json:"declaration"`
	Warning     string              `json:"warning,omitempty"`
}

// RegisterTheorem creates a new proved declaration
func (h *TheoryHandler) RegisterTheorem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name      string        `json:"name"`
		Kind      string        `json:"kind,omitempty"`
		Statement statementBody `json:"statement"`
		Proof     proofBody     `json:"proof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	kind := domain.KindTheorem
	if req.Kind != "" {
		kind = domain.Kind(req.Kind)
	}

	decl, err := h.svc.RegisterTheorem(r.Context(), kind, req.Name, req.Statement.toDomain(), req.Proof.toDomain())
	if err != nil {
		// A proof gap still registers the declaration, flagged.
		if decl != nil && errors.Is(err, domain.ErrProofGap) {
			h.writeJSON(w, TheoremResponse{Declaration: decl, Warning: err.Error()}, http.StatusCreated)
			return
		}
		h.writeRegistryError(w, "Failed to register theorem", err)
		return
	}
	h.writeJSON(w, TheoremResponse{Declaration: decl}, http.StatusCreated)
}

// ComposeEquivalence builds the equivalence scaffold for a relation
func (h *TheoryHandler) ComposeEquivalence(w http.ResponseWriter, r *http.Request) {
	relation := r.PathValue("name")

	var req struct {
		Symmetry     string `json:"symmetry"`
		Transitivity string `json:"transitivity"`
		Seed         string `json:"seed"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	decls, err := h.svc.ComposeEquivalence(r.Context(), relation, registry.EquivalencePrimitives{
		Symmetry:     req.Symmetry,
		Transitivity: req.Transitivity,
		Seed:         req.Seed,
	})
	if err != nil {
		h.writeRegistryError(w, "Failed to compose equivalence", err)
		return
	}
	h.writeJSON(w, decls, http.StatusCreated)
}

// ListDeclarations returns all declarations, optionally filtered
func (h *TheoryHandler) ListDeclarations(w http.ResponseWriter, r *http.Request) {
	kind := r.URL.Query().Get("kind")
	state := r.URL.Query().Get("state")

	all := h.svc.Declarations()
	out := make([]*domain.Declaration, 0, len(all))
	for _, decl := range all {
		if kind != "" && string(decl.Kind) != kind {
			continue
		}
		if state != "" && string(decl.State) != state {
			continue
		}
		out = append(out, decl)
	}
	h.writeJSON(w, out, http.StatusOK)
}

// GetDeclaration returns a single declaration
func (h *TheoryHandler) GetDeclaration(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	decl, err := h.svc.Query(name)
	if err != nil {
		h.writeRegistryError(w, "Failed to get declaration", err)
		return
	}
	h.writeJSON(w, decl, http.StatusOK)
}

// GetClosure returns the transitive proof dependencies of a declaration
func (h *TheoryHandler) GetClosure(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	closure, err := h.svc.Closure(name)
	if err != nil {
		h.writeRegistryError(w, "Failed to compute closure", err)
		return
	}
	h.writeJSON(w, closure, http.StatusOK)
}

// GetStats returns declaration counts by state. Only the terminal states
// appear: registration is atomic, so no stored entry is ever observed in
// the transient declared state.
func (h *TheoryHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	counts := h.svc.CountByState()
	h.writeJSON(w, map[string]interface{}{
		"theory":   h.svc.TheoryName(),
		"total":    len(h.svc.Declarations()),
		"verified": counts[domain.StateVerified],
		"flagged":  counts[domain.StateFlagged],
	}, http.StatusOK)
}

// Export serializes the theory in the requested format
func (h *TheoryHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := r.PathValue("format")

	contentTypes := map[string]string{
		"json":     "application/json",
		"yaml":     "application/x-yaml",
		"markdown": "text/markdown",
		"md":       "text/markdown",
	}
	ct, ok := contentTypes[format]
	if !ok {
		h.writeError(w, "Unknown export format", format, http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", ct)
	if err := h.svc.Export(format, w); err != nil {
		log.Printf("Failed to export theory: %v", err)
	}
}

// ReloadTheory triggers a reload of the theory file
func (h *TheoryHandler) ReloadTheory(w http.ResponseWriter, r *http.Request) {
	if h.reloader == nil {
		h.writeError(w, "Reload not available", "no theory file configured", http.StatusServiceUnavailable)
		return
	}
	if err := h.reloader.TriggerReload(); err != nil {
		h.writeRegistryError(w, "Failed to reload theory", err)
		return
	}
	h.writeJSON(w, map[string]string{"status": "reloaded"}, http.StatusOK)
}

// LoadTheory applies a theory file uploaded in the request body
func (h *TheoryHandler) LoadTheory(w http.ResponseWriter, r *http.Request) {
	theory, err := loader.Parse(r.Body)
	if err != nil {
		h.writeError(w, "Invalid theory file", err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.svc.LoadTheory(r.Context(), theory)
	if err != nil {
		h.writeRegistryError(w, "Failed to load theory", err)
		return
	}
	h.writeJSON(w, result, http.StatusOK)
}

// writeRegistryError maps registry error kinds to HTTP status codes
func (h *TheoryHandler) writeRegistryError(w http.ResponseWriter, msg string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicateName), errors.Is(err, domain.ErrCyclicDependency):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrUnknownSort),
		errors.Is(err, domain.ErrUnknownSymbol),
		errors.Is(err, domain.ErrInvalidInvariant),
		errors.Is(err, domain.ErrMalformedProof),
		errors.Is(err, domain.ErrProofGap):
		status = http.StatusUnprocessableEntity
	}

	if status == http.StatusInternalServerError {
		log.Printf("%s: %v", msg, err)
	}
	h.writeError(w, msg, err.Error(), status)
}

func (h *TheoryHandler) writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func (h *TheoryHandler) writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

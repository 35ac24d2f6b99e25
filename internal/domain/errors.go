package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for every failure mode a registration or query can hit.
// Callers match with errors.Is; the wrapping RegistryError carries the
// exact name or citation at fault.
//
// ErrMalformedProof and ErrProofGap are distinct on purpose: a malformed
// proof is rejected outright and nothing is registered, while a proof gap
// accompanies a declaration that was registered in the flagged state.
var (
	ErrDuplicateName    = errors.New("duplicate name")
	ErrUnknownSort      = errors.New("unknown sort")
	ErrUnknownSymbol    = errors.New("unknown symbol")
	ErrInvalidInvariant = errors.New("invalid invariant")
	ErrCyclicDependency = errors.New("cyclic dependency")
	ErrMalformedProof   = errors.New("malformed proof")
	ErrProofGap         = errors.New("proof gap")
	ErrNotFound         = errors.New("not found")
)

// RegistryError wraps a sentinel error with the declaration or symbol name
// that caused it. A failed registration must report exactly which name was
// at fault, not merely that validation failed.
type RegistryError struct {
	Kind error
	Name string
	Msg  string
}

func (e *RegistryError) Error() string {
	if e == nil {
		return ""
	}
	switch {
	case e.Name != "" && e.Msg != "":
		return fmt.Sprintf("%s: %q: %s", e.Kind.Error(), e.Name, e.Msg)
	case e.Name != "":
		return fmt.Sprintf("%s: %q", e.Kind.Error(), e.Name)
	case e.Msg != "":
		return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
	}
	return e.Kind.Error()
}

func (e *RegistryError) Unwrap() error { return e.Kind }

// NewError builds a RegistryError for the given sentinel and offending name.
func NewError(kind error, name, format string, args ...any) *RegistryError {
	return &RegistryError{Kind: kind, Name: name, Msg: fmt.Sprintf(format, args...)}
}

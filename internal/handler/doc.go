// Package handler implements HTTP request handlers for the Axiomarium API.
//
// This package provides the HTTP layer for the registry REST API, handling
// declaration registration, queries, closure computation, theory file
// loading, and export.
//
// # Handlers
//
// TheoryHandler handles all declaration operations. Registration endpoints
// accept statements and proofs in the same JSON shape the theory files use.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Error Mapping
//
// Registry failures map onto HTTP status codes by sentinel:
//   - not found            -> 404
//   - duplicate name,
//     cyclic dependency    -> 409
//   - unknown sort/symbol,
//     invalid invariant,
//     malformed proof,
//     proof gap            -> 422
//
// A theorem whose proof has gaps is the one deliberate exception: it
// registers in the flagged state and the endpoint answers 201 with a
// warning, because the declaration itself is valid.
//
// Errors are returned as JSON with an {error, details} structure.
package handler

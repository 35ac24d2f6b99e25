// Package domain contains the core types for axiomatic theories: sorts,
// relations, compound entity schemas, statements, proofs, and the
// declaration records that tie them together.
//
// Types here are pure data with validation helpers; registration rules
// (uniqueness, symbol resolution, citation acyclicity) live in the
// registry package.
package domain

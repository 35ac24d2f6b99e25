// Package repository defines the persistence interface for the
// declaration log. The registry itself is in-memory; the repository keeps
// the append-only log on disk so a theory survives restarts and is
// re-validated on replay.
package repository

package repository

import (
	"context"

	"axiomarium/internal/domain"
)

// Repository is the append-only declaration log.
type Repository interface {
	// Append stores one declaration. Sequence numbers must arrive in
	// strictly increasing order.
	Append(ctx context.Context, decl *domain.Declaration) error

	// List returns every stored declaration in sequence order.
	List(ctx context.Context) ([]domain.Declaration, error)

	// CountByState tallies stored declarations per verification state.
	CountByState(ctx context.Context) (map[domain.State]int, error)

	// ReplaceAll atomically swaps the whole log for decls. Used when a
	// theory file is reloaded from scratch; a crash mid-reload must not
	// leave a truncated log.
	ReplaceAll(ctx context.Context, decls []*domain.Declaration) error

	// Close releases resources.
	Close() error
}

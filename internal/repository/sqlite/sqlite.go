// Package sqlite implements repository.Repository on SQLite.
//
// Each declaration is one row: indexed columns for the fields queries
// filter on, the full record as a JSON blob. Rows are only ever inserted
// or bulk-replaced in one transaction, matching the registry's
// append-only contract.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"axiomarium/internal/domain"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite.
type Repository struct {
	db *sql.DB
}

// New opens (creating if needed) the declaration log at dbPath.
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS declarations (
		seq INTEGER PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		state TEXT NOT NULL,
		data JSON NOT NULL,
		registered_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_declarations_kind ON declarations(kind);
	CREATE INDEX IF NOT EXISTS idx_declarations_state ON declarations(state);
	`

	_, err := r.db.Exec(schema)
	return err
}

// Append stores one declaration row.
func (r *Repository) Append(ctx context.Context, decl *domain.Declaration) error {
	data, err := json.Marshal(decl)
	if err != nil {
		return fmt.Errorf("failed to marshal declaration %q: %w", decl.Name, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO declarations (seq, name, kind, state, data, registered_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, decl.Seq, decl.Name, string(decl.Kind), string(decl.State), data,
		decl.RegisteredAt.UTC().Format(time.RFC3339Nano))

	if err != nil {
		return fmt.Errorf("failed to append declaration %q: %w", decl.Name, err)
	}
	return nil
}

// List returns every stored declaration in sequence order.
func (r *Repository) List(ctx context.Context) ([]domain.Declaration, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT seq, name, kind, state, data FROM declarations ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query declarations: %w", err)
	}
	defer rows.Close()

	var out []domain.Declaration
	for rows.Next() {
		var (
			seq               int
			name, kind, state string
			data              []byte
		)
		if err := rows.Scan(&seq, &name, &kind, &state, &data); err != nil {
			return nil, fmt.Errorf("failed to scan declaration: %w", err)
		}

		var decl domain.Declaration
		if err := json.Unmarshal(data, &decl); err != nil {
			return nil, fmt.Errorf("failed to unmarshal declaration %q: %w", name, err)
		}

		// Indexed columns are the source of truth.
		decl.Seq = seq
		decl.Name = name
		decl.Kind = domain.Kind(kind)
		decl.State = domain.State(state)

		out = append(out, decl)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating declarations: %w", err)
	}
	return out, nil
}

// CountByState tallies stored declarations per verification state.
func (r *Repository) CountByState(ctx context.Context) (map[domain.State]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT state, COUNT(*) FROM declarations GROUP BY state
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count declarations: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.State]int)
	for rows.Next() {
		var (
			state string
			n     int
		)
		if err := rows.Scan(&state, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[domain.State(state)] = n
	}
	return counts, rows.Err()
}

// ReplaceAll swaps the whole log for decls in one transaction, so a
// failure mid-replace rolls back to the previous log.
func (r *Repository) ReplaceAll(ctx context.Context, decls []*domain.Declaration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM declarations`); err != nil {
		return fmt.Errorf("failed to clear declarations: %w", err)
	}

	for _, decl := range decls {
		data, err := json.Marshal(decl)
		if err != nil {
			return fmt.Errorf("failed to marshal declaration %q: %w", decl.Name, err)
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO declarations (seq, name, kind, state, data, registered_at)
			VALUES (?, ?, ?, ?, ?, ?)
		`, decl.Seq, decl.Name, string(decl.Kind), string(decl.State), data,
			decl.RegisteredAt.UTC().Format(time.RFC3339Nano)); err != nil {
			return fmt.Errorf("failed to insert declaration %q: %w", decl.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit replacement: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (r *Repository) Close() error {
	return r.db.Close()
}

package followup

import (
	"context"
	"fmt"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/followup"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new follow-up taxonomy Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// List returns the taxonomy ordered by position.
func (s *SQLiteStore) List(ctx context.Context) (domain.Taxonomy, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, position FROM followup_status ORDER BY position, label")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out domain.Taxonomy
	for rows.Next() {
		var st domain.Status
		if err := rows.Scan(&st.ID, &st.Label, &st.Position); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// Replace swaps the stored taxonomy for t.
// PRE: t has been validated
// POST: The table holds exactly t, with positions renumbered in slice order
func (s *SQLiteStore) Replace(ctx context.Context, t domain.Taxonomy) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM followup_status"); err != nil {
		return fmt.Errorf("clear followup_status: %w", err)
	}
	for i, st := range t {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO followup_status (id, label, position) VALUES (?, ?, ?)",
			st.ID, st.Label, i,
		); err != nil {
			return fmt.Errorf("insert status %q: %w", st.Label, err)
		}
	}
	return tx.Commit()
}

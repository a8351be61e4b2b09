package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/member"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new member Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the member or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	row := s.db.QueryRowContext(ctx, "SELECT id, name, email, phone, status FROM member WHERE id = ?", id)

	var m domain.Member
	var email, phone sql.NullString
	err := row.Scan(&m.ID, &m.Name, &email, &phone, &m.Status)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("member %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Member{}, err
	}
	m.Email = email.String
	m.Phone = phone.String
	return m, nil
}

// Save persists a Member to the database.
// PRE: value has been validated
// POST: Member is inserted or updated by ID
func (s *SQLiteStore) Save(ctx context.Context, value domain.Member) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO member (id, name, email, phone, status) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			email=excluded.email,
			phone=excluded.phone,
			status=excluded.status`,
		value.ID, value.Name, nullIfEmpty(value.Email), nullIfEmpty(value.Phone), value.Status,
	)
	return err
}

// List retrieves members ordered by name.
// PRE: filter.Limit >= 0
// POST: Returns members matching filter.Status (all when empty)
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	query := "SELECT id, name, email, phone, status FROM member"
	var args []any
	if filter.Status != "" {
		query += " WHERE status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY name, id"
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Member
	for rows.Next() {
		var m domain.Member
		var email, phone sql.NullString
		if err := rows.Scan(&m.ID, &m.Name, &email, &phone, &m.Status); err != nil {
			return nil, err
		}
		m.Email = email.String
		m.Phone = phone.String
		out = append(out, m)
	}
	return out, rows.Err()
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}

package firsttimer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/firsttimer"
)

const selectColumns = "SELECT id, name, email, phone, visit_date, status, created_at FROM first_timer"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new first-timer Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Record with its feedback in chronological order.
// POST: Returns the record or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Record, error) {
	rec, err := scanRecord(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Record{}, fmt.Errorf("first-timer %q: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return domain.Record{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, note, author, created_at FROM follow_up_feedback WHERE first_timer_id = ? ORDER BY created_at, rowid", id)
	if err != nil {
		return domain.Record{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var f domain.Feedback
		var author sql.NullString
		var created string
		if err := rows.Scan(&f.ID, &f.Note, &author, &created); err != nil {
			return domain.Record{}, err
		}
		f.Author = author.String
		if f.CreatedAt, err = storage.ParseTime(created); err != nil {
			return domain.Record{}, fmt.Errorf("failed to parse feedback created_at: %w", err)
		}
		rec.Feedback = append(rec.Feedback, f)
	}
	return rec, rows.Err()
}

// Save persists a Record's own fields. Feedback is written with AddFeedback.
// PRE: value has been validated
// POST: Record is inserted or updated by ID
func (s *SQLiteStore) Save(ctx context.Context, value domain.Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO first_timer (id, name, email, phone, visit_date, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			email=excluded.email,
			phone=excluded.phone,
			visit_date=excluded.visit_date,
			status=excluded.status`,
		value.ID, value.Name, value.Email, value.Phone,
		value.VisitDate.Format(time.RFC3339), value.Status, storage.FormatTime(value.CreatedAt),
	)
	return err
}

// ListByVisitDate returns records visiting between startDate and endDate inclusive.
// PRE: dates are YYYY-MM-DD
func (s *SQLiteStore) ListByVisitDate(ctx context.Context, startDate, endDate string) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" WHERE substr(visit_date, 1, 10) BETWEEN ? AND ? ORDER BY visit_date, id",
		startDate, endDate,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// UpdateStatus moves a record to a new follow-up status.
// POST: Returns an error wrapping storage.ErrNotFound when id is unknown
func (s *SQLiteStore) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE first_timer SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("first-timer %q: %w", id, storage.ErrNotFound)
	}
	return nil
}

// AddFeedback appends a follow-up note to a record.
// PRE: f has been validated
// POST: Returns an error wrapping storage.ErrNotFound when recordID is unknown
func (s *SQLiteStore) AddFeedback(ctx context.Context, recordID string, f domain.Feedback) error {
	var exists int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM first_timer WHERE id = ?", recordID).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("first-timer %q: %w", recordID, storage.ErrNotFound)
	}
	if err != nil {
		return err
	}

	var author any
	if f.Author != "" {
		author = f.Author
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO follow_up_feedback (id, first_timer_id, note, author, created_at) VALUES (?, ?, ?, ?, ?)",
		f.ID, recordID, f.Note, author, storage.FormatTime(f.CreatedAt),
	)
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRecord(row scanner) (domain.Record, error) {
	var rec domain.Record
	var email, phone, created sql.NullString
	var visit string
	if err := row.Scan(&rec.ID, &rec.Name, &email, &phone, &visit, &rec.Status, &created); err != nil {
		return domain.Record{}, err
	}
	rec.Email = email.String
	rec.Phone = phone.String

	v, err := time.Parse(time.RFC3339, visit)
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to parse visit_date: %w", err)
	}
	rec.VisitDate = v
	if created.Valid {
		if rec.CreatedAt, err = storage.ParseTime(created.String); err != nil {
			return domain.Record{}, fmt.Errorf("failed to parse created_at: %w", err)
		}
	}
	return rec, nil
}

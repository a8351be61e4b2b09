package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/attendance"
)

const selectColumns = "SELECT id, person_id, service_id, service_date, status, mode, marked_at, marked_by FROM attendance"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new attendance ledger backed by SQLite.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Upsert inserts e or overwrites the entry already held for its key.
// PRE: e has been validated; e.ID is used only when the key is new
// POST: Exactly one row exists for e.Key(); the returned entry carries the stored ID
func (s *SQLiteStore) Upsert(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	var markedBy any
	if e.MarkedBy != "" {
		markedBy = e.MarkedBy
	}

	row := s.db.QueryRowContext(ctx, `
		INSERT INTO attendance (id, person_id, service_id, service_date, status, mode, marked_at, marked_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(person_id, service_id, service_date) DO UPDATE SET
			status=excluded.status,
			mode=excluded.mode,
			marked_at=excluded.marked_at,
			marked_by=excluded.marked_by
		RETURNING id`,
		e.ID, e.PersonID, e.ServiceID, e.ServiceDate, e.Status, e.Mode, storage.FormatTime(e.MarkedAt), markedBy,
	)
	if err := row.Scan(&e.ID); err != nil {
		return domain.Entry{}, fmt.Errorf("upsert attendance: %w", err)
	}
	return e, nil
}

// Get retrieves the entry for key.
// POST: Returns the entry or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) Get(ctx context.Context, key domain.Key) (domain.Entry, error) {
	row := s.db.QueryRowContext(ctx,
		selectColumns+" WHERE person_id = ? AND service_id = ? AND service_date = ?",
		key.PersonID, key.ServiceID, key.ServiceDate,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Entry{}, fmt.Errorf("attendance %s/%s/%s: %w", key.PersonID, key.ServiceID, key.ServiceDate, storage.ErrNotFound)
	}
	return e, err
}

// ListByService returns every entry for one service occurrence.
func (s *SQLiteStore) ListByService(ctx context.Context, serviceID, serviceDate string) ([]domain.Entry, error) {
	return s.list(ctx, selectColumns+" WHERE service_id = ? AND service_date = ? ORDER BY person_id", serviceID, serviceDate)
}

// ListByDateRange returns entries with startDate <= service_date <= endDate.
// PRE: dates are YYYY-MM-DD
func (s *SQLiteStore) ListByDateRange(ctx context.Context, startDate, endDate string) ([]domain.Entry, error) {
	return s.list(ctx, selectColumns+" WHERE service_date BETWEEN ? AND ? ORDER BY service_date, service_id, person_id", startDate, endDate)
}

// ListByPerson returns a person's attendance history, oldest first.
func (s *SQLiteStore) ListByPerson(ctx context.Context, personID string) ([]domain.Entry, error) {
	return s.list(ctx, selectColumns+" WHERE person_id = ? ORDER BY service_date, service_id", personID)
}

// Count returns the number of entries in the ledger.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM attendance").Scan(&n)
	return n, err
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Entry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (domain.Entry, error) {
	var e domain.Entry
	var markedAt string
	var markedBy sql.NullString
	if err := row.Scan(&e.ID, &e.PersonID, &e.ServiceID, &e.ServiceDate, &e.Status, &e.Mode, &markedAt, &markedBy); err != nil {
		return domain.Entry{}, err
	}
	t, err := storage.ParseTime(markedAt)
	if err != nil {
		return domain.Entry{}, fmt.Errorf("failed to parse marked_at: %w", err)
	}
	e.MarkedAt = t
	e.MarkedBy = markedBy.String
	return e, nil
}

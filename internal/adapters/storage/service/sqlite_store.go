package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/service"
)

const selectColumns = "SELECT id, name, recurring, day, service_date, start_time, open_lead_minutes, close_after_minutes, position FROM service"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new service Store.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Service by its ID.
// PRE: id is non-empty
// POST: Returns the service or an error wrapping storage.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Service, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	svc, err := scanService(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Service{}, fmt.Errorf("service %q: %w", id, storage.ErrNotFound)
	}
	return svc, err
}

// Save persists a Service to the database.
// PRE: value has been validated
// POST: Service is inserted or replaced by ID
func (s *SQLiteStore) Save(ctx context.Context, value domain.Service) error {
	var day, date any
	if value.Recurring {
		day = value.Day
	} else {
		date = value.Date.Format(domain.DateLayout)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO service (id, name, recurring, day, service_date, start_time, open_lead_minutes, close_after_minutes, position)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name,
			recurring=excluded.recurring,
			day=excluded.day,
			service_date=excluded.service_date,
			start_time=excluded.start_time,
			open_lead_minutes=excluded.open_lead_minutes,
			close_after_minutes=excluded.close_after_minutes,
			position=excluded.position`,
		value.ID, value.Name, value.Recurring, day, date,
		value.StartTime, nullableMinutes(value.OpenLeadMinutes), nullableMinutes(value.CloseAfterMinutes), value.Position,
	)
	return err
}

// Delete removes a Service from the database.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM service WHERE id = ?", id)
	return err
}

// List returns the catalog in declaration order.
// POST: Services are ordered by position, then id
func (s *SQLiteStore) List(ctx context.Context) ([]domain.Service, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY position, id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Service
	for rows.Next() {
		svc, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, svc)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanService(row scanner) (domain.Service, error) {
	var svc domain.Service
	var day, date sql.NullString
	var lead, closeAfter sql.NullInt64
	if err := row.Scan(
		&svc.ID,
		&svc.Name,
		&svc.Recurring,
		&day,
		&date,
		&svc.StartTime,
		&lead,
		&closeAfter,
		&svc.Position,
	); err != nil {
		return domain.Service{}, err
	}
	svc.Day = day.String
	svc.OpenLeadMinutes = minutesFrom(lead)
	svc.CloseAfterMinutes = minutesFrom(closeAfter)
	if date.Valid && date.String != "" {
		d, err := time.Parse(domain.DateLayout, date.String)
		if err != nil {
			return domain.Service{}, fmt.Errorf("service %q: failed to parse service_date: %w", svc.ID, err)
		}
		svc.Date = d
	}
	return svc, nil
}

// nullableMinutes stores an unset offset as NULL so it keeps resolving to the default.
func nullableMinutes(m *int) any {
	if m == nil {
		return nil
	}
	return *m
}

func minutesFrom(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	return domain.Minutes(int(v.Int64))
}

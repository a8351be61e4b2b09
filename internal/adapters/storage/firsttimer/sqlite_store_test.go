package firsttimer

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestSQLiteStore_SaveGetWithFeedback verifies a record and its notes round-trip.
func TestSQLiteStore_SaveGetWithFeedback(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	auckland := time.FixedZone("NZDT", 13*3600)
	rec := domain.Record{
		ID:        "ft1",
		Name:      "Lydia",
		Email:     "lydia@example.org",
		VisitDate: time.Date(2026, 10, 18, 10, 30, 0, 0, auckland),
		Status:    followup.NotContacted,
		CreatedAt: time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	if err := store.Save(ctx, rec); err != nil {
		t.Fatalf("Save: %v", err)
	}

	later := domain.Feedback{ID: "f2", Note: "Joined the welcome lunch", CreatedAt: time.Date(2026, 10, 25, 0, 0, 0, 0, time.UTC)}
	earlier := domain.Feedback{ID: "f1", Note: "Called, left a message", Author: "pastor", CreatedAt: time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)}
	for _, f := range []domain.Feedback{later, earlier} {
		if err := store.AddFeedback(ctx, "ft1", f); err != nil {
			t.Fatalf("AddFeedback: %v", err)
		}
	}
	if err := store.UpdateStatus(ctx, "ft1", followup.Contacted); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	got, err := store.GetByID(ctx, "ft1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != followup.Contacted {
		t.Errorf("Status = %q, want %q", got.Status, followup.Contacted)
	}
	if y, m, d := got.VisitDate.Date(); y != 2026 || m != time.October || d != 18 {
		t.Errorf("VisitDate civil date = %d-%d-%d, want 2026-10-18", y, m, d)
	}
	if len(got.Feedback) != 2 || got.Feedback[0].ID != "f1" || got.Feedback[0].Author != "pastor" {
		t.Errorf("Feedback = %+v, want f1 then f2", got.Feedback)
	}
}

// TestSQLiteStore_ListByVisitDate verifies civil-date range filtering.
func TestSQLiteStore_ListByVisitDate(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	// 23:30 on 31 Oct in UTC-5 is already November in UTC; it still counts as October.
	eastern := time.FixedZone("EST", -5*3600)
	for _, rec := range []domain.Record{
		{ID: "a", Name: "A", VisitDate: time.Date(2026, 9, 30, 12, 0, 0, 0, time.UTC), Status: followup.NotContacted},
		{ID: "b", Name: "B", VisitDate: time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC), Status: followup.NotContacted},
		{ID: "c", Name: "C", VisitDate: time.Date(2026, 10, 31, 23, 30, 0, 0, eastern), Status: followup.Integrated},
		{ID: "d", Name: "D", VisitDate: time.Date(2026, 11, 1, 8, 0, 0, 0, time.UTC), Status: followup.NotContacted},
	} {
		if err := store.Save(ctx, rec); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	list, err := store.ListByVisitDate(ctx, "2026-10-01", "2026-10-31")
	if err != nil {
		t.Fatalf("ListByVisitDate: %v", err)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "c" {
		t.Errorf("ListByVisitDate = %+v, want b, c", list)
	}
}

// TestSQLiteStore_UnknownRecord verifies mutations on a missing record wrap storage.ErrNotFound.
func TestSQLiteStore_UnknownRecord(t *testing.T) {
	store := NewSQLiteStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.UpdateStatus(ctx, "nope", followup.Contacted); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateStatus err = %v, want storage.ErrNotFound", err)
	}
	if err := store.AddFeedback(ctx, "nope", domain.Feedback{ID: "f", Note: "x"}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("AddFeedback err = %v, want storage.ErrNotFound", err)
	}
	if _, err := store.GetByID(ctx, "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetByID err = %v, want storage.ErrNotFound", err)
	}
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/member"
	"shepherd/internal/domain/service"

	"github.com/google/uuid"
)

// Marking errors
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnknownMember  = errors.New("person is not a known member")
	ErrArchivedMember = errors.New("archived members cannot be marked")
)

// MemberLookupStore defines the member store interface needed for marking.
type MemberLookupStore interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// AttendanceLedger defines the ledger interface needed for marking.
type AttendanceLedger interface {
	Upsert(ctx context.Context, e attendance.Entry) (attendance.Entry, error)
}

// MarkAttendanceInput carries input for marking one person at one service instance.
type MarkAttendanceInput struct {
	PersonID string
	Instance service.Instance
	Status   string // present | absent
	Mode     string // onsite | online
	MarkedBy string // optional
}

// MarkAttendanceDeps holds dependencies for MarkAttendance.
type MarkAttendanceDeps struct {
	MemberStore     MemberLookupStore
	AttendanceStore AttendanceLedger
	Now             func() time.Time // nil uses time.Now
	GenerateID      func() string    // nil uses uuid
}

func (d MarkAttendanceDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d MarkAttendanceDeps) newID() string {
	if d.GenerateID != nil {
		return d.GenerateID()
	}
	return uuid.New().String()
}

// ExecuteMarkAttendance records a person's attendance at a service instance.
// The attendance window is not checked here; callers that serve self check-in
// enforce it, while admin backfill marks any instance.
// PRE: Instance was produced by the service matcher
// POST: The ledger holds exactly one entry for (PersonID, Instance.ServiceID, Instance date);
// a previous entry for the same key is replaced and keeps its ID
func ExecuteMarkAttendance(ctx context.Context, input MarkAttendanceInput, deps MarkAttendanceDeps) (attendance.Entry, error) {
	e := attendance.NewEntry(input.PersonID, input.Instance, input.Status, input.Mode)
	e.ID = deps.newID()
	e.MarkedAt = deps.now()
	e.MarkedBy = input.MarkedBy
	if err := e.Validate(); err != nil {
		return attendance.Entry{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	m, err := deps.MemberStore.GetByID(ctx, input.PersonID)
	if errors.Is(err, storage.ErrNotFound) {
		return attendance.Entry{}, fmt.Errorf("%w: %s", ErrUnknownMember, input.PersonID)
	}
	if err != nil {
		return attendance.Entry{}, err
	}
	if m.IsArchived() {
		return attendance.Entry{}, fmt.Errorf("%w: %s", ErrArchivedMember, input.PersonID)
	}

	stored, err := deps.AttendanceStore.Upsert(ctx, e)
	if err != nil {
		return attendance.Entry{}, err
	}

	slog.Info("attendance_event",
		"event", "attendance_marked",
		"person_id", stored.PersonID,
		"service_id", stored.ServiceID,
		"service_date", stored.ServiceDate,
		"status", stored.Status,
		"mode", stored.Mode,
	)
	return stored, nil
}

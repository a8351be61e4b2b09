package orchestrators

import (
	"context"
	"errors"
	"testing"
	"time"

	attendanceStore "shepherd/internal/adapters/storage/attendance"
	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/member"
)

func markDeps(members *mockMemberStore, ledger *attendanceStore.MemoryStore) MarkAttendanceDeps {
	return MarkAttendanceDeps{
		MemberStore:     members,
		AttendanceStore: ledger,
		Now:             func() time.Time { return fixedNow },
		GenerateID:      sequentialIDs("att"),
	}
}

// TestExecuteMarkAttendance_Records verifies a valid mark lands in the ledger.
func TestExecuteMarkAttendance_Records(t *testing.T) {
	ledger := attendanceStore.NewMemoryStore()
	deps := markDeps(newMockMemberStore(activeMember("p1")), ledger)
	inst := sundayInstance(t)

	e, err := ExecuteMarkAttendance(context.Background(), MarkAttendanceInput{
		PersonID: "p1",
		Instance: inst,
		Status:   attendance.StatusPresent,
		Mode:     attendance.ModeOnline,
		MarkedBy: "usher-1",
	}, deps)
	if err != nil {
		t.Fatalf("ExecuteMarkAttendance: %v", err)
	}
	if e.ID != "att-1" || e.ServiceDate != "2026-10-18" || e.ServiceID != "sunday-worship" {
		t.Errorf("entry = %+v", e)
	}
	if !e.MarkedAt.Equal(fixedNow) || e.MarkedBy != "usher-1" {
		t.Errorf("marking metadata = %v/%q, want %v/usher-1", e.MarkedAt, e.MarkedBy, fixedNow)
	}

	stored, err := ledger.Get(context.Background(), e.Key())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Mode != attendance.ModeOnline {
		t.Errorf("stored mode = %q, want online", stored.Mode)
	}
}

// TestExecuteMarkAttendance_ReplacesSameKey verifies the last mark for a key wins.
func TestExecuteMarkAttendance_ReplacesSameKey(t *testing.T) {
	ledger := attendanceStore.NewMemoryStore()
	deps := markDeps(newMockMemberStore(activeMember("p1")), ledger)
	inst := sundayInstance(t)
	ctx := context.Background()

	first, err := ExecuteMarkAttendance(ctx, MarkAttendanceInput{PersonID: "p1", Instance: inst, Status: attendance.StatusPresent, Mode: attendance.ModeOnsite}, deps)
	if err != nil {
		t.Fatalf("first mark: %v", err)
	}
	second, err := ExecuteMarkAttendance(ctx, MarkAttendanceInput{PersonID: "p1", Instance: inst, Status: attendance.StatusAbsent, Mode: attendance.ModeOnsite}, deps)
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("ID = %q, want original %q", second.ID, first.ID)
	}
	if n, _ := ledger.Count(ctx); n != 1 {
		t.Errorf("ledger holds %d entries, want 1", n)
	}
	stored, _ := ledger.Get(ctx, first.Key())
	if stored.Status != attendance.StatusAbsent {
		t.Errorf("status = %q, want absent", stored.Status)
	}
}

// TestExecuteMarkAttendance_Rejects verifies invalid input and unknown people leave the ledger untouched.
func TestExecuteMarkAttendance_Rejects(t *testing.T) {
	archived := activeMember("gone")
	archived.Status = member.StatusArchived

	tests := []struct {
		name    string
		input   func(t *testing.T) MarkAttendanceInput
		wantErr error
	}{
		{
			name: "bad status",
			input: func(t *testing.T) MarkAttendanceInput {
				return MarkAttendanceInput{PersonID: "p1", Instance: sundayInstance(t), Status: "late", Mode: attendance.ModeOnsite}
			},
			wantErr: ErrInvalidInput,
		},
		{
			name: "bad mode",
			input: func(t *testing.T) MarkAttendanceInput {
				return MarkAttendanceInput{PersonID: "p1", Instance: sundayInstance(t), Status: attendance.StatusPresent, Mode: "hybrid"}
			},
			wantErr: attendance.ErrInvalidMode,
		},
		{
			name: "empty person",
			input: func(t *testing.T) MarkAttendanceInput {
				return MarkAttendanceInput{Instance: sundayInstance(t), Status: attendance.StatusPresent, Mode: attendance.ModeOnsite}
			},
			wantErr: attendance.ErrEmptyPersonID,
		},
		{
			name: "unknown person",
			input: func(t *testing.T) MarkAttendanceInput {
				return MarkAttendanceInput{PersonID: "stranger", Instance: sundayInstance(t), Status: attendance.StatusPresent, Mode: attendance.ModeOnsite}
			},
			wantErr: ErrUnknownMember,
		},
		{
			name: "archived person",
			input: func(t *testing.T) MarkAttendanceInput {
				return MarkAttendanceInput{PersonID: "gone", Instance: sundayInstance(t), Status: attendance.StatusPresent, Mode: attendance.ModeOnsite}
			},
			wantErr: ErrArchivedMember,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ledger := attendanceStore.NewMemoryStore()
			deps := markDeps(newMockMemberStore(activeMember("p1"), archived), ledger)

			_, err := ExecuteMarkAttendance(context.Background(), tt.input(t), deps)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if n, _ := ledger.Count(context.Background()); n != 0 {
				t.Errorf("ledger holds %d entries, want 0", n)
			}
		})
	}
}

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

// TestExecuteMarkAbsentees verifies only unmarked active members are recorded absent.
func TestExecuteMarkAbsentees(t *testing.T) {
	inactive := activeMember("p4")
	inactive.Status = member.StatusInactive
	members := newMockMemberStore(activeMember("p1"), activeMember("p2"), activeMember("p3"), inactive)
	ledger := attendanceStore.NewMemoryStore()
	inst := sundayInstance(t)
	ctx := context.Background()

	if _, err := ExecuteMarkAttendance(ctx, MarkAttendanceInput{PersonID: "p2", Instance: inst, Status: attendance.StatusPresent, Mode: attendance.ModeOnsite}, markDeps(members, ledger)); err != nil {
		t.Fatalf("mark p2: %v", err)
	}

	res, err := ExecuteMarkAbsentees(ctx, MarkAbsenteesInput{Instance: inst, MarkedBy: "sweep"}, MarkAbsenteesDeps{
		MemberStore:     members,
		AttendanceStore: ledger,
		Now:             func() time.Time { return fixedNow },
		GenerateID:      sequentialIDs("abs"),
	})
	if err != nil {
		t.Fatalf("ExecuteMarkAbsentees: %v", err)
	}
	if res.Marked() != 2 {
		t.Errorf("Marked = %d, want 2 (p1, p3)", res.Marked())
	}

	entries, _ := ledger.ListByService(ctx, inst.ServiceID, inst.DateKey())
	want := map[string]string{"p1": attendance.StatusAbsent, "p2": attendance.StatusPresent, "p3": attendance.StatusAbsent}
	if len(entries) != len(want) {
		t.Fatalf("entries = %+v, want %d", entries, len(want))
	}
	for _, e := range entries {
		if want[e.PersonID] != e.Status {
			t.Errorf("%s status = %q, want %q", e.PersonID, e.Status, want[e.PersonID])
		}
		if e.Status == attendance.StatusAbsent && e.MarkedBy != "sweep" {
			t.Errorf("%s MarkedBy = %q, want sweep", e.PersonID, e.MarkedBy)
		}
	}

	// A second sweep finds nobody left to mark.
	res, err = ExecuteMarkAbsentees(ctx, MarkAbsenteesInput{Instance: inst}, MarkAbsenteesDeps{MemberStore: members, AttendanceStore: ledger})
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if res.Marked() != 0 {
		t.Errorf("second sweep marked %d, want 0", res.Marked())
	}
}

// TestExecuteMarkAbsentees_ListError verifies member store failures are returned.
func TestExecuteMarkAbsentees_ListError(t *testing.T) {
	members := newMockMemberStore()
	members.listErr = errors.New("db down")

	_, err := ExecuteMarkAbsentees(context.Background(), MarkAbsenteesInput{Instance: sundayInstance(t)}, MarkAbsenteesDeps{
		MemberStore:     members,
		AttendanceStore: attendanceStore.NewMemoryStore(),
	})
	if err == nil {
		t.Fatal("expected error from member store")
	}
}

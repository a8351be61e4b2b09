package orchestrators

import (
	"context"
	"time"

	memberStore "shepherd/internal/adapters/storage/member"
	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/member"
	"shepherd/internal/domain/service"
)

// ActiveMemberLister defines the member store interface needed by the absentee sweep.
type ActiveMemberLister interface {
	MemberLookupStore
	List(ctx context.Context, filter memberStore.ListFilter) ([]member.Member, error)
}

// ServiceEntryLister lists the entries already recorded for a service instance.
type ServiceEntryLister interface {
	AttendanceLedger
	ListByService(ctx context.Context, serviceID, serviceDate string) ([]attendance.Entry, error)
}

// MarkAbsenteesInput identifies the service instance to sweep.
type MarkAbsenteesInput struct {
	Instance service.Instance
	MarkedBy string
}

// MarkAbsenteesDeps holds dependencies for MarkAbsentees.
type MarkAbsenteesDeps struct {
	MemberStore     ActiveMemberLister
	AttendanceStore ServiceEntryLister
	Concurrency     int
	Now             func() time.Time
	GenerateID      func() string
}

// MarkAbsenteesResult reports what the sweep recorded.
type MarkAbsenteesResult struct {
	Results []MarkResult
}

// Marked returns the number of absent entries recorded.
func (r MarkAbsenteesResult) Marked() int {
	n := 0
	for _, res := range r.Results {
		if res.OK() {
			n++
		}
	}
	return n
}

// ExecuteMarkAbsentees records an absent entry for every active member with
// no entry at the instance.
// PRE: Instance was produced by the service matcher
// POST: Existing entries are untouched; each active member is in the ledger for the instance
func ExecuteMarkAbsentees(ctx context.Context, input MarkAbsenteesInput, deps MarkAbsenteesDeps) (MarkAbsenteesResult, error) {
	existing, err := deps.AttendanceStore.ListByService(ctx, input.Instance.ServiceID, input.Instance.DateKey())
	if err != nil {
		return MarkAbsenteesResult{}, err
	}
	marked := make(map[string]bool, len(existing))
	for _, e := range existing {
		marked[e.PersonID] = true
	}

	active, err := deps.MemberStore.List(ctx, memberStore.ListFilter{Status: member.StatusActive})
	if err != nil {
		return MarkAbsenteesResult{}, err
	}

	var inputs []MarkAttendanceInput
	for _, m := range active {
		if marked[m.ID] {
			continue
		}
		inputs = append(inputs, MarkAttendanceInput{
			PersonID: m.ID,
			Instance: input.Instance,
			Status:   attendance.StatusAbsent,
			Mode:     attendance.ModeOnsite,
			MarkedBy: input.MarkedBy,
		})
	}

	markDeps := MarkAttendanceDeps{
		MemberStore:     deps.MemberStore,
		AttendanceStore: deps.AttendanceStore,
		Now:             deps.Now,
		GenerateID:      deps.GenerateID,
	}
	results := ExecuteMarkBulk(ctx, inputs, MarkBulkDeps{Mark: markDeps, Concurrency: deps.Concurrency})
	return MarkAbsenteesResult{Results: results}, nil
}

package orchestrators

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// DefaultBulkConcurrency bounds parallel marks when MarkBulkDeps.Concurrency is unset.
const DefaultBulkConcurrency = 8

// MarkResult reports the outcome of one entry in a bulk mark.
type MarkResult struct {
	Index    int
	PersonID string
	EntryID  string // set on success
	Err      error
}

// OK reports whether the entry was recorded.
func (r MarkResult) OK() bool {
	return r.Err == nil
}

// MarkBulkDeps holds dependencies for MarkBulk.
type MarkBulkDeps struct {
	Mark        MarkAttendanceDeps
	Concurrency int
}

// ExecuteMarkBulk marks each input independently.
// PRE: none; an empty input yields an empty result
// POST: len(result) == len(inputs) and result[i] describes inputs[i];
// a failed entry never prevents the others from being recorded
func ExecuteMarkBulk(ctx context.Context, inputs []MarkAttendanceInput, deps MarkBulkDeps) []MarkResult {
	results := make([]MarkResult, len(inputs))
	limit := deps.Concurrency
	if limit <= 0 {
		limit = DefaultBulkConcurrency
	}

	var g errgroup.Group
	g.SetLimit(limit)
	for i, in := range inputs {
		g.Go(func() error {
			res := MarkResult{Index: i, PersonID: in.PersonID}
			if err := ctx.Err(); err != nil {
				res.Err = err
			} else if e, err := ExecuteMarkAttendance(ctx, in, deps.Mark); err != nil {
				res.Err = err
			} else {
				res.EntryID = e.ID
			}
			results[i] = res
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if !r.OK() {
			failed++
		}
	}
	slog.Info("attendance_event", "event", "bulk_marked", "total", len(inputs), "failed", failed)
	return results
}

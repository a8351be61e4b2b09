package projections

import (
	"context"
	"time"

	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/engagement"
)

// AttendanceRangeStore defines the ledger interface needed for attendance reports.
type AttendanceRangeStore interface {
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]attendance.Entry, error)
}

// GetAttendanceReportQuery carries query parameters.
type GetAttendanceReportQuery struct {
	Year  int
	Month time.Month // optional; zero skips the monthly breakdown
}

// GetAttendanceReportResult carries the yearly attendance figures.
type GetAttendanceReportResult struct {
	Year  engagement.AttendanceYear       `json:"year"`
	Month *engagement.AttendanceBreakdown `json:"month"`
}

// GetAttendanceReportDeps holds dependencies for GetAttendanceReport.
type GetAttendanceReportDeps struct {
	AttendanceStore AttendanceRangeStore
}

// QueryGetAttendanceReport summarises a year of the attendance ledger.
// PRE: query.Year is a valid year
// POST: Months are reported January to December with present-count trends
func QueryGetAttendanceReport(ctx context.Context, query GetAttendanceReportQuery, deps GetAttendanceReportDeps) (GetAttendanceReportResult, error) {
	start, end := yearRange(query.Year)
	entries, err := deps.AttendanceStore.ListByDateRange(ctx, start, end)
	if err != nil {
		return GetAttendanceReportResult{}, err
	}

	year, err := engagement.SummarizeAttendanceYear(entries, query.Year)
	if err != nil {
		return GetAttendanceReportResult{}, err
	}
	res := GetAttendanceReportResult{Year: year}

	if query.Month != 0 {
		mb, err := engagement.SummarizeAttendanceMonth(entries, query.Year, query.Month)
		if err != nil {
			return GetAttendanceReportResult{}, err
		}
		res.Month = &mb
	}
	return res, nil
}

package projections

import (
	"context"
	"fmt"
	"time"

	"shepherd/internal/domain/engagement"
	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"
)

// FirstTimerStore defines the store interface needed for first-timer reports.
type FirstTimerStore interface {
	ListByVisitDate(ctx context.Context, startDate, endDate string) ([]firsttimer.Record, error)
}

// FollowUpStore defines the taxonomy store interface needed for reports.
type FollowUpStore interface {
	List(ctx context.Context) (followup.Taxonomy, error)
}

// GetFirstTimerReportQuery carries query parameters.
type GetFirstTimerReportQuery struct {
	Year  int
	Month time.Month // optional; zero skips the monthly breakdown
}

// GetFirstTimerReportResult carries the annual summary and, when requested,
// the breakdown for one month.
type GetFirstTimerReportResult struct {
	Taxonomy followup.Taxonomy            `json:"taxonomy"`
	Annual   engagement.AnnualSummary     `json:"annual"`
	Month    *engagement.MonthlyBreakdown `json:"month"`
}

// GetFirstTimerReportDeps holds dependencies for GetFirstTimerReport.
type GetFirstTimerReportDeps struct {
	FirstTimerStore FirstTimerStore
	FollowUpStore   FollowUpStore
}

// QueryGetFirstTimerReport aggregates first-timer follow-up statistics for a year.
// PRE: query.Year is a valid year; query.Month is zero or 1..12
// POST: Uses the stored taxonomy, or the default taxonomy when none is configured
func QueryGetFirstTimerReport(ctx context.Context, query GetFirstTimerReportQuery, deps GetFirstTimerReportDeps) (GetFirstTimerReportResult, error) {
	taxonomy, err := deps.FollowUpStore.List(ctx)
	if err != nil {
		return GetFirstTimerReportResult{}, err
	}
	if len(taxonomy) == 0 {
		taxonomy = followup.DefaultTaxonomy()
	}

	start, end := yearRange(query.Year)
	records, err := deps.FirstTimerStore.ListByVisitDate(ctx, start, end)
	if err != nil {
		return GetFirstTimerReportResult{}, err
	}

	annual, err := engagement.BuildAnnualSummary(records, query.Year, taxonomy)
	if err != nil {
		return GetFirstTimerReportResult{}, err
	}
	res := GetFirstTimerReportResult{Taxonomy: taxonomy, Annual: annual}

	if query.Month != 0 {
		mb, err := engagement.BuildMonthlyBreakdown(records, query.Year, query.Month, taxonomy)
		if err != nil {
			return GetFirstTimerReportResult{}, err
		}
		res.Month = &mb
	}
	return res, nil
}

// yearRange returns the first and last civil dates of year as YYYY-MM-DD.
func yearRange(year int) (string, string) {
	return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
}

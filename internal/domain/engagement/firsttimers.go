package engagement

import (
	"sort"
	"time"

	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"
)

// StatusCount is the number and share of records holding one status.
type StatusCount struct {
	Label      string  `json:"label"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SkipStats counts malformed records left out of a report.
type SkipStats struct {
	MissingVisitDate int `json:"missingVisitDate"`
	UnknownStatus    int `json:"unknownStatus"`
}

// Total returns the number of skipped records.
func (s SkipStats) Total() int {
	return s.MissingVisitDate + s.UnknownStatus
}

// MonthlyBreakdown is the first-timer status distribution for one month.
type MonthlyBreakdown struct {
	Year     int           `json:"year"`
	Month    time.Month    `json:"month"`
	Total    int           `json:"total"`
	Statuses []StatusCount `json:"statuses"` // count descending, ties in taxonomy order
	Skipped  SkipStats     `json:"skipped"`
}

// Count returns the count recorded for label, or 0.
func (m MonthlyBreakdown) Count(label string) int {
	for _, s := range m.Statuses {
		if s.Label == label {
			return s.Count
		}
	}
	return 0
}

// MonthSummary is a monthly breakdown with its trend against the prior month.
type MonthSummary struct {
	MonthlyBreakdown
	Trend        Trend   `json:"trend"`
	TrendPercent float64 `json:"trendPercent"`
}

// AnnualSummary aggregates a year of first-timer records.
type AnnualSummary struct {
	Year            int            `json:"year"`
	Months          []MonthSummary `json:"months"` // January..December
	Total           int            `json:"total"`
	AveragePerMonth float64        `json:"averagePerMonth"` // Total / 12 calendar months
	Distribution    []StatusCount  `json:"distribution"`
	IntegrationRate float64        `json:"integrationRate"`
	Peak            Peak           `json:"peak"`
	Skipped         SkipStats      `json:"skipped"`
}

// BuildMonthlyBreakdown counts first-timers who visited in (year, month) by
// follow-up status.
// PRE: taxonomy is the congregation's configured status list
// POST: Every taxonomy status is present (zero counts included); records
// without a visit date or with a status outside the taxonomy are excluded
// and reported in Skipped
func BuildMonthlyBreakdown(records []firsttimer.Record, year int, month time.Month, taxonomy followup.Taxonomy) (MonthlyBreakdown, error) {
	if err := validatePeriod(year, month); err != nil {
		return MonthlyBreakdown{}, err
	}
	if err := taxonomy.Validate(); err != nil {
		return MonthlyBreakdown{}, err
	}

	counts := make([]int, len(taxonomy))
	mb := MonthlyBreakdown{Year: year, Month: month}
	for _, r := range records {
		if r.VisitDate.IsZero() {
			mb.Skipped.MissingVisitDate++
			continue
		}
		y, m, _ := r.VisitDate.Date()
		if y != year || m != month {
			continue
		}
		idx := taxonomy.Index(r.Status)
		if idx < 0 {
			mb.Skipped.UnknownStatus++
			continue
		}
		counts[idx]++
		mb.Total++
	}

	mb.Statuses = statusCounts(taxonomy, counts, mb.Total)
	return mb, nil
}

// BuildAnnualSummary builds the twelve monthly breakdowns of year and the
// year-level figures derived from them.
// PRE: taxonomy is the congregation's configured status list
// POST: Months has twelve entries; January carries TrendNone
func BuildAnnualSummary(records []firsttimer.Record, year int, taxonomy followup.Taxonomy) (AnnualSummary, error) {
	if err := validatePeriod(year, time.January); err != nil {
		return AnnualSummary{}, err
	}
	if err := taxonomy.Validate(); err != nil {
		return AnnualSummary{}, err
	}

	sum := AnnualSummary{Year: year, Months: make([]MonthSummary, 0, 12)}
	var totals [12]int
	yearCounts := make([]int, len(taxonomy))

	for i := 0; i < 12; i++ {
		mb, err := BuildMonthlyBreakdown(records, year, time.Month(i+1), taxonomy)
		if err != nil {
			return AnnualSummary{}, err
		}
		ms := MonthSummary{MonthlyBreakdown: mb, Trend: TrendNone}
		if i > 0 {
			ms.Trend, ms.TrendPercent = trendBetween(totals[i-1], mb.Total)
		}
		totals[i] = mb.Total
		sum.Total += mb.Total
		for j, s := range taxonomy {
			yearCounts[j] += mb.Count(s.Label)
		}
		// Undated records are seen by every month; count them once.
		if i == 0 {
			sum.Skipped.MissingVisitDate = mb.Skipped.MissingVisitDate
		}
		sum.Skipped.UnknownStatus += mb.Skipped.UnknownStatus
		sum.Months = append(sum.Months, ms)
	}

	sum.AveragePerMonth = float64(sum.Total) / 12
	sum.Distribution = statusCounts(taxonomy, yearCounts, sum.Total)
	if idx := taxonomy.Index(followup.Integrated); idx >= 0 {
		sum.IntegrationRate = percentOf(yearCounts[idx], sum.Total)
	}
	sum.Peak = peakOf(totals)
	return sum, nil
}

// statusCounts pairs taxonomy labels with counts and percentages, sorted by
// count descending with ties kept in taxonomy order.
func statusCounts(taxonomy followup.Taxonomy, counts []int, total int) []StatusCount {
	out := make([]StatusCount, len(taxonomy))
	for i, s := range taxonomy {
		out[i] = StatusCount{Label: s.Label, Count: counts[i], Percentage: percentOf(counts[i], total)}
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Count > out[b].Count
	})
	return out
}

// Package engagement aggregates first-timer and attendance records into
// month-bucketed and annual reports. Every function here is pure: it reads
// the caller's snapshot and never mutates it.
package engagement

import (
	"errors"
	"math"
	"time"
)

// Domain errors
var (
	ErrInvalidYear  = errors.New("year must be between 1 and 9999")
	ErrInvalidMonth = errors.New("month must be between 1 and 12")
)

// Trend describes the change in a monthly total against the previous month.
type Trend string

// Trend values
const (
	TrendNone   Trend = "none" // first month of the year has no predecessor
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

// Peak identifies the busiest month of a year.
type Peak struct {
	Month time.Month `json:"month"`
	Total int        `json:"total"`
}

func validatePeriod(year int, month time.Month) error {
	if year < 1 || year > 9999 {
		return ErrInvalidYear
	}
	if month < time.January || month > time.December {
		return ErrInvalidMonth
	}
	return nil
}

// round1 rounds to one decimal place, half away from zero.
func round1(x float64) float64 {
	return math.Round(x*10) / 10
}

// percentOf returns round1(part/whole*100), or 0 when whole is 0.
func percentOf(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return round1(float64(part) / float64(whole) * 100)
}

// trendBetween compares a month's total with the previous month's.
// A zero predecessor reports stable at 0% rather than dividing by zero.
func trendBetween(prev, cur int) (Trend, float64) {
	if prev == 0 {
		return TrendStable, 0
	}
	pct := round1(math.Abs(float64(cur-prev)) / float64(prev) * 100)
	switch {
	case cur > prev:
		return TrendUp, pct
	case cur < prev:
		return TrendDown, pct
	default:
		return TrendStable, pct
	}
}

// peakOf returns the month with the highest total; the earliest month wins ties.
func peakOf(totals [12]int) Peak {
	p := Peak{Month: time.January, Total: totals[0]}
	for i := 1; i < 12; i++ {
		if totals[i] > p.Total {
			p = Peak{Month: time.Month(i + 1), Total: totals[i]}
		}
	}
	return p
}

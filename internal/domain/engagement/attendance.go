package engagement

import (
	"time"

	"shepherd/internal/domain/attendance"
	"shepherd/internal/domain/service"
)

// AttendanceSkips counts ledger entries left out of an attendance report.
type AttendanceSkips struct {
	InvalidDate   int `json:"invalidDate"`
	InvalidStatus int `json:"invalidStatus"` // unknown status or mode
}

// Total returns the number of skipped entries.
func (s AttendanceSkips) Total() int {
	return s.InvalidDate + s.InvalidStatus
}

// AttendanceBreakdown summarises the ledger for one month.
type AttendanceBreakdown struct {
	Year           int             `json:"year"`
	Month          time.Month      `json:"month"`
	Total          int             `json:"total"` // entries counted
	Present        int             `json:"present"`
	Absent         int             `json:"absent"`
	Onsite         int             `json:"onsite"`         // present entries marked onsite
	Online         int             `json:"online"`         // present entries marked online
	DistinctPeople int             `json:"distinctPeople"` // people marked present at least once
	PresentRate    float64         `json:"presentRate"`
	OnlineShare    float64         `json:"onlineShare"` // share of present entries attended online
	Skipped        AttendanceSkips `json:"skipped"`
}

// AttendanceMonth is a monthly attendance breakdown with its trend in
// present count against the prior month.
type AttendanceMonth struct {
	AttendanceBreakdown
	Trend        Trend   `json:"trend"`
	TrendPercent float64 `json:"trendPercent"`
}

// AttendanceYear aggregates a year of ledger entries.
type AttendanceYear struct {
	Year                   int               `json:"year"`
	Months                 []AttendanceMonth `json:"months"`
	TotalPresent           int               `json:"totalPresent"`
	AveragePresentPerMonth float64           `json:"averagePresentPerMonth"`
	Peak                   Peak              `json:"peak"` // by present count
	Skipped                AttendanceSkips   `json:"skipped"`
}

// SummarizeAttendanceMonth counts present/absent entries whose service date
// falls in (year, month).
// PRE: entries come from the attendance ledger (at most one per key)
// POST: Entries with an unparseable date, status or mode are excluded and
// reported in Skipped
func SummarizeAttendanceMonth(entries []attendance.Entry, year int, month time.Month) (AttendanceBreakdown, error) {
	if err := validatePeriod(year, month); err != nil {
		return AttendanceBreakdown{}, err
	}

	ab := AttendanceBreakdown{Year: year, Month: month}
	people := make(map[string]struct{})
	for _, e := range entries {
		d, err := time.Parse(service.DateLayout, e.ServiceDate)
		if err != nil {
			ab.Skipped.InvalidDate++
			continue
		}
		if d.Year() != year || d.Month() != month {
			continue
		}
		if !attendance.ValidStatus(e.Status) || !attendance.ValidMode(e.Mode) {
			ab.Skipped.InvalidStatus++
			continue
		}
		ab.Total++
		if !e.IsPresent() {
			ab.Absent++
			continue
		}
		ab.Present++
		people[e.PersonID] = struct{}{}
		if e.Mode == attendance.ModeOnline {
			ab.Online++
		} else {
			ab.Onsite++
		}
	}

	ab.DistinctPeople = len(people)
	ab.PresentRate = percentOf(ab.Present, ab.Total)
	ab.OnlineShare = percentOf(ab.Online, ab.Present)
	return ab, nil
}

// SummarizeAttendanceYear builds twelve monthly attendance breakdowns and the
// year-level present figures.
// POST: Months has twelve entries; January carries TrendNone
func SummarizeAttendanceYear(entries []attendance.Entry, year int) (AttendanceYear, error) {
	if err := validatePeriod(year, time.January); err != nil {
		return AttendanceYear{}, err
	}

	ay := AttendanceYear{Year: year, Months: make([]AttendanceMonth, 0, 12)}
	var present [12]int
	for i := 0; i < 12; i++ {
		ab, err := SummarizeAttendanceMonth(entries, year, time.Month(i+1))
		if err != nil {
			return AttendanceYear{}, err
		}
		am := AttendanceMonth{AttendanceBreakdown: ab, Trend: TrendNone}
		if i > 0 {
			am.Trend, am.TrendPercent = trendBetween(present[i-1], ab.Present)
		}
		present[i] = ab.Present
		ay.TotalPresent += ab.Present
		if i == 0 {
			ay.Skipped.InvalidDate = ab.Skipped.InvalidDate
		}
		ay.Skipped.InvalidStatus += ab.Skipped.InvalidStatus
		ay.Months = append(ay.Months, am)
	}

	ay.AveragePresentPerMonth = float64(ay.TotalPresent) / 12
	ay.Peak = peakOf(present)
	return ay, nil
}

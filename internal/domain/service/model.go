package service

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Day of week constants
const (
	Monday    = "monday"
	Tuesday   = "tuesday"
	Wednesday = "wednesday"
	Thursday  = "thursday"
	Friday    = "friday"
	Saturday  = "saturday"
	Sunday    = "sunday"
)

// ValidDays contains all valid day values.
var ValidDays = []string{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}

// Window defaults applied when a service leaves its start time or offsets unset.
// An explicit zero offset is kept: a lead of 0 opens marking at the start time.
const (
	DefaultStartTime         = "09:00"
	DefaultOpenLeadMinutes   = 30
	DefaultCloseAfterMinutes = 180
)

// DateLayout is the storage and wire format for calendar dates.
const DateLayout = "2006-01-02"

// Domain errors
var (
	ErrInvalidService   = errors.New("invalid service")
	ErrEmptyID          = errors.New("service ID cannot be empty")
	ErrEmptyName        = errors.New("service name cannot be empty")
	ErrInvalidDay       = errors.New("day must be a valid day of the week")
	ErrDayAndDate       = errors.New("service cannot have both a day and a date")
	ErrMissingDay       = errors.New("recurring service requires a day")
	ErrMissingDate      = errors.New("one-off service requires a date")
	ErrInvalidStartTime = errors.New("start time must be HH:MM")
	ErrNegativeOffset   = errors.New("window offsets cannot be negative")
)

// ValidationError reports which service failed validation and why.
// It matches ErrInvalidService with errors.Is.
type ValidationError struct {
	ServiceID string
	Err       error
}

func (e *ValidationError) Error() string {
	if e.ServiceID == "" {
		return fmt.Sprintf("invalid service: %v", e.Err)
	}
	return fmt.Sprintf("invalid service %q: %v", e.ServiceID, e.Err)
}

func (e *ValidationError) Unwrap() []error {
	return []error{ErrInvalidService, e.Err}
}

// Service is a congregational gathering definition: either a recurring
// weekly slot (Day) or a one-off event on a specific calendar Date.
type Service struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Recurring         bool      `json:"recurring"`
	Day               string    `json:"day"`               // monday, tuesday, etc. Set only when Recurring.
	Date              time.Time `json:"date"`              // calendar date. Set only when !Recurring.
	StartTime         string    `json:"startTime"`         // HH:MM format
	OpenLeadMinutes   *int      `json:"openLeadMinutes"`   // nil selects DefaultOpenLeadMinutes
	CloseAfterMinutes *int      `json:"closeAfterMinutes"` // nil selects DefaultCloseAfterMinutes
	Position          int       `json:"position"`
}

// Minutes returns a pointer to n for setting a window offset.
func Minutes(n int) *int {
	return &n
}

// Validate checks if the Service has valid data.
// PRE: Service struct is populated
// POST: Returns nil if valid, *ValidationError otherwise
// INVARIANT: exactly one of Day or Date is set, according to Recurring
func (s *Service) Validate() error {
	if err := s.validate(); err != nil {
		return &ValidationError{ServiceID: s.ID, Err: err}
	}
	return nil
}

func (s *Service) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	hasDay := strings.TrimSpace(s.Day) != ""
	hasDate := !s.Date.IsZero()
	if hasDay && hasDate {
		return ErrDayAndDate
	}
	if s.Recurring {
		if !hasDay {
			return ErrMissingDay
		}
		if !isValidDay(s.Day) {
			return ErrInvalidDay
		}
	} else if !hasDate {
		return ErrMissingDate
	}
	if s.StartTime != "" {
		if _, err := time.Parse("15:04", s.StartTime); err != nil {
			return ErrInvalidStartTime
		}
	}
	if negative(s.OpenLeadMinutes) || negative(s.CloseAfterMinutes) {
		return ErrNegativeOffset
	}
	return nil
}

func negative(minutes *int) bool {
	return minutes != nil && *minutes < 0
}

// OccursOn reports whether the service applies to the given calendar date.
// The weekday and civil date are read in date's own location.
// INVARIANT: Service fields are not mutated
func (s *Service) OccursOn(date time.Time) bool {
	if s.Recurring {
		return s.Day == DayName(date.Weekday())
	}
	return SameDay(s.Date, date)
}

// DayName returns the lower-case weekday name used by Service.Day.
func DayName(d time.Weekday) string {
	return strings.ToLower(d.String())
}

// SameDay reports whether a and b fall on the same civil date, each read in
// its own location.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// ParseDate parses a YYYY-MM-DD date in loc.
func ParseDate(value string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	d, err := time.ParseInLocation(DateLayout, strings.TrimSpace(value), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", value, err)
	}
	return d, nil
}

func isValidDay(day string) bool {
	for _, d := range ValidDays {
		if d == day {
			return true
		}
	}
	return false
}

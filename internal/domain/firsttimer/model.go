package firsttimer

import (
	"errors"
	"sort"
	"strings"
	"time"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
	MaxNoteLength = 2000
)

// Domain errors
var (
	ErrEmptyName      = errors.New("first-timer name cannot be empty")
	ErrNameTooLong    = errors.New("first-timer name cannot exceed 100 characters")
	ErrEmptyVisitDate = errors.New("visit date cannot be zero")
	ErrEmptyStatus    = errors.New("follow-up status cannot be empty")
	ErrEmptyNote      = errors.New("feedback note cannot be empty")
	ErrNoteTooLong    = errors.New("feedback note cannot exceed 2000 characters")
)

// Record is a visitor tracked through the follow-up pipeline.
// Status holds the follow-up taxonomy label current at read time.
type Record struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	VisitDate time.Time  `json:"visitDate"`
	Status    string     `json:"status"`
	Feedback  []Feedback `json:"feedback"` // chronological
	CreatedAt time.Time  `json:"createdAt"`
}

// Feedback is one follow-up contact note.
type Feedback struct {
	ID        string    `json:"id"`
	Note      string    `json:"note"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

// Validate checks if the Record has valid data.
// PRE: Record struct is populated
// POST: Returns nil if valid, error otherwise
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrEmptyName
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if r.VisitDate.IsZero() {
		return ErrEmptyVisitDate
	}
	if strings.TrimSpace(r.Status) == "" {
		return ErrEmptyStatus
	}
	return nil
}

// Validate checks if the Feedback has valid data.
func (f *Feedback) Validate() error {
	if strings.TrimSpace(f.Note) == "" {
		return ErrEmptyNote
	}
	if len(f.Note) > MaxNoteLength {
		return ErrNoteTooLong
	}
	return nil
}

// AddFeedback appends f, keeping Feedback in chronological order.
// PRE: f has been validated
// POST: Feedback is sorted by CreatedAt; equal timestamps keep insertion order
func (r *Record) AddFeedback(f Feedback) {
	r.Feedback = append(r.Feedback, f)
	sort.SliceStable(r.Feedback, func(i, j int) bool {
		return r.Feedback[i].CreatedAt.Before(r.Feedback[j].CreatedAt)
	})
}

// LatestFeedback returns the most recent feedback entry, if any.
func (r *Record) LatestFeedback() (Feedback, bool) {
	if len(r.Feedback) == 0 {
		return Feedback{}, false
	}
	return r.Feedback[len(r.Feedback)-1], true
}

package attendance

import (
	"errors"
	"strings"
	"time"

	"shepherd/internal/domain/service"
)

// Attendance status and mode values
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	ModeOnsite    = "onsite"
	ModeOnline    = "online"
)

// Domain errors
var (
	ErrEmptyPersonID  = errors.New("attendance must be associated with a person")
	ErrEmptyServiceID = errors.New("attendance must reference a service")
	ErrInvalidDate    = errors.New("service date must be YYYY-MM-DD")
	ErrInvalidStatus  = errors.New("status must be 'present' or 'absent'")
	ErrInvalidMode    = errors.New("mode must be 'onsite' or 'online'")
)

// Key identifies one person at one service occurrence.
// The ledger holds at most one Entry per Key.
type Key struct {
	PersonID    string
	ServiceID   string
	ServiceDate string // YYYY-MM-DD
}

// Entry records a person's attendance at a service instance.
type Entry struct {
	ID          string    `json:"id"`
	PersonID    string    `json:"personId"`
	ServiceID   string    `json:"serviceId"`
	ServiceDate string    `json:"serviceDate"` // YYYY-MM-DD format
	Status      string    `json:"status"`
	Mode        string    `json:"mode"`
	MarkedAt    time.Time `json:"markedAt"`
	MarkedBy    string    `json:"markedBy"` // optional: account that recorded the entry
}

// NewEntry builds an entry for personID at inst.
// PRE: inst is a resolved service instance
// POST: Returns an unvalidated Entry keyed to inst's service and date
func NewEntry(personID string, inst service.Instance, status, mode string) Entry {
	return Entry{
		PersonID:    personID,
		ServiceID:   inst.ServiceID,
		ServiceDate: inst.DateKey(),
		Status:      status,
		Mode:        mode,
	}
}

// Key returns the ledger key for the entry.
func (e Entry) Key() Key {
	return Key{PersonID: e.PersonID, ServiceID: e.ServiceID, ServiceDate: e.ServiceDate}
}

// Validate checks if the Entry has valid data.
// PRE: Entry struct is initialized
// POST: Returns a sentinel error if validation fails, nil otherwise
// INVARIANT: PersonID, ServiceID and ServiceDate must identify one occurrence
func (e *Entry) Validate() error {
	if strings.TrimSpace(e.PersonID) == "" {
		return ErrEmptyPersonID
	}
	if strings.TrimSpace(e.ServiceID) == "" {
		return ErrEmptyServiceID
	}
	if _, err := time.Parse(service.DateLayout, e.ServiceDate); err != nil {
		return ErrInvalidDate
	}
	if !ValidStatus(e.Status) {
		return ErrInvalidStatus
	}
	if !ValidMode(e.Mode) {
		return ErrInvalidMode
	}
	return nil
}

// IsPresent returns true if the person was marked present.
func (e *Entry) IsPresent() bool {
	return e.Status == StatusPresent
}

// ValidStatus reports whether s is a recognised attendance status.
func ValidStatus(s string) bool {
	return s == StatusPresent || s == StatusAbsent
}

// ValidMode reports whether m is a recognised attendance mode.
func ValidMode(m string) bool {
	return m == ModeOnsite || m == ModeOnline
}

package member

import (
	"errors"
	"strings"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Business rule constants
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusArchived = "archived"
)

// Domain errors
var (
	ErrEmptyName       = errors.New("member name cannot be empty")
	ErrNameTooLong     = errors.New("member name cannot exceed 100 characters")
	ErrInvalidEmail    = errors.New("member email must be valid")
	ErrInvalidStatus   = errors.New("status must be 'active', 'inactive', or 'archived'")
	ErrAlreadyArchived = errors.New("member is already archived")
	ErrNotArchived     = errors.New("member is not archived")
)

// Member is a person in the congregation whose attendance is recorded.
type Member struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"` // optional
	Phone  string `json:"phone"` // optional
	Status string `json:"status"`
}

// Validate checks if the Member has valid data.
// PRE: Member struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name must not be empty; Email, when given, must contain '@'
func (m *Member) Validate() error {
	if strings.TrimSpace(m.Name) == "" {
		return ErrEmptyName
	}
	if len(m.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return ErrInvalidEmail
	}
	if m.Status != StatusActive && m.Status != StatusInactive && m.Status != StatusArchived {
		return ErrInvalidStatus
	}
	return nil
}

// IsActive returns true if the member is currently active.
// INVARIANT: Status field is not mutated
func (m *Member) IsActive() bool {
	return m.Status == StatusActive
}

// IsArchived returns true if the member is archived.
// INVARIANT: Status field is not mutated
func (m *Member) IsArchived() bool {
	return m.Status == StatusArchived
}

// Archive sets the member status to archived.
// PRE: Member is not already archived
// POST: Status is set to archived
func (m *Member) Archive() error {
	if m.Status == StatusArchived {
		return ErrAlreadyArchived
	}
	m.Status = StatusArchived
	return nil
}

// Restore sets the member status back to active.
// PRE: Member is currently archived
// POST: Status is set to active
func (m *Member) Restore() error {
	if m.Status != StatusArchived {
		return ErrNotArchived
	}
	m.Status = StatusActive
	return nil
}

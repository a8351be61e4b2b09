package followup

import (
	"errors"
	"fmt"
	"strings"
)

// Default status labels. Congregations may rename or extend the taxonomy,
// but integration rate is always computed against Integrated.
const (
	NotContacted = "Not Contacted"
	Contacted    = "Contacted"
	Visiting     = "Visiting"
	Integrated   = "Integrated"
	OptOut       = "Opt-out"
)

// Domain errors
var (
	ErrEmptyLabel     = errors.New("status label cannot be empty")
	ErrEmptyTaxonomy  = errors.New("status taxonomy cannot be empty")
	ErrDuplicateLabel = errors.New("status labels must be unique")
	ErrUnknownStatus  = errors.New("status is not in the taxonomy")
)

// Status is one admin-configurable follow-up stage.
type Status struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position int    `json:"position"`
}

// Taxonomy is the ordered set of follow-up statuses. Declaration order is
// the tie-break order used by reports.
type Taxonomy []Status

// DefaultTaxonomy returns the stock follow-up pipeline.
func DefaultTaxonomy() Taxonomy {
	return NewTaxonomy(NotContacted, Contacted, Visiting, Integrated, OptOut)
}

// NewTaxonomy builds a taxonomy from labels in declaration order.
// POST: IDs are slugs of the labels; the result is not validated
func NewTaxonomy(labels ...string) Taxonomy {
	t := make(Taxonomy, len(labels))
	for i, l := range labels {
		l = strings.TrimSpace(l)
		t[i] = Status{ID: slug(l), Label: l, Position: i}
	}
	return t
}

// Validate checks the taxonomy is non-empty with unique, non-blank labels.
// PRE: none
// POST: Returns nil if valid, a wrapped sentinel error otherwise
func (t Taxonomy) Validate() error {
	if len(t) == 0 {
		return ErrEmptyTaxonomy
	}
	seen := make(map[string]bool, len(t))
	for _, s := range t {
		if strings.TrimSpace(s.Label) == "" {
			return ErrEmptyLabel
		}
		if seen[s.Label] {
			return fmt.Errorf("%w: %q", ErrDuplicateLabel, s.Label)
		}
		seen[s.Label] = true
	}
	return nil
}

// Index returns the declaration index of label, or -1.
func (t Taxonomy) Index(label string) int {
	for i, s := range t {
		if s.Label == label {
			return i
		}
	}
	return -1
}

// Contains reports whether label is part of the taxonomy.
func (t Taxonomy) Contains(label string) bool {
	return t.Index(label) >= 0
}

// Labels returns the labels in declaration order.
func (t Taxonomy) Labels() []string {
	out := make([]string, len(t))
	for i, s := range t {
		out[i] = s.Label
	}
	return out
}

// Check returns ErrUnknownStatus when label is not part of the taxonomy.
func (t Taxonomy) Check(label string) error {
	if !t.Contains(label) {
		return fmt.Errorf("%w: %q", ErrUnknownStatus, label)
	}
	return nil
}

func slug(label string) string {
	return strings.ReplaceAll(strings.ToLower(label), " ", "-")
}

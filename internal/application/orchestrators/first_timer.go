package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/firsttimer"
	"shepherd/internal/domain/followup"

	"github.com/google/uuid"
)

// ErrUnknownFirstTimer is returned when a follow-up targets a missing record.
var ErrUnknownFirstTimer = errors.New("first-timer not found")

// FirstTimerWriter defines the first-timer store interface needed for follow-up.
type FirstTimerWriter interface {
	GetByID(ctx context.Context, id string) (firsttimer.Record, error)
	Save(ctx context.Context, r firsttimer.Record) error
	UpdateStatus(ctx context.Context, id, status string) error
	AddFeedback(ctx context.Context, recordID string, f firsttimer.Feedback) error
}

// FirstTimerDeps holds dependencies shared by the first-timer orchestrators.
type FirstTimerDeps struct {
	FirstTimerStore FirstTimerWriter
	FollowUpStore   TaxonomyStore
	Now             func() time.Time // nil uses time.Now
	GenerateID      func() string    // nil uses uuid
}

func (d FirstTimerDeps) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}

func (d FirstTimerDeps) newID() string {
	if d.GenerateID != nil {
		return d.GenerateID()
	}
	return uuid.New().String()
}

// taxonomy returns the configured statuses, or the default pipeline when none are stored.
func (d FirstTimerDeps) taxonomy(ctx context.Context) (followup.Taxonomy, error) {
	t, err := d.FollowUpStore.List(ctx)
	if err != nil {
		return nil, err
	}
	if len(t) == 0 {
		return followup.DefaultTaxonomy(), nil
	}
	return t, nil
}

// RecordFirstTimerInput carries a new visitor's details.
type RecordFirstTimerInput struct {
	Name      string
	Email     string
	Phone     string
	VisitDate time.Time // zero uses the current time
	Status    string    // empty uses the first status of the taxonomy
}

// ExecuteRecordFirstTimer adds a first-time visitor to the follow-up pipeline.
// PRE: Name is non-empty; Status, when given, is part of the taxonomy
// POST: Record is stored with a generated ID and CreatedAt
func ExecuteRecordFirstTimer(ctx context.Context, input RecordFirstTimerInput, deps FirstTimerDeps) (firsttimer.Record, error) {
	taxonomy, err := deps.taxonomy(ctx)
	if err != nil {
		return firsttimer.Record{}, err
	}

	now := deps.now()
	r := firsttimer.Record{
		ID:        deps.newID(),
		Name:      strings.TrimSpace(input.Name),
		Email:     strings.TrimSpace(input.Email),
		Phone:     strings.TrimSpace(input.Phone),
		VisitDate: input.VisitDate,
		Status:    input.Status,
		CreatedAt: now,
	}
	if r.VisitDate.IsZero() {
		r.VisitDate = now
	}
	if r.Status == "" {
		r.Status = taxonomy[0].Label
	}
	if err := taxonomy.Check(r.Status); err != nil {
		return firsttimer.Record{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := r.Validate(); err != nil {
		return firsttimer.Record{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := deps.FirstTimerStore.Save(ctx, r); err != nil {
		return firsttimer.Record{}, err
	}

	slog.Info("follow_up_event", "event", "first_timer_recorded", "first_timer_id", r.ID, "status", r.Status)
	return r, nil
}

// AddFollowUpFeedbackInput carries one follow-up contact note.
type AddFollowUpFeedbackInput struct {
	FirstTimerID string
	Note         string
	Author       string
}

// ExecuteAddFollowUpFeedback appends a note to a first-timer's follow-up history.
// PRE: Note is non-empty
// POST: Feedback is stored with a generated ID and CreatedAt
func ExecuteAddFollowUpFeedback(ctx context.Context, input AddFollowUpFeedbackInput, deps FirstTimerDeps) (firsttimer.Feedback, error) {
	f := firsttimer.Feedback{
		ID:        deps.newID(),
		Note:      strings.TrimSpace(input.Note),
		Author:    strings.TrimSpace(input.Author),
		CreatedAt: deps.now(),
	}
	if err := f.Validate(); err != nil {
		return firsttimer.Feedback{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := deps.FirstTimerStore.AddFeedback(ctx, input.FirstTimerID, f); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return firsttimer.Feedback{}, fmt.Errorf("%w: %s", ErrUnknownFirstTimer, input.FirstTimerID)
		}
		return firsttimer.Feedback{}, err
	}

	slog.Info("follow_up_event", "event", "feedback_added", "first_timer_id", input.FirstTimerID)
	return f, nil
}

// UpdateFollowUpStatusInput moves a first-timer to another follow-up status.
type UpdateFollowUpStatusInput struct {
	FirstTimerID string
	Status       string
}

// ExecuteUpdateFollowUpStatus changes a first-timer's follow-up status.
// PRE: Status is part of the taxonomy
// POST: The record's Status is the new label
func ExecuteUpdateFollowUpStatus(ctx context.Context, input UpdateFollowUpStatusInput, deps FirstTimerDeps) error {
	taxonomy, err := deps.taxonomy(ctx)
	if err != nil {
		return err
	}
	if err := taxonomy.Check(input.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := deps.FirstTimerStore.UpdateStatus(ctx, input.FirstTimerID, input.Status); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownFirstTimer, input.FirstTimerID)
		}
		return err
	}

	slog.Info("follow_up_event", "event", "status_updated", "first_timer_id", input.FirstTimerID, "status", input.Status)
	return nil
}

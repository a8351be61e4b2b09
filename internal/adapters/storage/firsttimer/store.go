package firsttimer

import (
	"context"

	domain "shepherd/internal/domain/firsttimer"
)

// Store persists first-time visitors and their follow-up feedback.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Record, error)
	Save(ctx context.Context, value domain.Record) error
	// ListByVisitDate returns records whose visit falls on a civil date in
	// [startDate, endDate], read in the visit's own offset. Feedback is not loaded.
	ListByVisitDate(ctx context.Context, startDate, endDate string) ([]domain.Record, error)
	UpdateStatus(ctx context.Context, id, status string) error
	AddFeedback(ctx context.Context, recordID string, f domain.Feedback) error
}

package attendance

import (
	"context"

	domain "shepherd/internal/domain/attendance"
)

// Store is the attendance ledger. It holds at most one entry per
// (person, service, date) key.
type Store interface {
	// Upsert stores e under its key. An existing entry keeps its ID and is
	// overwritten with e's status, mode and marking metadata.
	Upsert(ctx context.Context, e domain.Entry) (domain.Entry, error)
	Get(ctx context.Context, key domain.Key) (domain.Entry, error)
	ListByService(ctx context.Context, serviceID, serviceDate string) ([]domain.Entry, error)
	ListByDateRange(ctx context.Context, startDate, endDate string) ([]domain.Entry, error)
	ListByPerson(ctx context.Context, personID string) ([]domain.Entry, error)
	Count(ctx context.Context) (int, error)
}

package attendance

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"shepherd/internal/adapters/storage"
	domain "shepherd/internal/domain/attendance"
)

// MemoryStore is an in-process attendance ledger. It is safe for concurrent
// use and serves tests and single-node deployments without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[domain.Key]domain.Entry
}

// NewMemoryStore creates an empty ledger.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[domain.Key]domain.Entry)}
}

// Upsert inserts e or overwrites the entry already held for its key.
// POST: The returned entry carries the ID first stored for the key
func (s *MemoryStore) Upsert(ctx context.Context, e domain.Entry) (domain.Entry, error) {
	if err := ctx.Err(); err != nil {
		return domain.Entry{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	key := e.Key()
	if prev, ok := s.entries[key]; ok {
		e.ID = prev.ID
	}
	s.entries[key] = e
	return e, nil
}

// Get retrieves the entry for key.
func (s *MemoryStore) Get(ctx context.Context, key domain.Key) (domain.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[key]
	if !ok {
		return domain.Entry{}, fmt.Errorf("attendance %s/%s/%s: %w", key.PersonID, key.ServiceID, key.ServiceDate, storage.ErrNotFound)
	}
	return e, nil
}

// ListByService returns every entry for one service occurrence, ordered by person.
func (s *MemoryStore) ListByService(ctx context.Context, serviceID, serviceDate string) ([]domain.Entry, error) {
	return s.filter(func(e domain.Entry) bool {
		return e.ServiceID == serviceID && e.ServiceDate == serviceDate
	}), nil
}

// ListByDateRange returns entries with startDate <= ServiceDate <= endDate.
func (s *MemoryStore) ListByDateRange(ctx context.Context, startDate, endDate string) ([]domain.Entry, error) {
	return s.filter(func(e domain.Entry) bool {
		return e.ServiceDate >= startDate && e.ServiceDate <= endDate
	}), nil
}

// ListByPerson returns a person's attendance history, oldest first.
func (s *MemoryStore) ListByPerson(ctx context.Context, personID string) ([]domain.Entry, error) {
	return s.filter(func(e domain.Entry) bool {
		return e.PersonID == personID
	}), nil
}

// Count returns the number of entries in the ledger.
func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

// filter returns matching entries ordered by date, service and person so that
// results match the SQLite store.
func (s *MemoryStore) filter(keep func(domain.Entry) bool) []domain.Entry {
	s.mu.RLock()
	var out []domain.Entry
	for _, e := range s.entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.ServiceDate != b.ServiceDate {
			return a.ServiceDate < b.ServiceDate
		}
		if a.ServiceID != b.ServiceID {
			return a.ServiceID < b.ServiceID
		}
		return a.PersonID < b.PersonID
	})
	return out
}

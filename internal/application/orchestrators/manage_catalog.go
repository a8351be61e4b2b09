package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/followup"
	"shepherd/internal/domain/service"
)

// ErrUnknownService is returned when a catalog change targets a missing service.
var ErrUnknownService = errors.New("service not found")

// CatalogStore defines the service store interface needed for catalog edits.
type CatalogStore interface {
	ServiceStoreForSeed
	GetByID(ctx context.Context, id string) (service.Service, error)
	Delete(ctx context.Context, id string) error
}

// CatalogDeps holds dependencies for catalog edits.
type CatalogDeps struct {
	ServiceStore CatalogStore
}

// ExecuteSaveService creates or replaces one service definition.
// PRE: s has a non-empty ID
// POST: s is stored at its Position; catalog order decides which service wins a date
func ExecuteSaveService(ctx context.Context, s service.Service, deps CatalogDeps) (service.Service, error) {
	if err := s.Validate(); err != nil {
		return service.Service{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	if err := deps.ServiceStore.Save(ctx, s); err != nil {
		return service.Service{}, err
	}

	slog.Info("catalog_event", "event", "service_saved", "service_id", s.ID, "recurring", s.Recurring)
	return s, nil
}

// ExecuteDeleteService removes a service from the catalog. Attendance already
// recorded against it is kept.
// POST: the service no longer matches any date
func ExecuteDeleteService(ctx context.Context, id string, deps CatalogDeps) error {
	if _, err := deps.ServiceStore.GetByID(ctx, id); errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrUnknownService, id)
	} else if err != nil {
		return err
	}
	if err := deps.ServiceStore.Delete(ctx, id); err != nil {
		return err
	}
	slog.Info("catalog_event", "event", "service_deleted", "service_id", id)
	return nil
}

// ExecuteReplaceTaxonomy swaps the follow-up status list. First-timers
// holding a label that is dropped are skipped by reports until moved.
// PRE: labels are non-empty and unique
// POST: the stored taxonomy is labels in the given order
func ExecuteReplaceTaxonomy(ctx context.Context, labels []string, store FollowUpStoreForSeed) (followup.Taxonomy, error) {
	t := followup.NewTaxonomy(labels...)
	if err := t.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := store.Replace(ctx, t); err != nil {
		return nil, err
	}
	slog.Info("follow_up_event", "event", "taxonomy_replaced", "statuses", len(t))
	return t, nil
}

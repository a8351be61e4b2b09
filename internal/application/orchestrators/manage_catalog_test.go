package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/followup"
	"shepherd/internal/domain/service"
)

// mockCatalogStore keys services by ID in insertion order.
type mockCatalogStore struct {
	mockServiceStore
}

func (m *mockCatalogStore) Save(_ context.Context, s service.Service) error {
	for i := range m.services {
		if m.services[i].ID == s.ID {
			m.services[i] = s
			return nil
		}
	}
	m.services = append(m.services, s)
	return nil
}

func (m *mockCatalogStore) GetByID(_ context.Context, id string) (service.Service, error) {
	for _, s := range m.services {
		if s.ID == id {
			return s, nil
		}
	}
	return service.Service{}, fmt.Errorf("service %q: %w", id, storage.ErrNotFound)
}

func (m *mockCatalogStore) Delete(_ context.Context, id string) error {
	for i, s := range m.services {
		if s.ID == id {
			m.services = append(m.services[:i], m.services[i+1:]...)
			return nil
		}
	}
	return nil
}

// TestExecuteSaveService verifies create, replace and validation.
func TestExecuteSaveService(t *testing.T) {
	store := &mockCatalogStore{}
	deps := CatalogDeps{ServiceStore: store}
	ctx := context.Background()

	sunday := service.Service{ID: "sunday", Name: "Sunday Worship", Recurring: true, Day: service.Sunday}
	if _, err := ExecuteSaveService(ctx, sunday, deps); err != nil {
		t.Fatalf("ExecuteSaveService: %v", err)
	}
	sunday.StartTime = "10:30"
	if _, err := ExecuteSaveService(ctx, sunday, deps); err != nil {
		t.Fatalf("ExecuteSaveService replace: %v", err)
	}
	if len(store.services) != 1 || store.services[0].StartTime != "10:30" {
		t.Errorf("services = %+v, want one replaced entry", store.services)
	}

	bad := service.Service{ID: "vigil", Name: "Vigil", Recurring: true}
	_, err := ExecuteSaveService(ctx, bad, deps)
	if !errors.Is(err, ErrInvalidInput) || !errors.Is(err, service.ErrMissingDay) {
		t.Errorf("err = %v, want ErrInvalidInput wrapping ErrMissingDay", err)
	}
}

// TestExecuteDeleteService verifies deletion and unknown IDs.
func TestExecuteDeleteService(t *testing.T) {
	store := &mockCatalogStore{}
	store.services = []service.Service{{ID: "sunday", Name: "Sunday Worship", Recurring: true, Day: service.Sunday}}
	deps := CatalogDeps{ServiceStore: store}

	if err := ExecuteDeleteService(context.Background(), "sunday", deps); err != nil {
		t.Fatalf("ExecuteDeleteService: %v", err)
	}
	if len(store.services) != 0 {
		t.Errorf("services = %+v, want none", store.services)
	}
	if err := ExecuteDeleteService(context.Background(), "sunday", deps); !errors.Is(err, ErrUnknownService) {
		t.Errorf("err = %v, want ErrUnknownService", err)
	}
}

// TestExecuteReplaceTaxonomy verifies the stored taxonomy and duplicate rejection.
func TestExecuteReplaceTaxonomy(t *testing.T) {
	store := &mockFollowUpStore{}

	got, err := ExecuteReplaceTaxonomy(context.Background(), []string{"New", " Called ", "Joined"}, store)
	if err != nil {
		t.Fatalf("ExecuteReplaceTaxonomy: %v", err)
	}
	if len(got) != 3 || got[1].Label != "Called" || store.replaced != 1 {
		t.Errorf("taxonomy = %+v, replaced = %d", got, store.replaced)
	}

	_, err = ExecuteReplaceTaxonomy(context.Background(), []string{"New", "New"}, store)
	if !errors.Is(err, followup.ErrDuplicateLabel) {
		t.Errorf("err = %v, want ErrDuplicateLabel", err)
	}
	if store.replaced != 1 {
		t.Error("invalid taxonomy must not be stored")
	}
}

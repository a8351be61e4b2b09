package orchestrators

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"shepherd/internal/domain/followup"
	"shepherd/internal/domain/service"

	"gopkg.in/yaml.v3"
)

// CatalogSeed is the YAML seed file layout.
//
//	services:
//	  - id: sunday-worship
//	    name: Sunday Worship
//	    day: sunday
//	    start: "09:00"
//	  - id: christmas-eve
//	    name: Christmas Eve Candlelight
//	    date: "2026-12-24"
//	    start: "19:00"
//	followup_statuses: [Not Contacted, Contacted, Visiting, Integrated, Opt-out]
type CatalogSeed struct {
	Services         []ServiceSeed `yaml:"services"`
	FollowUpStatuses []string      `yaml:"followup_statuses"`
}

// ServiceSeed is one service entry in a seed file. Exactly one of Day or Date is set.
type ServiceSeed struct {
	ID                string `yaml:"id"`
	Name              string `yaml:"name"`
	Day               string `yaml:"day"`
	Date              string `yaml:"date"` // YYYY-MM-DD
	Start             string `yaml:"start"`
	OpenLeadMinutes   *int   `yaml:"open_lead_minutes"`   // omitted selects the default
	CloseAfterMinutes *int   `yaml:"close_after_minutes"` // omitted selects the default
}

// ParseCatalogSeed decodes and validates a YAML seed document.
// PRE: none
// POST: Returns services in file order with Position set, and a validated taxonomy
// (the default taxonomy when the file names none)
func ParseCatalogSeed(data []byte) ([]service.Service, followup.Taxonomy, error) {
	var seed CatalogSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, nil, fmt.Errorf("%w: parse seed: %w", ErrInvalidInput, err)
	}

	services := make([]service.Service, 0, len(seed.Services))
	for i, s := range seed.Services {
		svc := service.Service{
			ID:                strings.TrimSpace(s.ID),
			Name:              strings.TrimSpace(s.Name),
			Recurring:         s.Day != "",
			Day:               strings.ToLower(strings.TrimSpace(s.Day)),
			StartTime:         s.Start,
			OpenLeadMinutes:   s.OpenLeadMinutes,
			CloseAfterMinutes: s.CloseAfterMinutes,
			Position:          i,
		}
		if s.Date != "" {
			d, err := service.ParseDate(s.Date, time.UTC)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: service %q: %w", ErrInvalidInput, s.ID, err)
			}
			svc.Date = d
		}
		if err := svc.Validate(); err != nil {
			return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
		services = append(services, svc)
	}
	seen := make(map[string]bool, len(services))
	for _, s := range services {
		if seen[s.ID] {
			return nil, nil, fmt.Errorf("%w: duplicate service id %q", ErrInvalidInput, s.ID)
		}
		seen[s.ID] = true
	}

	taxonomy := followup.DefaultTaxonomy()
	if len(seed.FollowUpStatuses) > 0 {
		taxonomy = followup.NewTaxonomy(seed.FollowUpStatuses...)
	}
	if err := taxonomy.Validate(); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return services, taxonomy, nil
}

// ServiceStoreForSeed defines the store interface needed by SeedCatalog.
type ServiceStoreForSeed interface {
	Save(ctx context.Context, s service.Service) error
	List(ctx context.Context) ([]service.Service, error)
}

// FollowUpStoreForSeed defines the taxonomy store interface needed by SeedCatalog.
type FollowUpStoreForSeed interface {
	List(ctx context.Context) (followup.Taxonomy, error)
	Replace(ctx context.Context, t followup.Taxonomy) error
}

// SeedCatalogInput carries the seed document. An empty Data seeds only the
// default follow-up taxonomy.
type SeedCatalogInput struct {
	Data []byte
}

// SeedCatalogDeps holds dependencies for SeedCatalog.
type SeedCatalogDeps struct {
	ServiceStore  ServiceStoreForSeed
	FollowUpStore FollowUpStoreForSeed
}

// ExecuteSeedCatalog loads services and the follow-up taxonomy into empty stores.
// PRE: Data is empty or a valid seed document
// POST: Stores that already hold data are left unchanged
func ExecuteSeedCatalog(ctx context.Context, input SeedCatalogInput, deps SeedCatalogDeps) error {
	services, taxonomy, err := ParseCatalogSeed(input.Data)
	if err != nil {
		return err
	}

	existing, err := deps.ServiceStore.List(ctx)
	if err != nil {
		return err
	}
	seededServices := 0
	if len(existing) == 0 {
		for _, s := range services {
			if err := deps.ServiceStore.Save(ctx, s); err != nil {
				return fmt.Errorf("seed service %q: %w", s.ID, err)
			}
		}
		seededServices = len(services)
	}

	current, err := deps.FollowUpStore.List(ctx)
	if err != nil {
		return err
	}
	seededStatuses := 0
	if len(current) == 0 {
		if err := deps.FollowUpStore.Replace(ctx, taxonomy); err != nil {
			return fmt.Errorf("seed follow-up taxonomy: %w", err)
		}
		seededStatuses = len(taxonomy)
	}

	slog.Info("seed_event", "event", "catalog_seeded", "services", seededServices, "followup_statuses", seededStatuses)
	return nil
}

package projections

import (
	"context"
	"time"

	"shepherd/internal/domain/service"
	"shepherd/internal/domain/window"
)

// ServiceCatalogStore defines the store interface needed to load the catalog.
type ServiceCatalogStore interface {
	List(ctx context.Context) ([]service.Service, error)
}

// GetServiceForDateQuery carries query parameters.
type GetServiceForDateQuery struct {
	Date     string         // YYYY-MM-DD; empty means the civil date of Now
	Now      time.Time      // evaluation instant
	Location *time.Location // congregation time zone; nil uses Now's location
}

// GetServiceForDateResult carries the matched instance and its window.
// Instance is nil when no service applies to the date.
type GetServiceForDateResult struct {
	Date     time.Time         `json:"date"`
	Instance *service.Instance `json:"instance"`
	Window   window.Evaluation `json:"window"`
}

// GetServiceForDateDeps holds dependencies for GetServiceForDate.
type GetServiceForDateDeps struct {
	ServiceStore ServiceCatalogStore
}

// QueryGetServiceForDate resolves the service instance for a date and the
// state of its attendance window at query.Now.
// PRE: query.Date is empty or YYYY-MM-DD
// POST: Result.Window.State is no_service exactly when Result.Instance is nil
func QueryGetServiceForDate(ctx context.Context, query GetServiceForDateQuery, deps GetServiceForDateDeps) (GetServiceForDateResult, error) {
	loc := query.Location
	if loc == nil {
		loc = query.Now.Location()
	}

	var date time.Time
	if query.Date == "" {
		y, m, d := query.Now.In(loc).Date()
		date = time.Date(y, m, d, 0, 0, 0, 0, loc)
	} else {
		parsed, err := service.ParseDate(query.Date, loc)
		if err != nil {
			return GetServiceForDateResult{}, err
		}
		date = parsed
	}

	services, err := deps.ServiceStore.List(ctx)
	if err != nil {
		return GetServiceForDateResult{}, err
	}
	catalog, err := service.NewCatalog(services)
	if err != nil {
		return GetServiceForDateResult{}, err
	}

	inst := catalog.Match(date)
	return GetServiceForDateResult{
		Date:     date,
		Instance: inst,
		Window:   window.Evaluate(inst, query.Now),
	}, nil
}

package service

import (
	"time"
)

// Catalog is an ordered, validated snapshot of a congregation's services.
// Order is significant: Match returns the first service that applies.
type Catalog struct {
	services []Service
}

// NewCatalog validates services and returns them as a Catalog in input order.
// PRE: services is the admin-defined list in the desired tie-break order
// POST: Returns a Catalog, or the first *ValidationError encountered
func NewCatalog(services []Service) (Catalog, error) {
	out := make([]Service, len(services))
	for i := range services {
		if err := services[i].Validate(); err != nil {
			return Catalog{}, err
		}
		out[i] = services[i]
	}
	return Catalog{services: out}, nil
}

// Services returns a copy of the catalog entries in order.
func (c Catalog) Services() []Service {
	out := make([]Service, len(c.services))
	copy(out, c.services)
	return out
}

// Len returns the number of services in the catalog.
func (c Catalog) Len() int {
	return len(c.services)
}

// Match resolves the service instance for a calendar date.
// The first service in catalog order that occurs on date wins; dated services
// get no implicit priority over recurring ones.
// PRE: date is interpreted in its own location (the congregation's calendar)
// POST: Returns the instance, or nil when no service applies to date
func (c Catalog) Match(date time.Time) *Instance {
	for i := range c.services {
		s := &c.services[i]
		if s.OccursOn(date) {
			inst := newInstance(*s, date)
			return &inst
		}
	}
	return nil
}

// Match validates services and resolves the instance for date in one call.
// A nil instance with a nil error means no service applies.
func Match(services []Service, date time.Time) (*Instance, error) {
	c, err := NewCatalog(services)
	if err != nil {
		return nil, err
	}
	return c.Match(date), nil
}

// Instance is the concrete occurrence of a Service on one calendar date.
// It is derived on demand and never persisted.
type Instance struct {
	ServiceID         string    `json:"serviceId"`
	ServiceName       string    `json:"serviceName"`
	Date              time.Time `json:"date"`      // midnight of the civil date, in the date's location
	StartTime         string    `json:"startTime"` // HH:MM format
	OpenLeadMinutes   int       `json:"openLeadMinutes"`
	CloseAfterMinutes int       `json:"closeAfterMinutes"`
}

func newInstance(s Service, date time.Time) Instance {
	y, m, d := date.Date()
	inst := Instance{
		ServiceID:         s.ID,
		ServiceName:       s.Name,
		Date:              time.Date(y, m, d, 0, 0, 0, 0, date.Location()),
		StartTime:         s.StartTime,
		OpenLeadMinutes:   minutesOr(s.OpenLeadMinutes, DefaultOpenLeadMinutes),
		CloseAfterMinutes: minutesOr(s.CloseAfterMinutes, DefaultCloseAfterMinutes),
	}
	if inst.StartTime == "" {
		inst.StartTime = DefaultStartTime
	}
	return inst
}

func minutesOr(configured *int, fallback int) int {
	if configured == nil {
		return fallback
	}
	return *configured
}

// DateKey returns the instance date in YYYY-MM-DD form.
func (i Instance) DateKey() string {
	return i.Date.Format(DateLayout)
}

// StartsAt returns the wall-clock start of the instance.
// PRE: StartTime is HH:MM
// POST: Returns the start instant in the instance date's location, or an error
func (i Instance) StartsAt() (time.Time, error) {
	st, err := time.Parse("15:04", i.StartTime)
	if err != nil {
		return time.Time{}, ErrInvalidStartTime
	}
	y, m, d := i.Date.Date()
	return time.Date(y, m, d, st.Hour(), st.Minute(), 0, 0, i.Date.Location()), nil
}

// OpensAt returns when attendance marking opens.
func (i Instance) OpensAt() (time.Time, error) {
	start, err := i.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(-time.Duration(i.OpenLeadMinutes) * time.Minute), nil
}

// ClosesAt returns when attendance marking closes.
func (i Instance) ClosesAt() (time.Time, error) {
	start, err := i.StartsAt()
	if err != nil {
		return time.Time{}, err
	}
	return start.Add(time.Duration(i.CloseAfterMinutes) * time.Minute), nil
}

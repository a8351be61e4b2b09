package followup

import (
	"context"

	domain "shepherd/internal/domain/followup"
)

// Store persists the admin-configured follow-up taxonomy.
type Store interface {
	// List returns the taxonomy in declaration order. An empty store yields
	// an empty taxonomy; callers choose whether to fall back to the default.
	List(ctx context.Context) (domain.Taxonomy, error)
	// Replace swaps the whole taxonomy atomically.
	Replace(ctx context.Context, t domain.Taxonomy) error
}

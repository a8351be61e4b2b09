package member

import (
	"context"

	domain "shepherd/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	Save(ctx context.Context, value domain.Member) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Status string // empty matches every status
	Limit  int    // zero means no limit
	Offset int
}

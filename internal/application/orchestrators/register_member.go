package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/member"

	"github.com/google/uuid"
)

// MemberStore defines the interface for member persistence.
type MemberStore interface {
	Save(ctx context.Context, m member.Member) error
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// RegisterMemberInput carries input for the orchestrator.
// An empty ID registers a new member; a known ID updates that member's details.
type RegisterMemberInput struct {
	ID     string
	Name   string
	Email  string
	Phone  string
	Status string // empty means active
}

// RegisterMemberDeps holds dependencies for RegisterMember.
type RegisterMemberDeps struct {
	MemberStore MemberStore
	GenerateID  func() string // nil uses uuid
}

// ExecuteRegisterMember creates or updates a congregation member.
// PRE: non-empty name; email, when given, contains '@'
// POST: Member is stored with an ID; an existing member keeps its ID
func ExecuteRegisterMember(ctx context.Context, input RegisterMemberInput, deps RegisterMemberDeps) (member.Member, error) {
	m := member.Member{
		ID:     strings.TrimSpace(input.ID),
		Name:   strings.TrimSpace(input.Name),
		Email:  strings.TrimSpace(input.Email),
		Phone:  strings.TrimSpace(input.Phone),
		Status: input.Status,
	}
	if m.Status == "" {
		m.Status = member.StatusActive
	}
	if err := m.Validate(); err != nil {
		return member.Member{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}

	event := "member_updated"
	if m.ID == "" {
		event = "member_registered"
		if deps.GenerateID != nil {
			m.ID = deps.GenerateID()
		} else {
			m.ID = uuid.New().String()
		}
	} else if _, err := deps.MemberStore.GetByID(ctx, m.ID); errors.Is(err, storage.ErrNotFound) {
		event = "member_registered"
	} else if err != nil {
		return member.Member{}, err
	}

	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", event, "member_id", m.ID, "status", m.Status)
	return m, nil
}

package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"shepherd/internal/adapters/storage"
	"shepherd/internal/domain/member"
)

// ArchiveMemberInput carries input for the archive and restore orchestrators.
type ArchiveMemberInput struct {
	MemberID string
}

// ArchiveMemberDeps holds dependencies for ArchiveMember and RestoreMember.
type ArchiveMemberDeps struct {
	MemberStore MemberStore
}

// ExecuteArchiveMember archives a member. Archived members keep their
// attendance history but can no longer be marked.
// PRE: MemberID must be non-empty; member must exist and not be archived
// POST: Member status set to archived
func ExecuteArchiveMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) (member.Member, error) {
	return changeMemberStatus(ctx, input.MemberID, deps, "member_archived", (*member.Member).Archive)
}

// ExecuteRestoreMember restores an archived member to active status.
// PRE: MemberID must be non-empty; member must exist and be archived
// POST: Member status set to active
func ExecuteRestoreMember(ctx context.Context, input ArchiveMemberInput, deps ArchiveMemberDeps) (member.Member, error) {
	return changeMemberStatus(ctx, input.MemberID, deps, "member_restored", (*member.Member).Restore)
}

func changeMemberStatus(ctx context.Context, id string, deps ArchiveMemberDeps, event string, apply func(*member.Member) error) (member.Member, error) {
	if id == "" {
		return member.Member{}, fmt.Errorf("%w: member ID is required", ErrInvalidInput)
	}

	m, err := deps.MemberStore.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return member.Member{}, fmt.Errorf("%w: %s", ErrUnknownMember, id)
	}
	if err != nil {
		return member.Member{}, err
	}

	if err := apply(&m); err != nil {
		return member.Member{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	slog.Info("member_event", "event", event, "member_id", id)
	return m, nil
}

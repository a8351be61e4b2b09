package orchestrators

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"shepherd/internal/adapters/storage"
	memberStore "shepherd/internal/adapters/storage/member"
	"shepherd/internal/domain/member"
	"shepherd/internal/domain/service"
)

// --- Mock member store ---

type mockMemberStore struct {
	mu      sync.RWMutex
	members map[string]member.Member
	listErr error
}

func newMockMemberStore(members ...member.Member) *mockMemberStore {
	m := &mockMemberStore{members: make(map[string]member.Member)}
	for _, mem := range members {
		m.members[mem.ID] = mem
	}
	return m
}

// GetByID retrieves a mock member by ID.
// POST: Returns the member or an error wrapping storage.ErrNotFound
func (m *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mem, ok := m.members[id]
	if !ok {
		return member.Member{}, fmt.Errorf("member %q: %w", id, storage.ErrNotFound)
	}
	return mem, nil
}

// Save stores a mock member.
func (m *mockMemberStore) Save(_ context.Context, mem member.Member) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.members[mem.ID] = mem
	return nil
}

// List returns mock members matching the status filter, ordered by ID.
func (m *mockMemberStore) List(_ context.Context, filter memberStore.ListFilter) ([]member.Member, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []member.Member
	for _, id := range sortedKeys(m.members) {
		mem := m.members[id]
		if filter.Status == "" || mem.Status == filter.Status {
			out = append(out, mem)
		}
	}
	return out, nil
}

func sortedKeys(in map[string]member.Member) []string {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func activeMember(id string) member.Member {
	return member.Member{ID: id, Name: "Member " + id, Status: member.StatusActive}
}

// sundayInstance resolves the weekly service on Sunday 18 October 2026.
func sundayInstance(t *testing.T) service.Instance {
	t.Helper()
	inst, err := service.Match([]service.Service{
		{ID: "sunday-worship", Name: "Sunday Worship", Recurring: true, Day: service.Sunday},
	}, time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC))
	if err != nil || inst == nil {
		t.Fatalf("Match: inst=%v err=%v", inst, err)
	}
	return *inst
}

var fixedNow = time.Date(2026, 10, 18, 9, 10, 0, 0, time.UTC)

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

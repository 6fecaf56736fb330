// Package membership persists the tenant-user pivot rows, including the
// per-tenant role each user carries.
package membership

import (
	"context"
	"sort"
	"sync"

	"newsdesk/internal/tenant/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

type memberKey struct {
	tenant id.TenantID
	user   id.UserID
}

// InMemory keeps memberships in a mutex-guarded map. Attach order is
// preserved via CreatedAt so membership listings stay stable.
type InMemory struct {
	mu      sync.RWMutex
	members map[memberKey]*models.Membership
}

func NewInMemory() *InMemory {
	return &InMemory{members: make(map[memberKey]*models.Membership)}
}

// Attach inserts the membership, or updates the role when the pair already
// exists. Re-attaching is how role changes are expressed.
func (s *InMemory) Attach(ctx context.Context, m *models.Membership) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{tenant: m.TenantID, user: m.UserID}
	if existing, ok := s.members[key]; ok {
		existing.Role = m.Role
		existing.UpdatedAt = m.UpdatedAt
		return nil
	}

	cp := *m
	s.members[key] = &cp
	return nil
}

func (s *InMemory) Detach(ctx context.Context, tenantID id.TenantID, userID id.UserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := memberKey{tenant: tenantID, user: userID}
	if _, ok := s.members[key]; !ok {
		return sentinel.ErrNotFound
	}
	delete(s.members, key)
	return nil
}

func (s *InMemory) Find(ctx context.Context, tenantID id.TenantID, userID id.UserID) (*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.members[memberKey{tenant: tenantID, user: userID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

// ListByUser returns the user's memberships in attach order.
func (s *InMemory) ListByUser(ctx context.Context, userID id.UserID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Membership
	for _, m := range s.members {
		if m.UserID == userID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByAttachOrder(out)
	return out, nil
}

// ListByTenant returns the tenant's memberships in attach order.
func (s *InMemory) ListByTenant(ctx context.Context, tenantID id.TenantID) ([]*models.Membership, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Membership
	for _, m := range s.members {
		if m.TenantID == tenantID {
			cp := *m
			out = append(out, &cp)
		}
	}
	sortByAttachOrder(out)
	return out, nil
}

func (s *InMemory) CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, m := range s.members {
		if m.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

func sortByAttachOrder(memberships []*models.Membership) {
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].CreatedAt.Before(memberships[j].CreatedAt)
	})
}

// Package tenant provides the tenant persistence implementations: an
// in-memory store for development and unit tests, and a Postgres store.
package tenant

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdesk/internal/tenant/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. Domain uniqueness is enforced
// case-insensitively, mirroring the Postgres unique index on lower(domain).
type InMemory struct {
	mu      sync.RWMutex
	tenants map[id.TenantID]*models.Tenant
}

func NewInMemory() *InMemory {
	return &InMemory{tenants: make(map[id.TenantID]*models.Tenant)}
}

func (s *InMemory) Create(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tenant.Domain != "" && s.domainTakenLocked(tenant.Domain, tenant.ID) {
		return sentinel.ErrAlreadyUsed
	}

	cp := *tenant
	s.tenants[tenant.ID] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, tenant *models.Tenant) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.tenants[tenant.ID]
	if !ok || existing.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	if tenant.Domain != "" && s.domainTakenLocked(tenant.Domain, tenant.ID) {
		return sentinel.ErrAlreadyUsed
	}

	cp := *tenant
	s.tenants[tenant.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, tenantID id.TenantID) (*models.Tenant, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tenant, ok := s.tenants[tenantID]
	if !ok || tenant.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *tenant
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, filter models.TenantFilter) ([]*models.Tenant, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	var matched []*models.Tenant
	for _, t := range s.tenants {
		if t.DeletedAt != nil {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Name), search) &&
			!strings.Contains(strings.ToLower(t.Domain), search) {
			continue
		}
		cp := *t
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

func (s *InMemory) Delete(ctx context.Context, tenantID id.TenantID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tenant, ok := s.tenants[tenantID]
	if !ok || tenant.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	tenant.DeletedAt = &now
	return nil
}

func (s *InMemory) domainTakenLocked(domain string, self id.TenantID) bool {
	for _, t := range s.tenants {
		if t.ID == self || t.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(t.Domain, domain) {
			return true
		}
	}
	return false
}

func paginate(tenants []*models.Tenant, page, perPage int) []*models.Tenant {
	start := (page - 1) * perPage
	if start >= len(tenants) {
		return nil
	}
	end := start + perPage
	if end > len(tenants) {
		end = len(tenants)
	}
	return tenants[start:end]
}

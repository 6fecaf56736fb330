// Package entry provides the activity log persistence implementations.
package entry

import (
	"context"
	"sort"
	"sync"

	"newsdesk/internal/activitylog/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded append-only store. Entries are never updated
// or deleted; the log is the system of record for what happened.
type InMemory struct {
	mu      sync.RWMutex
	entries []*models.Entry
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (s *InMemory) Append(ctx context.Context, e *models.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *e
	s.entries = append(s.entries, &cp)
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, logID id.LogID) (*models.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, e := range s.entries {
		if e.ID == logID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(ctx context.Context, filter models.EntryFilter) ([]*models.Entry, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*models.Entry
	for _, e := range s.entries {
		if !filter.TenantID.IsNil() && (e.TenantID == nil || *e.TenantID != filter.TenantID) {
			continue
		}
		if !filter.ActorID.IsNil() && (e.ActorID == nil || *e.ActorID != filter.ActorID) {
			continue
		}
		if filter.LogType != "" && e.LogType != filter.LogType {
			continue
		}
		if filter.EntityKind != "" && e.EntityKind != filter.EntityKind {
			continue
		}
		cp := *e
		matched = append(matched, &cp)
	}

	// Newest first.
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

func paginate(entries []*models.Entry, page, perPage int) []*models.Entry {
	start := (page - 1) * perPage
	if start >= len(entries) {
		return nil
	}
	end := start + perPage
	if end > len(entries) {
		end = len(entries)
	}
	return entries[start:end]
}

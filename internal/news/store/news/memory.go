// Package news provides the article persistence implementations: an
// in-memory store for development and unit tests, and a Postgres store.
package news

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdesk/internal/news/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store.
type InMemory struct {
	mu       sync.RWMutex
	articles map[id.NewsID]*models.News
}

func NewInMemory() *InMemory {
	return &InMemory{articles: make(map[id.NewsID]*models.News)}
}

func (s *InMemory) Create(ctx context.Context, article *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *article
	s.articles[article.ID] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, article *models.News) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.articles[article.ID]
	if !ok || existing.DeletedAt != nil {
		return sentinel.ErrNotFound
	}

	cp := *article
	s.articles[article.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, newsID id.NewsID) (*models.News, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	article, ok := s.articles[newsID]
	if !ok || article.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *article
	return &cp, nil
}

func (s *InMemory) List(ctx context.Context, filter models.NewsFilter) ([]*models.News, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[id.TenantID]bool
	if filter.TenantIDs != nil {
		allowed = make(map[id.TenantID]bool, len(filter.TenantIDs))
		for _, tenantID := range filter.TenantIDs {
			allowed[tenantID] = true
		}
	}

	search := strings.ToLower(filter.Search)
	var matched []*models.News
	for _, article := range s.articles {
		if article.DeletedAt != nil {
			continue
		}
		if allowed != nil && !allowed[article.TenantID] {
			continue
		}
		if !filter.AuthorID.IsNil() && article.AuthorID != filter.AuthorID {
			continue
		}
		if filter.Status != "" {
			if article.Status != filter.Status {
				continue
			}
		} else if article.Status == models.StatusTrash {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(article.Title), search) &&
			!strings.Contains(strings.ToLower(article.Content), search) {
			continue
		}
		cp := *article
		matched = append(matched, &cp)
	}

	// Newest first, matching the API contract.
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

func (s *InMemory) Delete(ctx context.Context, newsID id.NewsID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.articles[newsID]
	if !ok || article.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	article.DeletedAt = &now
	return nil
}

// CountByTenant counts live articles in a tenant, for delete gating.
func (s *InMemory) CountByTenant(ctx context.Context, tenantID id.TenantID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, article := range s.articles {
		if article.DeletedAt == nil && article.TenantID == tenantID {
			count++
		}
	}
	return count, nil
}

// CountByAuthor counts live articles written by a user across all tenants.
func (s *InMemory) CountByAuthor(ctx context.Context, authorID id.UserID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, article := range s.articles {
		if article.DeletedAt == nil && article.AuthorID == authorID {
			count++
		}
	}
	return count, nil
}

func paginate(articles []*models.News, page, perPage int) []*models.News {
	start := (page - 1) * perPage
	if start >= len(articles) {
		return nil
	}
	end := start + perPage
	if end > len(articles) {
		end = len(articles)
	}
	return articles[start:end]
}

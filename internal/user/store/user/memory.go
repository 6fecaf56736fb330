// Package user provides the user persistence implementations: an in-memory
// store for development and unit tests, and a Postgres store.
package user

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"newsdesk/internal/user/models"
	id "newsdesk/pkg/domain"
	"newsdesk/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded map store. Email uniqueness is enforced
// case-insensitively, mirroring the Postgres unique index on lower(email).
type InMemory struct {
	mu    sync.RWMutex
	users map[id.UserID]*models.User
}

func NewInMemory() *InMemory {
	return &InMemory{users: make(map[id.UserID]*models.User)}
}

func (s *InMemory) Create(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.emailTakenLocked(user.Email, user.ID) {
		return sentinel.ErrAlreadyUsed
	}

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemory) Update(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.users[user.ID]
	if !ok || existing.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	if s.emailTakenLocked(user.Email, user.ID) {
		return sentinel.ErrAlreadyUsed
	}

	cp := *user
	s.users[user.ID] = &cp
	return nil
}

func (s *InMemory) FindByID(ctx context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok || user.DeletedAt != nil {
		return nil, sentinel.ErrNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *InMemory) FindByEmail(ctx context.Context, emailAddr string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.DeletedAt == nil && strings.EqualFold(user.Email, emailAddr) {
			cp := *user
			return &cp, nil
		}
	}
	return nil, sentinel.ErrNotFound
}

func (s *InMemory) List(ctx context.Context, filter models.UserFilter) ([]*models.User, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var allowed map[id.UserID]bool
	if filter.UserIDs != nil {
		allowed = make(map[id.UserID]bool, len(filter.UserIDs))
		for _, userID := range filter.UserIDs {
			allowed[userID] = true
		}
	}

	search := strings.ToLower(filter.Search)
	var matched []*models.User
	for _, user := range s.users {
		if user.DeletedAt != nil {
			continue
		}
		if allowed != nil && !allowed[user.ID] {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(user.Name), search) &&
			!strings.Contains(strings.ToLower(user.Email), search) {
			continue
		}
		cp := *user
		matched = append(matched, &cp)
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	return paginate(matched, filter.Page, filter.PerPage), total, nil
}

func (s *InMemory) Delete(ctx context.Context, userID id.UserID, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok || user.DeletedAt != nil {
		return sentinel.ErrNotFound
	}
	user.DeletedAt = &now
	return nil
}

func (s *InMemory) emailTakenLocked(emailAddr string, self id.UserID) bool {
	for _, user := range s.users {
		if user.ID == self || user.DeletedAt != nil {
			continue
		}
		if strings.EqualFold(user.Email, emailAddr) {
			return true
		}
	}
	return false
}

func paginate(users []*models.User, page, perPage int) []*models.User {
	start := (page - 1) * perPage
	if start >= len(users) {
		return nil
	}
	end := start + perPage
	if end > len(users) {
		end = len(users)
	}
	return users[start:end]
}

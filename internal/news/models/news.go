// Package models defines the news article entity, its lifecycle status and
// the listing filter.
package models

import (
	"strings"
	"time"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// News is a single article. An article belongs to exactly one tenant for its
// whole life; authorship never changes either.
type News struct {
	ID        id.NewsID   `json:"uuid"`
	Title     string      `json:"title"`
	Content   string      `json:"content"`
	Status    Status      `json:"status"`
	TenantID  id.TenantID `json:"tenant_uuid"`
	AuthorID  id.UserID   `json:"author_uuid"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
	DeletedAt *time.Time  `json:"-"`
}

// NewNews validates and constructs an article. An empty status defaults to
// draft.
func NewNews(newsID id.NewsID, tenantID id.TenantID, authorID id.UserID, title, content string, status Status, now time.Time) (*News, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "news title must not be empty")
	}
	if len(title) > 255 {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "news title must not exceed 255 characters")
	}
	if strings.TrimSpace(content) == "" {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "news content must not be empty")
	}
	if status == "" {
		status = StatusDraft
	}
	if !validStatuses[status] {
		return nil, dErrors.Newf(dErrors.CodeInvariantViolation, "invalid status: %q", status)
	}

	return &News{
		ID:        newsID,
		Title:     title,
		Content:   content,
		Status:    status,
		TenantID:  tenantID,
		AuthorID:  authorID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Snapshot returns the attributes recorded in the activity log. Ownership
// references stay out of it.
func (n *News) Snapshot() map[string]any {
	return map[string]any{
		"uuid":    n.ID.String(),
		"title":   n.Title,
		"content": n.Content,
		"status":  n.Status.String(),
	}
}

// DisplayName identifies the article in audit descriptions.
func (n *News) DisplayName() string { return n.Title }

package handler

import (
	"strings"

	"newsdesk/internal/news/models"
	dErrors "newsdesk/pkg/domain-errors"
)

// CreateNewsRequest is the body for POST /news.
type CreateNewsRequest struct {
	Title      string `json:"title"`
	Content    string `json:"content"`
	Status     string `json:"status"`
	TenantUUID string `json:"tenant_uuid"`
}

func (r *CreateNewsRequest) Validate() error {
	r.Title = strings.TrimSpace(r.Title)
	fields := map[string]string{}
	if r.Title == "" {
		fields["title"] = "The title field is required."
	}
	if len(r.Title) > 255 {
		fields["title"] = "The title field must not be greater than 255 characters."
	}
	if strings.TrimSpace(r.Content) == "" {
		fields["content"] = "The content field is required."
	}
	if r.Status != "" {
		if _, err := models.ParseStatus(r.Status); err != nil {
			fields["status"] = "The selected status is invalid."
		}
	}
	if len(fields) > 0 {
		return dErrors.WithFields("The given data was invalid.", fields)
	}
	return nil
}

// UpdateNewsRequest is the body for PUT /news/{uuid}. Missing fields are
// left untouched; tenant and author cannot appear here at all.
type UpdateNewsRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Status  *string `json:"status"`
}

func (r *UpdateNewsRequest) Validate() error {
	fields := map[string]string{}
	if r.Title != nil {
		trimmed := strings.TrimSpace(*r.Title)
		r.Title = &trimmed
		if trimmed == "" {
			fields["title"] = "The title field is required."
		}
		if len(trimmed) > 255 {
			fields["title"] = "The title field must not be greater than 255 characters."
		}
	}
	if r.Content != nil && strings.TrimSpace(*r.Content) == "" {
		fields["content"] = "The content field is required."
	}
	if r.Status != nil {
		if _, err := models.ParseStatus(*r.Status); err != nil {
			fields["status"] = "The selected status is invalid."
		}
	}
	if len(fields) > 0 {
		return dErrors.WithFields("The given data was invalid.", fields)
	}
	return nil
}

package models

import dErrors "newsdesk/pkg/domain-errors"

// Status is the editorial lifecycle state of an article.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
	StatusTrash     Status = "trash"
)

var validStatuses = map[Status]bool{
	StatusDraft:     true,
	StatusPublished: true,
	StatusArchived:  true,
	StatusTrash:     true,
}

// ParseStatus constructs a Status from external input.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !validStatuses[s] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid status: %q", raw)
	}
	return s, nil
}

func (s Status) String() string { return string(s) }

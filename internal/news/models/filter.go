package models

import id "newsdesk/pkg/domain"

// NewsFilter narrows and paginates the article listing. TenantIDs, when set,
// restricts results to those tenants; the service derives it from the
// caller's memberships. Trashed articles only appear when Status asks for
// them explicitly.
type NewsFilter struct {
	TenantIDs []id.TenantID
	AuthorID  id.UserID
	Status    Status
	Search    string
	Page      int
	PerPage   int
}

// Normalize clamps pagination inputs to sane values.
func (f *NewsFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 15
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
}

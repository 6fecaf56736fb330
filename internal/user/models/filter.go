package models

import id "newsdesk/pkg/domain"

// UserFilter narrows and paginates the user listing. UserIDs, when set,
// restricts results to that allowlist; the service derives it from the
// caller's tenant memberships so non-super callers only see colleagues.
type UserFilter struct {
	Search  string
	UserIDs []id.UserID
	Page    int
	PerPage int
}

// Normalize clamps pagination inputs to sane values.
func (f *UserFilter) Normalize() {
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

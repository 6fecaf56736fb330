package models

import id "newsdesk/pkg/domain"

// EntryFilter narrows and paginates the log listing. Zero-value fields are
// skipped.
type EntryFilter struct {
	TenantID   id.TenantID
	ActorID    id.UserID
	LogType    LogType
	EntityKind EntityKind
	Page       int
	PerPage    int
}

// Normalize clamps pagination inputs. Logs page at 20 by default.
func (f *EntryFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 20
	}
	if f.PerPage > 100 {
		f.PerPage = 100
	}
}

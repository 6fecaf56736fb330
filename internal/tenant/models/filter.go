package models

// TenantFilter narrows and paginates the tenant listing. Search matches name
// or domain with a case-insensitive substring.
type TenantFilter struct {
	Search  string
	Page    int
	PerPage int
}

// Normalize clamps pagination inputs to sane values.
func (f *TenantFilter) Normalize() {
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

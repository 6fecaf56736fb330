package models

import id "newsdesk/pkg/domain"

// TenantRef is one tenant a user belongs to, with the role held there.
type TenantRef struct {
	TenantID id.TenantID `json:"uuid"`
	Name     string      `json:"name"`
	Role     id.Role     `json:"role"`
}

// UserDetails is the user read model: the account plus its tenants and how
// many articles it authored.
type UserDetails struct {
	*User
	Tenants   []TenantRef `json:"tenants"`
	NewsCount int         `json:"news_count"`
}

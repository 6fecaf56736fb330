package models

import (
	"time"

	id "newsdesk/pkg/domain"
)

// Membership is the (tenant, user) join entity carrying the user's role in
// that tenant. One row per pair; re-attaching with a different role updates
// the row in place (upsert semantics).
type Membership struct {
	TenantID  id.TenantID `json:"tenant_uuid"`
	UserID    id.UserID   `json:"user_uuid"`
	Role      id.Role     `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

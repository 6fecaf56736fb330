// Package domain holds the typed identifiers shared across newsdesk.
//
// Every entity exposes an external UUID distinct from its internal database
// key. The wrappers below keep those UUIDs from being mixed up across entity
// types at compile time: a TenantID can never be passed where a UserID is
// expected.
package domain

import (
	"github.com/google/uuid"

	dErrors "newsdesk/pkg/domain-errors"
)

// Typed external identifiers. The zero value is the nil UUID and is never a
// valid persisted identifier.
type (
	UserID   uuid.UUID
	TenantID uuid.UUID
	NewsID   uuid.UUID
	LogID    uuid.UUID
)

func (id UserID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id TenantID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id NewsID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id LogID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id UserID) String() string   { return uuid.UUID(id).String() }
func (id TenantID) String() string { return uuid.UUID(id).String() }
func (id NewsID) String() string   { return uuid.UUID(id).String() }
func (id LogID) String() string    { return uuid.UUID(id).String() }

// MarshalText lets the typed IDs serialize as plain UUID strings.
func (id UserID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id TenantID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id NewsID) MarshalText() ([]byte, error)   { return []byte(id.String()), nil }
func (id LogID) MarshalText() ([]byte, error)    { return []byte(id.String()), nil }

// UnmarshalText is the inverse of MarshalText: the typed IDs deserialize
// from plain UUID strings.
func (id *UserID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = UserID(parsed)
	return nil
}

func (id *TenantID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = TenantID(parsed)
	return nil
}

func (id *NewsID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = NewsID(parsed)
	return nil
}

func (id *LogID) UnmarshalText(text []byte) error {
	parsed, err := uuid.Parse(string(text))
	if err != nil {
		return err
	}
	*id = LogID(parsed)
	return nil
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs. All public Parse helpers funnel through here so trust
// boundary behavior stays identical for every entity type.
func parseUUID(raw, what string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, what+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+what+" id")
	}
	return parsed, nil
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

func ParseTenantID(raw string) (TenantID, error) {
	parsed, err := parseUUID(raw, "tenant")
	return TenantID(parsed), err
}

func ParseNewsID(raw string) (NewsID, error) {
	parsed, err := parseUUID(raw, "news")
	return NewsID(parsed), err
}

func ParseLogID(raw string) (LogID, error) {
	parsed, err := parseUUID(raw, "log")
	return LogID(parsed), err
}

func NewUserID() UserID     { return UserID(uuid.New()) }
func NewTenantID() TenantID { return TenantID(uuid.New()) }
func NewNewsID() NewsID     { return NewsID(uuid.New()) }
func NewLogID() LogID       { return LogID(uuid.New()) }

// Package models defines the activity log entry recorded for every entity
// mutation.
package models

import (
	"time"

	id "newsdesk/pkg/domain"
	dErrors "newsdesk/pkg/domain-errors"
)

// LogType is the mutation kind an entry records.
type LogType string

const (
	LogCreated LogType = "created"
	LogUpdated LogType = "updated"
	LogDeleted LogType = "deleted"
)

var validLogTypes = map[LogType]bool{
	LogCreated: true,
	LogUpdated: true,
	LogDeleted: true,
}

// ParseLogType constructs a LogType from external input.
func ParseLogType(raw string) (LogType, error) {
	t := LogType(raw)
	if !validLogTypes[t] {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid log type: %q", raw)
	}
	return t, nil
}

func (t LogType) String() string { return string(t) }

// EntityKind names the audited entity type. The set is closed: only the
// three core entities are audited.
type EntityKind string

const (
	KindNews   EntityKind = "news"
	KindUser   EntityKind = "user"
	KindTenant EntityKind = "tenant"
)

var kindLabels = map[EntityKind]string{
	KindNews:   "News",
	KindUser:   "User",
	KindTenant: "Tenant",
}

// ParseEntityKind constructs an EntityKind from external input.
func ParseEntityKind(raw string) (EntityKind, error) {
	k := EntityKind(raw)
	if _, ok := kindLabels[k]; !ok {
		return "", dErrors.Newf(dErrors.CodeInvalidInput, "invalid entity kind: %q", raw)
	}
	return k, nil
}

func (k EntityKind) String() string { return string(k) }

// Label is the capitalized entity name used in descriptions.
func (k EntityKind) Label() string { return kindLabels[k] }

// Entry is one audit record. Actor and tenant are optional: system actions
// have no actor, and tenant-less entities (users, tenants themselves) may
// carry no tenant.
type Entry struct {
	ID          id.LogID       `json:"uuid"`
	LogType     LogType        `json:"log_type"`
	EntityKind  EntityKind     `json:"model_type"`
	EntityID    string         `json:"model_uuid"`
	ActorID     *id.UserID     `json:"user_uuid,omitempty"`
	TenantID    *id.TenantID   `json:"tenant_uuid,omitempty"`
	OldValues   map[string]any `json:"old_values,omitempty"`
	NewValues   map[string]any `json:"new_values,omitempty"`
	Description string         `json:"description"`
	IPAddress   string         `json:"ip_address,omitempty"`
	UserAgent   string         `json:"user_agent,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// sensitiveFields never appear in recorded snapshots.
var sensitiveFields = map[string]bool{
	"id":             true,
	"password":       true,
	"remember_token": true,
	"tenant_id":      true,
	"author_id":      true,
	"user_id":        true,
}

// StripSensitive returns a copy of the snapshot without internal references
// or credentials. A nil snapshot stays nil.
func StripSensitive(values map[string]any) map[string]any {
	if values == nil {
		return nil
	}
	out := make(map[string]any, len(values))
	for k, v := range values {
		if sensitiveFields[k] {
			continue
		}
		out[k] = v
	}
	return out
}

// FieldChange is one before/after pair inside an updated entry.
type FieldChange struct {
	Old any `json:"old"`
	New any `json:"new"`
}

// Changes returns the per-field old/new pairs for updated entries, matching
// keys by the new snapshot.
func (e *Entry) Changes() map[string]FieldChange {
	if e.LogType != LogUpdated || e.OldValues == nil || e.NewValues == nil {
		return nil
	}
	changes := make(map[string]FieldChange)
	for key, newValue := range e.NewValues {
		oldValue := e.OldValues[key]
		if oldValue != newValue {
			changes[key] = FieldChange{Old: oldValue, New: newValue}
		}
	}
	return changes
}

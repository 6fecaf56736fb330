// Package policy contains the stateless authorization decision functions.
// Every decision takes the acting subject and the target entity (or target
// tenant for creation) and returns allow/deny with a reason surfaced to the
// caller on deny. Decisions never touch storage; callers load whatever the
// decision needs first.
package policy

import (
	dErrors "newsdesk/pkg/domain-errors"
)

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

// Allow returns a permitting decision.
func Allow() Decision {
	return Decision{Allowed: true}
}

// Deny returns a rejecting decision with a caller-facing reason.
func Deny(reason string) Decision {
	return Decision{Allowed: false, Reason: reason}
}

// Err converts a denial into a forbidden error; nil when allowed. Services
// call this right after the check so denials fail fast before any mutation.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	return dErrors.New(dErrors.CodeForbidden, d.Reason)
}

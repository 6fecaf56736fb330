// Package email normalizes and validates email addresses at trust boundaries.
// Stores persist the normalized form so uniqueness checks are case-insensitive.
package email

import (
	"net/mail"
	"strings"
)

// Normalize trims whitespace and lowercases an address. Call before any
// store lookup or uniqueness check.
func Normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Valid reports whether the address parses as a bare RFC 5322 address.
// Display names ("Ana <ana@example.com>") are rejected.
func Valid(address string) bool {
	addr, err := mail.ParseAddress(address)
	if err != nil {
		return false
	}
	return addr.Address == address
}

// Package id issues the identifiers of units, packaging types, lots and
// transfers.
//
// Identifiers are UUIDv7, so lots created later sort later, both in memory
// and in the uuid primary keys.
package id

import (
	"github.com/google/uuid"
)

// ID identifies any stored record.
type ID = uuid.UUID

// New returns a fresh time-ordered identifier. If the v7 generator cannot
// read its clock or entropy source, it falls back to a random v4.
func New() ID {
	if v, err := uuid.NewV7(); err == nil {
		return v
	}
	return uuid.New()
}

// Parse reads an identifier from a path or body field.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse is Parse for input that was already validated (DTO binding,
// fixed demo ids). It panics on malformed text.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil is the zero identifier, used for "not set".
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether v is unset.
func IsNil(v ID) bool {
	return v == uuid.Nil
}

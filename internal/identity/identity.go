// Package identity generates the per-boot device identity attached to every
// uploaded payload. The identity is immutable for the process lifetime; a
// restart yields a new one.
package identity

import (
	"strings"

	"github.com/google/uuid"
)

const suffixLength = 8

// Identity is the device identifier and its reporting category.
type Identity struct {
	ID       string
	Category string
}

// New derives a fresh identity from the configured prefix and category.
func New(prefix, category string) Identity {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:suffixLength]

	return Identity{
		ID:       prefix + suffix,
		Category: category,
	}
}

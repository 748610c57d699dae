// Package util provides id helpers.
package util

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID returns a random v4 UUID string.
func GenerateUUID() string {
	return uuid.NewString()
}

// NewID returns prefix + "-" + 12 hex chars of a fresh UUID.
func NewID(prefix string) string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return prefix + "-" + raw[:12]
}

// NewTransactionID returns an id of the form tx-<hex>.
func NewTransactionID() string {
	return NewID("tx")
}

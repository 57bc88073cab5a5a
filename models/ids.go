// models/ids.go
package models

import (
	"strings"

	"github.com/google/uuid"
)

// NewID returns a short opaque identifier for games and events.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// NewModificationHash mints a fresh optimistic-concurrency token. Every
// administrative mutation rotates it so any task still carrying the prior
// value is provably stale.
func NewModificationHash() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:6]
}

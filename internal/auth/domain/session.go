// Package domain defines the authentication domain model: opaque bearer
// sessions tied to user accounts.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/errors"
)

// Session is a server-side record of an issued bearer token. Only the SHA-256
// hash of the token is stored; the plain token is returned once at login and
// never persisted.
type Session struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Authentication error definitions.
var (
	// ErrSessionNotFound indicates no session matches the presented token.
	ErrSessionNotFound = errors.Wrap(errors.ErrUnauthorized, "session not found")

	// ErrSessionExpired indicates the session exists but has expired.
	ErrSessionExpired = errors.Wrap(errors.ErrUnauthorized, "session expired")
)

// Package http provides HTTP middleware and handlers for authentication.
package http

import (
	"context"

	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// userKey is a context key type for storing authenticated users.
type userKey struct{}

// tokenHashKey is a context key type for storing the presented token's hash.
type tokenHashKey struct{}

// WithUser stores an authenticated user in the context.
// This is typically called by the authentication middleware after successful token validation.
func WithUser(ctx context.Context, user *userDomain.User) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// GetUser retrieves an authenticated user from the context.
// Returns (user, true) if a user is present, or (nil, false) if no user was set.
func GetUser(ctx context.Context) (*userDomain.User, bool) {
	user, ok := ctx.Value(userKey{}).(*userDomain.User)
	return user, ok
}

// WithTokenHash stores the hash of the presented bearer token in the context,
// so logout can revoke the session without re-reading the header.
func WithTokenHash(ctx context.Context, tokenHash string) context.Context {
	return context.WithValue(ctx, tokenHashKey{}, tokenHash)
}

// GetTokenHash retrieves the presented token's hash from the context.
func GetTokenHash(ctx context.Context) (string, bool) {
	tokenHash, ok := ctx.Value(tokenHashKey{}).(string)
	return tokenHash, ok
}

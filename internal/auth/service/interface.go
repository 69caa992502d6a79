// Package service provides authentication services for token generation and hashing.
package service

// TokenService defines the interface for bearer token operations.
type TokenService interface {
	// GenerateToken creates a new random token, returning the plain token
	// and its hash. Only the hash is ever stored.
	GenerateToken() (plainToken string, tokenHash string, err error)

	// HashToken hashes a plain token for storage lookup.
	HashToken(plainToken string) string
}

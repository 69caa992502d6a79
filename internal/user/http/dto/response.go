package dto

import (
	"encoding/base64"
	"time"

	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// UserResponse represents a user in API responses (excludes password hash).
type UserResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	HasPublicKey bool      `json:"has_public_key"`
	CreatedAt    time.Time `json:"created_at"`
}

// MapUserToResponse converts a domain user to an API response.
func MapUserToResponse(user *userDomain.User) UserResponse {
	return UserResponse{
		ID:           user.ID.String(),
		Name:         user.Name,
		HasPublicKey: user.HasPublicKey(),
		CreatedAt:    user.CreatedAt,
	}
}

// KeyMaterialResponse represents the caller's own key material.
//
// The encrypted private key is opaque to the server; only the owner can
// decrypt it with their unlock secret.
type KeyMaterialResponse struct {
	PublicKey           string `json:"public_key"`
	EncryptedPrivateKey string `json:"encrypted_private_key"`
}

// MapUserToKeyMaterialResponse converts a domain user's key material to an API response.
func MapUserToKeyMaterialResponse(user *userDomain.User) KeyMaterialResponse {
	return KeyMaterialResponse{
		PublicKey:           user.PublicKey,
		EncryptedPrivateKey: base64.StdEncoding.EncodeToString(user.EncryptedPrivateKey),
	}
}

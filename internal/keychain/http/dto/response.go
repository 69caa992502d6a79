// Package dto provides data transfer objects for HTTP response handling.
package dto

import (
	"encoding/base64"
	"time"

	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// KeyCopyResponse represents one wrapped key copy in API responses.
//
// The wrapped key is base64 encoded; only the holder of the matching private
// key can unwrap it. ToMessageID is null while the copy is active.
type KeyCopyResponse struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	WrappedKey     string    `json:"wrapped_key"`
	FromMessageID  int64     `json:"from_message_id"`
	ToMessageID    *int64    `json:"to_message_id"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
}

// MapKeyCopyToResponse converts a domain key copy to an API response.
func MapKeyCopyToResponse(keyCopy *keychainDomain.KeyCopy) KeyCopyResponse {
	return KeyCopyResponse{
		ID:             keyCopy.ID.String(),
		ConversationID: keyCopy.ConversationID.String(),
		UserID:         keyCopy.UserID.String(),
		WrappedKey:     base64.StdEncoding.EncodeToString(keyCopy.WrappedKey),
		FromMessageID:  keyCopy.FromMessageID,
		ToMessageID:    keyCopy.ToMessageID,
		IsActive:       keyCopy.IsActive(),
		CreatedAt:      keyCopy.CreatedAt,
	}
}

// ListKeyCopiesResponse represents a user's key history in API responses.
type ListKeyCopiesResponse struct {
	Data []KeyCopyResponse `json:"data"`
}

// MapKeyCopiesToListResponse converts a slice of domain key copies to a list API response.
func MapKeyCopiesToListResponse(keyCopies []*keychainDomain.KeyCopy) ListKeyCopiesResponse {
	responses := make([]KeyCopyResponse, 0, len(keyCopies))
	for _, keyCopy := range keyCopies {
		responses = append(responses, MapKeyCopyToResponse(keyCopy))
	}
	return ListKeyCopiesResponse{
		Data: responses,
	}
}

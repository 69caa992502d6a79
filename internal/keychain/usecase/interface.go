// Package usecase implements the business logic of the conversation key chain:
// atomic key rotation and read-side key queries.
package usecase

import (
	"context"

	"github.com/google/uuid"

	chatDomain "github.com/allisson/chatkeys/internal/chat/domain"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// KeyCopyRepository defines the persistence contract for key copies.
//
// Implementations must be transaction-aware through context propagation so
// InvalidateActive and Create can participate in the single rotation
// transaction. FindActive must surface ErrConsistencyViolation when storage
// holds more than one active row for a (conversation, user) pair.
type KeyCopyRepository interface {
	// Create stores a new key copy.
	Create(ctx context.Context, keyCopy *keychainDomain.KeyCopy) error

	// InvalidateActive closes every active copy of the conversation at the anchor id.
	InvalidateActive(ctx context.Context, conversationID uuid.UUID, anchorMessageID int64) error

	// FindActive returns the single active copy for a (conversation, user) pair.
	FindActive(ctx context.Context, conversationID, userID uuid.UUID) (*keychainDomain.KeyCopy, error)

	// ListForUser returns all copies of a user in a conversation ordered by from_message_id.
	ListForUser(ctx context.Context, conversationID, userID uuid.UUID) ([]*keychainDomain.KeyCopy, error)
}

// ConversationStore is the slice of the chat persistence layer the rotation
// depends on: the per-conversation lock and the participant set.
type ConversationStore interface {
	// LockForRotation takes a row-level lock on the conversation inside the
	// current transaction, serializing concurrent rotations on it. Returns
	// chat's ErrConversationNotFound when the conversation does not exist.
	LockForRotation(ctx context.Context, conversationID uuid.UUID) error

	// ListParticipants returns the current participant set.
	ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]*chatDomain.Participant, error)
}

// MessageStore is the slice of the message log the rotation depends on:
// appending the rotation-marker message that yields the anchor id.
type MessageStore interface {
	// Create appends a message and populates its server-assigned id.
	Create(ctx context.Context, message *chatDomain.Message) error
}

// UserStore is the slice of the user layer the rotation depends on.
type UserStore interface {
	// ListByIDs returns the users with the given ids.
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*userDomain.User, error)
}

// RotationUseCase coordinates a full key rotation for a conversation.
type RotationUseCase interface {
	// Rotate issues a new conversation key: it appends a rotation-marker
	// message (whose id becomes the anchor), closes all active key copies at
	// that anchor and issues a new wrapped copy to every participant with a
	// usable public key, all within one transaction scoped to the
	// conversation. Participants without a key are skipped, not failed.
	Rotate(ctx context.Context, conversationID, initiatorID uuid.UUID) (*keychainDomain.RotationOutcome, error)
}

// KeyQueryUseCase is the read side of the key chain.
type KeyQueryUseCase interface {
	// ListForUser returns the user's full key history for a conversation,
	// ordered by validity interval. An empty history is not an error.
	ListForUser(ctx context.Context, conversationID, userID uuid.UUID) ([]*keychainDomain.KeyCopy, error)

	// ActiveForUser returns the user's currently active key copy, or
	// ErrKeyNotFound when the user holds none.
	ActiveForUser(ctx context.Context, conversationID, userID uuid.UUID) (*keychainDomain.KeyCopy, error)
}

// Package usecase implements the chat business logic: conversation lifecycle,
// membership and the message log.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/chat/domain"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// CreateConversationInput contains the input data for conversation creation.
type CreateConversationInput struct {
	Name           string      `json:"name"`
	ParticipantIDs []uuid.UUID `json:"participant_ids"`
}

// ConversationDetail is a conversation plus the caller-facing extras.
type ConversationDetail struct {
	Conversation *domain.Conversation
	Participants []*domain.Participant
	UnreadCount  int
	LastMessage  *domain.Message
}

// ConversationUseCase defines the conversation lifecycle operations.
type ConversationUseCase interface {
	// Create inserts the conversation with its initial membership and runs
	// the first key rotation synchronously: a conversation only exists once
	// at least one participant can read it.
	Create(ctx context.Context, creatorID uuid.UUID, input CreateConversationInput) (*domain.Conversation, error)

	// GetByID returns the conversation detail for a participant.
	GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationDetail, error)

	// ListForUser returns the caller's conversations, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)

	// AddParticipant adds a member. The conversation key is not rotated on
	// membership changes; the new member reads history under the current key.
	AddParticipant(ctx context.Context, callerID, conversationID, newUserID uuid.UUID) error

	// Leave removes the caller's membership. Removing the last member
	// deletes the conversation, cascading messages and key copies.
	Leave(ctx context.Context, userID, conversationID uuid.UUID) error
}

// SendMessageInput contains the input data for sending a message.
type SendMessageInput struct {
	Content string `json:"content"`
}

// MessageUseCase defines the message log operations.
type MessageUseCase interface {
	// Send appends a message and bumps the unread counters of the other
	// participants in the same transaction.
	Send(ctx context.Context, userID, conversationID uuid.UUID, input SendMessageInput) (*domain.Message, error)

	// List returns a page of the conversation's messages, newest first, and
	// resets the caller's unread counter.
	List(ctx context.Context, userID, conversationID uuid.UUID, limit, offset int) ([]*domain.Message, error)

	// GetByID returns one message, restricted to participants.
	GetByID(ctx context.Context, userID uuid.UUID, messageID int64) (*domain.Message, error)
}

// ConversationRepository interface defines conversation repository operations
type ConversationRepository interface {
	Create(ctx context.Context, conversation *domain.Conversation) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error)
	LockForRotation(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error)
	AddParticipant(ctx context.Context, participant *domain.Participant) error
	RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error
	ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]*domain.Participant, error)
	IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error)
	CountParticipants(ctx context.Context, conversationID uuid.UUID) (int, error)
	IncrementUnread(ctx context.Context, conversationID, excludeUserID uuid.UUID) error
	ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error
}

// MessageRepository interface defines message repository operations
type MessageRepository interface {
	Create(ctx context.Context, message *domain.Message) error
	GetByID(ctx context.Context, id int64) (*domain.Message, error)
	ListByConversation(ctx context.Context, conversationID uuid.UUID, limit, offset int) ([]*domain.Message, error)
	Latest(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error)
}

// KeyRotator is the slice of the key chain the conversation lifecycle depends on.
type KeyRotator interface {
	Rotate(ctx context.Context, conversationID, initiatorID uuid.UUID) (*keychainDomain.RotationOutcome, error)
}

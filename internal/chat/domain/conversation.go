// Package domain defines the core chat domain entities: conversations,
// participants and the append-only message log whose identifier stream anchors
// the conversation key chain.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a group-messaging thread.
// Deleting a conversation cascades to its messages, participants and key copies.
type Conversation struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

// Participant is a membership edge with its own per-user unread counter.
// The counter is independent of key state: changing it never touches key copies.
type Participant struct {
	ConversationID uuid.UUID
	UserID         uuid.UUID
	UnreadCount    int
	JoinedAt       time.Time
}

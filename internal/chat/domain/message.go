package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is one entry in the append-only message log.
//
// The ID is a server-assigned, globally increasing integer: it is the ordering
// anchor the key chain is pinned to, so it must be comparable across
// conversations. Rotation-marker messages travel through the same table and
// receive ids from the same sequence; they are distinguishable only by their
// content shape (base64 of nonce || ciphertext of the marker payload).
type Message struct {
	ID             int64
	ConversationID uuid.UUID
	AuthorID       uuid.UUID
	Content        string
	CreatedAt      time.Time
}

// Package domain defines the core domain model for the conversation key chain.
//
// Every conversation is protected by a symmetric key that is re-issued whenever
// the key is rotated. Each participant holding a public key receives their own
// wrapped copy of the symmetric key, and every copy is pinned to an interval of
// the message sequence so a reader can always determine which key version
// protected which message.
package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	// SymmetricKeySize is the size in bytes of a conversation key (256 bits).
	SymmetricKeySize = 32

	// MarkerPlaintext is the fixed, non-secret payload sealed into every
	// rotation-marker message. Decrypting it proves possession of the new key.
	MarkerPlaintext = "conversation key updated"
)

// KeyCopy is one participant's wrapped copy of a conversation key version.
//
// The copy is authoritative for messages with ids in [FromMessageID, ToMessageID).
// A nil ToMessageID means the copy is the currently active version for that
// participant. Rows are append-only: the only mutation ever applied is closing
// the interval by setting ToMessageID during a rotation.
type KeyCopy struct {
	// ID is the unique identifier for this copy (UUIDv7).
	ID uuid.UUID
	// ConversationID identifies the conversation this key protects.
	ConversationID uuid.UUID
	// UserID identifies the recipient the key was wrapped for.
	UserID uuid.UUID
	// WrappedKey is the symmetric key encrypted under the recipient's public key.
	// Opaque to everyone but the recipient.
	WrappedKey []byte
	// FromMessageID is the id of the rotation-marker message that produced this
	// copy (inclusive lower bound of its validity interval).
	FromMessageID int64
	// ToMessageID is the id of the rotation-marker message that superseded this
	// copy (exclusive upper bound). Nil while the copy is active.
	ToMessageID *int64
	// CreatedAt is the UTC timestamp of issuance.
	CreatedAt time.Time
}

// IsActive reports whether this copy is the current version for its recipient.
func (k *KeyCopy) IsActive() bool {
	return k.ToMessageID == nil
}

// RotationOutcome describes the result of a successful key rotation.
type RotationOutcome struct {
	// AnchorMessageID is the id of the rotation-marker message. All prior
	// active copies were closed at this id and all new copies start at it.
	AnchorMessageID int64
	// IssuedCopies is the number of new key copies created. Zero when no
	// participant held a usable public key at rotation time.
	IssuedCopies int
	// SkippedUsers lists participants that did not receive a copy because
	// they have no usable public key.
	SkippedUsers []uuid.UUID
}

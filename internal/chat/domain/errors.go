package domain

import (
	"github.com/allisson/chatkeys/internal/errors"
)

// Chat-specific error definitions.
var (
	// ErrConversationNotFound indicates the requested conversation does not exist.
	ErrConversationNotFound = errors.Wrap(errors.ErrNotFound, "conversation not found")

	// ErrMessageNotFound indicates the requested message does not exist.
	ErrMessageNotFound = errors.Wrap(errors.ErrNotFound, "message not found")

	// ErrNotParticipant indicates the user is not a member of the conversation.
	ErrNotParticipant = errors.Wrap(errors.ErrForbidden, "user is not a participant in this conversation")

	// ErrAlreadyParticipant indicates the user is already a member of the conversation.
	ErrAlreadyParticipant = errors.Wrap(errors.ErrConflict, "user is already a participant in this conversation")

	// ErrNoReadableKeyCopies indicates a conversation was created but no
	// participant held a usable public key, so zero key copies could be
	// issued. Such a conversation is treated as mis-provisioned and the
	// creation is failed outright.
	ErrNoReadableKeyCopies = errors.Wrap(errors.ErrInvalidInput, "no participant holds a usable public key")
)

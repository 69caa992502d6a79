package usecase

import (
	"context"

	"github.com/google/uuid"

	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// keyQueryUseCase implements KeyQueryUseCase.
type keyQueryUseCase struct {
	keyCopyRepository KeyCopyRepository
}

// NewKeyQueryUseCase creates a new key query use case.
func NewKeyQueryUseCase(keyCopyRepository KeyCopyRepository) KeyQueryUseCase {
	return &keyQueryUseCase{keyCopyRepository: keyCopyRepository}
}

// ListForUser returns the user's full key history for a conversation.
func (u *keyQueryUseCase) ListForUser(ctx context.Context, conversationID, userID uuid.UUID) ([]*keychainDomain.KeyCopy, error) {
	return u.keyCopyRepository.ListForUser(ctx, conversationID, userID)
}

// ActiveForUser returns the user's currently active key copy.
func (u *keyQueryUseCase) ActiveForUser(ctx context.Context, conversationID, userID uuid.UUID) (*keychainDomain.KeyCopy, error) {
	return u.keyCopyRepository.FindActive(ctx, conversationID, userID)
}

package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	chatDomain "github.com/allisson/chatkeys/internal/chat/domain"
	"github.com/allisson/chatkeys/internal/database"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
	"github.com/allisson/chatkeys/internal/keychain/service"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// rotationUseCase implements RotationUseCase.
type rotationUseCase struct {
	keyCopyRepository KeyCopyRepository
	conversationStore ConversationStore
	messageStore      MessageStore
	userStore         UserStore
	envelope          service.Envelope
	txManager         database.TxManager
}

// NewRotationUseCase creates a new rotation use case.
func NewRotationUseCase(
	keyCopyRepository KeyCopyRepository,
	conversationStore ConversationStore,
	messageStore MessageStore,
	userStore UserStore,
	envelope service.Envelope,
	txManager database.TxManager,
) RotationUseCase {
	return &rotationUseCase{
		keyCopyRepository: keyCopyRepository,
		conversationStore: conversationStore,
		messageStore:      messageStore,
		userStore:         userStore,
		envelope:          envelope,
		txManager:         txManager,
	}
}

// Rotate issues a new conversation key.
//
// The whole sequence runs inside a single transaction holding a row lock on
// the conversation, so two concurrent rotations on the same conversation
// serialize and each observes the other's committed state. The marker message
// is created first because its server-assigned id anchors both the close of
// the previous key interval and the start of the new one.
func (u *rotationUseCase) Rotate(ctx context.Context, conversationID, initiatorID uuid.UUID) (*keychainDomain.RotationOutcome, error) {
	var outcome *keychainDomain.RotationOutcome

	err := u.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := u.conversationStore.LockForRotation(ctx, conversationID); err != nil {
			return err
		}

		participants, err := u.conversationStore.ListParticipants(ctx, conversationID)
		if err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}
		if len(participants) == 0 {
			return keychainDomain.ErrNoEligibleRecipients
		}

		userIDs := make([]uuid.UUID, 0, len(participants))
		for _, p := range participants {
			userIDs = append(userIDs, p.UserID)
		}
		users, err := u.userStore.ListByIDs(ctx, userIDs)
		if err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}

		symmetricKey, err := u.envelope.GenerateKey()
		if err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}

		// Wrap before touching storage: a participant with a broken key is
		// skipped, but everything else must either fully commit or not at all.
		wrapped, skipped := u.wrapForUsers(ctx, conversationID, symmetricKey, users)

		content, err := u.envelope.SealMarker(symmetricKey)
		if err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}

		marker := &chatDomain.Message{
			ConversationID: conversationID,
			AuthorID:       initiatorID,
			Content:        content,
			CreatedAt:      time.Now().UTC(),
		}
		if err := u.messageStore.Create(ctx, marker); err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}
		anchorID := marker.ID

		if err := u.keyCopyRepository.InvalidateActive(ctx, conversationID, anchorID); err != nil {
			return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
		}

		for userID, wrappedKey := range wrapped {
			keyCopy := &keychainDomain.KeyCopy{
				ID:             uuid.Must(uuid.NewV7()),
				ConversationID: conversationID,
				UserID:         userID,
				WrappedKey:     wrappedKey,
				FromMessageID:  anchorID,
				CreatedAt:      time.Now().UTC(),
			}
			if err := u.keyCopyRepository.Create(ctx, keyCopy); err != nil {
				return apperrors.Wrap(keychainDomain.ErrRotationFailed, err.Error())
			}
		}

		outcome = &keychainDomain.RotationOutcome{
			AnchorMessageID: anchorID,
			IssuedCopies:    len(wrapped),
			SkippedUsers:    skipped,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info(
		"conversation key rotated",
		"conversation_id", conversationID,
		"anchor_message_id", outcome.AnchorMessageID,
		"issued_copies", outcome.IssuedCopies,
		"skipped_users", len(outcome.SkippedUsers),
	)

	return outcome, nil
}

// wrapForUsers wraps the symmetric key for every user with usable key
// material. Users without a usable public key are skipped and logged, never
// failed: joining before provisioning a keypair is a normal state.
func (u *rotationUseCase) wrapForUsers(ctx context.Context, conversationID uuid.UUID, symmetricKey []byte, users []*userDomain.User) (map[uuid.UUID][]byte, []uuid.UUID) {
	wrapped := make(map[uuid.UUID][]byte, len(users))
	var skipped []uuid.UUID

	for _, user := range users {
		if !user.HasPublicKey() {
			skipped = append(skipped, user.ID)
			continue
		}
		wrappedKey, err := u.envelope.Wrap(symmetricKey, user.PublicKey)
		if err != nil {
			slog.WarnContext(
				ctx,
				"skipping participant with unusable public key",
				"conversation_id", conversationID,
				"user_id", user.ID,
				"error", err,
			)
			skipped = append(skipped, user.ID)
			continue
		}
		wrapped[user.ID] = wrappedKey
	}

	return wrapped, skipped
}

package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/chat/domain"
	"github.com/allisson/chatkeys/internal/database"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	appValidation "github.com/allisson/chatkeys/internal/validation"
)

// conversationUseCase implements ConversationUseCase.
type conversationUseCase struct {
	conversationRepo ConversationRepository
	messageRepo      MessageRepository
	keyRotator       KeyRotator
	txManager        database.TxManager
}

// NewConversationUseCase creates a new ConversationUseCase.
func NewConversationUseCase(
	conversationRepo ConversationRepository,
	messageRepo MessageRepository,
	keyRotator KeyRotator,
	txManager database.TxManager,
) ConversationUseCase {
	return &conversationUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		keyRotator:       keyRotator,
		txManager:        txManager,
	}
}

// validateCreateConversationInput validates the creation input.
func (uc *conversationUseCase) validateCreateConversationInput(input CreateConversationInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create inserts the conversation with its initial membership and runs the
// first key rotation, all in one transaction. The rotation propagates
// ErrNoEligibleRecipients and ErrRotationFailed; a rotation that issues zero
// copies fails the creation with ErrNoReadableKeyCopies, so a conversation
// nobody can read is never committed.
func (uc *conversationUseCase) Create(
	ctx context.Context,
	creatorID uuid.UUID,
	input CreateConversationInput,
) (*domain.Conversation, error) {
	if err := uc.validateCreateConversationInput(input); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	conversation := &domain.Conversation{
		ID:        uuid.Must(uuid.NewV7()),
		Name:      strings.TrimSpace(input.Name),
		CreatedAt: now,
	}

	members := dedupeMembers(creatorID, input.ParticipantIDs)

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.conversationRepo.Create(ctx, conversation); err != nil {
			return err
		}

		for _, userID := range members {
			participant := &domain.Participant{
				ConversationID: conversation.ID,
				UserID:         userID,
				JoinedAt:       now,
			}
			if err := uc.conversationRepo.AddParticipant(ctx, participant); err != nil {
				return err
			}
		}

		outcome, err := uc.keyRotator.Rotate(ctx, conversation.ID, creatorID)
		if err != nil {
			return err
		}
		if outcome.IssuedCopies == 0 {
			return domain.ErrNoReadableKeyCopies
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "conversation created",
		"conversation_id", conversation.ID,
		"participants", len(members),
	)

	return conversation, nil
}

// GetByID returns the conversation detail for a participant.
func (uc *conversationUseCase) GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*ConversationDetail, error) {
	conversation, err := uc.conversationRepo.GetByID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	participants, err := uc.conversationRepo.ListParticipants(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	detail := &ConversationDetail{
		Conversation: conversation,
		Participants: participants,
	}

	member := false
	for _, p := range participants {
		if p.UserID == userID {
			member = true
			detail.UnreadCount = p.UnreadCount
		}
	}
	if !member {
		return nil, domain.ErrNotParticipant
	}

	lastMessage, err := uc.messageRepo.Latest(ctx, conversationID)
	switch {
	case err == nil:
		detail.LastMessage = lastMessage
	case apperrors.Is(err, domain.ErrMessageNotFound):
		// empty conversation
	default:
		return nil, err
	}

	return detail, nil
}

// ListForUser returns the caller's conversations, newest first.
func (uc *conversationUseCase) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	return uc.conversationRepo.ListForUser(ctx, userID)
}

// AddParticipant adds a member to a conversation the caller belongs to.
// No key rotation happens here: the new member reads under the current key.
func (uc *conversationUseCase) AddParticipant(ctx context.Context, callerID, conversationID, newUserID uuid.UUID) error {
	ok, err := uc.conversationRepo.IsParticipant(ctx, conversationID, callerID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotParticipant
	}

	participant := &domain.Participant{
		ConversationID: conversationID,
		UserID:         newUserID,
		JoinedAt:       time.Now().UTC(),
	}
	return uc.conversationRepo.AddParticipant(ctx, participant)
}

// Leave removes the caller's membership; the last member to leave takes the
// conversation with them.
func (uc *conversationUseCase) Leave(ctx context.Context, userID, conversationID uuid.UUID) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.conversationRepo.RemoveParticipant(ctx, conversationID, userID); err != nil {
			return err
		}

		remaining, err := uc.conversationRepo.CountParticipants(ctx, conversationID)
		if err != nil {
			return err
		}
		if remaining == 0 {
			slog.InfoContext(ctx, "deleting conversation after last participant left",
				"conversation_id", conversationID,
			)
			return uc.conversationRepo.Delete(ctx, conversationID)
		}

		return nil
	})
}

// dedupeMembers builds the initial membership set: the creator plus the
// requested participants, each at most once.
func dedupeMembers(creatorID uuid.UUID, participantIDs []uuid.UUID) []uuid.UUID {
	seen := map[uuid.UUID]struct{}{creatorID: {}}
	members := []uuid.UUID{creatorID}
	for _, id := range participantIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		members = append(members, id)
	}
	return members
}

package usecase

import (
	"context"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/chat/domain"
	"github.com/allisson/chatkeys/internal/database"
	appValidation "github.com/allisson/chatkeys/internal/validation"
)

// messageUseCase implements MessageUseCase.
type messageUseCase struct {
	conversationRepo ConversationRepository
	messageRepo      MessageRepository
	txManager        database.TxManager
}

// NewMessageUseCase creates a new MessageUseCase.
func NewMessageUseCase(
	conversationRepo ConversationRepository,
	messageRepo MessageRepository,
	txManager database.TxManager,
) MessageUseCase {
	return &messageUseCase{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		txManager:        txManager,
	}
}

// validateSendMessageInput validates the send input.
func (uc *messageUseCase) validateSendMessageInput(input SendMessageInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Content,
			validation.Required.Error("content is required"),
			validation.Length(1, 65535).Error("content must be between 1 and 65535 characters"),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Send appends a message and bumps the other participants' unread counters in
// the same transaction, so a committed message is always counted.
func (uc *messageUseCase) Send(
	ctx context.Context,
	userID, conversationID uuid.UUID,
	input SendMessageInput,
) (*domain.Message, error) {
	if err := uc.validateSendMessageInput(input); err != nil {
		return nil, err
	}

	ok, err := uc.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}

	message := &domain.Message{
		ConversationID: conversationID,
		AuthorID:       userID,
		Content:        input.Content,
		CreatedAt:      time.Now().UTC(),
	}

	err = uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.messageRepo.Create(ctx, message); err != nil {
			return err
		}
		return uc.conversationRepo.IncrementUnread(ctx, conversationID, userID)
	})
	if err != nil {
		return nil, err
	}

	return message, nil
}

// List returns a page of the conversation's messages, newest first. Reading
// resets the caller's unread counter; re-reading the same page is idempotent
// for everything but that counter.
func (uc *messageUseCase) List(
	ctx context.Context,
	userID, conversationID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	ok, err := uc.conversationRepo.IsParticipant(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}

	messages, err := uc.messageRepo.ListByConversation(ctx, conversationID, limit, offset)
	if err != nil {
		return nil, err
	}

	if err := uc.conversationRepo.ResetUnread(ctx, conversationID, userID); err != nil {
		return nil, err
	}

	return messages, nil
}

// GetByID returns one message, restricted to participants of its conversation.
func (uc *messageUseCase) GetByID(ctx context.Context, userID uuid.UUID, messageID int64) (*domain.Message, error) {
	message, err := uc.messageRepo.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}

	ok, err := uc.conversationRepo.IsParticipant(ctx, message.ConversationID, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrNotParticipant
	}

	return message, nil
}

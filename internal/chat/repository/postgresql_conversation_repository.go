// Package repository provides data persistence implementations for chat entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/chat/domain"
	"github.com/allisson/chatkeys/internal/database"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

// PostgreSQLConversationRepository handles conversation persistence for PostgreSQL
type PostgreSQLConversationRepository struct {
	db *sql.DB
}

// NewPostgreSQLConversationRepository creates a new PostgreSQLConversationRepository
func NewPostgreSQLConversationRepository(db *sql.DB) *PostgreSQLConversationRepository {
	return &PostgreSQLConversationRepository{
		db: db,
	}
}

// Create inserts a new conversation
func (r *PostgreSQLConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversations (id, name, created_at) VALUES ($1, $2, $3)`

	_, err := querier.ExecContext(ctx, query, conversation.ID, conversation.Name, conversation.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create conversation")
	}
	return nil
}

// GetByID retrieves a conversation by ID
func (r *PostgreSQLConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	var conversation domain.Conversation
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at FROM conversations WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&conversation.ID, &conversation.Name, &conversation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation by id")
	}

	return &conversation, nil
}

// LockForRotation takes a row-level lock on the conversation, serializing
// concurrent key rotations on it. Must run inside a transaction.
func (r *PostgreSQLConversationRepository) LockForRotation(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id FROM conversations WHERE id = $1 FOR UPDATE`

	var lockedID uuid.UUID
	err := querier.QueryRowContext(ctx, query, id).Scan(&lockedID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.ErrConversationNotFound
		}
		return apperrors.Wrap(err, "failed to lock conversation")
	}

	return nil
}

// Delete removes a conversation. Messages, participants and key copies go with
// it through the foreign-key cascades.
func (r *PostgreSQLConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM conversations WHERE id = $1`

	result, err := querier.ExecContext(ctx, query, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete conversation")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to delete conversation")
	}
	if affected == 0 {
		return domain.ErrConversationNotFound
	}

	return nil
}

// ListForUser returns the conversations the user participates in, newest first.
func (r *PostgreSQLConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT c.id, c.name, c.created_at
			  FROM conversations c
			  JOIN conversation_participants cp ON cp.conversation_id = c.id
			  WHERE cp.user_id = $1
			  ORDER BY c.created_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list conversations for user")
	}
	defer func() {
		_ = rows.Close()
	}()

	var conversations []*domain.Conversation
	for rows.Next() {
		var conversation domain.Conversation
		if err := rows.Scan(&conversation.ID, &conversation.Name, &conversation.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan conversation")
		}
		conversations = append(conversations, &conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list conversations for user")
	}

	return conversations, nil
}

// AddParticipant inserts a membership row.
func (r *PostgreSQLConversationRepository) AddParticipant(ctx context.Context, participant *domain.Participant) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversation_participants (conversation_id, user_id, unread_count, joined_at)
			  VALUES ($1, $2, $3, $4)`

	_, err := querier.ExecContext(
		ctx,
		query,
		participant.ConversationID,
		participant.UserID,
		participant.UnreadCount,
		participant.JoinedAt,
	)
	if err != nil {
		if isPostgreSQLDuplicate(err) {
			return domain.ErrAlreadyParticipant
		}
		return apperrors.Wrap(err, "failed to add participant")
	}
	return nil
}

// RemoveParticipant deletes a membership row.
func (r *PostgreSQLConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM conversation_participants WHERE conversation_id = $1 AND user_id = $2`

	result, err := querier.ExecContext(ctx, query, conversationID, userID)
	if err != nil {
		return apperrors.Wrap(err, "failed to remove participant")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to remove participant")
	}
	if affected == 0 {
		return domain.ErrNotParticipant
	}

	return nil
}

// ListParticipants returns the membership rows of a conversation.
func (r *PostgreSQLConversationRepository) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]*domain.Participant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT conversation_id, user_id, unread_count, joined_at
			  FROM conversation_participants
			  WHERE conversation_id = $1
			  ORDER BY joined_at ASC`

	rows, err := querier.QueryContext(ctx, query, conversationID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list participants")
	}
	defer func() {
		_ = rows.Close()
	}()

	var participants []*domain.Participant
	for rows.Next() {
		var participant domain.Participant
		err := rows.Scan(
			&participant.ConversationID,
			&participant.UserID,
			&participant.UnreadCount,
			&participant.JoinedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan participant")
		}
		participants = append(participants, &participant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list participants")
	}

	return participants, nil
}

// IsParticipant reports whether the user is a member of the conversation.
func (r *PostgreSQLConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM conversation_participants
				  WHERE conversation_id = $1 AND user_id = $2
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, conversationID, userID).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check participant")
	}

	return exists, nil
}

// CountParticipants returns the number of members of the conversation.
func (r *PostgreSQLConversationRepository) CountParticipants(ctx context.Context, conversationID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM conversation_participants WHERE conversation_id = $1`

	var count int
	if err := querier.QueryRowContext(ctx, query, conversationID).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count participants")
	}

	return count, nil
}

// IncrementUnread bumps the unread counter of every participant except the author.
func (r *PostgreSQLConversationRepository) IncrementUnread(ctx context.Context, conversationID, excludeUserID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversation_participants
			  SET unread_count = unread_count + 1
			  WHERE conversation_id = $1 AND user_id <> $2`

	if _, err := querier.ExecContext(ctx, query, conversationID, excludeUserID); err != nil {
		return apperrors.Wrap(err, "failed to increment unread counters")
	}

	return nil
}

// ResetUnread zeroes the unread counter of one participant.
func (r *PostgreSQLConversationRepository) ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversation_participants
			  SET unread_count = 0
			  WHERE conversation_id = $1 AND user_id = $2`

	if _, err := querier.ExecContext(ctx, query, conversationID, userID); err != nil {
		return apperrors.Wrap(err, "failed to reset unread counter")
	}

	return nil
}

// isPostgreSQLDuplicate checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLDuplicate(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

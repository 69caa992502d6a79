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

// MySQLConversationRepository handles conversation persistence for MySQL
type MySQLConversationRepository struct {
	db *sql.DB
}

// NewMySQLConversationRepository creates a new MySQLConversationRepository
func NewMySQLConversationRepository(db *sql.DB) *MySQLConversationRepository {
	return &MySQLConversationRepository{
		db: db,
	}
}

// Create inserts a new conversation
func (r *MySQLConversationRepository) Create(ctx context.Context, conversation *domain.Conversation) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversations (id, name, created_at) VALUES (?, ?, ?)`

	_, err := querier.ExecContext(ctx, query, conversation.ID.String(), conversation.Name, conversation.CreatedAt)
	if err != nil {
		return apperrors.Wrap(err, "failed to create conversation")
	}
	return nil
}

// GetByID retrieves a conversation by ID
func (r *MySQLConversationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, created_at FROM conversations WHERE id = ?`

	var (
		conversation domain.Conversation
		rawID        string
	)
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(
		&rawID, &conversation.Name, &conversation.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get conversation by id")
	}
	conversation.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse conversation id")
	}

	return &conversation, nil
}

// LockForRotation takes a row-level lock on the conversation, serializing
// concurrent key rotations on it. Must run inside a transaction.
func (r *MySQLConversationRepository) LockForRotation(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id FROM conversations WHERE id = ? FOR UPDATE`

	var lockedID string
	err := querier.QueryRowContext(ctx, query, id.String()).Scan(&lockedID)
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
func (r *MySQLConversationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM conversations WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, id.String())
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
func (r *MySQLConversationRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]*domain.Conversation, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT c.id, c.name, c.created_at
			  FROM conversations c
			  JOIN conversation_participants cp ON cp.conversation_id = c.id
			  WHERE cp.user_id = ?
			  ORDER BY c.created_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list conversations for user")
	}
	defer func() {
		_ = rows.Close()
	}()

	var conversations []*domain.Conversation
	for rows.Next() {
		var (
			conversation domain.Conversation
			rawID        string
		)
		if err := rows.Scan(&rawID, &conversation.Name, &conversation.CreatedAt); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan conversation")
		}
		conversation.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse conversation id")
		}
		conversations = append(conversations, &conversation)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list conversations for user")
	}

	return conversations, nil
}

// AddParticipant inserts a membership row.
func (r *MySQLConversationRepository) AddParticipant(ctx context.Context, participant *domain.Participant) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO conversation_participants (conversation_id, user_id, unread_count, joined_at)
			  VALUES (?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		participant.ConversationID.String(),
		participant.UserID.String(),
		participant.UnreadCount,
		participant.JoinedAt,
	)
	if err != nil {
		if isMySQLDuplicate(err) {
			return domain.ErrAlreadyParticipant
		}
		return apperrors.Wrap(err, "failed to add participant")
	}
	return nil
}

// RemoveParticipant deletes a membership row.
func (r *MySQLConversationRepository) RemoveParticipant(ctx context.Context, conversationID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM conversation_participants WHERE conversation_id = ? AND user_id = ?`

	result, err := querier.ExecContext(ctx, query, conversationID.String(), userID.String())
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
func (r *MySQLConversationRepository) ListParticipants(ctx context.Context, conversationID uuid.UUID) ([]*domain.Participant, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT conversation_id, user_id, unread_count, joined_at
			  FROM conversation_participants
			  WHERE conversation_id = ?
			  ORDER BY joined_at ASC`

	rows, err := querier.QueryContext(ctx, query, conversationID.String())
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list participants")
	}
	defer func() {
		_ = rows.Close()
	}()

	var participants []*domain.Participant
	for rows.Next() {
		var (
			participant     domain.Participant
			rawConversation string
			rawUser         string
		)
		err := rows.Scan(&rawConversation, &rawUser, &participant.UnreadCount, &participant.JoinedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan participant")
		}
		participant.ConversationID, err = uuid.Parse(rawConversation)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse conversation id")
		}
		participant.UserID, err = uuid.Parse(rawUser)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse user id")
		}
		participants = append(participants, &participant)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list participants")
	}

	return participants, nil
}

// IsParticipant reports whether the user is a member of the conversation.
func (r *MySQLConversationRepository) IsParticipant(ctx context.Context, conversationID, userID uuid.UUID) (bool, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM conversation_participants
				  WHERE conversation_id = ? AND user_id = ?
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, conversationID.String(), userID.String()).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check participant")
	}

	return exists, nil
}

// CountParticipants returns the number of members of the conversation.
func (r *MySQLConversationRepository) CountParticipants(ctx context.Context, conversationID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT COUNT(*) FROM conversation_participants WHERE conversation_id = ?`

	var count int
	if err := querier.QueryRowContext(ctx, query, conversationID.String()).Scan(&count); err != nil {
		return 0, apperrors.Wrap(err, "failed to count participants")
	}

	return count, nil
}

// IncrementUnread bumps the unread counter of every participant except the author.
func (r *MySQLConversationRepository) IncrementUnread(ctx context.Context, conversationID, excludeUserID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversation_participants
			  SET unread_count = unread_count + 1
			  WHERE conversation_id = ? AND user_id <> ?`

	if _, err := querier.ExecContext(ctx, query, conversationID.String(), excludeUserID.String()); err != nil {
		return apperrors.Wrap(err, "failed to increment unread counters")
	}

	return nil
}

// ResetUnread zeroes the unread counter of one participant.
func (r *MySQLConversationRepository) ResetUnread(ctx context.Context, conversationID, userID uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE conversation_participants
			  SET unread_count = 0
			  WHERE conversation_id = ? AND user_id = ?`

	if _, err := querier.ExecContext(ctx, query, conversationID.String(), userID.String()); err != nil {
		return apperrors.Wrap(err, "failed to reset unread counter")
	}

	return nil
}

// isMySQLDuplicate checks if the error is a MySQL unique constraint violation
func isMySQLDuplicate(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

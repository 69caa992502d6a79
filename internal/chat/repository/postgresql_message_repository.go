package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/chat/domain"
	"github.com/allisson/chatkeys/internal/database"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

// PostgreSQLMessageRepository handles message persistence for PostgreSQL.
//
// Message ids come from a single BIGSERIAL sequence shared by every
// conversation, so ids are comparable across the whole log. The key chain
// depends on that: rotation anchors are plain id comparisons.
type PostgreSQLMessageRepository struct {
	db *sql.DB
}

// NewPostgreSQLMessageRepository creates a new PostgreSQLMessageRepository
func NewPostgreSQLMessageRepository(db *sql.DB) *PostgreSQLMessageRepository {
	return &PostgreSQLMessageRepository{
		db: db,
	}
}

// Create appends a message and populates its server-assigned id.
func (r *PostgreSQLMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO messages (conversation_id, author_id, content, created_at)
			  VALUES ($1, $2, $3, $4)
			  RETURNING id`

	err := querier.QueryRowContext(
		ctx,
		query,
		message.ConversationID,
		message.AuthorID,
		message.Content,
		message.CreatedAt,
	).Scan(&message.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to create message")
	}
	return nil
}

// GetByID retrieves a message by its id.
func (r *PostgreSQLMessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	var message domain.Message
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&message.ID, &message.ConversationID, &message.AuthorID, &message.Content, &message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get message by id")
	}

	return &message, nil
}

// ListByConversation returns a page of the conversation's messages, newest first.
func (r *PostgreSQLMessageRepository) ListByConversation(
	ctx context.Context,
	conversationID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages
			  WHERE conversation_id = $1
			  ORDER BY id DESC
			  LIMIT $2 OFFSET $3`

	rows, err := querier.QueryContext(ctx, query, conversationID, limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*domain.Message
	for rows.Next() {
		var message domain.Message
		err := rows.Scan(
			&message.ID, &message.ConversationID, &message.AuthorID, &message.Content, &message.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan message")
		}
		messages = append(messages, &message)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}

	return messages, nil
}

// Latest returns the newest message of the conversation, or
// ErrMessageNotFound for an empty log.
func (r *PostgreSQLMessageRepository) Latest(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	var message domain.Message
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages
			  WHERE conversation_id = $1
			  ORDER BY id DESC
			  LIMIT 1`

	err := querier.QueryRowContext(ctx, query, conversationID).Scan(
		&message.ID, &message.ConversationID, &message.AuthorID, &message.Content, &message.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest message")
	}

	return &message, nil
}

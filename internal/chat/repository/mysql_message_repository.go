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

// MySQLMessageRepository handles message persistence for MySQL.
//
// Message ids come from the table's AUTO_INCREMENT, a single sequence shared
// by every conversation, so ids are comparable across the whole log.
type MySQLMessageRepository struct {
	db *sql.DB
}

// NewMySQLMessageRepository creates a new MySQLMessageRepository
func NewMySQLMessageRepository(db *sql.DB) *MySQLMessageRepository {
	return &MySQLMessageRepository{
		db: db,
	}
}

// Create appends a message and populates its server-assigned id.
func (r *MySQLMessageRepository) Create(ctx context.Context, message *domain.Message) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO messages (conversation_id, author_id, content, created_at)
			  VALUES (?, ?, ?, ?)`

	result, err := querier.ExecContext(
		ctx,
		query,
		message.ConversationID.String(),
		message.AuthorID.String(),
		message.Content,
		message.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create message")
	}

	message.ID, err = result.LastInsertId()
	if err != nil {
		return apperrors.Wrap(err, "failed to read message id")
	}
	return nil
}

// GetByID retrieves a message by its id.
func (r *MySQLMessageRepository) GetByID(ctx context.Context, id int64) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages WHERE id = ?`

	message, err := scanMySQLMessageRow(querier.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get message by id")
	}

	return message, nil
}

// ListByConversation returns a page of the conversation's messages, newest first.
func (r *MySQLMessageRepository) ListByConversation(
	ctx context.Context,
	conversationID uuid.UUID,
	limit, offset int,
) ([]*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages
			  WHERE conversation_id = ?
			  ORDER BY id DESC
			  LIMIT ? OFFSET ?`

	rows, err := querier.QueryContext(ctx, query, conversationID.String(), limit, offset)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list messages")
	}
	defer func() {
		_ = rows.Close()
	}()

	var messages []*domain.Message
	for rows.Next() {
		var (
			message         domain.Message
			rawConversation string
			rawAuthor       string
		)
		err := rows.Scan(&message.ID, &rawConversation, &rawAuthor, &message.Content, &message.CreatedAt)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan message")
		}
		message.ConversationID, err = uuid.Parse(rawConversation)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse conversation id")
		}
		message.AuthorID, err = uuid.Parse(rawAuthor)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse author id")
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
func (r *MySQLMessageRepository) Latest(ctx context.Context, conversationID uuid.UUID) (*domain.Message, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, conversation_id, author_id, content, created_at
			  FROM messages
			  WHERE conversation_id = ?
			  ORDER BY id DESC
			  LIMIT 1`

	message, err := scanMySQLMessageRow(querier.QueryRowContext(ctx, query, conversationID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrMessageNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get latest message")
	}

	return message, nil
}

// scanMySQLMessageRow scans a single message row, parsing the CHAR(36) uuids.
func scanMySQLMessageRow(row *sql.Row) (*domain.Message, error) {
	var (
		message         domain.Message
		rawConversation string
		rawAuthor       string
	)

	err := row.Scan(&message.ID, &rawConversation, &rawAuthor, &message.Content, &message.CreatedAt)
	if err != nil {
		return nil, err
	}

	message.ConversationID, err = uuid.Parse(rawConversation)
	if err != nil {
		return nil, err
	}
	message.AuthorID, err = uuid.Parse(rawAuthor)
	if err != nil {
		return nil, err
	}

	return &message, nil
}

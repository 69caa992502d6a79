package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/database"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// MySQLKeyCopyRepository implements key copy persistence for MySQL.
// UUIDs are stored as CHAR(36) and binary fields as BLOB.
type MySQLKeyCopyRepository struct {
	db *sql.DB
}

// Create inserts a new key copy.
func (m *MySQLKeyCopyRepository) Create(ctx context.Context, keyCopy *keychainDomain.KeyCopy) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO key_copies (id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyCopy.ID.String(),
		keyCopy.ConversationID.String(),
		keyCopy.UserID.String(),
		keyCopy.WrappedKey,
		keyCopy.FromMessageID,
		keyCopy.ToMessageID,
		keyCopy.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create key copy")
	}
	return nil
}

// InvalidateActive closes every active key copy of the conversation at the
// given anchor message id.
func (m *MySQLKeyCopyRepository) InvalidateActive(
	ctx context.Context,
	conversationID uuid.UUID,
	anchorMessageID int64,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE key_copies
			  SET to_message_id = ?
			  WHERE conversation_id = ? AND to_message_id IS NULL`

	_, err := querier.ExecContext(ctx, query, anchorMessageID, conversationID.String())
	if err != nil {
		return apperrors.Wrap(err, "failed to invalidate active key copies")
	}

	return nil
}

// FindActive returns the single active key copy for a (conversation, user) pair.
func (m *MySQLKeyCopyRepository) FindActive(
	ctx context.Context,
	conversationID uuid.UUID,
	userID uuid.UUID,
) (*keychainDomain.KeyCopy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at
			  FROM key_copies
			  WHERE conversation_id = ? AND user_id = ? AND to_message_id IS NULL`

	keyCopies, err := scanMySQLKeyCopies(querier.QueryContext(ctx, query, conversationID.String(), userID.String()))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to find active key copy")
	}

	switch len(keyCopies) {
	case 0:
		return nil, keychainDomain.ErrKeyNotFound
	case 1:
		return keyCopies[0], nil
	default:
		return nil, keychainDomain.ErrConsistencyViolation
	}
}

// ListForUser returns all key copies of a user in a conversation ordered by
// the start of their validity interval.
func (m *MySQLKeyCopyRepository) ListForUser(
	ctx context.Context,
	conversationID uuid.UUID,
	userID uuid.UUID,
) ([]*keychainDomain.KeyCopy, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at
			  FROM key_copies
			  WHERE conversation_id = ? AND user_id = ?
			  ORDER BY from_message_id ASC`

	keyCopies, err := scanMySQLKeyCopies(querier.QueryContext(ctx, query, conversationID.String(), userID.String()))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key copies")
	}

	return keyCopies, nil
}

// scanMySQLKeyCopies drains a key copy result set, parsing CHAR(36) UUIDs.
func scanMySQLKeyCopies(rows *sql.Rows, queryErr error) ([]*keychainDomain.KeyCopy, error) {
	if queryErr != nil {
		return nil, queryErr
	}
	defer func() {
		_ = rows.Close()
	}()

	var keyCopies []*keychainDomain.KeyCopy
	for rows.Next() {
		var keyCopy keychainDomain.KeyCopy
		var id, conversationID, userID string

		err := rows.Scan(
			&id,
			&conversationID,
			&userID,
			&keyCopy.WrappedKey,
			&keyCopy.FromMessageID,
			&keyCopy.ToMessageID,
			&keyCopy.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		if keyCopy.ID, err = uuid.Parse(id); err != nil {
			return nil, err
		}
		if keyCopy.ConversationID, err = uuid.Parse(conversationID); err != nil {
			return nil, err
		}
		if keyCopy.UserID, err = uuid.Parse(userID); err != nil {
			return nil, err
		}

		keyCopies = append(keyCopies, &keyCopy)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keyCopies, nil
}

// NewMySQLKeyCopyRepository creates a new MySQL key copy repository instance.
func NewMySQLKeyCopyRepository(db *sql.DB) *MySQLKeyCopyRepository {
	return &MySQLKeyCopyRepository{db: db}
}

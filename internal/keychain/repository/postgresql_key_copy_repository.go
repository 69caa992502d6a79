// Package repository implements persistence for the conversation key chain.
//
// A key copy row is created only during rotation, mutated only to close its
// validity interval and never physically deleted: removal happens exclusively
// through the foreign-key cascade when a conversation is deleted. Both
// PostgreSQL and MySQL are supported; all methods are transaction-aware via
// database.GetTx so the invalidate-then-insert sequence of a rotation can run
// atomically.
package repository

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/database"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
)

// PostgreSQLKeyCopyRepository implements key copy persistence for PostgreSQL.
type PostgreSQLKeyCopyRepository struct {
	db *sql.DB
}

// Create inserts a new key copy.
func (p *PostgreSQLKeyCopyRepository) Create(ctx context.Context, keyCopy *keychainDomain.KeyCopy) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO key_copies (id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		keyCopy.ID,
		keyCopy.ConversationID,
		keyCopy.UserID,
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
// given anchor message id. Run inside the rotation transaction.
func (p *PostgreSQLKeyCopyRepository) InvalidateActive(
	ctx context.Context,
	conversationID uuid.UUID,
	anchorMessageID int64,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE key_copies
			  SET to_message_id = $1
			  WHERE conversation_id = $2 AND to_message_id IS NULL`

	_, err := querier.ExecContext(ctx, query, anchorMessageID, conversationID)
	if err != nil {
		return apperrors.Wrap(err, "failed to invalidate active key copies")
	}

	return nil
}

// FindActive returns the single active key copy for a (conversation, user)
// pair. Zero rows map to ErrKeyNotFound; more than one row means the
// at-most-one-active invariant was broken and is surfaced as
// ErrConsistencyViolation rather than silently picking a row.
func (p *PostgreSQLKeyCopyRepository) FindActive(
	ctx context.Context,
	conversationID uuid.UUID,
	userID uuid.UUID,
) (*keychainDomain.KeyCopy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at
			  FROM key_copies
			  WHERE conversation_id = $1 AND user_id = $2 AND to_message_id IS NULL`

	keyCopies, err := scanKeyCopies(querier.QueryContext(ctx, query, conversationID, userID))
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
func (p *PostgreSQLKeyCopyRepository) ListForUser(
	ctx context.Context,
	conversationID uuid.UUID,
	userID uuid.UUID,
) ([]*keychainDomain.KeyCopy, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT id, conversation_id, user_id, wrapped_key, from_message_id, to_message_id, created_at
			  FROM key_copies
			  WHERE conversation_id = $1 AND user_id = $2
			  ORDER BY from_message_id ASC`

	keyCopies, err := scanKeyCopies(querier.QueryContext(ctx, query, conversationID, userID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list key copies")
	}

	return keyCopies, nil
}

// scanKeyCopies drains a key copy result set.
func scanKeyCopies(rows *sql.Rows, queryErr error) ([]*keychainDomain.KeyCopy, error) {
	if queryErr != nil {
		return nil, queryErr
	}
	defer func() {
		_ = rows.Close()
	}()

	var keyCopies []*keychainDomain.KeyCopy
	for rows.Next() {
		var keyCopy keychainDomain.KeyCopy

		err := rows.Scan(
			&keyCopy.ID,
			&keyCopy.ConversationID,
			&keyCopy.UserID,
			&keyCopy.WrappedKey,
			&keyCopy.FromMessageID,
			&keyCopy.ToMessageID,
			&keyCopy.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		keyCopies = append(keyCopies, &keyCopy)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return keyCopies, nil
}

// NewPostgreSQLKeyCopyRepository creates a new PostgreSQL key copy repository instance.
func NewPostgreSQLKeyCopyRepository(db *sql.DB) *PostgreSQLKeyCopyRepository {
	return &PostgreSQLKeyCopyRepository{db: db}
}

package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/auth/domain"
	"github.com/allisson/chatkeys/internal/database"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

// MySQLSessionRepository handles session persistence for MySQL
type MySQLSessionRepository struct {
	db *sql.DB
}

// NewMySQLSessionRepository creates a new MySQLSessionRepository
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{
		db: db,
	}
}

// Create inserts a new session
func (r *MySQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
			  VALUES (?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID.String(),
		session.UserID.String(),
		session.TokenHash,
		session.ExpiresAt,
		session.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByTokenHash retrieves a session by token hash
func (r *MySQLSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, token_hash, expires_at, created_at
			  FROM sessions WHERE token_hash = ?`

	var (
		session   domain.Session
		rawID     string
		rawUserID string
	)
	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&rawID, &rawUserID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by token hash")
	}

	session.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse session id")
	}
	session.UserID, err = uuid.Parse(rawUserID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to parse user id")
	}

	return &session, nil
}

// Delete removes a session
func (r *MySQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions WHERE id = ?`

	if _, err := querier.ExecContext(ctx, query, id.String()); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteExpired removes every session past its expiry.
func (r *MySQLSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions WHERE expires_at < UTC_TIMESTAMP()`

	result, err := querier.ExecContext(ctx, query)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return affected, nil
}

// Package repository provides data persistence implementations for auth sessions.
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

// PostgreSQLSessionRepository handles session persistence for PostgreSQL
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// NewPostgreSQLSessionRepository creates a new PostgreSQLSessionRepository
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{
		db: db,
	}
}

// Create inserts a new session
func (r *PostgreSQLSessionRepository) Create(ctx context.Context, session *domain.Session) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO sessions (id, user_id, token_hash, expires_at, created_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.UserID,
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
func (r *PostgreSQLSessionRepository) GetByTokenHash(ctx context.Context, tokenHash string) (*domain.Session, error) {
	var session domain.Session
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, user_id, token_hash, expires_at, created_at
			  FROM sessions WHERE token_hash = $1`

	err := querier.QueryRowContext(ctx, query, tokenHash).Scan(
		&session.ID, &session.UserID, &session.TokenHash, &session.ExpiresAt, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session by token hash")
	}

	return &session, nil
}

// Delete removes a session
func (r *PostgreSQLSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions WHERE id = $1`

	if _, err := querier.ExecContext(ctx, query, id); err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return nil
}

// DeleteExpired removes every session past its expiry.
func (r *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	querier := database.GetTx(ctx, r.db)

	query := `DELETE FROM sessions WHERE expires_at < NOW()`

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

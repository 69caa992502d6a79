// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/allisson/chatkeys/internal/database"
	"github.com/allisson/chatkeys/internal/user/domain"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, password_hash, public_key, encrypted_private_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID,
		user.Name,
		user.PasswordHash,
		user.PublicKey,
		user.EncryptedPrivateKey,
		user.CreatedAt,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate name)
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	var user domain.User
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE id = $1`

	err := querier.QueryRowContext(ctx, query, id).Scan(
		&user.ID, &user.Name, &user.PasswordHash, &user.PublicKey, &user.EncryptedPrivateKey, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return &user, nil
}

// GetByName retrieves a user by name
func (r *PostgreSQLUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	var user domain.User
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE name = $1`

	err := querier.QueryRowContext(ctx, query, name).Scan(
		&user.ID, &user.Name, &user.PasswordHash, &user.PublicKey, &user.EncryptedPrivateKey, &user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by name")
	}

	return &user, nil
}

// ListByIDs retrieves the users with the given ids. Missing ids are simply
// absent from the result, not an error.
func (r *PostgreSQLUserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE id = ANY($1)`

	rows, err := querier.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users by ids")
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		err := rows.Scan(
			&user.ID, &user.Name, &user.PasswordHash, &user.PublicKey, &user.EncryptedPrivateKey, &user.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list users by ids")
	}

	return users, nil
}

// UpdateKeys stores a user's keypair material.
func (r *PostgreSQLUserRepository) UpdateKeys(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET public_key = $1, encrypted_private_key = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, user.PublicKey, user.EncryptedPrivateKey, user.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update user keys")
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to update user keys")
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}

	return nil
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/database"
	"github.com/allisson/chatkeys/internal/user/domain"

	apperrors "github.com/allisson/chatkeys/internal/errors"
)

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `INSERT INTO users (id, name, password_hash, public_key, encrypted_private_key, created_at)
			  VALUES (?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		user.ID.String(),
		user.Name,
		user.PasswordHash,
		user.PublicKey,
		user.EncryptedPrivateKey,
		user.CreatedAt,
	)
	if err != nil {
		// Check for unique constraint violation (duplicate name)
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE id = ?`

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by id")
	}

	return user, nil
}

// GetByName retrieves a user by name
func (r *MySQLUserRepository) GetByName(ctx context.Context, name string) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE name = ?`

	user, err := scanMySQLUser(querier.QueryRowContext(ctx, query, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user by name")
	}

	return user, nil
}

// ListByIDs retrieves the users with the given ids. Missing ids are simply
// absent from the result, not an error.
func (r *MySQLUserRepository) ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	querier := database.GetTx(ctx, r.db)

	placeholders := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id.String()
	}

	query := `SELECT id, name, password_hash, public_key, encrypted_private_key, created_at
			  FROM users WHERE id IN (` + strings.Join(placeholders, ", ") + `)`

	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list users by ids")
	}
	defer func() {
		_ = rows.Close()
	}()

	var users []*domain.User
	for rows.Next() {
		var (
			user  domain.User
			rawID string
		)
		err := rows.Scan(
			&rawID, &user.Name, &user.PasswordHash, &user.PublicKey, &user.EncryptedPrivateKey, &user.CreatedAt,
		)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan user")
		}
		user.ID, err = uuid.Parse(rawID)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to parse user id")
		}
		users = append(users, &user)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to list users by ids")
	}

	return users, nil
}

// UpdateKeys stores a user's keypair material.
func (r *MySQLUserRepository) UpdateKeys(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users SET public_key = ?, encrypted_private_key = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, user.PublicKey, user.EncryptedPrivateKey, user.ID.String())
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

// scanMySQLUser scans a single user row, parsing the CHAR(36) id.
func scanMySQLUser(row *sql.Row) (*domain.User, error) {
	var (
		user  domain.User
		rawID string
	)

	err := row.Scan(
		&rawID, &user.Name, &user.PasswordHash, &user.PublicKey, &user.EncryptedPrivateKey, &user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, err
	}

	return &user, nil
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}

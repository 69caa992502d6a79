// Package usecase implements the authentication business logic: login and
// bearer-token authentication.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/allisson/chatkeys/internal/auth/domain"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// LoginInput contains the credentials presented at login.
type LoginInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// LoginOutput carries the issued bearer token. The plain token appears only
// here; storage keeps its hash.
type LoginOutput struct {
	Token   string
	Session *authDomain.Session
}

// AuthUseCase defines the interface for authentication operations.
type AuthUseCase interface {
	// Login verifies the credentials and issues a new session token.
	Login(ctx context.Context, input LoginInput) (*LoginOutput, error)

	// Authenticate resolves a token hash to its user. Expired sessions are
	// deleted on sight and reported as ErrSessionExpired.
	Authenticate(ctx context.Context, tokenHash string) (*userDomain.User, error)

	// Logout deletes the session behind the token hash. Unknown tokens are
	// not an error.
	Logout(ctx context.Context, tokenHash string) error
}

// SessionRepository interface defines session repository operations
type SessionRepository interface {
	Create(ctx context.Context, session *authDomain.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*authDomain.Session, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// UserRepository is the slice of the user persistence layer auth depends on.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
	GetByName(ctx context.Context, name string) (*userDomain.User, error)
}

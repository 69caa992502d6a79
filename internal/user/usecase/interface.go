// Package usecase implements the user business logic: registration,
// keypair provisioning and lookups.
package usecase

import (
	"context"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/user/domain"
)

// RegisterUserInput contains the input data for user registration
type RegisterUserInput struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// ProvisionKeysInput contains the input data for keypair provisioning.
// The unlock secret protects the private key; the server uses it only while
// deriving the encryption key and never stores it.
type ProvisionKeysInput struct {
	UnlockSecret string `json:"unlock_secret"`
}

// UseCase defines the interface for user business logic operations
type UseCase interface {
	// RegisterUser creates a new account. No key material is produced here;
	// keys are provisioned separately because they need the unlock secret.
	RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error)

	// ProvisionKeys generates and stores the user's keypair. Re-provisioning
	// replaces the keypair; key copies wrapped under the old public key
	// become unreadable for the user and are not remediated here.
	ProvisionKeys(ctx context.Context, userID uuid.UUID, input ProvisionKeysInput) (*domain.User, error)

	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetUserByName retrieves a user by name.
	GetUserByName(ctx context.Context, name string) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByName(ctx context.Context, name string) (*domain.User, error)
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]*domain.User, error)
	UpdateKeys(ctx context.Context, user *domain.User) error
}

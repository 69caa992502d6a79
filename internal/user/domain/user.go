// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/errors"
)

// User represents an account with an optional asymmetric keypair.
//
// PublicKey is empty until the user provisions a keypair: registration alone
// produces no key material because the private half must be wrapped under a
// user-supplied unlock secret the server never sees in derived form.
// EncryptedPrivateKey is an opaque blob (the PKCS#8 private key encrypted
// client-recoverably under that secret); the server stores and returns it but
// never decrypts it.
type User struct {
	ID                  uuid.UUID
	Name                string
	PasswordHash        string
	PublicKey           string
	EncryptedPrivateKey []byte
	CreatedAt           time.Time
}

// HasPublicKey reports whether the user has provisioned a keypair and can
// therefore receive wrapped conversation keys.
func (u *User) HasPublicKey() bool {
	return u.PublicKey != ""
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Wrap(errors.ErrNotFound, "user not found")

	// ErrUserAlreadyExists indicates a user with the same name already exists.
	ErrUserAlreadyExists = errors.Wrap(errors.ErrConflict, "user already exists")

	// ErrInvalidCredentials indicates the name/password combination is wrong.
	ErrInvalidCredentials = errors.Wrap(errors.ErrUnauthorized, "invalid credentials")
)

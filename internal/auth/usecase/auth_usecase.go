package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	authDomain "github.com/allisson/chatkeys/internal/auth/domain"
	"github.com/allisson/chatkeys/internal/auth/service"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// authUseCase implements AuthUseCase.
type authUseCase struct {
	sessionRepo    SessionRepository
	userRepo       UserRepository
	tokenService   service.TokenService
	passwordHasher *pwdhash.PasswordHasher
	sessionTTL     time.Duration
}

// NewAuthUseCase creates a new AuthUseCase.
func NewAuthUseCase(
	sessionRepo SessionRepository,
	userRepo UserRepository,
	tokenService service.TokenService,
	sessionTTL time.Duration,
) (AuthUseCase, error) {
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &authUseCase{
		sessionRepo:    sessionRepo,
		userRepo:       userRepo,
		tokenService:   tokenService,
		passwordHasher: hasher,
		sessionTTL:     sessionTTL,
	}, nil
}

// Login verifies the credentials and issues a new session token.
// Unknown names and wrong passwords are indistinguishable to the caller.
func (uc *authUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	user, err := uc.userRepo.GetByName(ctx, input.Name)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			return nil, userDomain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := uc.passwordHasher.Verify([]byte(input.Password), user.PasswordHash)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to verify password")
	}
	if !ok {
		return nil, userDomain.ErrInvalidCredentials
	}

	plainToken, tokenHash, err := uc.tokenService.GenerateToken()
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	session := &authDomain.Session{
		ID:        uuid.Must(uuid.NewV7()),
		UserID:    user.ID,
		TokenHash: tokenHash,
		ExpiresAt: now.Add(uc.sessionTTL),
		CreatedAt: now,
	}
	if err := uc.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "session issued", "user_id", user.ID, "session_id", session.ID)

	return &LoginOutput{Token: plainToken, Session: session}, nil
}

// Authenticate resolves a token hash to its user.
func (uc *authUseCase) Authenticate(ctx context.Context, tokenHash string) (*userDomain.User, error) {
	session, err := uc.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return nil, err
	}

	if session.IsExpired() {
		if err := uc.sessionRepo.Delete(ctx, session.ID); err != nil {
			slog.WarnContext(ctx, "failed to delete expired session", "session_id", session.ID, "error", err)
		}
		return nil, authDomain.ErrSessionExpired
	}

	return uc.userRepo.GetByID(ctx, session.UserID)
}

// Logout deletes the session behind the token hash.
func (uc *authUseCase) Logout(ctx context.Context, tokenHash string) error {
	session, err := uc.sessionRepo.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUnauthorized) {
			return nil
		}
		return err
	}
	return uc.sessionRepo.Delete(ctx, session.ID)
}

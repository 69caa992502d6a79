package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/allisson/go-pwdhash"
	"github.com/google/uuid"

	"github.com/allisson/chatkeys/internal/database"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/user/domain"
	"github.com/allisson/chatkeys/internal/user/service"
	appValidation "github.com/allisson/chatkeys/internal/validation"
)

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager        database.TxManager
	userRepo         UserRepository
	keypairGenerator service.KeypairGenerator
	passwordHasher   *pwdhash.PasswordHasher
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	keypairGenerator service.KeypairGenerator,
) (UseCase, error) {
	// Interactive policy: these hashes are verified on every login
	hasher, err := pwdhash.New(pwdhash.WithPolicy(pwdhash.PolicyInteractive))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to create password hasher")
	}

	return &UserUseCase{
		txManager:        txManager,
		userRepo:         userRepo,
		keypairGenerator: keypairGenerator,
		passwordHasher:   hasher,
	}, nil
}

// validateRegisterUserInput validates the registration input using jellydator/validation
func (uc *UserUseCase) validateRegisterUserInput(input RegisterUserInput) error {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			validation.Length(1, 255).Error("name must be between 1 and 255 characters"),
		),
		validation.Field(&input.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be between 8 and 128 characters"),
			appValidation.PasswordStrength{
				MinLength:     8,
				RequireUpper:  true,
				RequireLower:  true,
				RequireNumber: true,
			},
		),
	)
	return appValidation.WrapValidationError(err)
}

// RegisterUser registers a new user. The account starts without a keypair:
// key material requires the unlock secret and is provisioned separately.
func (uc *UserUseCase) RegisterUser(ctx context.Context, input RegisterUserInput) (*domain.User, error) {
	if err := uc.validateRegisterUserInput(input); err != nil {
		return nil, err
	}

	hashedPassword, err := uc.passwordHasher.Hash([]byte(input.Password))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &domain.User{
		ID:           uuid.Must(uuid.NewV7()),
		Name:         strings.TrimSpace(input.Name),
		PasswordHash: hashedPassword,
		CreatedAt:    time.Now().UTC(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ProvisionKeys generates a keypair for the user and stores it.
//
// Re-provisioning over an existing keypair is allowed but lossy: key copies
// wrapped under the previous public key become unreadable for the user. That
// is logged, not repaired; recovery means rotating the affected conversations.
func (uc *UserUseCase) ProvisionKeys(
	ctx context.Context,
	userID uuid.UUID,
	input ProvisionKeysInput,
) (*domain.User, error) {
	err := validation.ValidateStruct(&input,
		validation.Field(&input.UnlockSecret,
			validation.Required.Error("unlock_secret is required"),
			validation.Length(8, 128).Error("unlock_secret must be between 8 and 128 characters"),
		),
	)
	if err := appValidation.WrapValidationError(err); err != nil {
		return nil, err
	}

	var user *domain.User
	txErr := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		var err error
		user, err = uc.userRepo.GetByID(ctx, userID)
		if err != nil {
			return err
		}

		if user.HasPublicKey() {
			slog.WarnContext(
				ctx,
				"replacing existing keypair, previously wrapped keys become unreadable",
				"user_id", user.ID,
			)
		}

		keypair, err := uc.keypairGenerator.Generate(input.UnlockSecret)
		if err != nil {
			return err
		}

		user.PublicKey = keypair.PublicKeyPEM
		user.EncryptedPrivateKey = keypair.EncryptedPrivateKey

		return uc.userRepo.UpdateKeys(ctx, user)
	})
	if txErr != nil {
		return nil, txErr
	}

	return user, nil
}

// GetUserByID retrieves a user by ID
func (uc *UserUseCase) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// GetUserByName retrieves a user by name
func (uc *UserUseCase) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	return uc.userRepo.GetByName(ctx, name)
}

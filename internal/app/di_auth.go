package app

import (
	"fmt"

	authRepository "github.com/allisson/chatkeys/internal/auth/repository"
	authService "github.com/allisson/chatkeys/internal/auth/service"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
)

// TokenService returns the token service for authentication operations.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = authService.NewTokenService()
	})
	return c.tokenService
}

// SessionRepository returns the session repository based on database driver.
func (c *Container) SessionRepository() (authUseCase.SessionRepository, error) {
	c.sessionRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["sessionRepo"] = fmt.Errorf("failed to get database for session repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.sessionRepo = authRepository.NewMySQLSessionRepository(db)
		case "postgres":
			c.sessionRepo = authRepository.NewPostgreSQLSessionRepository(db)
		default:
			c.initErrors["sessionRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["sessionRepo"]; exists {
		return nil, storedErr
	}
	return c.sessionRepo, nil
}

// AuthUseCase returns the authentication use case.
func (c *Container) AuthUseCase() (authUseCase.AuthUseCase, error) {
	c.authUCInit.Do(func() {
		sessionRepo, err := c.SessionRepository()
		if err != nil {
			c.initErrors["authUC"] = fmt.Errorf("failed to get session repository for auth use case: %w", err)
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["authUC"] = fmt.Errorf("failed to get user repository for auth use case: %w", err)
			return
		}
		useCase, err := authUseCase.NewAuthUseCase(
			sessionRepo,
			userRepo,
			c.TokenService(),
			c.config.SessionExpiration,
		)
		if err != nil {
			c.initErrors["authUC"] = fmt.Errorf("failed to create auth use case: %w", err)
			return
		}
		c.authUC = useCase
	})
	if storedErr, exists := c.initErrors["authUC"]; exists {
		return nil, storedErr
	}
	return c.authUC, nil
}

package app

import (
	"fmt"

	userRepository "github.com/allisson/chatkeys/internal/user/repository"
	userService "github.com/allisson/chatkeys/internal/user/service"
	userUseCase "github.com/allisson/chatkeys/internal/user/usecase"
)

// UserRepository returns the user repository based on database driver.
func (c *Container) UserRepository() (userUseCase.UserRepository, error) {
	c.userRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["userRepo"] = fmt.Errorf("failed to get database for user repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.userRepo = userRepository.NewMySQLUserRepository(db)
		case "postgres":
			c.userRepo = userRepository.NewPostgreSQLUserRepository(db)
		default:
			c.initErrors["userRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["userRepo"]; exists {
		return nil, storedErr
	}
	return c.userRepo, nil
}

// KeypairGenerator returns the keypair generation service.
func (c *Container) KeypairGenerator() userService.KeypairGenerator {
	c.keypairGenInit.Do(func() {
		c.keypairGenerator = userService.NewKeypairService()
	})
	return c.keypairGenerator
}

// UserUseCase returns the user use case.
func (c *Container) UserUseCase() (userUseCase.UseCase, error) {
	c.userUCInit.Do(func() {
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["userUC"] = fmt.Errorf("failed to get tx manager for user use case: %w", err)
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["userUC"] = fmt.Errorf("failed to get user repository for user use case: %w", err)
			return
		}
		useCase, err := userUseCase.NewUserUseCase(txManager, userRepo, c.KeypairGenerator())
		if err != nil {
			c.initErrors["userUC"] = fmt.Errorf("failed to create user use case: %w", err)
			return
		}
		c.userUC = useCase
	})
	if storedErr, exists := c.initErrors["userUC"]; exists {
		return nil, storedErr
	}
	return c.userUC, nil
}

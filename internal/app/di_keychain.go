package app

import (
	"fmt"

	keychainRepository "github.com/allisson/chatkeys/internal/keychain/repository"
	keychainService "github.com/allisson/chatkeys/internal/keychain/service"
	keychainUseCase "github.com/allisson/chatkeys/internal/keychain/usecase"
)

// KeyCopyRepository returns the key copy repository based on database driver.
func (c *Container) KeyCopyRepository() (keychainUseCase.KeyCopyRepository, error) {
	c.keyCopyRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["keyCopyRepo"] = fmt.Errorf("failed to get database for key copy repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.keyCopyRepo = keychainRepository.NewMySQLKeyCopyRepository(db)
		case "postgres":
			c.keyCopyRepo = keychainRepository.NewPostgreSQLKeyCopyRepository(db)
		default:
			c.initErrors["keyCopyRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["keyCopyRepo"]; exists {
		return nil, storedErr
	}
	return c.keyCopyRepo, nil
}

// EnvelopeService returns the envelope encryption service.
func (c *Container) EnvelopeService() keychainService.Envelope {
	c.envelopeServiceInit.Do(func() {
		c.envelopeService = keychainService.NewEnvelopeService()
	})
	return c.envelopeService
}

// RotationUseCase returns the key rotation use case wrapped with metrics.
func (c *Container) RotationUseCase() (keychainUseCase.RotationUseCase, error) {
	c.rotationUCInit.Do(func() {
		keyCopyRepo, err := c.KeyCopyRepository()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		conversationRepo, err := c.ConversationRepository()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		messageRepo, err := c.MessageRepository()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["rotationUC"] = err
			return
		}
		useCase := keychainUseCase.NewRotationUseCase(
			keyCopyRepo,
			conversationRepo,
			messageRepo,
			userRepo,
			c.EnvelopeService(),
			txManager,
		)
		c.rotationUC = keychainUseCase.NewRotationUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["rotationUC"]; exists {
		return nil, storedErr
	}
	return c.rotationUC, nil
}

// KeyQueryUseCase returns the key query use case wrapped with metrics.
func (c *Container) KeyQueryUseCase() (keychainUseCase.KeyQueryUseCase, error) {
	c.keyQueryUCInit.Do(func() {
		keyCopyRepo, err := c.KeyCopyRepository()
		if err != nil {
			c.initErrors["keyQueryUC"] = err
			return
		}
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			c.initErrors["keyQueryUC"] = err
			return
		}
		useCase := keychainUseCase.NewKeyQueryUseCase(keyCopyRepo)
		c.keyQueryUC = keychainUseCase.NewKeyQueryUseCaseWithMetrics(useCase, businessMetrics)
	})
	if storedErr, exists := c.initErrors["keyQueryUC"]; exists {
		return nil, storedErr
	}
	return c.keyQueryUC, nil
}

package app

import (
	"fmt"

	chatRepository "github.com/allisson/chatkeys/internal/chat/repository"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
)

// ConversationRepository returns the conversation repository based on database driver.
func (c *Container) ConversationRepository() (chatUseCase.ConversationRepository, error) {
	c.conversationRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["conversationRepo"] = fmt.Errorf(
				"failed to get database for conversation repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.conversationRepo = chatRepository.NewMySQLConversationRepository(db)
		case "postgres":
			c.conversationRepo = chatRepository.NewPostgreSQLConversationRepository(db)
		default:
			c.initErrors["conversationRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["conversationRepo"]; exists {
		return nil, storedErr
	}
	return c.conversationRepo, nil
}

// MessageRepository returns the message repository based on database driver.
func (c *Container) MessageRepository() (chatUseCase.MessageRepository, error) {
	c.messageRepoInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["messageRepo"] = fmt.Errorf("failed to get database for message repository: %w", err)
			return
		}
		switch c.config.DBDriver {
		case "mysql":
			c.messageRepo = chatRepository.NewMySQLMessageRepository(db)
		case "postgres":
			c.messageRepo = chatRepository.NewPostgreSQLMessageRepository(db)
		default:
			c.initErrors["messageRepo"] = fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
		}
	})
	if storedErr, exists := c.initErrors["messageRepo"]; exists {
		return nil, storedErr
	}
	return c.messageRepo, nil
}

// ConversationUseCase returns the conversation use case.
func (c *Container) ConversationUseCase() (chatUseCase.ConversationUseCase, error) {
	c.conversationUCInit.Do(func() {
		conversationRepo, err := c.ConversationRepository()
		if err != nil {
			c.initErrors["conversationUC"] = err
			return
		}
		messageRepo, err := c.MessageRepository()
		if err != nil {
			c.initErrors["conversationUC"] = err
			return
		}
		rotationUC, err := c.RotationUseCase()
		if err != nil {
			c.initErrors["conversationUC"] = err
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["conversationUC"] = err
			return
		}
		c.conversationUC = chatUseCase.NewConversationUseCase(
			conversationRepo,
			messageRepo,
			rotationUC,
			txManager,
		)
	})
	if storedErr, exists := c.initErrors["conversationUC"]; exists {
		return nil, storedErr
	}
	return c.conversationUC, nil
}

// MessageUseCase returns the message use case.
func (c *Container) MessageUseCase() (chatUseCase.MessageUseCase, error) {
	c.messageUCInit.Do(func() {
		conversationRepo, err := c.ConversationRepository()
		if err != nil {
			c.initErrors["messageUC"] = err
			return
		}
		messageRepo, err := c.MessageRepository()
		if err != nil {
			c.initErrors["messageUC"] = err
			return
		}
		txManager, err := c.TxManager()
		if err != nil {
			c.initErrors["messageUC"] = err
			return
		}
		c.messageUC = chatUseCase.NewMessageUseCase(conversationRepo, messageRepo, txManager)
	})
	if storedErr, exists := c.initErrors["messageUC"]; exists {
		return nil, storedErr
	}
	return c.messageUC, nil
}

// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/allisson/chatkeys/internal/config"
	"github.com/allisson/chatkeys/internal/database"
	"github.com/allisson/chatkeys/internal/http"
	"github.com/allisson/chatkeys/internal/metrics"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	authService "github.com/allisson/chatkeys/internal/auth/service"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
	chatHTTP "github.com/allisson/chatkeys/internal/chat/http"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
	keychainHTTP "github.com/allisson/chatkeys/internal/keychain/http"
	keychainService "github.com/allisson/chatkeys/internal/keychain/service"
	keychainUseCase "github.com/allisson/chatkeys/internal/keychain/usecase"
	userHTTP "github.com/allisson/chatkeys/internal/user/http"
	userService "github.com/allisson/chatkeys/internal/user/service"
	userUseCase "github.com/allisson/chatkeys/internal/user/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger *slog.Logger
	db     *sql.DB

	// Managers
	txManager database.TxManager

	// Metrics
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics

	// Repositories
	userRepo         userUseCase.UserRepository
	sessionRepo      authUseCase.SessionRepository
	conversationRepo chatUseCase.ConversationRepository
	messageRepo      chatUseCase.MessageRepository
	keyCopyRepo      keychainUseCase.KeyCopyRepository

	// Services
	tokenService     authService.TokenService
	keypairGenerator userService.KeypairGenerator
	envelopeService  keychainService.Envelope

	// Use Cases
	userUC         userUseCase.UseCase
	authUC         authUseCase.AuthUseCase
	conversationUC chatUseCase.ConversationUseCase
	messageUC      chatUseCase.MessageUseCase
	rotationUC     keychainUseCase.RotationUseCase
	keyQueryUC     keychainUseCase.KeyQueryUseCase

	// Servers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	// Initialization flags for thread-safety
	loggerInit           sync.Once
	dbInit               sync.Once
	txManagerInit        sync.Once
	metricsProviderInit  sync.Once
	businessMetricsInit  sync.Once
	userRepoInit         sync.Once
	sessionRepoInit      sync.Once
	conversationRepoInit sync.Once
	messageRepoInit      sync.Once
	keyCopyRepoInit      sync.Once
	tokenServiceInit     sync.Once
	keypairGenInit       sync.Once
	envelopeServiceInit  sync.Once
	userUCInit           sync.Once
	authUCInit           sync.Once
	conversationUCInit   sync.Once
	messageUCInit        sync.Once
	rotationUCInit       sync.Once
	keyQueryUCInit       sync.Once
	httpServerInit       sync.Once
	metricsServerInit    sync.Once
	initErrors           map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	c.dbInit.Do(func() {
		db, err := c.initDB()
		if err != nil {
			c.initErrors["db"] = err
			return
		}
		c.db = db
	})
	if storedErr, exists := c.initErrors["db"]; exists {
		return nil, storedErr
	}
	return c.db, nil
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	c.txManagerInit.Do(func() {
		db, err := c.DB()
		if err != nil {
			c.initErrors["txManager"] = fmt.Errorf("failed to get database for tx manager: %w", err)
			return
		}
		c.txManager = database.NewTxManager(db)
	})
	if storedErr, exists := c.initErrors["txManager"]; exists {
		return nil, storedErr
	}
	return c.txManager, nil
}

// MetricsProvider returns the OpenTelemetry/Prometheus metrics provider, or
// nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	c.metricsProviderInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["metricsProvider"] = fmt.Errorf("failed to create metrics provider: %w", err)
			return
		}
		c.metricsProvider = provider
	})
	if storedErr, exists := c.initErrors["metricsProvider"]; exists {
		return nil, storedErr
	}
	return c.metricsProvider, nil
}

// BusinessMetrics returns the business metrics recorder. Falls back to a
// no-op implementation when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	c.businessMetricsInit.Do(func() {
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["businessMetrics"] = err
			return
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return
		}
		bm, err := metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			c.initErrors["businessMetrics"] = fmt.Errorf("failed to create business metrics: %w", err)
			return
		}
		c.businessMetrics = bm
	})
	if storedErr, exists := c.initErrors["businessMetrics"]; exists {
		return nil, storedErr
	}
	return c.businessMetrics, nil
}

// HTTPServer returns the HTTP API server instance.
func (c *Container) HTTPServer() (*http.Server, error) {
	c.httpServerInit.Do(func() {
		server, err := c.initHTTPServer()
		if err != nil {
			c.initErrors["httpServer"] = err
			return
		}
		c.httpServer = server
	})
	if storedErr, exists := c.initErrors["httpServer"]; exists {
		return nil, storedErr
	}
	return c.httpServer, nil
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	c.metricsServerInit.Do(func() {
		if !c.config.MetricsEnabled {
			return
		}
		provider, err := c.MetricsProvider()
		if err != nil {
			c.initErrors["metricsServer"] = err
			return
		}
		c.metricsServer = http.NewMetricsServer(
			c.config.ServerHost,
			c.config.MetricsPort,
			c.Logger(),
			provider,
		)
	})
	if storedErr, exists := c.initErrors["metricsServer"]; exists {
		return nil, storedErr
	}
	return c.metricsServer, nil
}

// Shutdown releases the container's resources.
func (c *Container) Shutdown(ctx context.Context) error {
	var shutdownErrors []error

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	if len(shutdownErrors) > 0 {
		return fmt.Errorf("shutdown errors: %v", shutdownErrors)
	}

	return nil
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initHTTPServer creates the HTTP server with all its dependencies.
func (c *Container) initHTTPServer() (*http.Server, error) {
	logger := c.Logger()

	userUC, err := c.UserUseCase()
	if err != nil {
		return nil, err
	}
	authUC, err := c.AuthUseCase()
	if err != nil {
		return nil, err
	}
	conversationUC, err := c.ConversationUseCase()
	if err != nil {
		return nil, err
	}
	messageUC, err := c.MessageUseCase()
	if err != nil {
		return nil, err
	}
	keyQueryUC, err := c.KeyQueryUseCase()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(
		c.config,
		logger,
		http.Handlers{
			User:         userHTTP.NewUserHandler(userUC, logger),
			Auth:         authHTTP.NewAuthHandler(authUC, logger),
			Conversation: chatHTTP.NewConversationHandler(conversationUC, logger),
			Message: chatHTTP.NewMessageHandler(
				messageUC,
				c.config.MessagePageDefaultLimit,
				c.config.MessagePageMaxLimit,
				logger,
			),
			Key: keychainHTTP.NewKeyHandler(keyQueryUC, logger),
		},
		authUC,
		c.TokenService(),
	)

	return server, nil
}

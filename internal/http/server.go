package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	authService "github.com/allisson/chatkeys/internal/auth/service"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
	chatHTTP "github.com/allisson/chatkeys/internal/chat/http"
	"github.com/allisson/chatkeys/internal/config"
	keychainHTTP "github.com/allisson/chatkeys/internal/keychain/http"
	userHTTP "github.com/allisson/chatkeys/internal/user/http"
)

// Handlers groups the route handlers served by the API server.
type Handlers struct {
	User         *userHTTP.UserHandler
	Auth         *authHTTP.AuthHandler
	Conversation *chatHTTP.ConversationHandler
	Message      *chatHTTP.MessageHandler
	Key          *keychainHTTP.KeyHandler
}

// Server represents the HTTP API server.
type Server struct {
	server *http.Server
	logger *slog.Logger
}

// NewServer creates a new HTTP server with all routes registered.
func NewServer(
	cfg *config.Config,
	logger *slog.Logger,
	handlers Handlers,
	authUC authUseCase.AuthUseCase,
	tokenService authService.TokenService,
) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New())
	router.Use(CustomLoggerMiddleware(logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	authenticated := []gin.HandlerFunc{
		authHTTP.AuthenticationMiddleware(authUC, tokenService, logger),
	}
	if cfg.RateLimitEnabled {
		authenticated = append(authenticated,
			authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, logger),
		)
	}

	v1 := router.Group("/v1")
	{
		// Public surface: registration and login.
		v1.POST("/users", handlers.User.RegisterUserHandler)
		v1.POST("/auth/login", handlers.Auth.LoginHandler)

		// Everything else requires a session.
		private := v1.Group("", authenticated...)

		private.POST("/auth/logout", handlers.Auth.LogoutHandler)

		private.GET("/users/me", handlers.User.GetCurrentUserHandler)
		private.GET("/users/me/keys", handlers.User.GetKeyMaterialHandler)
		private.POST("/users/me/keys", handlers.User.ProvisionKeysHandler)

		private.POST("/conversations", handlers.Conversation.CreateConversationHandler)
		private.GET("/conversations", handlers.Conversation.ListConversationsHandler)
		private.GET("/conversations/:id", handlers.Conversation.GetConversationHandler)
		private.DELETE("/conversations/:id", handlers.Conversation.LeaveConversationHandler)
		private.POST("/conversations/:id/participants", handlers.Conversation.AddParticipantHandler)

		private.POST("/conversations/:id/messages", handlers.Message.SendMessageHandler)
		private.GET("/conversations/:id/messages", handlers.Message.ListMessagesHandler)

		private.GET("/conversations/:id/keys", handlers.Key.ListKeysHandler)
		private.GET("/conversations/:id/keys/active", handlers.Key.GetActiveKeyHandler)
	}

	return &Server{
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

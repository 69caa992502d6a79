package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/allisson/chatkeys/internal/auth/http/dto"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
	"github.com/allisson/chatkeys/internal/httputil"
	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// AuthHandler handles HTTP requests for authentication operations.
type AuthHandler struct {
	authUseCase authUseCase.AuthUseCase
	logger      *slog.Logger
}

// NewAuthHandler creates a new auth handler with required dependencies.
func NewAuthHandler(authUseCase authUseCase.AuthUseCase, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authUseCase: authUseCase,
		logger:      logger,
	}
}

// LoginHandler verifies credentials and issues a bearer token.
// POST /v1/auth/login - No authentication required (this is the authentication endpoint).
// Returns 201 Created with the token and its expiration time.
func (h *AuthHandler) LoginHandler(c *gin.Context) {
	var req dto.LoginRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	output, err := h.authUseCase.Login(c.Request.Context(), authUseCase.LoginInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.LoginResponse{
		Token:     output.Token,
		ExpiresAt: output.Session.ExpiresAt,
	})
}

// LogoutHandler revokes the session behind the presented token.
// POST /v1/auth/logout - Requires authentication.
// Returns 204 No Content.
func (h *AuthHandler) LogoutHandler(c *gin.Context) {
	tokenHash, ok := GetTokenHash(c.Request.Context())
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}

	if err := h.authUseCase.Logout(c.Request.Context(), tokenHash); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

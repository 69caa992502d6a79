// Package http provides HTTP handlers for user operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/httputil"
	"github.com/allisson/chatkeys/internal/user/http/dto"
	userUseCase "github.com/allisson/chatkeys/internal/user/usecase"
	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// UserHandler handles HTTP requests for user operations.
type UserHandler struct {
	userUseCase userUseCase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new user handler with required dependencies.
func NewUserHandler(userUseCase userUseCase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

// RegisterUserHandler registers a new user.
// POST /v1/users - No authentication required.
// Returns 201 Created with the user. The account starts without key material.
func (h *UserHandler) RegisterUserHandler(c *gin.Context) {
	var req dto.RegisterUserRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.RegisterUser(c.Request.Context(), userUseCase.RegisterUserInput{
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToResponse(user))
}

// GetCurrentUserHandler returns the authenticated user.
// GET /v1/users/me - Requires authentication.
func (h *UserHandler) GetCurrentUserHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToResponse(user))
}

// ProvisionKeysHandler generates and stores the caller's keypair.
// POST /v1/users/me/keys - Requires authentication.
// Returns 201 Created with the key material. Re-provisioning replaces the
// keypair and makes previously wrapped conversation keys unreadable.
func (h *UserHandler) ProvisionKeysHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.ProvisionKeysRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	updated, err := h.userUseCase.ProvisionKeys(c.Request.Context(), user.ID, userUseCase.ProvisionKeysInput{
		UnlockSecret: req.UnlockSecret,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapUserToKeyMaterialResponse(updated))
}

// GetKeyMaterialHandler returns the caller's own key material, including the
// encrypted private key blob for client-side unwrapping.
// GET /v1/users/me/keys - Requires authentication.
func (h *UserHandler) GetKeyMaterialHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	if !user.HasPublicKey() {
		httputil.HandleErrorGin(c, apperrors.Wrap(apperrors.ErrNotFound, "no keypair provisioned"), h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapUserToKeyMaterialResponse(user))
}

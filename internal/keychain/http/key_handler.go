// Package http provides HTTP handlers for key chain queries.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/httputil"
	"github.com/allisson/chatkeys/internal/keychain/http/dto"
	keychainUseCase "github.com/allisson/chatkeys/internal/keychain/usecase"
)

// KeyHandler handles HTTP requests for the caller's key copies.
//
// Key material is only ever served to its recipient: every handler resolves
// the user from the authenticated context, never from a parameter.
type KeyHandler struct {
	keyQueryUseCase keychainUseCase.KeyQueryUseCase
	logger          *slog.Logger
}

// NewKeyHandler creates a new key handler with required dependencies.
func NewKeyHandler(keyQueryUseCase keychainUseCase.KeyQueryUseCase, logger *slog.Logger) *KeyHandler {
	return &KeyHandler{
		keyQueryUseCase: keyQueryUseCase,
		logger:          logger,
	}
}

// ListKeysHandler returns the caller's full key history for a conversation,
// ordered by validity interval. An empty history yields an empty list.
// GET /v1/conversations/:id/keys - Requires authentication.
func (h *KeyHandler) ListKeysHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid conversation id format: must be a valid UUID"),
			h.logger)
		return
	}

	keyCopies, err := h.keyQueryUseCase.ListForUser(c.Request.Context(), conversationID, user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyCopiesToListResponse(keyCopies))
}

// GetActiveKeyHandler returns the caller's currently active key copy.
// GET /v1/conversations/:id/keys/active - Requires authentication.
// Returns 404 when the caller holds no active copy.
func (h *KeyHandler) GetActiveKeyHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid conversation id format: must be a valid UUID"),
			h.logger)
		return
	}

	keyCopy, err := h.keyQueryUseCase.ActiveForUser(c.Request.Context(), conversationID, user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapKeyCopyToResponse(keyCopy))
}

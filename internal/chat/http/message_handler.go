package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	"github.com/allisson/chatkeys/internal/chat/http/dto"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/httputil"
	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// MessageHandler handles HTTP requests for message operations.
type MessageHandler struct {
	messageUseCase chatUseCase.MessageUseCase
	defaultLimit   int
	maxLimit       int
	logger         *slog.Logger
}

// NewMessageHandler creates a new message handler with required dependencies.
func NewMessageHandler(
	messageUseCase chatUseCase.MessageUseCase,
	defaultLimit, maxLimit int,
	logger *slog.Logger,
) *MessageHandler {
	return &MessageHandler{
		messageUseCase: messageUseCase,
		defaultLimit:   defaultLimit,
		maxLimit:       maxLimit,
		logger:         logger,
	}
}

// SendMessageHandler appends a message to the conversation.
// POST /v1/conversations/:id/messages - Requires authentication and membership.
// Returns 201 Created with the message, including its server-assigned id.
func (h *MessageHandler) SendMessageHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	var req dto.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	message, err := h.messageUseCase.Send(c.Request.Context(), user.ID, conversationID, chatUseCase.SendMessageInput{
		Content: req.Content,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapMessageToResponse(message))
}

// ListMessagesHandler returns a page of the conversation's messages, newest
// first, and resets the caller's unread counter.
// GET /v1/conversations/:id/messages?limit=&offset= - Requires authentication and membership.
func (h *MessageHandler) ListMessagesHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversationID, err := parseConversationID(c)
	if err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	limit := h.parseQueryInt(c, "limit", h.defaultLimit)
	if limit < 1 || limit > h.maxLimit {
		limit = h.defaultLimit
	}
	offset := h.parseQueryInt(c, "offset", 0)
	if offset < 0 {
		offset = 0
	}

	messages, err := h.messageUseCase.List(c.Request.Context(), user.ID, conversationID, limit, offset)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapMessagesToListResponse(messages))
}

// parseQueryInt reads an integer query parameter with a fallback.
func (h *MessageHandler) parseQueryInt(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

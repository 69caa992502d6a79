// Package http provides HTTP handlers for conversation and message operations.
package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	"github.com/allisson/chatkeys/internal/chat/http/dto"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/httputil"
	customValidation "github.com/allisson/chatkeys/internal/validation"
)

// ConversationHandler handles HTTP requests for conversation operations.
type ConversationHandler struct {
	conversationUseCase chatUseCase.ConversationUseCase
	logger              *slog.Logger
}

// NewConversationHandler creates a new conversation handler with required dependencies.
func NewConversationHandler(
	conversationUseCase chatUseCase.ConversationUseCase,
	logger *slog.Logger,
) *ConversationHandler {
	return &ConversationHandler{
		conversationUseCase: conversationUseCase,
		logger:              logger,
	}
}

// CreateConversationHandler creates a conversation with its initial members
// and provisions its first key.
// POST /v1/conversations - Requires authentication.
// Returns 201 Created with the conversation.
func (h *ConversationHandler) CreateConversationHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	participantIDs := make([]uuid.UUID, 0, len(req.ParticipantIDs))
	for _, raw := range req.ParticipantIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			httputil.HandleValidationErrorGin(c,
				fmt.Errorf("invalid participant_id format: must be a valid UUID"),
				h.logger)
			return
		}
		participantIDs = append(participantIDs, id)
	}

	conversation, err := h.conversationUseCase.Create(c.Request.Context(), user.ID, chatUseCase.CreateConversationInput{
		Name:           req.Name,
		ParticipantIDs: participantIDs,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapConversationToResponse(conversation))
}

// ListConversationsHandler lists the caller's conversations.
// GET /v1/conversations - Requires authentication.
func (h *ConversationHandler) ListConversationsHandler(c *gin.Context) {
	user, ok := authHTTP.GetUser(c.Request.Context())
	if !ok {
		httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, h.logger)
		return
	}

	conversations, err := h.conversationUseCase.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConversationsToListResponse(conversations))
}

// GetConversationHandler returns a conversation's detail for a member.
// GET /v1/conversations/:id - Requires authentication and membership.
func (h *ConversationHandler) GetConversationHandler(c *gin.Context) {
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

	detail, err := h.conversationUseCase.GetByID(c.Request.Context(), user.ID, conversationID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapConversationDetailToResponse(detail))
}

// LeaveConversationHandler removes the caller's membership. The last member
// to leave deletes the conversation.
// DELETE /v1/conversations/:id - Requires authentication and membership.
// Returns 204 No Content.
func (h *ConversationHandler) LeaveConversationHandler(c *gin.Context) {
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

	if err := h.conversationUseCase.Leave(c.Request.Context(), user.ID, conversationID); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// AddParticipantHandler adds a member to a conversation.
// POST /v1/conversations/:id/participants - Requires authentication and membership.
// Returns 204 No Content. Membership changes do not rotate the conversation key.
func (h *ConversationHandler) AddParticipantHandler(c *gin.Context) {
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

	var req dto.AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	newUserID, err := uuid.Parse(req.UserID)
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid user_id format: must be a valid UUID"),
			h.logger)
		return
	}

	err = h.conversationUseCase.AddParticipant(c.Request.Context(), user.ID, conversationID, newUserID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Status(http.StatusNoContent)
}

// parseConversationID extracts the conversation id path parameter.
func parseConversationID(c *gin.Context) (uuid.UUID, error) {
	conversationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid conversation id format: must be a valid UUID")
	}
	return conversationID, nil
}

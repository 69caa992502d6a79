package http

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authHTTP "github.com/allisson/chatkeys/internal/auth/http"
	chatDomain "github.com/allisson/chatkeys/internal/chat/domain"
	chatUseCase "github.com/allisson/chatkeys/internal/chat/usecase"
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// MockConversationUseCase is a mock implementation of usecase.ConversationUseCase
type MockConversationUseCase struct {
	mock.Mock
}

func (m *MockConversationUseCase) Create(ctx context.Context, creatorID uuid.UUID, input chatUseCase.CreateConversationInput) (*chatDomain.Conversation, error) {
	args := m.Called(ctx, creatorID, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatDomain.Conversation), args.Error(1)
}

func (m *MockConversationUseCase) GetByID(ctx context.Context, userID, conversationID uuid.UUID) (*chatUseCase.ConversationDetail, error) {
	args := m.Called(ctx, userID, conversationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*chatUseCase.ConversationDetail), args.Error(1)
}

func (m *MockConversationUseCase) ListForUser(ctx context.Context, userID uuid.UUID) ([]*chatDomain.Conversation, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*chatDomain.Conversation), args.Error(1)
}

func (m *MockConversationUseCase) AddParticipant(ctx context.Context, callerID, conversationID, newUserID uuid.UUID) error {
	args := m.Called(ctx, callerID, conversationID, newUserID)
	return args.Error(0)
}

func (m *MockConversationUseCase) Leave(ctx context.Context, userID, conversationID uuid.UUID) error {
	args := m.Called(ctx, userID, conversationID)
	return args.Error(0)
}

func setupConversationRouter(useCase chatUseCase.ConversationUseCase, authedUser *userDomain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewConversationHandler(useCase, slog.Default())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if authedUser != nil {
			c.Request = c.Request.WithContext(authHTTP.WithUser(c.Request.Context(), authedUser))
		}
		c.Next()
	})
	router.POST("/v1/conversations", handler.CreateConversationHandler)
	router.GET("/v1/conversations", handler.ListConversationsHandler)
	router.GET("/v1/conversations/:id", handler.GetConversationHandler)
	router.DELETE("/v1/conversations/:id", handler.LeaveConversationHandler)
	router.POST("/v1/conversations/:id/participants", handler.AddParticipantHandler)
	return router
}

func TestConversationHandler_CreateConversationHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}

	t.Run("successful creation", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		otherID := uuid.Must(uuid.NewV7())
		conversation := &chatDomain.Conversation{
			ID:        uuid.Must(uuid.NewV7()),
			Name:      "team chat",
			CreatedAt: time.Now().UTC(),
		}
		useCase.On("Create", mock.Anything, user.ID, chatUseCase.CreateConversationInput{
			Name:           "team chat",
			ParticipantIDs: []uuid.UUID{otherID},
		}).Return(conversation, nil)

		router := setupConversationRouter(useCase, user)

		body, _ := json.Marshal(map[string]any{
			"name":            "team chat",
			"participant_ids": []string{otherID.String()},
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, conversation.ID.String(), response["id"])
		assert.Equal(t, "team chat", response["name"])
	})

	t.Run("invalid participant id", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		router := setupConversationRouter(useCase, user)

		body, _ := json.Marshal(map[string]any{
			"name":            "team chat",
			"participant_ids": []string{"not-a-uuid"},
		})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		useCase.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rotation with no recipients fails the creation", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("Create", mock.Anything, user.ID, mock.AnythingOfType("usecase.CreateConversationInput")).
			Return(nil, keychainDomain.ErrNoEligibleRecipients)

		router := setupConversationRouter(useCase, user)

		body, _ := json.Marshal(map[string]any{"name": "team chat"})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing authentication", func(t *testing.T) {
		router := setupConversationRouter(&MockConversationUseCase{}, nil)

		body, _ := json.Marshal(map[string]any{"name": "team chat"})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestConversationHandler_GetConversationHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}
	conversationID := uuid.Must(uuid.NewV7())

	t.Run("returns the detail", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		detail := &chatUseCase.ConversationDetail{
			Conversation: &chatDomain.Conversation{ID: conversationID, Name: "team chat"},
			Participants: []*chatDomain.Participant{
				{ConversationID: conversationID, UserID: user.ID, UnreadCount: 2},
			},
			UnreadCount: 2,
			LastMessage: &chatDomain.Message{ID: 9, ConversationID: conversationID, AuthorID: user.ID, Content: "hi"},
		}
		useCase.On("GetByID", mock.Anything, user.ID, conversationID).Return(detail, nil)

		router := setupConversationRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, conversationID.String(), response["id"])
		assert.Equal(t, float64(2), response["unread_count"])
		assert.NotNil(t, response["last_message"])
	})

	t.Run("non-member gets 403", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("GetByID", mock.Anything, user.ID, conversationID).
			Return(nil, chatDomain.ErrNotParticipant)

		router := setupConversationRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("invalid conversation id", func(t *testing.T) {
		router := setupConversationRouter(&MockConversationUseCase{}, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/not-a-uuid", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestConversationHandler_AddParticipantHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}
	conversationID := uuid.Must(uuid.NewV7())
	newUserID := uuid.Must(uuid.NewV7())

	t.Run("successful add", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("AddParticipant", mock.Anything, user.ID, conversationID, newUserID).Return(nil)

		router := setupConversationRouter(useCase, user)

		body, _ := json.Marshal(map[string]string{"user_id": newUserID.String()})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/"+conversationID.String()+"/participants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("duplicate member gets 409", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("AddParticipant", mock.Anything, user.ID, conversationID, newUserID).
			Return(chatDomain.ErrAlreadyParticipant)

		router := setupConversationRouter(useCase, user)

		body, _ := json.Marshal(map[string]string{"user_id": newUserID.String()})
		req := httptest.NewRequest(http.MethodPost, "/v1/conversations/"+conversationID.String()+"/participants", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestConversationHandler_LeaveConversationHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}
	conversationID := uuid.Must(uuid.NewV7())

	t.Run("successful leave", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("Leave", mock.Anything, user.ID, conversationID).Return(nil)

		router := setupConversationRouter(useCase, user)

		req := httptest.NewRequest(http.MethodDelete, "/v1/conversations/"+conversationID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("leaving a conversation you are not in gets 403", func(t *testing.T) {
		useCase := &MockConversationUseCase{}
		useCase.On("Leave", mock.Anything, user.ID, conversationID).
			Return(chatDomain.ErrNotParticipant)

		router := setupConversationRouter(useCase, user)

		req := httptest.NewRequest(http.MethodDelete, "/v1/conversations/"+conversationID.String(), nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})
}

package http

import (
	"context"
	"encoding/base64"
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
	keychainDomain "github.com/allisson/chatkeys/internal/keychain/domain"
	keychainUseCase "github.com/allisson/chatkeys/internal/keychain/usecase"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// MockKeyQueryUseCase is a mock implementation of usecase.KeyQueryUseCase
type MockKeyQueryUseCase struct {
	mock.Mock
}

func (m *MockKeyQueryUseCase) ListForUser(ctx context.Context, conversationID, userID uuid.UUID) ([]*keychainDomain.KeyCopy, error) {
	args := m.Called(ctx, conversationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*keychainDomain.KeyCopy), args.Error(1)
}

func (m *MockKeyQueryUseCase) ActiveForUser(ctx context.Context, conversationID, userID uuid.UUID) (*keychainDomain.KeyCopy, error) {
	args := m.Called(ctx, conversationID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*keychainDomain.KeyCopy), args.Error(1)
}

func setupKeyRouter(useCase keychainUseCase.KeyQueryUseCase, authedUser *userDomain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewKeyHandler(useCase, slog.Default())

	router := gin.New()
	router.Use(func(c *gin.Context) {
		if authedUser != nil {
			c.Request = c.Request.WithContext(authHTTP.WithUser(c.Request.Context(), authedUser))
		}
		c.Next()
	})
	router.GET("/v1/conversations/:id/keys", handler.ListKeysHandler)
	router.GET("/v1/conversations/:id/keys/active", handler.GetActiveKeyHandler)
	return router
}

func TestKeyHandler_ListKeysHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}
	conversationID := uuid.Must(uuid.NewV7())

	t.Run("returns the key history", func(t *testing.T) {
		useCase := &MockKeyQueryUseCase{}

		closedAt := int64(10)
		keyCopies := []*keychainDomain.KeyCopy{
			{
				ID:             uuid.Must(uuid.NewV7()),
				ConversationID: conversationID,
				UserID:         user.ID,
				WrappedKey:     []byte("wrapped-one"),
				FromMessageID:  1,
				ToMessageID:    &closedAt,
				CreatedAt:      time.Now().UTC(),
			},
			{
				ID:             uuid.Must(uuid.NewV7()),
				ConversationID: conversationID,
				UserID:         user.ID,
				WrappedKey:     []byte("wrapped-two"),
				FromMessageID:  10,
				CreatedAt:      time.Now().UTC(),
			},
		}
		useCase.On("ListForUser", mock.Anything, conversationID, user.ID).Return(keyCopies, nil)

		router := setupKeyRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string][]map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		require.Len(t, response["data"], 2)

		closed := response["data"][0]
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("wrapped-one")), closed["wrapped_key"])
		assert.Equal(t, float64(10), closed["to_message_id"])
		assert.Equal(t, false, closed["is_active"])

		active := response["data"][1]
		assert.Nil(t, active["to_message_id"])
		assert.Equal(t, true, active["is_active"])
	})

	t.Run("empty history", func(t *testing.T) {
		useCase := &MockKeyQueryUseCase{}
		useCase.On("ListForUser", mock.Anything, conversationID, user.ID).
			Return([]*keychainDomain.KeyCopy{}, nil)

		router := setupKeyRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"data":[]}`, w.Body.String())
	})

	t.Run("invalid conversation id", func(t *testing.T) {
		router := setupKeyRouter(&MockKeyQueryUseCase{}, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/not-a-uuid/keys", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing authentication", func(t *testing.T) {
		router := setupKeyRouter(&MockKeyQueryUseCase{}, nil)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestKeyHandler_GetActiveKeyHandler(t *testing.T) {
	user := &userDomain.User{ID: uuid.Must(uuid.NewV7()), Name: "alice"}
	conversationID := uuid.Must(uuid.NewV7())

	t.Run("returns the active copy", func(t *testing.T) {
		useCase := &MockKeyQueryUseCase{}
		keyCopy := &keychainDomain.KeyCopy{
			ID:             uuid.Must(uuid.NewV7()),
			ConversationID: conversationID,
			UserID:         user.ID,
			WrappedKey:     []byte("wrapped"),
			FromMessageID:  42,
			CreatedAt:      time.Now().UTC(),
		}
		useCase.On("ActiveForUser", mock.Anything, conversationID, user.ID).Return(keyCopy, nil)

		router := setupKeyRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys/active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, keyCopy.ID.String(), response["id"])
		assert.Equal(t, float64(42), response["from_message_id"])
		assert.Equal(t, true, response["is_active"])
	})

	t.Run("no active copy yields 404", func(t *testing.T) {
		useCase := &MockKeyQueryUseCase{}
		useCase.On("ActiveForUser", mock.Anything, conversationID, user.ID).
			Return(nil, keychainDomain.ErrKeyNotFound)

		router := setupKeyRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys/active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("consistency violation yields 500", func(t *testing.T) {
		useCase := &MockKeyQueryUseCase{}
		useCase.On("ActiveForUser", mock.Anything, conversationID, user.ID).
			Return(nil, keychainDomain.ErrConsistencyViolation)

		router := setupKeyRouter(useCase, user)

		req := httptest.NewRequest(http.MethodGet, "/v1/conversations/"+conversationID.String()+"/keys/active", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	authDomain "github.com/allisson/chatkeys/internal/auth/domain"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

func setupAuthHandlerRouter(authUC authUseCase.AuthUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	handler := NewAuthHandler(authUC, slog.Default())

	router := gin.New()
	router.POST("/v1/auth/login", handler.LoginHandler)
	router.POST("/v1/auth/logout", func(c *gin.Context) {
		c.Request = c.Request.WithContext(WithTokenHash(c.Request.Context(), "token-hash"))
		handler.LogoutHandler(c)
	})
	return router
}

func TestAuthHandler_LoginHandler(t *testing.T) {
	t.Run("successful login returns the token", func(t *testing.T) {
		authUC := &MockAuthUseCase{}
		expiresAt := time.Now().UTC().Add(4 * time.Hour).Truncate(time.Second)

		authUC.On("Login", mock.Anything, authUseCase.LoginInput{Name: "alice", Password: "Password1"}).
			Return(&authUseCase.LoginOutput{
				Token:   "plain-token",
				Session: &authDomain.Session{ID: uuid.Must(uuid.NewV7()), ExpiresAt: expiresAt},
			}, nil)

		router := setupAuthHandlerRouter(authUC)

		body, _ := json.Marshal(map[string]string{"name": "alice", "password": "Password1"})
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]any
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.Equal(t, "plain-token", response["token"])
		assert.NotEmpty(t, response["expires_at"])
	})

	t.Run("invalid JSON body", func(t *testing.T) {
		router := setupAuthHandlerRouter(&MockAuthUseCase{})

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing credentials fail validation", func(t *testing.T) {
		authUC := &MockAuthUseCase{}
		router := setupAuthHandlerRouter(authUC)

		body, _ := json.Marshal(map[string]string{"name": "alice"})
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		authUC.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("bad credentials return 401", func(t *testing.T) {
		authUC := &MockAuthUseCase{}
		authUC.On("Login", mock.Anything, mock.AnythingOfType("usecase.LoginInput")).
			Return(nil, userDomain.ErrInvalidCredentials)

		router := setupAuthHandlerRouter(authUC)

		body, _ := json.Marshal(map[string]string{"name": "alice", "password": "WrongPassword1"})
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_LogoutHandler(t *testing.T) {
	t.Run("successful logout", func(t *testing.T) {
		authUC := &MockAuthUseCase{}
		authUC.On("Logout", mock.Anything, "token-hash").Return(nil)

		router := setupAuthHandlerRouter(authUC)

		req := httptest.NewRequest(http.MethodPost, "/v1/auth/logout", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNoContent, w.Code)
		authUC.AssertCalled(t, "Logout", mock.Anything, "token-hash")
	})
}

package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	userDomain "github.com/allisson/chatkeys/internal/user/domain"
)

// setupRateLimitRouter injects the given user into the request context the way
// the authentication middleware would, then applies the rate limiter.
func setupRateLimitRouter(rps float64, burst int, user *userDomain.User) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	if user != nil {
		router.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
			c.Next()
		})
	}
	router.Use(RateLimitMiddleware(rps, burst, slog.Default()))
	router.GET("/protected", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return router
}

func doRequest(router *gin.Engine) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("requests within the burst pass", func(t *testing.T) {
		user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}
		router := setupRateLimitRouter(1, 3, user)

		for i := 0; i < 3; i++ {
			assert.Equal(t, http.StatusOK, doRequest(router).Code)
		}
	})

	t.Run("exceeding the burst returns 429 with Retry-After", func(t *testing.T) {
		user := &userDomain.User{ID: uuid.Must(uuid.NewV7())}
		router := setupRateLimitRouter(0.1, 1, user)

		assert.Equal(t, http.StatusOK, doRequest(router).Code)

		w := doRequest(router)
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
		assert.Contains(t, w.Body.String(), "rate_limit_exceeded")
	})

	t.Run("limiters are isolated per user", func(t *testing.T) {
		gin.SetMode(gin.TestMode)

		alice := &userDomain.User{ID: uuid.Must(uuid.NewV7())}
		bob := &userDomain.User{ID: uuid.Must(uuid.NewV7())}

		middleware := RateLimitMiddleware(0.1, 1, slog.Default())

		routerFor := func(user *userDomain.User) *gin.Engine {
			router := gin.New()
			router.Use(func(c *gin.Context) {
				c.Request = c.Request.WithContext(WithUser(c.Request.Context(), user))
				c.Next()
			})
			router.Use(middleware)
			router.GET("/protected", func(c *gin.Context) {
				c.JSON(http.StatusOK, gin.H{"ok": true})
			})
			return router
		}
		aliceRouter := routerFor(alice)
		bobRouter := routerFor(bob)

		// Alice exhausts her bucket; Bob's stays full.
		assert.Equal(t, http.StatusOK, doRequest(aliceRouter).Code)
		assert.Equal(t, http.StatusTooManyRequests, doRequest(aliceRouter).Code)
		assert.Equal(t, http.StatusOK, doRequest(bobRouter).Code)
	})

	t.Run("missing authenticated user is rejected", func(t *testing.T) {
		router := setupRateLimitRouter(1, 1, nil)

		assert.Equal(t, http.StatusUnauthorized, doRequest(router).Code)
	})
}

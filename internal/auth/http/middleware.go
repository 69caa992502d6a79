package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authService "github.com/allisson/chatkeys/internal/auth/service"
	authUseCase "github.com/allisson/chatkeys/internal/auth/usecase"
	apperrors "github.com/allisson/chatkeys/internal/errors"
	"github.com/allisson/chatkeys/internal/httputil"
)

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Hashes the token using tokenService.HashToken()
// 3. Resolves the session using authUseCase.Authenticate()
// 4. Stores the authenticated user in the request context
// 5. Allows downstream handlers to access the user via GetUser()
//
// Authorization header format: "Bearer <token>" (case-insensitive "bearer")
func AuthenticationMiddleware(
	authUseCase authUseCase.AuthUseCase,
	tokenService authService.TokenService,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		plainToken := authHeader[len(bearerPrefix):]
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		tokenHash := tokenService.HashToken(plainToken)

		user, err := authUseCase.Authenticate(c.Request.Context(), tokenHash)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		ctx := WithUser(c.Request.Context(), user)
		ctx = WithTokenHash(ctx, tokenHash)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful", slog.String("user_id", user.ID.String()))

		c.Next()
	}
}

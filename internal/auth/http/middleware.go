package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/signatrust/internal/errors"
	"github.com/allisson/signatrust/internal/httputil"
)

// TokenVerifier compares a plain token against its hash.
type TokenVerifier interface {
	CompareToken(plainToken string, tokenHash string) bool
}

// AuthenticationMiddleware accepts requests whose bearer token matches tokenHash and
// stores AdminSubject in the request context. An empty tokenHash rejects every request.
func AuthenticationMiddleware(verifier TokenVerifier, tokenHash string, logger *slog.Logger) gin.HandlerFunc {
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
		if plainToken == "" || tokenHash == "" || !verifier.CompareToken(plainToken, tokenHash) {
			logger.Debug("authentication failed: invalid bearer token")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithSubject(c.Request.Context(), AdminSubject))
		c.Next()
	}
}

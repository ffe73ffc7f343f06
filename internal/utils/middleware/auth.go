package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/uniedit/fintoc-gateway/internal/infra/auth"
	apperrors "github.com/uniedit/fintoc-gateway/internal/utils/errors"
)

const (
	// AuthorizationHeader is the header key for authorization.
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens.
	BearerPrefix = "Bearer "
	// SubjectKey is the context key for the authenticated subject.
	SubjectKey = "subject"
)

// TokenValidator validates admin bearer tokens.
type TokenValidator interface {
	ValidateToken(token string) (*auth.Claims, error)
}

// RequireScope returns a middleware that requires a valid bearer token carrying scope.
func RequireScope(validator TokenValidator, scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			apperrors.Abort(c, apperrors.Unauthorized("unauthorized", "Authorization header required"))
			return
		}

		claims, err := validator.ValidateToken(token)
		if err != nil {
			apperrors.Abort(c, apperrors.Unauthorized("invalid_token", "Invalid or expired token"))
			return
		}
		if claims.Scope != scope {
			apperrors.Abort(c, apperrors.Forbidden("token lacks the "+scope+" scope"))
			return
		}

		c.Set(SubjectKey, claims.Subject)
		c.Next()
	}
}

// extractBearerToken extracts the bearer token from the Authorization header.
func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader(AuthorizationHeader)
	if !strings.HasPrefix(authHeader, BearerPrefix) {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authHeader, BearerPrefix))
}

// GetSubject returns the authenticated subject, or an empty string.
func GetSubject(c *gin.Context) string {
	return c.GetString(SubjectKey)
}

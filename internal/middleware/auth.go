package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/projecta/notifier/pkg/auth"
	"github.com/projecta/notifier/pkg/logger"
)

const ContextUserID = "user_id"

type AuthMiddleware struct {
	jwtService auth.JWTService
	logger     *logger.Logger
}

func NewAuthMiddleware(jwtService auth.JWTService, log *logger.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
		logger:     log,
	}
}

// Authenticate verifies the bearer token and stores the caller's id in the context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, "missing or malformed authorization header")
			return
		}

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			m.logger.Debug("Rejected token", "error", err.Error(), "request_id", c.GetString(ContextRequestID))
			abortWithError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(ContextUserID, claims.Identity())
		c.Next()
	}
}

// bearerToken reads the Authorization header. EventSource clients cannot set
// headers, so the access_token query parameter is accepted as a fallback.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		token := c.Query("access_token")
		return token, token != ""
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

// UserID returns the authenticated caller set by Authenticate.
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

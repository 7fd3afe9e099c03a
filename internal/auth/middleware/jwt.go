package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hareeshbabu82ns/devhub-search/internal/auth"
	"github.com/hareeshbabu82ns/devhub-search/internal/pkg/logger"
)

// JWTAuth authenticates requests and injects user_id into the context.
// Tokens arrive in the Authorization header, or as a token query
// parameter for SSE clients that cannot set headers.
func JWTAuth(manager *auth.JWTManager, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var token string
		var err error

		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			token, err = auth.ExtractTokenFromHeader(authHeader)
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid authorization header format"})
				c.Abort()
				return
			}
		} else {
			token = c.Query("token")
			if token == "" {
				c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "missing authorization"})
				c.Abort()
				return
			}
		}

		claims, err := manager.VerifyToken(token)
		if err != nil {
			log.Warn("invalid access token",
				zap.Error(err),
				zap.String("ip", c.ClientIP()))
			c.JSON(http.StatusUnauthorized, gin.H{"status": "error", "error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

package delivery

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"reliance-backend/internal/auth/usecase"

	"github.com/gin-gonic/gin"
)

// SharedSecretHeader carries the client's shared secret
const SharedSecretHeader = "X-Reliance-Authorization"

// SharedSecretMiddleware rejects requests whose shared-secret header matches none of secrets
func SharedSecretMiddleware(secrets []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader(SharedSecretHeader)
		if provided == "" {
			c.JSON(http.StatusForbidden, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		for _, secret := range secrets {
			if secret != "" && subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) == 1 {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, gin.H{"error": "not authorized"})
		c.Abort()
	}
}

// AuthMiddleware accepts "Bearer <jwt>" or a bare jwt in the Authorization header
func AuthMiddleware(authUsecase usecase.AuthUsecase) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			c.Abort()
			return
		}

		token := authHeader
		if parts := strings.Fields(authHeader); len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			token = parts[1]
		} else if len(parts) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			c.Abort()
			return
		}

		user, err := authUsecase.ValidateToken(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			c.Abort()
			return
		}

		c.Set("user", user)
		c.Set("userID", user.ID)
		c.Next()
	}
}

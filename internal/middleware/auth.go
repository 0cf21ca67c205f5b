package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/lalith-99/sheetcrm/internal/auth"
)

// Context keys set by AuthMiddleware.
const (
	ContextKeyEmail = "email"
	ContextKeyName  = "name"
)

// AuthMiddleware rejects requests without a valid session token and
// stores the caller's identity on the gin context.
//
// Browsers cannot set headers on a websocket handshake, so the token is
// also accepted in the "token" query parameter.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, ok := bearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "missing authorization header",
			})
			return
		}

		claims, err := auth.ParseToken(tokenString, secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "invalid or expired token",
			})
			return
		}

		c.Set(ContextKeyEmail, claims.Email)
		c.Set(ContextKeyName, claims.Name)
		c.Next()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		t := c.Query("token")
		return t, t != ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetEmail returns the caller's email, or "" outside AuthMiddleware.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}

func GetName(c *gin.Context) string {
	return c.GetString(ContextKeyName)
}

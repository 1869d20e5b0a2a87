package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ContextSessionKey is the gin context key holding the current *models.Session
const ContextSessionKey = "session"

// AuthMiddleware validates the session
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Get the session from the request
		session, err := GetSession(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			c.Abort()
			return
		}

		// Verify the session hasn't expired
		if session.IsExpired() {
			DeleteSession(c)
			c.JSON(http.StatusUnauthorized, gin.H{"error": "session expired, please log in again"})
			c.Abort()
			return
		}

		// Store user info in context for handlers to use
		c.Set(ContextSessionKey, session)
		c.Set("username", session.Username)
		c.Set("email", session.Email)

		c.Next()
	}
}

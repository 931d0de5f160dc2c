package session

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const contextKey = "session"

// Middleware resolves the session cookie and stores the session on the gin
// context. Requests without a valid, live session get 401.
func Middleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(CookieName)
		if err != nil || token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}

		s, err := m.Resolve(c.Request.Context(), token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
			c.Abort()
			return
		}

		c.Set(contextKey, s)
		c.Next()
	}
}

// RequireActiveGym rejects requests from tenants whose subscription has not
// been activated yet. The sign-in flow sends those to /pricing.
func RequireActiveGym() gin.HandlerFunc {
	return func(c *gin.Context) {
		s, ok := FromContext(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
			c.Abort()
			return
		}
		if !s.Gym.IsActive {
			c.JSON(http.StatusForbidden, gin.H{"error": "Gym is not active"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// FromContext returns the session set by Middleware.
func FromContext(c *gin.Context) (*Session, bool) {
	v, exists := c.Get(contextKey)
	if !exists {
		return nil, false
	}
	s, ok := v.(*Session)
	return s, ok
}

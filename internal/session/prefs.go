package session

import "github.com/gin-gonic/gin"

const prefsContextKey = "session_prefs"

// PrefsMiddleware loads the operator's stored preferences onto the context.
// Must run after Middleware. A store failure falls back to defaults rather
// than blocking the request.
func PrefsMiddleware(m *Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if s, ok := FromContext(c); ok {
			p, err := m.Prefs(c.Request.Context(), s)
			if err != nil {
				p = DefaultPrefs()
			}
			c.Set(prefsContextKey, p)
		}
		c.Next()
	}
}

// PrefsFromContext returns the prefs set by PrefsMiddleware.
func PrefsFromContext(c *gin.Context) Prefs {
	v, exists := c.Get(prefsContextKey)
	if !exists {
		return DefaultPrefs()
	}
	p, ok := v.(Prefs)
	if !ok {
		return DefaultPrefs()
	}
	return p
}

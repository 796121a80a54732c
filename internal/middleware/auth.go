package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"kleenestar/internal/repositories"
	"kleenestar/internal/services"
	"kleenestar/internal/session"
)

// AuthMiddleware authenticates requests by their session cookie. The
// session's auth hash must still match the user's current password hash;
// a stale one (password changed elsewhere) kills the session.
func AuthMiddleware(store session.Store, users repositories.UserRepository, auth services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		sessionID, err := c.Cookie(session.CookieName)
		if err != nil || sessionID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication credentials were not provided"})
			return
		}

		sess, err := store.Get(c.Request.Context(), sessionID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		user, err := users.GetByID(sess.UserID)
		if err != nil {
			_ = store.Delete(c.Request.Context(), sessionID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		if auth.SessionAuthHash(user.PasswordHash) != sess.AuthHash {
			_ = store.Delete(c.Request.Context(), sessionID)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired session"})
			return
		}

		c.Set("user_id", user.ID)
		c.Set("session_id", sessionID)

		c.Next()
	}
}

package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/perfectdish/core/internal/pkg/session"
)

const (
	ContextKeyUserID       = "user_id"
	ContextKeySessionToken = "session_token"
)

// Resolve reads the session cookie on every request and, when the token maps
// to a live session, records the caller's identity in the request context.
// An absent or expired session is not an error; the request proceeds
// anonymously.
func Resolve(sm *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}
		userID, ok, err := sm.Resolve(c.Request.Context(), token)
		if err == nil && ok {
			c.Set(ContextKeyUserID, userID)
			c.Set(ContextKeySessionToken, token)
		}
		c.Next()
	}
}

// RequireAuth redirects anonymous callers to the login form. Must run after
// Resolve.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUserID extracts the authenticated identity id from context.
func CurrentUserID(c *gin.Context) (primitive.ObjectID, bool) {
	v, exists := c.Get(ContextKeyUserID)
	if !exists {
		return primitive.NilObjectID, false
	}
	id, ok := v.(primitive.ObjectID)
	return id, ok
}

// CurrentSessionToken extracts the caller's session token from context.
func CurrentSessionToken(c *gin.Context) string {
	v, _ := c.Get(ContextKeySessionToken)
	token, _ := v.(string)
	return token
}

// IsAuthenticated reports whether the request carries a live session.
func IsAuthenticated(c *gin.Context) bool {
	_, ok := CurrentUserID(c)
	return ok
}

// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file provides bearer-token authentication. Verified claims are placed
// in the Gin context so handlers and the rate limiter can key on the caller.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/islechat/go-wa-backend/internal/services"
)

// Context keys populated by BearerAuth.
const (
	// userIDKey holds the token subject (account id) as a string.
	userIDKey = "userID"
	// workspaceKey holds the workspace slug the token is scoped to.
	workspaceKey = "workspace"
)

// TokenVerifier validates a bearer token and returns its claims.
// *services.AuthService satisfies it.
type TokenVerifier interface {
	Verify(token string) (*services.Claims, error)
}

// BearerAuth returns a Gin middleware that requires a valid Authorization:
// Bearer token on every request. Missing or invalid tokens get a 401 with
// the standard JSON error shape.
func BearerAuth(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(raw, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(c, "missing bearer token")
			return
		}

		claims, err := verifier.Verify(strings.TrimSpace(token))
		if err != nil {
			unauthorized(c, "invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.Subject)
		c.Set(workspaceKey, claims.Workspace)
		c.Next()
	}
}

// UserID returns the authenticated account id set by BearerAuth, or "".
func UserID(c *gin.Context) string {
	v, _ := c.Get(userIDKey)
	s, _ := v.(string)
	return s
}

// Workspace returns the authenticated workspace slug set by BearerAuth, or "".
func Workspace(c *gin.Context) string {
	v, _ := c.Get(workspaceKey)
	s, _ := v.(string)
	return s
}

func unauthorized(c *gin.Context, msg string) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"request_id": c.Writer.Header().Get("X-Request-ID"),
		"code":       "unauthorized",
		"message":    msg,
	})
}

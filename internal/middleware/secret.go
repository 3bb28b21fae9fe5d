package middleware

import (
	"crypto/subtle"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/runreview/core/internal/pkg/response"
)

const ContextKeyAuthorized = "batch_authorized"

// BatchSecret guards batch and maintenance endpoints with a shared bearer
// secret. An empty secret disables the guard, which is only sensible in
// development.
func BatchSecret(secret string) gin.HandlerFunc {
	secret = strings.TrimSpace(secret)
	return func(c *gin.Context) {
		if secret == "" {
			c.Set(ContextKeyAuthorized, true)
			c.Next()
			return
		}
		token := NormalizeToken(c.GetHeader("Authorization"))
		if token == "" || subtle.ConstantTimeCompare([]byte(token), []byte(secret)) != 1 {
			response.Unauthorized(c)
			return
		}
		c.Set(ContextKeyAuthorized, true)
		c.Next()
	}
}

// IsAuthenticated reports whether the current request passed the secret guard.
func IsAuthenticated(c *gin.Context) bool {
	v, ok := c.Get(ContextKeyAuthorized)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// NormalizeToken strips an optional Bearer prefix and surrounding spaces.
func NormalizeToken(raw string) string {
	token := strings.TrimSpace(raw)
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = strings.TrimSpace(token[7:])
	}
	return token
}

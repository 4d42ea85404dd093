// Package middleware holds the gin middleware shared by both servers:
// bearer auth, request logging, metrics, rate limiting and CORS.
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/carelink/carelink-ai/pkg/auth"
)

// BearerAuth rejects requests that do not carry the shared bearer token.
// The token is compared in constant time.
func BearerAuth(verifier *auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || verifier.Verify(strings.TrimSpace(token)) != nil {
			c.Header("WWW-Authenticate", `Bearer realm="carelink"`)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing token"})
			return
		}
		c.Next()
	}
}

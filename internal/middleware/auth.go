// Package middleware holds the gin middleware cmd/main.go installs ahead of
// routing. BearerAuth adapts the teacher's utils.JWTService auth pattern
// (referenced from internal/services/auth_service.go, though the service's
// own implementation was outside the retrieved slice) to a stateless HS256
// bearer check guarding the submit/cancel endpoints (SPEC_FULL.md §4).
package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// BearerAuth rejects requests whose Authorization header isn't a valid
// "Bearer <token>" signed with secret. An empty secret disables the check
// entirely, matching local/dev deployments that run without auth in front.
func BearerAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "missing bearer token"})
			return
		}

		_, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "invalid bearer token"})
			return
		}

		c.Next()
	}
}

package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminOnly refuses requests lacking a valid admin session cookie.
func AdminOnly(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookie)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin session required"})
			return
		}
		claims, err := Parse(token, signingKey, issuer)
		if err != nil || claims.Role != "admin" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin session required"})
			return
		}
		c.Set("claims", claims)
		c.Next()
	}
}

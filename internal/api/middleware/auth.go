package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// AdminAuth returns a middleware that gates admin routes behind a shared
// token, accepted via Authorization bearer header, X-Admin-Token header, or
// admin_token cookie. An empty configured token rejects all admin requests.
func AdminAuth(token string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success":  false,
				"category": "service_not_configured",
				"message":  "Admin access is not configured",
			})
			return
		}

		provided := c.GetHeader("X-Admin-Token")
		if provided == "" {
			if auth := c.GetHeader("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				provided = strings.TrimPrefix(auth, "Bearer ")
			}
		}
		if provided == "" {
			if cookie, err := c.Cookie("admin_token"); err == nil {
				provided = cookie
			}
		}

		if subtle.ConstantTimeCompare([]byte(provided), []byte(token)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success":  false,
				"category": "unknown",
				"message":  "Invalid admin token",
			})
			return
		}

		c.Next()
	}
}

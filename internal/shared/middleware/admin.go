package middleware

import (
	"comercial-backend/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware exige rol admin. Corre después de AuthMiddleware.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		roleValue, exists := c.Get("role")
		if !exists {
			response.Forbidden(c, "access denied: admin role required")
			c.Abort()
			return
		}

		role, ok := roleValue.(string)
		if !ok || role != "admin" {
			response.Forbidden(c, "access denied: admin role required")
			c.Abort()
			return
		}

		c.Next()
	}
}

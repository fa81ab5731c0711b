package middleware

import (
	"context"

	"comercial-backend/internal/shared/utils"

	"github.com/gin-gonic/gin"
)

// ClientIPMiddleware extrae la IP real del cliente y la inyecta en el
// contexto para que los services la usen al registrar auditoría.
func ClientIPMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := utils.ExtractClientIP(c)

		c.Set("client_ip", clientIP)

		ctx := context.WithValue(c.Request.Context(), utils.ClientIPKey, clientIP)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetClientIPFromContext lee la IP del contexto. Devuelve "" si no está.
func GetClientIPFromContext(ctx context.Context) string {
	if ip := ctx.Value(utils.ClientIPKey); ip != nil {
		if ipStr, ok := ip.(string); ok {
			return ipStr
		}
	}
	return ""
}

package utils

import (
	"context"
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

type contextKey string

// ClientIPKey es la key bajo la que viaja la IP del cliente en el context
const ClientIPKey contextKey = "client_ip"

// ExtractClientIP extrae la IP real del cliente contemplando proxies.
//
// Orden de prioridad:
// 1. X-Forwarded-For (primer IP de la lista)
// 2. X-Real-IP (nginx/cloudflare)
// 3. RemoteAddr de la conexión directa
func ExtractClientIP(c *gin.Context) string {
	if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		clientIP := strings.TrimSpace(ips[0])

		if isValidIP(clientIP) {
			return clientIP
		}
	}

	if xri := c.GetHeader("X-Real-IP"); xri != "" {
		if isValidIP(xri) {
			return xri
		}
	}

	remoteAddr := c.Request.RemoteAddr
	ip, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		ip = remoteAddr
	}

	if isValidIP(ip) {
		return ip
	}

	return "127.0.0.1"
}

// ClientIPFromContext lee la IP que dejó el middleware. Devuelve "" si no está.
func ClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPKey).(string); ok {
		return ip
	}
	return ""
}

func isValidIP(ip string) bool {
	if ip == "" {
		return false
	}
	return net.ParseIP(ip) != nil
}

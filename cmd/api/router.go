package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"comercial-backend/internal/shared/middleware"
	"comercial-backend/pkg/container"
)

func SetupRouter(c *container.Container) *gin.Engine {
	router := gin.New()

	// Global middlewares
	router.Use(
		middleware.Recovery(),
		middleware.RequestID(),
		middleware.Logger(),
		middleware.CORS(),
		middleware.ClientIPMiddleware(),
	)

	v1 := router.Group("/api/v1")
	{
		// Health check
		v1.GET("/health", healthCheckHandler(c))
		v1.GET("/db-test", databaseTestHandler(c))

		setupPrecioRoutes(v1, c)
		setupDescuentoRoutes(v1, c)
		setupPromocionRoutes(v1, c)
		setupAdminRoutes(v1, c)
	}

	return router
}

// ========================================
// PRECIO ROUTES (público)
// ========================================
func setupPrecioRoutes(v1 *gin.RouterGroup, c *container.Container) {
	precios := v1.Group("/precios")
	{
		// Resolución de precios para el flujo de venta
		precios.POST("/aplicar", c.PrecioHandler.AplicarPrecio)
		precios.POST("/simular", c.PrecioHandler.SimularPrecio)

		// Consultas de reglas
		precios.GET("/producto", c.PrecioHandler.ListarPreciosProducto)
		precios.GET("/volumen", c.PrecioHandler.ListarPreciosVolumen)
		precios.GET("/categoria", c.PrecioHandler.ListarPreciosCategoria)
		precios.GET("/estacionales", c.PrecioHandler.ListarPreciosEstacionales)
		precios.GET("/historial", c.PrecioHandler.ObtenerHistorial)
		precios.GET("/aplicados/:venta_id", c.PrecioHandler.ObtenerPreciosAplicados)
	}
}

// ========================================
// DESCUENTO ROUTES (público)
// ========================================
func setupDescuentoRoutes(v1 *gin.RouterGroup, c *container.Container) {
	descuentos := v1.Group("/descuentos")
	{
		descuentos.POST("/aplicar", c.DescuentoHandler.AplicarDescuento)
		descuentos.POST("/usos", c.DescuentoHandler.RegistrarUso)
		descuentos.GET("/disponibles", c.DescuentoHandler.ListarDisponibles)
		descuentos.GET("/codigo/:codigo", c.DescuentoHandler.ObtenerPorCodigo)
	}
}

// ========================================
// PROMOCION ROUTES (público)
// ========================================
func setupPromocionRoutes(v1 *gin.RouterGroup, c *container.Container) {
	promociones := v1.Group("/promociones")
	{
		promociones.GET("", c.DescuentoHandler.ListarPromociones)
	}
}

// ========================================
// ADMIN ROUTES
// ========================================
func setupAdminRoutes(v1 *gin.RouterGroup, c *container.Container) {
	admin := v1.Group("/admin")
	admin.Use(
		middleware.AuthMiddleware(c.JWTManager),
		middleware.AdminMiddleware(),
	)
	{
		precios := admin.Group("/precios")
		{
			precios.POST("/producto", c.PrecioHandler.CrearPrecioProducto)
			precios.PUT("/producto/:id", c.PrecioHandler.ActualizarPrecioProducto)
			precios.POST("/volumen", c.PrecioHandler.CrearPrecioVolumen)
			precios.POST("/categoria", c.PrecioHandler.CrearPrecioCategoria)
			precios.POST("/estacionales", c.PrecioHandler.CrearPrecioEstacional)
			precios.GET("/resumen", c.PrecioHandler.ObtenerResumen)
			precios.GET("/estadisticas", c.PrecioHandler.ObtenerEstadisticas)
		}

		descuentos := admin.Group("/descuentos")
		{
			descuentos.POST("", c.DescuentoHandler.CrearDescuento)
			descuentos.GET("", c.DescuentoHandler.ListarDescuentos)
			descuentos.GET("/estadisticas", c.DescuentoHandler.ObtenerEstadisticas)
			descuentos.POST("/actualizar-estados", c.DescuentoHandler.ActualizarEstados)
			descuentos.GET("/:id", c.DescuentoHandler.ObtenerDescuento)
			descuentos.PUT("/:id", c.DescuentoHandler.ActualizarDescuento)
			descuentos.GET("/:id/usos", c.DescuentoHandler.ListarUsos)
		}

		admin.POST("/promociones", c.DescuentoHandler.CrearPromocion)

		auditoria := admin.Group("/auditoria")
		{
			auditoria.POST("", c.AuditoriaHandler.RegistrarEvento)
			auditoria.GET("", c.AuditoriaHandler.ListarEventos)
			auditoria.GET("/:id", c.AuditoriaHandler.ObtenerEvento)
			auditoria.DELETE("/:id", c.AuditoriaHandler.EliminarEvento)
		}
	}
}

// ========================================
// HEALTH CHECK HANDLER
// ========================================
func healthCheckHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   getEnv("APP_VERSION", "1.0.0"),
			"services":  gin.H{},
		}

		dbStatus := "ok"
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			dbStatus = "disconnected"
			health["status"] = "degraded"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.DB.HealthCheck(ctx); err != nil {
				dbStatus = fmt.Sprintf("error: %v", err)
				health["status"] = "degraded"
			}
		}

		redisStatus := "ok"
		if appCtx.Cache == nil {
			redisStatus = "disconnected"
		} else {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			if err := appCtx.Cache.Ping(ctx); err != nil {
				redisStatus = fmt.Sprintf("error: %v", err)
			}
		}

		health["services"] = gin.H{
			"database": dbStatus,
			"redis":    redisStatus,
		}

		statusCode := http.StatusOK
		if dbStatus != "ok" {
			statusCode = http.StatusServiceUnavailable
		}

		c.JSON(statusCode, health)
	}
}

// ========================================
// DATABASE TEST HANDLER
// ========================================
func databaseTestHandler(appCtx *container.Container) gin.HandlerFunc {
	return func(c *gin.Context) {
		if appCtx.DB == nil || appCtx.DB.Pool == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"error": "Database not connected",
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		var version string
		err := appCtx.DB.Pool.QueryRow(ctx, "SELECT version()").Scan(&version)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": fmt.Sprintf("Query failed: %v", err),
			})
			return
		}

		stats := appCtx.DB.Pool.Stat()

		c.JSON(http.StatusOK, gin.H{
			"message": "Database test successful",
			"database": gin.H{
				"postgres_version": version,
				"pool_stats": gin.H{
					"total_connections":    stats.TotalConns(),
					"idle_connections":     stats.IdleConns(),
					"acquired_connections": stats.AcquiredConns(),
					"max_connections":      stats.MaxConns(),
				},
			},
		})
	}
}

// Package server configures the HTTP server and routes.
package server

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/config"
	"github.com/fleveque/weather-query-service/internal/handler"
	"github.com/fleveque/weather-query-service/internal/middleware"
)

// RegisterRoutes sets up all HTTP routes on the Gin engine.
// In Go, we pass dependencies explicitly — no DI container, no magic.
// Each handler gets exactly the dependencies it needs.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, deps Deps, logger *zap.Logger) {
	healthHandler := handler.NewHealthHandler()
	queryHandler := handler.NewQueryHandler(deps.QueryService, logger)
	exportHandler := handler.NewExportHandler(deps.ExportStore)
	adminHandler := handler.NewAdminHandler(deps.QueryLog, logger)

	// Public endpoints (no auth)
	r.GET("/healthz", healthHandler.Healthz)

	// CORS middleware applies to the entire API group.
	api := r.Group("/api/v1")
	api.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	authed := api.Group("")
	authed.Use(middleware.APIKeyAuth(cfg.Auth.APIKeys))
	authed.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
	{
		authed.POST("/query", queryHandler.Process)
		authed.GET("/exports/:id", exportHandler.Download)
	}

	// Admin endpoints (separate auth with admin keys)
	admin := api.Group("/admin")
	admin.Use(middleware.AdminKeyAuth(cfg.Auth.AdminKeys))
	{
		admin.GET("/stats", adminHandler.Stats)
		admin.GET("/queries", adminHandler.Recent)
	}
}

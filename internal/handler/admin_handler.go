package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/model"
	"github.com/fleveque/weather-query-service/internal/storage"
)

// AdminHandler handles administrative endpoints over the usage-accounting log.
type AdminHandler struct {
	queryLog storage.QueryLogRepository
	logger   *zap.Logger
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(queryLog storage.QueryLogRepository, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		queryLog: queryLog,
		logger:   logger,
	}
}

// Stats returns query counts per provider and failure totals.
// Route: GET /api/v1/admin/stats
func (h *AdminHandler) Stats(c *gin.Context) {
	ctx := c.Request.Context()

	total, err := h.queryLog.Count(ctx)
	if err != nil {
		h.logger.Error("counting queries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	forecast, err := h.queryLog.CountByProvider(ctx, model.KindForecast)
	if err != nil {
		h.logger.Error("counting forecast queries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	climatology, err := h.queryLog.CountByProvider(ctx, model.KindClimatology)
	if err != nil {
		h.logger.Error("counting climatology queries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	failed, err := h.queryLog.CountFailed(ctx)
	if err != nil {
		h.logger.Error("counting failed queries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"total":       total,
		"forecast":    forecast,
		"climatology": climatology,
		"failed":      failed,
	})
}

// Recent returns the most recent query records.
// Route: GET /api/v1/admin/queries?limit=20
func (h *AdminHandler) Recent(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 || limit > 200 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}

	records, err := h.queryLog.Recent(c.Request.Context(), limit)
	if err != nil {
		h.logger.Error("listing recent queries", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"queries": records})
}

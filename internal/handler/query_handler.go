package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/auth"
	"github.com/fleveque/weather-query-service/internal/llm"
	"github.com/fleveque/weather-query-service/internal/provider"
	"github.com/fleveque/weather-query-service/internal/service"
)

// QueryHandler handles natural-language weather questions.
type QueryHandler struct {
	queries *service.QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(queries *service.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{
		queries: queries,
		logger:  logger,
	}
}

// queryRequest is the request body. `binding:"required"` makes Gin reject a
// missing or empty query during ShouldBindJSON.
type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

// Process answers one weather question.
// Route: POST /api/v1/query
//
// Success body: {"weather_data": ..., "llm_summary": "...", "csv_id": "..."}.
// Failures are classified into the error taxonomy and mapped to a status plus
// a safe message; the underlying error detail only goes to the log.
func (h *QueryHandler) Process(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing query"})
		return
	}

	result, err := h.queries.Process(c.Request.Context(), req.Query)
	if err != nil {
		status, msg := classify(err)
		h.logger.Warn("query failed",
			zap.Int("status", status),
			zap.Error(err),
		)
		c.JSON(status, gin.H{"error": msg})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"weather_data": result.Payload,
		"llm_summary":  result.Summary,
		"csv_id":       result.ExportID,
	})
}

// classify maps a pipeline error onto an HTTP status and a message safe to
// show the caller. Raw upstream bodies and model output never leak through
// here — they stay in the structured log.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		return http.StatusBadRequest, "missing or empty query"
	case errors.Is(err, llm.ErrInterpretation):
		return http.StatusBadGateway, "could not interpret the request"
	case errors.Is(err, auth.ErrAuthentication):
		return http.StatusBadGateway, "weather provider authentication failed"
	case errors.Is(err, provider.ErrUpstreamFetch):
		return http.StatusBadGateway, "weather provider request failed"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fleveque/weather-query-service/internal/export"
)

// ExportHandler serves stored CSV exports for download.
type ExportHandler struct {
	store *export.Store
}

// NewExportHandler creates a new ExportHandler.
func NewExportHandler(store *export.Store) *ExportHandler {
	return &ExportHandler{store: store}
}

// Download serves one CSV export.
// Route: GET /api/v1/exports/:id
//
// An unknown or expired identifier is a 404 — distinct from a server error,
// so the frontend can tell the user the download link has expired.
func (h *ExportHandler) Download(c *gin.Context) {
	id := c.Param("id")

	data, err := h.store.Get(id)
	if err != nil {
		if errors.Is(err, export.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error": "export expired or unknown",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Header("Content-Disposition", `attachment; filename="weather_data.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

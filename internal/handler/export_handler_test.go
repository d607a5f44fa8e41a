package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/fleveque/weather-query-service/internal/export"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newExportRouter(t *testing.T) (*gin.Engine, *export.Store) {
	t.Helper()

	store := export.NewStore(time.Hour)
	t.Cleanup(store.Close)

	router := gin.New()
	h := NewExportHandler(store)
	router.GET("/api/v1/exports/:id", h.Download)
	return router, store
}

func TestExportHandler_Download(t *testing.T) {
	router, store := newExportRouter(t)

	csvData := "timestamp,longitude,latitude,airTemp\n2024-06-02T06:00:00Z,-87.6,41.8,18\n"
	id := store.Put([]byte(csvData))

	req := httptest.NewRequest("GET", "/api/v1/exports/"+id, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("expected text/csv, got %q", ct)
	}
	if w.Body.String() != csvData {
		t.Errorf("body mismatch: %q", w.Body.String())
	}
}

func TestExportHandler_NotFound(t *testing.T) {
	router, _ := newExportRouter(t)

	req := httptest.NewRequest("GET", "/api/v1/exports/nonexistent", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown identifier, got %d", w.Code)
	}
}

package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/auth"
	"github.com/fleveque/weather-query-service/internal/llm"
	"github.com/fleveque/weather-query-service/internal/provider"
	"github.com/fleveque/weather-query-service/internal/service"
)

func newQueryRouter(t *testing.T) *gin.Engine {
	t.Helper()

	// Only the pre-pipeline rejection paths run here, so a service with no
	// collaborators is enough — it must fail before touching any of them.
	svc := service.NewQueryService(nil, nil, nil, nil, nil, zap.NewNop())
	h := NewQueryHandler(svc, zap.NewNop())

	router := gin.New()
	router.POST("/api/v1/query", h.Process)
	return router
}

func TestQueryHandler_MissingQuery(t *testing.T) {
	router := newQueryRouter(t)

	for _, body := range []string{"", "{}", `{"query": ""}`, "not json"} {
		req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: expected 400, got %d", body, w.Code)
		}
		if !strings.Contains(w.Body.String(), "error") {
			t.Errorf("body %q: expected an error field, got %s", body, w.Body.String())
		}
	}
}

func TestQueryHandler_WhitespaceQuery(t *testing.T) {
	router := newQueryRouter(t)

	req := httptest.NewRequest("POST", "/api/v1/query", strings.NewReader(`{"query": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for whitespace-only query, got %d", w.Code)
	}
}

func TestClassify(t *testing.T) {
	cases := []struct {
		err        error
		wantStatus int
	}{
		{fmt.Errorf("wrap: %w", service.ErrInvalidRequest), http.StatusBadRequest},
		{fmt.Errorf("wrap: %w", llm.ErrInterpretation), http.StatusBadGateway},
		{fmt.Errorf("wrap: %w", auth.ErrAuthentication), http.StatusBadGateway},
		{fmt.Errorf("wrap: %w", provider.ErrUpstreamFetch), http.StatusBadGateway},
		{fmt.Errorf("something else entirely"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		status, msg := classify(tc.err)
		if status != tc.wantStatus {
			t.Errorf("%v: expected status %d, got %d", tc.err, tc.wantStatus, status)
		}
		// The safe message never repeats the raw error text.
		if strings.Contains(msg, "wrap:") {
			t.Errorf("%v: message leaks error detail: %q", tc.err, msg)
		}
	}
}

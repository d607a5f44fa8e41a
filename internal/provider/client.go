// Package provider contains the clients for the upstream weather APIs.
// Both upstreams (conditions forecast, climatology) share the same wire shape:
// a bearer-authenticated GET with lat/lon/time-range/parameters query params
// returning a GeoJSON-like feature collection. They differ only in audience,
// endpoint URL, and the naming of the time-range fields, so one Client type
// serves both.
package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/auth"
	"github.com/fleveque/weather-query-service/internal/model"
)

// ErrUpstreamFetch is returned when an upstream returns a non-success status
// or a body that doesn't decode. Callers check with errors.Is.
var ErrUpstreamFetch = errors.New("upstream fetch failed")

// Config describes one upstream endpoint.
type Config struct {
	Kind     model.ProviderKind
	Audience string
	BaseURL  string
	// Query parameter names for the time range. The forecast API takes
	// startTime/endTime (full timestamps); climatology takes
	// startDate/endDate (month-day only).
	StartField string
	EndField   string
}

// Client fetches weather data from one upstream API. Stateless apart from the
// circuit breaker; tokens come from the injected TokenSource.
type Client struct {
	cfg        Config
	tokens     auth.TokenSource
	httpClient *http.Client
	circuit    *gobreaker.CircuitBreaker
	logger     *zap.Logger
}

// New creates a client for one upstream. The circuit breaker sheds load when
// the upstream is consistently failing; there are no retries — each query
// gets exactly one attempt.
func New(cfg Config, tokens auth.TokenSource, logger *zap.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        string(cfg.Kind),
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		cfg:    cfg,
		tokens: tokens,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		circuit: cb,
		logger:  logger,
	}
}

// NewForecast creates the client for the short-range conditions API.
func NewForecast(baseURL, audience string, tokens auth.TokenSource, logger *zap.Logger) *Client {
	return New(Config{
		Kind:       model.KindForecast,
		Audience:   audience,
		BaseURL:    baseURL,
		StartField: "startTime",
		EndField:   "endTime",
	}, tokens, logger)
}

// NewClimatology creates the client for the multi-year averages API.
func NewClimatology(baseURL, audience string, tokens auth.TokenSource, logger *zap.Logger) *Client {
	return New(Config{
		Kind:       model.KindClimatology,
		Audience:   audience,
		BaseURL:    baseURL,
		StartField: "startDate",
		EndField:   "endDate",
	}, tokens, logger)
}

// Kind returns which upstream this client talks to.
func (c *Client) Kind() model.ProviderKind { return c.cfg.Kind }

// Fetch exchanges structured query parameters for the upstream's payload.
// Any non-success status aborts the caller's query; the raw upstream body is
// logged but never surfaced.
func (c *Client) Fetch(ctx context.Context, params model.QueryParams) (*model.ConditionsPayload, error) {
	token, err := c.tokens.Token(ctx, c.cfg.Audience)
	if err != nil {
		return nil, err
	}

	values := url.Values{}
	values.Set("lat", strconv.FormatFloat(params.Latitude, 'f', -1, 64))
	values.Set("lon", strconv.FormatFloat(params.Longitude, 'f', -1, 64))
	values.Set(c.cfg.StartField, params.Start)
	values.Set(c.cfg.EndField, params.End)
	values.Set("parameters", strings.Join(params.Parameters, ","))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.cfg.BaseURL+"?"+values.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	result, err := c.circuit.Execute(func() (interface{}, error) {
		return c.do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %s circuit open", ErrUpstreamFetch, c.cfg.Kind)
		}
		return nil, err
	}

	return result.(*model.ConditionsPayload), nil
}

func (c *Client) do(req *http.Request) (*model.ConditionsPayload, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		c.logger.Warn("upstream returned error",
			zap.String("provider", string(c.cfg.Kind)),
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", detail),
		)
		return nil, fmt.Errorf("%w: HTTP %d from %s API", ErrUpstreamFetch, resp.StatusCode, c.cfg.Kind)
	}

	var payload model.ConditionsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding body: %v", ErrUpstreamFetch, err)
	}
	return &payload, nil
}

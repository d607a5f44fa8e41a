// Package service contains the core business logic: the query pipeline.
// QueryService walks each natural-language question through a strict sequence:
//
//	ROUTE     — LLM picks the upstream API (forecast vs climatology)
//	EXTRACT   — LLM emits structured parameters, validated before use
//	FETCH     — provider client pulls the data
//	SUMMARIZE — LLM answers the question in prose
//	NORMALIZE — payload flattened to CSV
//	STORE     — CSV retained under a fresh identifier for download
//
// Steps never run out of order and never retry: each depends on the previous
// step's output, and a failure anywhere aborts the whole query with no
// partial result.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/export"
	"github.com/fleveque/weather-query-service/internal/llm"
	"github.com/fleveque/weather-query-service/internal/model"
	"github.com/fleveque/weather-query-service/internal/provider"
	"github.com/fleveque/weather-query-service/internal/storage"
)

// ErrInvalidRequest is returned for a missing or empty query, before any
// external call is made.
var ErrInvalidRequest = errors.New("invalid request")

// defaultCallTimeout bounds each external call (LLM, upstream fetch) so a
// slow collaborator cannot block a query indefinitely.
const defaultCallTimeout = 60 * time.Second

// QueryService runs the pipeline. All dependencies are injected — there is no
// ambient global state, which keeps the caches testable in isolation.
type QueryService struct {
	interp      llm.Interpreter
	forecast    *provider.Client
	climatology *provider.Client
	exports     *export.Store
	queryLog    storage.QueryLogRepository
	logger      *zap.Logger

	callTimeout time.Duration

	// now is swappable so tests can pin "today" for routing and extraction.
	now func() time.Time
}

// NewQueryService wires the pipeline. queryLog may be nil — accounting is
// skipped when no database is configured.
func NewQueryService(
	interp llm.Interpreter,
	forecast *provider.Client,
	climatology *provider.Client,
	exports *export.Store,
	queryLog storage.QueryLogRepository,
	logger *zap.Logger,
) *QueryService {
	return &QueryService{
		interp:      interp,
		forecast:    forecast,
		climatology: climatology,
		exports:     exports,
		queryLog:    queryLog,
		logger:      logger,
		callTimeout: defaultCallTimeout,
		now:         time.Now,
	}
}

// Process answers one natural-language weather question. On success the
// result carries the raw payload, the prose summary, and the identifier of
// the stored CSV export. On failure nothing is stored.
func (s *QueryService) Process(ctx context.Context, query string) (*model.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", ErrInvalidRequest)
	}

	start := time.Now()
	result, kind, err := s.run(ctx, query)
	s.record(ctx, query, kind, err, time.Since(start).Milliseconds())

	return result, err
}

func (s *QueryService) run(ctx context.Context, query string) (*model.QueryResult, model.ProviderKind, error) {
	today := s.now()

	// ROUTE
	kind, err := s.route(ctx, query, today)
	if err != nil {
		return nil, "", fmt.Errorf("routing query: %w", err)
	}
	s.logger.Info("query routed",
		zap.String("provider", string(kind)),
	)

	// EXTRACT_PARAMS
	params, err := s.extract(ctx, query, kind, today)
	if err != nil {
		return nil, kind, fmt.Errorf("extracting parameters: %w", err)
	}
	if err := validateParams(params, kind); err != nil {
		return nil, kind, err
	}

	// FETCH
	payload, err := s.fetch(ctx, kind, *params)
	if err != nil {
		return nil, kind, err
	}

	// SUMMARIZE
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return nil, kind, fmt.Errorf("serializing payload: %w", err)
	}
	summary, err := s.summarize(ctx, query, string(payloadJSON))
	if err != nil {
		return nil, kind, fmt.Errorf("summarizing: %w", err)
	}

	// NORMALIZE
	csvData, err := export.WriteCSV(payload)
	if err != nil {
		return nil, kind, fmt.Errorf("normalizing payload: %w", err)
	}

	// STORE
	exportID := s.exports.Put(csvData)

	return &model.QueryResult{
		Payload:  payload,
		Summary:  summary,
		ExportID: exportID,
	}, kind, nil
}

func (s *QueryService) route(ctx context.Context, query string, today time.Time) (model.ProviderKind, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.interp.ChooseProvider(ctx, query, today)
}

func (s *QueryService) extract(ctx context.Context, query string, kind model.ProviderKind, today time.Time) (*model.QueryParams, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.interp.ExtractParameters(ctx, query, kind, today)
}

func (s *QueryService) fetch(ctx context.Context, kind model.ProviderKind, params model.QueryParams) (*model.ConditionsPayload, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	client := s.forecast
	if kind == model.KindClimatology {
		client = s.climatology
	}
	return client.Fetch(ctx, params)
}

func (s *QueryService) summarize(ctx context.Context, query string, payloadJSON string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return s.interp.Summarize(ctx, query, payloadJSON)
}

// record writes the usage accounting entry. Accounting failures are logged,
// never surfaced — they must not fail a query that otherwise succeeded.
func (s *QueryService) record(ctx context.Context, query string, kind model.ProviderKind, runErr error, durationMs int64) {
	if s.queryLog == nil {
		return
	}

	rec := &model.QueryRecord{
		Query:       query,
		Provider:    kind,
		LLMProvider: s.interp.ProviderName(),
		LLMModel:    s.interp.ModelName(),
		Success:     runErr == nil,
	}
	rec.DurationMs = &durationMs
	if runErr != nil {
		msg := runErr.Error()
		rec.ErrorMessage = &msg
	}

	if err := s.queryLog.Create(ctx, rec); err != nil {
		s.logger.Error("recording query", zap.Error(err))
	}
}

package server

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fleveque/weather-query-service/internal/auth"
	"github.com/fleveque/weather-query-service/internal/config"
	"github.com/fleveque/weather-query-service/internal/export"
	"github.com/fleveque/weather-query-service/internal/llm"
	"github.com/fleveque/weather-query-service/internal/provider"
	"github.com/fleveque/weather-query-service/internal/service"
	"github.com/fleveque/weather-query-service/internal/storage"
)

// Deps bundles the constructed service dependencies the routes need.
type Deps struct {
	QueryService *service.QueryService
	ExportStore  *export.Store
	QueryLog     storage.QueryLogRepository
}

// BuildDeps constructs the full dependency graph from config. The returned
// cleanup function closes the database and stops the export janitor; callers
// defer it. Shared by the HTTP server and the CLI so wiring lives in one place.
func BuildDeps(cfg *config.Config, logger *zap.Logger) (Deps, func(), error) {
	db, err := storage.NewDatabase(cfg.Storage.DatabasePath)
	if err != nil {
		return Deps{}, nil, fmt.Errorf("opening database: %w", err)
	}
	queryLog := storage.NewQueryLogRepository(db)

	tokens := auth.NewTokenCache(cfg.Weather.AuthURL, auth.Credentials{
		ClientID:     cfg.Weather.ClientID,
		ClientSecret: cfg.Weather.ClientSecret,
	}, logger)

	forecast := provider.NewForecast(cfg.Weather.Forecast.URL, cfg.Weather.Forecast.Audience, tokens, logger)
	climatology := provider.NewClimatology(cfg.Weather.Climatology.URL, cfg.Weather.Climatology.Audience, tokens, logger)

	clients, err := buildLLMClients(cfg)
	if err != nil {
		db.Close()
		return Deps{}, nil, err
	}
	interp := llm.NewFallback(clients, cfg.LLM.RatePerMinute, logger)

	exports := export.NewStore(cfg.Export.TTL)

	queries := service.NewQueryService(interp, forecast, climatology, exports, queryLog, logger)

	cleanup := func() {
		exports.Close()
		db.Close()
	}

	return Deps{
		QueryService: queries,
		ExportStore:  exports,
		QueryLog:     queryLog,
	}, cleanup, nil
}

// buildLLMClients instantiates the configured LLM clients in priority order.
// Providers without an API key are skipped; at least one must be usable.
func buildLLMClients(cfg *config.Config) ([]llm.Interpreter, error) {
	var clients []llm.Interpreter
	for _, name := range cfg.LLM.ProviderOrder {
		switch name {
		case "openai":
			if cfg.LLM.OpenAI.APIKey != "" {
				clients = append(clients, llm.NewOpenAIClient(cfg.LLM.OpenAI.APIKey, cfg.LLM.OpenAI.Model))
			}
		case "anthropic":
			if cfg.LLM.Anthropic.APIKey != "" {
				clients = append(clients, llm.NewAnthropicClient(cfg.LLM.Anthropic.APIKey, cfg.LLM.Anthropic.Model))
			}
		default:
			return nil, fmt.Errorf("unknown LLM provider %q in llm.provider_order", name)
		}
	}
	if len(clients) == 0 {
		return nil, fmt.Errorf("no LLM provider configured: set llm.openai.api_key or llm.anthropic.api_key")
	}
	return clients, nil
}

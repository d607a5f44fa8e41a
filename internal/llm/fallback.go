package llm

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/fleveque/weather-query-service/internal/model"
)

// Fallback is an Interpreter over an ordered list of clients: first is
// primary, the rest are fallbacks. First success wins, failures fall through.
// The order is configurable via config.yaml: llm.provider_order — swapping
// provider priority is a config change, not a code change.
//
// Rate limited across all clients to keep API costs bounded.
type Fallback struct {
	clients []Interpreter
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewFallback creates a fallback chain. ratePerMinute caps total LLM calls;
// values <= 0 disable the limit.
func NewFallback(clients []Interpreter, ratePerMinute int, logger *zap.Logger) *Fallback {
	limit := rate.Inf
	if ratePerMinute > 0 {
		// rate.Every returns a rate.Limit from an interval between events.
		limit = rate.Every(time.Minute / time.Duration(ratePerMinute))
	}

	return &Fallback{
		clients: clients,
		limiter: rate.NewLimiter(limit, 1), // burst of 1 — strict rate limiting
		logger:  logger,
	}
}

// ProviderName reports the primary client's provider.
func (f *Fallback) ProviderName() string {
	if len(f.clients) == 0 {
		return "none"
	}
	return f.clients[0].ProviderName()
}

// ModelName reports the primary client's model.
func (f *Fallback) ModelName() string {
	if len(f.clients) == 0 {
		return "none"
	}
	return f.clients[0].ModelName()
}

func (f *Fallback) ChooseProvider(ctx context.Context, query string, today time.Time) (model.ProviderKind, error) {
	var kind model.ProviderKind
	err := f.each(ctx, "route", func(c Interpreter) error {
		var err error
		kind, err = c.ChooseProvider(ctx, query, today)
		return err
	})
	return kind, err
}

func (f *Fallback) ExtractParameters(ctx context.Context, query string, kind model.ProviderKind, today time.Time) (*model.QueryParams, error) {
	var params *model.QueryParams
	err := f.each(ctx, "extract", func(c Interpreter) error {
		var err error
		params, err = c.ExtractParameters(ctx, query, kind, today)
		return err
	})
	return params, err
}

func (f *Fallback) Summarize(ctx context.Context, query string, payloadJSON string) (string, error) {
	var summary string
	err := f.each(ctx, "summarize", func(c Interpreter) error {
		var err error
		summary, err = c.Summarize(ctx, query, payloadJSON)
		return err
	})
	return summary, err
}

// each tries the call against every client in order until one succeeds.
func (f *Fallback) each(ctx context.Context, step string, call func(Interpreter) error) error {
	if len(f.clients) == 0 {
		return fmt.Errorf("no LLM providers configured")
	}

	var lastErr error
	for i, client := range f.clients {
		// Rate limit — blocks until a slot is available or ctx is cancelled.
		if err := f.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("rate limit wait: %w", err)
		}

		err := call(client)
		if err == nil {
			return nil
		}
		lastErr = err

		if i < len(f.clients)-1 {
			f.logger.Warn("LLM provider failed, trying next",
				zap.String("step", step),
				zap.String("provider", client.ProviderName()),
				zap.Error(err),
			)
		}
	}

	return fmt.Errorf("all LLM providers failed at %s: %w", step, lastErr)
}

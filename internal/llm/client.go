// Package llm provides a provider-agnostic interface for the three language
// model calls in the query pipeline: routing a question to an upstream API,
// extracting structured query parameters, and summarizing fetched data in
// prose. Both Anthropic (Claude) and OpenAI implement the interface, allowing
// the service to fall back from one to the other.
package llm

import (
	"context"
	"errors"
	"time"

	"github.com/fleveque/weather-query-service/internal/model"
)

// ErrInterpretation is returned when a model response cannot be parsed as the
// expected structured shape, or when parsed values fail validation. Fatal for
// the query: the pipeline never forwards unvalidated model output upstream.
var ErrInterpretation = errors.New("model output not interpretable")

// Interpreter is the interface for LLM providers driving the pipeline.
//
// Go interface design tip: keep interfaces small and domain-shaped. These are
// the only three questions the pipeline ever asks a model — not a generic
// "chat" method the callers would each re-wrap.
type Interpreter interface {
	// ChooseProvider picks which upstream API should answer the query.
	// An unrecognized or missing choice defaults to forecast.
	ChooseProvider(ctx context.Context, query string, today time.Time) (model.ProviderKind, error)

	// ExtractParameters turns the query into structured API parameters for
	// the chosen provider kind. Output is shape-checked only; semantic
	// validation happens in the service before any network call.
	ExtractParameters(ctx context.Context, query string, kind model.ProviderKind, today time.Time) (*model.QueryParams, error)

	// Summarize answers the user's question in prose given the fetched
	// payload serialized as JSON. Free text, presented to the user as-is.
	Summarize(ctx context.Context, query string, payloadJSON string) (string, error)

	ProviderName() string
	ModelName() string
}

// routeResult is the JSON shape both providers return for routing.
type routeResult struct {
	APIChoice string `json:"api_choice"`
}

// kindFromChoice maps the model's api_choice to a ProviderKind.
// Anything other than an exact "climatology" is treated as forecast — the
// documented default-on-ambiguity policy.
func kindFromChoice(choice string) model.ProviderKind {
	if model.ProviderKind(choice) == model.KindClimatology {
		return model.KindClimatology
	}
	return model.KindForecast
}

// extractionResult is the JSON shape both providers return for extraction.
// The time-range keys differ per upstream (startTime/endTime for forecast,
// startDate/endDate for climatology), so both pairs are accepted.
type extractionResult struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	StartTime  string   `json:"startTime"`
	EndTime    string   `json:"endTime"`
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Parameters []string `json:"parameters"`
}

// toParams collapses the per-kind time fields into the common QueryParams.
func (r extractionResult) toParams() *model.QueryParams {
	start, end := r.StartTime, r.EndTime
	if start == "" && end == "" {
		start, end = r.StartDate, r.EndDate
	}
	return &model.QueryParams{
		Latitude:   r.Latitude,
		Longitude:  r.Longitude,
		Start:      start,
		End:        end,
		Parameters: r.Parameters,
	}
}

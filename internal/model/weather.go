// Package model defines the core data types for the weather query service.
// In Go, we use structs instead of classes. Struct tags (the `json:"..."` and
// `db:"..."` annotations) tell serialization libraries how to map fields.
package model

import "time"

// ProviderKind identifies which upstream weather API a query is routed to.
// Go doesn't have enums — we use typed constants with explicit values.
type ProviderKind string

const (
	// KindForecast is the short-range conditions API (next ~15 days).
	KindForecast ProviderKind = "forecast"
	// KindClimatology is the multi-year averages API (typical weather).
	KindClimatology ProviderKind = "climatology"
)

// ValidKind checks if a string is a recognized ProviderKind.
func ValidKind(s string) bool {
	switch ProviderKind(s) {
	case KindForecast, KindClimatology:
		return true
	default:
		return false
	}
}

// ForecastParameters is the fixed allow-list of parameters the conditions API
// accepts. The LLM picks from this list during extraction; anything outside it
// is rejected before the upstream call.
var ForecastParameters = []string{
	"airTemp", "precipProb", "totalCloudCover", "windSpeed",
	"feelsLikeTemp", "uvIndex", "windGust",
}

// ClimatologyParameters is the allow-list for the climatology API.
var ClimatologyParameters = []string{
	"airTempAvg", "airTempStdDev", "airTempMaxAvg", "airTempMinAvg",
	"precipAmountAvg", "windSpeedAvg", "sunshineDurationAvg",
}

// AllowedParameters returns the allow-list for a provider kind.
func AllowedParameters(kind ProviderKind) []string {
	if kind == KindClimatology {
		return ClimatologyParameters
	}
	return ForecastParameters
}

// QueryParams is the structured request the LLM extracts from a user query.
// Start/End are provider-specific strings: full ISO 8601 timestamps for
// forecast, month-day (MM-DD) for climatology.
type QueryParams struct {
	Latitude   float64  `json:"latitude"`
	Longitude  float64  `json:"longitude"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Parameters []string `json:"parameters"`
}

// Geometry is the GeoJSON geometry of a feature. Coordinates are [lon, lat].
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

// Feature is one geographic record in a provider payload: a coordinate pair
// plus a time-keyed mapping of parameter name to value.
type Feature struct {
	Type       string                    `json:"type"`
	Geometry   Geometry                  `json:"geometry"`
	Properties map[string]map[string]any `json:"properties"`
}

// ConditionsPayload is the GeoJSON-like feature collection both upstream APIs
// return. The properties mapping is timestamp → parameter → value.
type ConditionsPayload struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// QueryResult is what one successful trip through the pipeline produces.
type QueryResult struct {
	Payload  *ConditionsPayload `json:"weather_data"`
	Summary  string             `json:"llm_summary"`
	ExportID string             `json:"csv_id"`
}

// QueryRecord tracks each processed query for usage accounting.
// Each field has two tags:
//   - `db:"column_name"` — used by sqlx to scan database rows
//   - `json:"field_name"` — used for JSON serialization (API responses)
type QueryRecord struct {
	ID           int64        `db:"id" json:"id"`
	Query        string       `db:"query" json:"query"`
	Provider     ProviderKind `db:"provider" json:"provider"`
	LLMProvider  string       `db:"llm_provider" json:"llm_provider"`
	LLMModel     string       `db:"llm_model" json:"llm_model"`
	Success      bool         `db:"success" json:"success"`
	ErrorMessage *string      `db:"error_message" json:"error_message,omitempty"`
	DurationMs   *int64       `db:"duration_ms" json:"duration_ms,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
}

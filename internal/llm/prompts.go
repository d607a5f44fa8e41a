package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/fleveque/weather-query-service/internal/model"
)

// forecastHorizonDays is how far ahead the conditions API can see. Questions
// about dates beyond this window belong to climatology.
const forecastHorizonDays = 15

const routingSystemPrompt = "You are an assistant that routes user requests to the correct weather API."

const extractionSystemPrompt = "You are an assistant that structures user requests for a weather API."

const summarySystemPrompt = "You provide helpful, natural language weather summaries."

// buildRoutingPrompt asks the model to pick the upstream API for a query.
func buildRoutingPrompt(query string, today time.Time) string {
	horizon := today.AddDate(0, 0, forecastHorizonDays)

	return fmt.Sprintf(`Given the user's request: '%s' and that today's date is %s, decide which weather API should answer it:

- "forecast": short-range conditions. Use when the request concerns specific dates between today and %s (inclusive).
- "climatology": multi-year averages. Use when the request concerns dates further out, or asks about typical/average/usual weather with no specific near-term date.

Respond with a JSON object with a single key "api_choice" whose value is either "forecast" or "climatology".`,
		query, today.Format("2006-01-02"), horizon.Format("2006-01-02"))
}

// buildExtractionPrompt asks the model for structured query parameters.
// The date-format instructions and the parameter allow-list differ per
// provider kind.
func buildExtractionPrompt(query string, kind model.ProviderKind, today time.Time) string {
	allowed := strings.Join(model.AllowedParameters(kind), ", ")

	if kind == model.KindClimatology {
		return fmt.Sprintf(`Given the user's request: '%s' and that today's date is %s, determine the following:
1. The geographical location (latitude and longitude).
2. The time frame as startDate and endDate in MM-DD format (month and day only, no year — the climatology API averages across years).
3. The relevant weather parameters from this list: %s
Pick at most 3 parameters.

Provide the output in a structured JSON format with keys: "latitude", "longitude", "startDate", "endDate", "parameters".`,
			query, today.Format("2006-01-02"), allowed)
	}

	return fmt.Sprintf(`Given the user's request: '%s' and that today's date is %s, determine the following:
1. The geographical location (latitude and longitude).
2. The time frame as startTime and endTime in ISO 8601 format.
3. The relevant weather parameters from this list: %s
Pick at most 3 parameters.

Provide the output in a structured JSON format with keys: "latitude", "longitude", "startTime", "endTime", "parameters".`,
		query, today.Format("2006-01-02"), allowed)
}

// buildSummaryPrompt asks the model to answer the user's question in prose
// from the fetched data.
func buildSummaryPrompt(query string, payloadJSON string) string {
	return fmt.Sprintf(`You are a helpful weather assistant. A user asked: "%s"
Based on the following weather data, provide a concise, natural language answer.
Interpret the data to give a helpful recommendation (e.g., "The best time to run would be in the morning...").
Do not mention the JSON data structure.
Weather Data: %s`, query, payloadJSON)
}

package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/anthropics/anthropic-sdk-go/packages/param"

	"github.com/fleveque/weather-query-service/internal/model"
)

// AnthropicClient implements Interpreter using Claude. The structured steps
// define a custom tool so Claude "submits" its answer as clean JSON instead
// of free-form text we'd have to parse.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicClient creates a new Claude-backed interpreter.
func NewAnthropicClient(apiKey string, model string) *AnthropicClient {
	client := anthropic.NewClient(
		option.WithAPIKey(apiKey),
	)
	return &AnthropicClient{
		client: &client,
		model:  model,
	}
}

func (a *AnthropicClient) ProviderName() string { return "anthropic" }
func (a *AnthropicClient) ModelName() string    { return a.model }

func (a *AnthropicClient) ChooseProvider(ctx context.Context, query string, today time.Time) (model.ProviderKind, error) {
	submitTool := anthropic.ToolParam{
		Name:        "submit_route",
		Description: param.NewOpt("Submit which weather API should answer the request. Call this exactly once."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"api_choice": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"forecast", "climatology"},
					"description": "The API that should answer the request.",
				},
			},
		},
	}

	var route routeResult
	if err := a.callTool(ctx, buildRoutingPrompt(query, today), submitTool, &route); err != nil {
		return "", err
	}

	return kindFromChoice(route.APIChoice), nil
}

func (a *AnthropicClient) ExtractParameters(ctx context.Context, query string, kind model.ProviderKind, today time.Time) (*model.QueryParams, error) {
	startKey, endKey := "startTime", "endTime"
	if kind == model.KindClimatology {
		startKey, endKey = "startDate", "endDate"
	}

	submitTool := anthropic.ToolParam{
		Name:        "submit_query_params",
		Description: param.NewOpt("Submit the structured weather API parameters for the request. Call this exactly once."),
		InputSchema: anthropic.ToolInputSchemaParam{
			Properties: map[string]interface{}{
				"latitude": map[string]interface{}{
					"type":        "number",
					"description": "Latitude of the requested location.",
				},
				"longitude": map[string]interface{}{
					"type":        "number",
					"description": "Longitude of the requested location.",
				},
				startKey: map[string]interface{}{
					"type":        "string",
					"description": "Start of the requested time range.",
				},
				endKey: map[string]interface{}{
					"type":        "string",
					"description": "End of the requested time range.",
				},
				"parameters": map[string]interface{}{
					"type":        "array",
					"items":       map[string]interface{}{"type": "string"},
					"description": "Weather parameters from the allowed list, at most 3.",
				},
			},
		},
	}

	var extracted extractionResult
	if err := a.callTool(ctx, buildExtractionPrompt(query, kind, today), submitTool, &extracted); err != nil {
		return nil, err
	}

	return extracted.toParams(), nil
}

func (a *AnthropicClient) Summarize(ctx context.Context, query string, payloadJSON string) (string, error) {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildSummaryPrompt(query, payloadJSON))),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if text, ok := block.AsAny().(anthropic.TextBlock); ok {
			sb.WriteString(text.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("%w: empty summary response", ErrInterpretation)
	}
	return sb.String(), nil
}

// callTool sends one message with a single submit tool and unmarshals the
// tool input into out. Claude occasionally answers in prose instead of
// calling the tool — that is an interpretation failure, not a transport one.
func (a *AnthropicClient) callTool(ctx context.Context, prompt string, tool anthropic.ToolParam, out any) error {
	message, err := a.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Tools: []anthropic.ToolUnionParam{
			{OfTool: &tool},
		},
	})
	if err != nil {
		return fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range message.Content {
		toolUse, ok := block.AsAny().(anthropic.ToolUseBlock)
		if !ok || toolUse.Name != tool.Name {
			continue
		}

		inputBytes, err := json.Marshal(toolUse.Input)
		if err != nil {
			return fmt.Errorf("marshaling tool input: %w", err)
		}
		if err := json.Unmarshal(inputBytes, out); err != nil {
			return fmt.Errorf("%w: parsing tool input: %v", ErrInterpretation, err)
		}
		return nil
	}

	return fmt.Errorf("%w: Claude did not call %s", ErrInterpretation, tool.Name)
}

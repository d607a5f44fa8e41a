package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/fleveque/weather-query-service/internal/model"
)

// OpenAIClient implements Interpreter using OpenAI's chat API. Structured
// steps (routing, extraction) use JSON mode so the response body is a single
// JSON object; summarization is a plain completion.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a new OpenAI-backed interpreter.
func NewOpenAIClient(apiKey string, model string) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (o *OpenAIClient) ProviderName() string { return "openai" }
func (o *OpenAIClient) ModelName() string    { return o.model }

func (o *OpenAIClient) ChooseProvider(ctx context.Context, query string, today time.Time) (model.ProviderKind, error) {
	content, err := o.completeJSON(ctx, routingSystemPrompt, buildRoutingPrompt(query, today))
	if err != nil {
		return "", err
	}

	var route routeResult
	if err := json.Unmarshal([]byte(content), &route); err != nil {
		return "", fmt.Errorf("%w: parsing route response: %v", ErrInterpretation, err)
	}

	return kindFromChoice(route.APIChoice), nil
}

func (o *OpenAIClient) ExtractParameters(ctx context.Context, query string, kind model.ProviderKind, today time.Time) (*model.QueryParams, error) {
	content, err := o.completeJSON(ctx, extractionSystemPrompt, buildExtractionPrompt(query, kind, today))
	if err != nil {
		return nil, err
	}

	var extracted extractionResult
	if err := json.Unmarshal([]byte(content), &extracted); err != nil {
		return nil, fmt.Errorf("%w: parsing extraction response: %v", ErrInterpretation, err)
	}

	return extracted.toParams(), nil
}

func (o *OpenAIClient) Summarize(ctx context.Context, query string, payloadJSON string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarySystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildSummaryPrompt(query, payloadJSON)},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// completeJSON runs one chat completion in JSON mode and returns the raw
// content for the caller to unmarshal.
func (o *OpenAIClient) completeJSON(ctx context.Context, system, prompt string) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai API call: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

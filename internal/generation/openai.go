package generation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/sashabaranov/go-openai"
)

const providerOpenAI = "openai"

// OpenAIGenerator calls an OpenAI-compatible chat completion endpoint.
type OpenAIGenerator struct {
	client      *openai.Client
	model       string
	temperature *float32
	timeout     time.Duration
}

// NewOpenAIGenerator creates a generator. baseURL may be empty for the public API.
// temperature is sent only when non-nil.
func NewOpenAIGenerator(apiKey, baseURL, model string, temperature *float32, timeout time.Duration) (*OpenAIGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai generation: api key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGenerator{
		client:      openai.NewClientWithConfig(cfg),
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

// Model returns the configured model name.
func (o *OpenAIGenerator) Model() string {
	return o.model
}

// Generate sends prompt as a single user message and returns the first choice's content.
func (o *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}
	if o.temperature != nil {
		req.Temperature = chatTemperature(*o.temperature)
	}
	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		se := &ServiceError{Provider: providerOpenAI, Err: err}
		var apiErr *openai.APIError
		var reqErr *openai.RequestError
		switch {
		case errors.As(err, &apiErr):
			se.StatusCode = apiErr.HTTPStatusCode
		case errors.As(err, &reqErr):
			se.StatusCode = reqErr.HTTPStatusCode
		}
		return "", se
	}
	if len(resp.Choices) == 0 {
		return "", &ServiceError{Provider: providerOpenAI, Message: "response has no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

// chatTemperature maps t to the request field. The field is omitted when zero,
// so an explicit zero is sent as the smallest positive float32.
func chatTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}

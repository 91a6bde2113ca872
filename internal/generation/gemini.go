package generation

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"google.golang.org/genai"
)

const (
	providerGemini       = "gemini"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiVersion = "v1beta"
)

// GeminiGenerator calls Gemini generateContent through the genai client.
type GeminiGenerator struct {
	client      *genai.Client
	model       string
	temperature *float32
	timeout     time.Duration
}

// NewGeminiGenerator creates a generator for model (e.g. "gemini-1.5-flash").
// baseURL may end in an API version segment ("/v1beta"); otherwise v1beta is used.
// temperature is sent only when non-nil, so zero is a valid setting.
func NewGeminiGenerator(apiKey, baseURL, model string, temperature *float32, timeout time.Duration) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini generation: api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini generation: model is required")
	}
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	root, version := splitAPIVersion(baseURL)
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{},
		HTTPOptions: genai.HTTPOptions{
			BaseURL:    root,
			APIVersion: version,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &GeminiGenerator{
		client:      client,
		model:       model,
		temperature: temperature,
		timeout:     timeout,
	}, nil
}

// splitAPIVersion separates a trailing "/v1", "/v1beta" or "/v1alpha" from baseURL.
func splitAPIVersion(baseURL string) (root, version string) {
	trimmed := strings.TrimRight(baseURL, "/")
	i := strings.LastIndex(trimmed, "/")
	if i >= 0 {
		switch last := trimmed[i+1:]; last {
		case "v1", "v1beta", "v1alpha":
			return trimmed[:i+1], last
		}
	}
	return trimmed + "/", defaultGeminiVersion
}

// Model returns the configured model name.
func (g *GeminiGenerator) Model() string {
	return g.model
}

// Generate sends prompt as a single user turn and returns the concatenated text of the first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	var cfg *genai.GenerateContentConfig
	if g.temperature != nil {
		t := *g.temperature
		cfg = &genai.GenerateContentConfig{Temperature: &t}
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), cfg)
	if err != nil {
		return "", geminiServiceError(err)
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", &ServiceError{Provider: providerGemini, Message: "prompt blocked: " + string(resp.PromptFeedback.BlockReason)}
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return "", &ServiceError{Provider: providerGemini, Message: "response has no candidates"}
	}
	var b strings.Builder
	if content := resp.Candidates[0].Content; content != nil {
		for _, p := range content.Parts {
			if p != nil {
				b.WriteString(p.Text)
			}
		}
	}
	return b.String(), nil
}

func geminiServiceError(err error) *ServiceError {
	se := &ServiceError{Provider: providerGemini, Err: err}
	var apiErr genai.APIError
	var apiErrPtr *genai.APIError
	switch {
	case errors.As(err, &apiErr):
		se.StatusCode, se.Message, se.Err = apiErr.Code, apiErr.Message, nil
	case errors.As(err, &apiErrPtr):
		se.StatusCode, se.Message, se.Err = apiErrPtr.Code, apiErrPtr.Message, nil
	default:
		se.Message = "request failed"
	}
	return se
}

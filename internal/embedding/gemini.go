package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hyperjump/kokoro/pkg/utils"
)

const (
	providerGemini       = "gemini"
	defaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	maxErrorBody         = 512
)

// GeminiEmbedder calls the Gemini embedContent endpoint.
type GeminiEmbedder struct {
	apiKey     string
	baseURL    string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

// GeminiOption configures a GeminiEmbedder.
type GeminiOption func(*GeminiEmbedder)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(c *http.Client) GeminiOption {
	return func(g *GeminiEmbedder) { g.httpClient = c }
}

// NewGeminiEmbedder creates an embedder for model (e.g. "models/embedding-001").
// baseURL defaults to the public v1beta endpoint; timeout bounds each call when positive.
func NewGeminiEmbedder(apiKey, baseURL, model string, timeout time.Duration, opts ...GeminiOption) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini embedding: api key is required")
	}
	if model == "" {
		return nil, fmt.Errorf("gemini embedding: model is required")
	}
	if baseURL == "" {
		baseURL = defaultGeminiBaseURL
	}
	if !strings.HasPrefix(model, "models/") {
		model = "models/" + model
	}
	g := &GeminiEmbedder{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		timeout:    timeout,
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiEmbedRequest struct {
	Model   string        `json:"model"`
	Content geminiContent `json:"content"`
}

type geminiEmbedResponse struct {
	Embedding *struct {
		Values []float32 `json:"values"`
	} `json:"embedding"`
}

type geminiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// Model returns the configured model name.
func (g *GeminiEmbedder) Model() string {
	return g.model
}

// Embed requests an embedding for text. Any failure is returned as *ServiceError.
func (g *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}
	body, err := json.Marshal(geminiEmbedRequest{
		Model:   g.model,
		Content: geminiContent{Parts: []geminiPart{{Text: text}}},
	})
	if err != nil {
		return nil, &ServiceError{Provider: providerGemini, Message: "encode request", Err: err}
	}
	url := fmt.Sprintf("%s/%s:embedContent", g.baseURL, g.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &ServiceError{Provider: providerGemini, Message: "create request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, &ServiceError{Provider: providerGemini, Message: "request failed", Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ServiceError{Provider: providerGemini, StatusCode: resp.StatusCode, Message: "read response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &ServiceError{Provider: providerGemini, StatusCode: resp.StatusCode, Message: errorMessage(data)}
	}
	var out geminiEmbedResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &ServiceError{Provider: providerGemini, StatusCode: resp.StatusCode, Message: "malformed response", Err: err}
	}
	if out.Embedding == nil || len(out.Embedding.Values) == 0 {
		return nil, &ServiceError{Provider: providerGemini, StatusCode: resp.StatusCode, Message: "response has no embedding values"}
	}
	return out.Embedding.Values, nil
}

// errorMessage extracts the API error message from body, falling back to the raw body.
func errorMessage(body []byte) string {
	var apiErr geminiErrorResponse
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
		return apiErr.Error.Message
	}
	return utils.Truncate(strings.TrimSpace(string(body)), maxErrorBody)
}

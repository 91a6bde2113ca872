package embedding

import (
	"fmt"
	"time"

	"github.com/hyperjump/kokoro/internal/config"
)

// New builds the embedder selected by cfg.Provider. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(cfg *config.EmbeddingConfig) (Embedder, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiEmbedder(config.APIKey(cfg.APIKeyEnv), cfg.BaseURL, cfg.Model, timeout)
	case config.ProviderOpenAI:
		return NewOpenAIEmbedder(config.APIKey(cfg.APIKeyEnv), cfg.BaseURL, cfg.Model, timeout)
	case config.ProviderMock:
		return NewMockEmbedder(cfg.Dimensions), nil
	default:
		return nil, fmt.Errorf("unknown embedding provider: %q", cfg.Provider)
	}
}

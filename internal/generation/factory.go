package generation

import (
	"fmt"
	"time"

	"github.com/hyperjump/kokoro/internal/config"
)

// New builds the generator selected by cfg.Provider. The API key is read from the
// environment variable named by cfg.APIKeyEnv.
func New(cfg *config.GenerationConfig) (Generator, error) {
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	switch cfg.Provider {
	case config.ProviderGemini:
		return NewGeminiGenerator(config.APIKey(cfg.APIKeyEnv), cfg.BaseURL, cfg.Model, cfg.Temperature, timeout)
	case config.ProviderOpenAI:
		return NewOpenAIGenerator(config.APIKey(cfg.APIKeyEnv), cfg.BaseURL, cfg.Model, cfg.Temperature, timeout)
	case config.ProviderMock:
		return VoteGenerator{}, nil
	default:
		return nil, fmt.Errorf("unknown generation provider: %q", cfg.Provider)
	}
}

package config

import "strings"

// Provider names accepted by embedding.provider and generation.provider.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

// DefaultCategories is the closed category set used when none is configured.
var DefaultCategories = []string{
	"depression",
	"anxiety",
	"stress",
	"normal",
	"relationship",
	"addiction",
	"abuse",
	"bipolar",
	"personality disorder",
}

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.AllowedOrigins == nil {
		cfg.Server.AllowedOrigins = []string{"*"}
	}
	if cfg.Storage.VectorStorePath == "" {
		cfg.Storage.VectorStorePath = "/usr/local/var/kokoro/data/vector_store.bin"
	}
	if cfg.Storage.DatabasePath == "" {
		cfg.Storage.DatabasePath = "/usr/local/var/kokoro/data/db/predictions.db"
	}

	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = ProviderGemini
	}
	cfg.Embedding.Provider = strings.ToLower(cfg.Embedding.Provider)
	if cfg.Embedding.Model == "" {
		switch cfg.Embedding.Provider {
		case ProviderOpenAI:
			cfg.Embedding.Model = "text-embedding-3-small"
		default:
			cfg.Embedding.Model = "models/embedding-001"
		}
	}
	if cfg.Embedding.BaseURL == "" && cfg.Embedding.Provider == ProviderGemini {
		cfg.Embedding.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Embedding.APIKeyEnv == "" {
		cfg.Embedding.APIKeyEnv = defaultKeyEnv(cfg.Embedding.Provider)
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 30
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 768
	}

	if cfg.Generation.Provider == "" {
		cfg.Generation.Provider = ProviderGemini
	}
	cfg.Generation.Provider = strings.ToLower(cfg.Generation.Provider)
	if cfg.Generation.Model == "" {
		switch cfg.Generation.Provider {
		case ProviderOpenAI:
			cfg.Generation.Model = "gpt-4o-mini"
		default:
			cfg.Generation.Model = "gemini-1.5-flash"
		}
	}
	if cfg.Generation.BaseURL == "" && cfg.Generation.Provider == ProviderGemini {
		cfg.Generation.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Generation.APIKeyEnv == "" {
		cfg.Generation.APIKeyEnv = defaultKeyEnv(cfg.Generation.Provider)
	}
	if cfg.Generation.TimeoutSecs == 0 {
		cfg.Generation.TimeoutSecs = 60
	}

	if cfg.Classify.TopK == 0 {
		cfg.Classify.TopK = 5
	}
	if len(cfg.Classify.Categories) == 0 {
		cfg.Classify.Categories = append([]string(nil), DefaultCategories...)
	}
	for i, c := range cfg.Classify.Categories {
		cfg.Classify.Categories[i] = strings.ToLower(strings.TrimSpace(c))
	}
	if cfg.Classify.DefaultCategory == "" {
		cfg.Classify.DefaultCategory = "normal"
	}
	cfg.Classify.DefaultCategory = strings.ToLower(strings.TrimSpace(cfg.Classify.DefaultCategory))

	if cfg.Builder.CheckpointInterval == 0 {
		cfg.Builder.CheckpointInterval = 500
	}
}

func defaultKeyEnv(provider string) string {
	if provider == ProviderOpenAI {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

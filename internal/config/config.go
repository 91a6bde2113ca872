// Package config provides configuration loading and structs for the Kokoro server and builder.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug      bool             `yaml:"debug"`
	Server     ServerConfig     `yaml:"server"`
	Storage    StorageConfig    `yaml:"storage"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Classify   ClassifyConfig   `yaml:"classify"`
	Builder    BuilderConfig    `yaml:"builder"`
	Knowledge  KnowledgeConfig  `yaml:"knowledge"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	// MaxConcurrent caps in-flight analyze requests; 0 means unlimited.
	MaxConcurrent int `yaml:"max_concurrent"`
}

// StorageConfig holds paths for the vector store and the prediction log.
type StorageConfig struct {
	VectorStorePath string `yaml:"vector_store_path"`
	DatabasePath    string `yaml:"database_path"`
}

// EmbeddingConfig selects and configures the external embedding service.
type EmbeddingConfig struct {
	Provider    string `yaml:"provider"` // gemini, openai or mock
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	// Dimensions is only used by the mock provider.
	Dimensions int `yaml:"dimensions"`
}

// GenerationConfig selects and configures the external text-generation model.
type GenerationConfig struct {
	Provider    string `yaml:"provider"` // gemini, openai or mock
	Model       string `yaml:"model"`
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	// Temperature is sent to the model only when set; 0 is a valid value.
	Temperature *float32 `yaml:"temperature,omitempty"`
}

// ClassifyConfig holds classification settings.
type ClassifyConfig struct {
	TopK            int      `yaml:"top_k"`
	DefaultCategory string   `yaml:"default_category"`
	Categories      []string `yaml:"categories"`
}

// BuilderConfig holds offline vector store build settings.
type BuilderConfig struct {
	CorpusPath         string `yaml:"corpus_path"`
	CheckpointInterval int    `yaml:"checkpoint_interval"`
	// RequestsPerMinute paces embedding calls; 0 means no pacing.
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// KnowledgeConfig points at the static resource knowledge base.
// Source is a local path, an http(s) URL or an s3://bucket/key object.
type KnowledgeConfig struct {
	Source string `yaml:"source"`
	// S3Region and S3Endpoint apply to s3:// sources; the endpoint selects an
	// S3-compatible store. Credentials come from the AWS environment.
	S3Region   string `yaml:"s3_region"`
	S3Endpoint string `yaml:"s3_endpoint"`
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Storage.VectorStorePath = expandPath(cfg.Storage.VectorStorePath, configDir)
	cfg.Storage.DatabasePath = expandPath(cfg.Storage.DatabasePath, configDir)
	if cfg.Builder.CorpusPath != "" {
		cfg.Builder.CorpusPath = expandPath(cfg.Builder.CorpusPath, configDir)
	}
	if cfg.Knowledge.Source != "" && !isRemote(cfg.Knowledge.Source) {
		cfg.Knowledge.Source = expandPath(cfg.Knowledge.Source, configDir)
	}

	return &cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects settings that cannot produce a working pipeline.
func Validate(cfg *Config) error {
	for _, p := range []struct{ section, name string }{
		{"embedding", cfg.Embedding.Provider},
		{"generation", cfg.Generation.Provider},
	} {
		switch p.name {
		case ProviderGemini, ProviderOpenAI, ProviderMock:
		default:
			return fmt.Errorf("unknown %s provider: %q", p.section, p.name)
		}
	}
	found := false
	for _, c := range cfg.Classify.Categories {
		if c == cfg.Classify.DefaultCategory {
			found = true
			break
		}
	}
	if !found {
		return fmt.Errorf("default category %q is not in classify.categories", cfg.Classify.DefaultCategory)
	}
	return nil
}

// APIKey returns the value of the environment variable named by envName.
func APIKey(envName string) string {
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}

func isRemote(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "s3://")
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory.
func expandPath(path string, configDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}

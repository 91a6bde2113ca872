package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
server:
  host: "127.0.0.1"
  port: 9000
storage:
  database_path: "test.db"
classify:
  top_k: 3
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Server.Host != "127.0.0.1" || cfg.Server.Port != 9000 {
		t.Errorf("unexpected server config: %+v", cfg.Server)
	}
	if cfg.Storage.DatabasePath == "" {
		t.Error("database_path should be set")
	}
	if cfg.Classify.TopK != 3 {
		t.Errorf("top_k: got %d, want 3", cfg.Classify.TopK)
	}
	if cfg.Debug {
		t.Error("debug should default to false when unset")
	}
}

func TestLoad_expandPathDotSlashRelativeToConfigDir(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
storage:
  vector_store_path: "./data/vector_store.bin"
  database_path: "./data/db/predictions.db"
builder:
  corpus_path: "./data/corpus.json"
knowledge:
  source: "https://example.com/tips.json"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "data", "vector_store.bin"); cfg.Storage.VectorStorePath != want {
		t.Errorf("vector_store_path = %s, want %s", cfg.Storage.VectorStorePath, want)
	}
	if want := filepath.Join(dir, "data", "db", "predictions.db"); cfg.Storage.DatabasePath != want {
		t.Errorf("database_path = %s, want %s", cfg.Storage.DatabasePath, want)
	}
	if want := filepath.Join(dir, "data", "corpus.json"); cfg.Builder.CorpusPath != want {
		t.Errorf("corpus_path = %s, want %s", cfg.Builder.CorpusPath, want)
	}
	if cfg.Knowledge.Source != "https://example.com/tips.json" {
		t.Errorf("URL source should be left untouched, got %s", cfg.Knowledge.Source)
	}
}

func TestLoad_S3KnowledgeSourceIsNotExpanded(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
knowledge:
  source: "s3://kokoro-resources/tips.json"
  s3_region: "eu-west-1"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Knowledge.Source != "s3://kokoro-resources/tips.json" {
		t.Errorf("s3 source should be left untouched, got %s", cfg.Knowledge.Source)
	}
	if cfg.Knowledge.S3Region != "eu-west-1" {
		t.Errorf("s3_region = %s", cfg.Knowledge.S3Region)
	}
}

func TestLoad_rejectsUnknownProvider(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
embedding:
  provider: "bert"
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoad_rejectsDefaultOutsideCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
classify:
  categories: ["anxiety", "stress"]
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error when default category is missing from categories")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)
	if cfg.Server.Host != "localhost" {
		t.Errorf("default host: got %s", cfg.Server.Host)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("default port: got %d", cfg.Server.Port)
	}
	if cfg.Classify.TopK != 5 {
		t.Errorf("default top_k: got %d, want 5", cfg.Classify.TopK)
	}
	if cfg.Classify.DefaultCategory != "normal" {
		t.Errorf("default category: got %s", cfg.Classify.DefaultCategory)
	}
	if len(cfg.Classify.Categories) != 9 || cfg.Classify.Categories[8] != "personality disorder" {
		t.Errorf("categories: got %v", cfg.Classify.Categories)
	}
	if cfg.Builder.CheckpointInterval != 500 {
		t.Errorf("checkpoint interval: got %d, want 500", cfg.Builder.CheckpointInterval)
	}
	if cfg.Embedding.Provider != ProviderGemini || cfg.Embedding.Model != "models/embedding-001" {
		t.Errorf("embedding defaults: got %+v", cfg.Embedding)
	}
	if cfg.Generation.Model != "gemini-1.5-flash" {
		t.Errorf("generation model: got %s", cfg.Generation.Model)
	}
	if cfg.Embedding.APIKeyEnv != "GEMINI_API_KEY" {
		t.Errorf("api key env: got %s", cfg.Embedding.APIKeyEnv)
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestApplyDefaults_OpenAIProvider(t *testing.T) {
	cfg := &Config{
		Embedding:  EmbeddingConfig{Provider: "OpenAI"},
		Generation: GenerationConfig{Provider: "openai"},
	}
	ApplyDefaults(cfg)
	if cfg.Embedding.Provider != ProviderOpenAI {
		t.Errorf("provider should be lowercased, got %s", cfg.Embedding.Provider)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("openai embedding model: got %s", cfg.Embedding.Model)
	}
	if cfg.Embedding.BaseURL != "" {
		t.Errorf("openai base url should stay empty, got %s", cfg.Embedding.BaseURL)
	}
	if cfg.Generation.APIKeyEnv != "OPENAI_API_KEY" {
		t.Errorf("api key env: got %s", cfg.Generation.APIKeyEnv)
	}
}

func TestApplyDefaults_NormalizesCategories(t *testing.T) {
	cfg := &Config{Classify: ClassifyConfig{
		Categories:      []string{" Anxiety ", "NORMAL"},
		DefaultCategory: "Normal",
	}}
	ApplyDefaults(cfg)
	if cfg.Classify.Categories[0] != "anxiety" || cfg.Classify.Categories[1] != "normal" {
		t.Errorf("categories: got %v", cfg.Classify.Categories)
	}
	if cfg.Classify.DefaultCategory != "normal" {
		t.Errorf("default category: got %s", cfg.Classify.DefaultCategory)
	}
}

func TestAPIKey(t *testing.T) {
	t.Setenv("KOKORO_TEST_KEY", "secret")
	if got := APIKey("KOKORO_TEST_KEY"); got != "secret" {
		t.Errorf("APIKey() = %q", got)
	}
	if got := APIKey(""); got != "" {
		t.Errorf("APIKey(\"\") = %q, want empty", got)
	}
}

func TestSave(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "saved.yaml")
	cfg := &Config{
		Server:  ServerConfig{Host: "localhost", Port: 9090},
		Storage: StorageConfig{DatabasePath: "/tmp/db"},
	}
	ApplyDefaults(cfg)
	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Server.Port != 9090 {
		t.Errorf("loaded port: got %d", loaded.Server.Port)
	}
}

func TestLoad_GenerationTemperature(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    *float32
	}{
		{"unset", "generation:\n  provider: mock\n", nil},
		{"explicit zero", "generation:\n  provider: mock\n  temperature: 0\n", new(float32)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			cfg, err := Load(path)
			if err != nil {
				t.Fatal(err)
			}
			got := cfg.Generation.Temperature
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("temperature = %v, want %v", got, tt.want)
			}
			if got != nil && *got != *tt.want {
				t.Errorf("temperature = %v, want %v", *got, *tt.want)
			}
		})
	}
}

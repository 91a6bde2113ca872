// Package classify runs retrieval-augmented classification: embed the text,
// retrieve similar labeled statements, ask the language model for a category,
// and validate its reply against a closed category set.
package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kokoro/internal/embedding"
	"github.com/hyperjump/kokoro/internal/generation"
	"github.com/hyperjump/kokoro/internal/metrics"
	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/internal/textid"
	"github.com/hyperjump/kokoro/pkg/utils"
)

// DefaultTopK is the number of exemplars retrieved per request.
const DefaultTopK = 5

// ErrEmptyText is returned for blank input before any network call.
var ErrEmptyText = errors.New("text input is empty")

// Searcher ranks stored statements by similarity to a query embedding.
type Searcher interface {
	Search(query []float32, topK int) ([]models.ScoredRecord, error)
}

// Result is the outcome of one classification.
type Result struct {
	Category string `json:"category"`
	// Fallback is true when the model reply was not a known category.
	Fallback  bool                  `json:"fallback"`
	RawOutput string                `json:"raw_output"`
	Retrieved []models.ScoredRecord `json:"retrieved"`
	Duration  time.Duration         `json:"duration"`
}

// Classifier is stateless across requests and safe for concurrent use.
type Classifier struct {
	embedder   embedding.Embedder
	searcher   Searcher
	generator  generation.Generator
	categories *CategorySet
	topK       int
	logger     *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithTopK sets the number of retrieved exemplars; values <= 0 keep the default.
func WithTopK(k int) Option {
	return func(c *Classifier) {
		if k > 0 {
			c.topK = k
		}
	}
}

// WithLogger sets a logger for request-level debug output.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) { c.logger = utils.LoggerOrNop(l) }
}

// NewClassifier creates a classifier with the given dependencies.
func NewClassifier(
	embedder embedding.Embedder,
	searcher Searcher,
	generator generation.Generator,
	categories *CategorySet,
	opts ...Option,
) *Classifier {
	c := &Classifier{
		embedder:   embedder,
		searcher:   searcher,
		generator:  generator,
		categories: categories,
		topK:       DefaultTopK,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Categories returns the category set.
func (c *Classifier) Categories() *CategorySet {
	return c.categories
}

// Retrieve embeds text and returns the topK most similar stored statements.
func (c *Classifier) Retrieve(ctx context.Context, text string, topK int) ([]models.ScoredRecord, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	if topK <= 0 {
		topK = c.topK
	}
	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		metrics.EmbeddingErrorsTotal.WithLabelValues(metrics.StageQuery).Inc()
		return nil, fmt.Errorf("failed to embed text: %w", err)
	}
	retrieved, err := c.searcher.Search(vec, topK)
	if err != nil {
		return nil, fmt.Errorf("failed to search similar statements: %w", err)
	}
	return retrieved, nil
}

// Classify returns the category for text. Embedding, search and generation
// failures are returned as errors; a reply outside the category set is not an
// error and yields the default category with Fallback set.
func (c *Classifier) Classify(ctx context.Context, text string) (*Result, error) {
	start := time.Now()
	retrieved, err := c.Retrieve(ctx, text, c.topK)
	if err != nil {
		return nil, err
	}

	prompt := BuildPrompt(text, retrieved, c.categories.Names())
	raw, err := c.generator.Generate(ctx, prompt)
	if err != nil {
		metrics.GenerationErrorsTotal.Inc()
		return nil, fmt.Errorf("failed to generate classification: %w", err)
	}

	category, ok := c.categories.Resolve(raw)
	res := &Result{
		Category:  category,
		Fallback:  !ok,
		RawOutput: raw,
		Retrieved: retrieved,
		Duration:  time.Since(start),
	}
	metrics.ClassificationsTotal.WithLabelValues(category).Inc()
	metrics.ClassifyDuration.Observe(res.Duration.Seconds())
	if !ok {
		metrics.ClassificationFallbacksTotal.Inc()
		c.logger.Debug("model reply is not a known category; using default",
			zap.String("text_id", textid.TextID(text)),
			zap.String("reply", utils.Truncate(raw, 80)),
			zap.String("default", category),
		)
	}
	c.logger.Debug("classified text",
		zap.String("text_id", textid.TextID(text)),
		zap.Int("text_length", len(text)),
		zap.String("category", category),
		zap.Int("retrieved", len(retrieved)),
		zap.Duration("duration", res.Duration),
	)
	return res, nil
}

// Package builder embeds a labeled corpus into a vector store with periodic checkpoints.
// A build can be interrupted and resumed: statements already in the store are never re-embedded.
package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/kokoro/internal/embedding"
	"github.com/hyperjump/kokoro/internal/metrics"
	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/internal/vector"
)

// DefaultCheckpointInterval is the store size multiple at which a checkpoint is written.
const DefaultCheckpointInterval = 500

// Persister saves a snapshot of the store.
type Persister interface {
	Persist(store *vector.Store) error
}

// PersistFunc adapts a function to Persister.
type PersistFunc func(store *vector.Store) error

// Persist calls f(store).
func (f PersistFunc) Persist(store *vector.Store) error { return f(store) }

// FilePersister returns a Persister that saves the store atomically to path.
func FilePersister(path string) Persister {
	return PersistFunc(func(store *vector.Store) error {
		return store.Save(path)
	})
}

// Stats summarizes one build run.
type Stats struct {
	Total       int           `json:"total"`
	Embedded    int           `json:"embedded"`
	Skipped     int           `json:"skipped"`
	Failed      int           `json:"failed"`
	Checkpoints int           `json:"checkpoints"`
	StoreSize   int           `json:"store_size"`
	Duration    time.Duration `json:"duration"`
}

// Builder turns corpus items into store records via the embedder.
type Builder struct {
	embedder  embedding.Embedder
	persister Persister
	interval  int
	limiter   *rate.Limiter
	logger    *zap.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets a logger for progress and per-item failures.
func WithLogger(l *zap.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// WithCheckpointInterval sets the checkpoint interval; values <= 0 keep the default.
func WithCheckpointInterval(n int) Option {
	return func(b *Builder) {
		if n > 0 {
			b.interval = n
		}
	}
}

// WithRequestsPerMinute paces embedding calls; values <= 0 disable pacing.
func WithRequestsPerMinute(rpm int) Option {
	return func(b *Builder) {
		if rpm > 0 {
			b.limiter = rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 1)
		} else {
			b.limiter = nil
		}
	}
}

// New creates a builder that embeds with embedder and saves through persister.
func New(embedder embedding.Embedder, persister Persister, opts ...Option) *Builder {
	b := &Builder{
		embedder:  embedder,
		persister: persister,
		interval:  DefaultCheckpointInterval,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.logger == nil {
		b.logger = zap.NewNop()
	}
	return b
}

// EmbeddingText is the text sent to the embedder for one corpus item.
func EmbeddingText(category, statement string) string {
	return category + ": " + statement
}

// Build embeds every corpus item not already in existing and appends it to the
// store, which is returned. existing may be nil for a fresh build; otherwise it is
// extended in place.
//
// Items with a blank category or statement, or whose normalized statement is
// already stored, are skipped. An item whose embedding fails is logged and
// skipped; the run continues. Whenever the store size reaches a multiple of the
// checkpoint interval the store is persisted, and it is always persisted once
// more when the run ends. If ctx is cancelled the final save still happens and
// the context error is returned together with the store.
func (b *Builder) Build(ctx context.Context, corpus []models.LabeledStatement, existing *vector.Store) (*vector.Store, *Stats, error) {
	start := time.Now()
	store := existing
	if store == nil {
		store = vector.NewStore()
	}
	stats := &Stats{Total: len(corpus)}
	b.logger.Info("vector store build starting",
		zap.Int("corpus_items", len(corpus)),
		zap.Int("existing_records", store.Len()),
		zap.Int("checkpoint_interval", b.interval),
	)

	var runErr error
	for i, item := range corpus {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}
		category := strings.ToLower(strings.TrimSpace(item.Category))
		statement := strings.TrimSpace(item.Statement)
		if category == "" || statement == "" || store.Processed(statement) {
			stats.Skipped++
			metrics.BuilderItemsTotal.WithLabelValues(metrics.ResultSkipped).Inc()
			continue
		}
		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				runErr = ctx.Err()
				if runErr == nil {
					runErr = err
				}
				break
			}
		}

		vec, err := b.embedder.Embed(ctx, EmbeddingText(category, statement))
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			b.recordFailure(i, category, err)
			stats.Failed++
			metrics.EmbeddingErrorsTotal.WithLabelValues(metrics.StageBuild).Inc()
			continue
		}
		rec := models.StatementRecord{Category: category, Statement: statement, Embedding: vec}
		if err := store.Add(rec); err != nil {
			b.recordFailure(i, category, err)
			stats.Failed++
			continue
		}
		stats.Embedded++
		metrics.BuilderItemsTotal.WithLabelValues(metrics.ResultEmbedded).Inc()

		if store.Len()%b.interval == 0 {
			if err := b.persister.Persist(store); err != nil {
				stats.StoreSize = store.Len()
				stats.Duration = time.Since(start)
				return store, stats, fmt.Errorf("failed to save checkpoint at %d records: %w", store.Len(), err)
			}
			stats.Checkpoints++
			metrics.BuilderCheckpointsTotal.Inc()
			b.logger.Info("checkpoint saved", zap.Int("records", store.Len()), zap.Int("item", i+1))
		}
	}

	stats.StoreSize = store.Len()
	stats.Duration = time.Since(start)
	if err := b.persister.Persist(store); err != nil {
		return store, stats, fmt.Errorf("failed to save vector store: %w", err)
	}
	fields := []zap.Field{
		zap.Int("embedded", stats.Embedded),
		zap.Int("skipped", stats.Skipped),
		zap.Int("failed", stats.Failed),
		zap.Int("checkpoints", stats.Checkpoints),
		zap.Int("records", stats.StoreSize),
		zap.Duration("duration", stats.Duration),
	}
	if runErr != nil {
		b.logger.Warn("vector store build interrupted; progress saved", append(fields, zap.Error(runErr))...)
		return store, stats, runErr
	}
	b.logger.Info("vector store build finished", fields...)
	return store, stats, nil
}

func (b *Builder) recordFailure(i int, category string, err error) {
	metrics.BuilderItemsTotal.WithLabelValues(metrics.ResultFailed).Inc()
	b.logger.Warn("failed to embed corpus item",
		zap.Int("item", i+1),
		zap.String("category", category),
		zap.Error(err),
	)
}

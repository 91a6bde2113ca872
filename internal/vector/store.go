// Package vector provides the labeled statement store, its on-disk format, and cosine search over it.
package vector

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/pkg/utils"
)

// Store is an append-only, ordered set of statement records plus the set of
// normalized statements already embedded. All records share one dimensionality,
// fixed by the first record added.
type Store struct {
	mu         sync.RWMutex
	dimensions int
	records    []models.StatementRecord
	processed  map[string]struct{}
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		records:   make([]models.StatementRecord, 0),
		processed: make(map[string]struct{}),
	}
}

// NormalizeStatement returns the natural key of a statement: trimmed, whitespace collapsed, lowercased.
func NormalizeStatement(statement string) string {
	return strings.ToLower(utils.CollapseWhitespace(statement))
}

// Add appends rec. The embedding is copied. Returns ErrEmptyEmbedding, a
// *DimensionMismatchError, or ErrDuplicateStatement without modifying the store.
func (s *Store) Add(rec models.StatementRecord) error {
	if len(rec.Embedding) == 0 {
		return ErrEmptyEmbedding
	}
	key := NormalizeStatement(rec.Statement)
	if key == "" {
		return fmt.Errorf("statement cannot be empty")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dimensions != 0 && len(rec.Embedding) != s.dimensions {
		return &DimensionMismatchError{Got: len(rec.Embedding), Expected: s.dimensions}
	}
	if _, ok := s.processed[key]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateStatement, key)
	}
	if s.dimensions == 0 {
		s.dimensions = len(rec.Embedding)
	}
	vec := make([]float32, len(rec.Embedding))
	copy(vec, rec.Embedding)
	s.records = append(s.records, models.StatementRecord{
		Category:  rec.Category,
		Statement: rec.Statement,
		Embedding: vec,
	})
	s.processed[key] = struct{}{}
	return nil
}

// Processed reports whether statement (in any spacing or case) is already stored.
func (s *Store) Processed(statement string) bool {
	key := NormalizeStatement(statement)
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.processed[key]
	return ok
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Dimensions returns the shared embedding length, or 0 for an empty store.
func (s *Store) Dimensions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dimensions
}

// Records returns the records in insertion order. The slice is a copy; embeddings are shared and must not be modified.
func (s *Store) Records() []models.StatementRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.StatementRecord(nil), s.records...)
}

// CategoryCounts returns the number of records per category.
func (s *Store) CategoryCounts() map[string]int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[string]int)
	for _, r := range s.records {
		counts[r.Category]++
	}
	return counts
}

// Categories returns the distinct categories in sorted order.
func (s *Store) Categories() []string {
	counts := s.CategoryCounts()
	out := make([]string, 0, len(counts))
	for c := range counts {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

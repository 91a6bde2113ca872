package vector

import (
	"sort"

	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/pkg/utils"
)

// UndefinedScore is reported for records whose similarity is undefined
// (zero-magnitude stored or query vector). Such records rank after all others.
const UndefinedScore = -1.0

// Index is a read-only snapshot of a Store for similarity search.
// It is safe for concurrent use without locking.
type Index struct {
	dimensions int
	records    []models.StatementRecord
	norms      []float64
}

// NewIndex snapshots store into a search index. Later additions to store are not visible.
func NewIndex(store *Store) *Index {
	records := store.Records()
	norms := make([]float64, len(records))
	for i, r := range records {
		norms[i] = utils.Magnitude(r.Embedding)
	}
	return &Index{
		dimensions: store.Dimensions(),
		records:    records,
		norms:      norms,
	}
}

// LoadIndex reads the store at path and returns a search index over it.
func LoadIndex(path string) (*Index, error) {
	store, err := LoadStore(path)
	if err != nil {
		return nil, err
	}
	return NewIndex(store), nil
}

// Search returns at most topK records ordered by descending cosine similarity to
// query; equal scores keep insertion order. A query whose length differs from the
// index dimensionality fails with *DimensionMismatchError before any comparison.
func (ix *Index) Search(query []float32, topK int) ([]models.ScoredRecord, error) {
	if len(ix.records) == 0 || topK <= 0 {
		return []models.ScoredRecord{}, nil
	}
	if len(query) != ix.dimensions {
		return nil, &DimensionMismatchError{Got: len(query), Expected: ix.dimensions}
	}
	queryNorm := utils.Magnitude(query)

	type scored struct {
		idx   int
		score float64
		valid bool
	}
	scores := make([]scored, len(ix.records))
	for i, r := range ix.records {
		score, ok := cosineWithNorms(query, r.Embedding, queryNorm, ix.norms[i])
		if !ok {
			score = UndefinedScore
		}
		scores[i] = scored{idx: i, score: score, valid: ok}
	}
	sort.Slice(scores, func(i, j int) bool {
		a, b := scores[i], scores[j]
		if a.valid != b.valid {
			return a.valid
		}
		if a.score != b.score {
			return a.score > b.score
		}
		return a.idx < b.idx
	})
	if topK > len(scores) {
		topK = len(scores)
	}
	out := make([]models.ScoredRecord, topK)
	for i := 0; i < topK; i++ {
		r := ix.records[scores[i].idx]
		out[i] = models.ScoredRecord{
			Category:  r.Category,
			Statement: r.Statement,
			Score:     scores[i].score,
			Index:     scores[i].idx,
		}
	}
	return out, nil
}

// Size returns the number of indexed records.
func (ix *Index) Size() int {
	return len(ix.records)
}

// Dimensions returns the index dimensionality, or 0 when empty.
func (ix *Index) Dimensions() int {
	return ix.dimensions
}

// CategoryCounts returns the number of indexed records per category.
func (ix *Index) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, r := range ix.records {
		counts[r.Category]++
	}
	return counts
}

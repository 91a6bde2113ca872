package vector

import (
	"errors"
	"fmt"
	"math"
	"testing"
)

func buildIndex(t *testing.T, recs ...[]float32) *Index {
	t.Helper()
	s := NewStore()
	for i, v := range recs {
		if err := s.Add(rec("normal", fmt.Sprintf("statement %d", i), v...)); err != nil {
			t.Fatal(err)
		}
	}
	return NewIndex(s)
}

func TestIndex_IdenticalVectorRanksFirst(t *testing.T) {
	idx := buildIndex(t,
		[]float32{0, 1, 0},
		[]float32{0.5, 0.5, 0},
		[]float32{0.2, 0.4, 0.9},
	)
	results, err := idx.Search([]float32{0.2, 0.4, 0.9}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Index != 2 {
		t.Errorf("top result index = %d, want 2", results[0].Index)
	}
	if math.Abs(results[0].Score-1.0) > 1e-9 {
		t.Errorf("identical vector score = %f, want 1.0", results[0].Score)
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score > results[i-1].Score {
			t.Errorf("scores not non-increasing at %d: %f > %f", i, results[i].Score, results[i-1].Score)
		}
	}
}

func TestIndex_TopKLargerThanSize(t *testing.T) {
	idx := buildIndex(t, []float32{1, 0}, []float32{0, 1}, []float32{-1, 0})
	results, err := idx.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("expected all 3 records, got %d", len(results))
	}
	seen := map[int]bool{}
	for _, r := range results {
		if seen[r.Index] {
			t.Errorf("record %d returned twice", r.Index)
		}
		seen[r.Index] = true
	}
	if results[2].Score != -1 {
		t.Errorf("opposite vector score = %f, want -1", results[2].Score)
	}
}

func TestIndex_TiesKeepInsertionOrder(t *testing.T) {
	idx := buildIndex(t, []float32{0, 1}, []float32{2, 0}, []float32{1, 0}, []float32{3, 0})
	results, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	want := []int{1, 2, 3}
	for i, r := range results {
		if r.Index != want[i] {
			t.Errorf("position %d: index %d, want %d", i, r.Index, want[i])
		}
	}
}

func TestIndex_DimensionMismatch(t *testing.T) {
	vec768 := make([]float32, 768)
	vec768[0] = 1
	idx := buildIndex(t, vec768)
	_, err := idx.Search(make([]float32, 512), 5)
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if dimErr.Got != 512 || dimErr.Expected != 768 {
		t.Errorf("got %+v", dimErr)
	}
}

func TestIndex_ZeroMagnitudeRanksLast(t *testing.T) {
	idx := buildIndex(t, []float32{0, 0}, []float32{-1, 0}, []float32{1, 0})
	results, err := idx.Search([]float32{1, 0}, 3)
	if err != nil {
		t.Fatal(err)
	}
	if results[0].Index != 2 || results[1].Index != 1 || results[2].Index != 0 {
		t.Errorf("order = %d,%d,%d, want 2,1,0", results[0].Index, results[1].Index, results[2].Index)
	}
	if results[2].Score != UndefinedScore {
		t.Errorf("zero vector score = %f, want %f", results[2].Score, UndefinedScore)
	}
}

func TestIndex_ZeroQuery(t *testing.T) {
	idx := buildIndex(t, []float32{1, 0}, []float32{0, 1})
	results, err := idx.Search([]float32{0, 0}, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 2 || results[0].Index != 0 || results[1].Index != 1 {
		t.Errorf("zero query should return records in insertion order, got %+v", results)
	}
}

func TestIndex_EmptyAndZeroK(t *testing.T) {
	empty := NewIndex(NewStore())
	results, err := empty.Search([]float32{1, 2, 3}, 5)
	if err != nil || len(results) != 0 {
		t.Errorf("empty index: results=%v err=%v", results, err)
	}
	idx := buildIndex(t, []float32{1, 0})
	results, err = idx.Search([]float32{1, 0}, 0)
	if err != nil || len(results) != 0 {
		t.Errorf("topK=0: results=%v err=%v", results, err)
	}
}

func TestIndex_SnapshotIsolation(t *testing.T) {
	s := NewStore()
	_ = s.Add(rec("normal", "a", 1, 0))
	idx := NewIndex(s)
	_ = s.Add(rec("normal", "b", 0, 1))
	if idx.Size() != 1 {
		t.Errorf("index should not see later additions, Size=%d", idx.Size())
	}
}

func TestCosine(t *testing.T) {
	if _, ok := Cosine([]float32{1}, []float32{1, 2}); ok {
		t.Error("different lengths should be undefined")
	}
	if _, ok := Cosine([]float32{0, 0}, []float32{1, 2}); ok {
		t.Error("zero magnitude should be undefined")
	}
	score, ok := Cosine([]float32{1, 1}, []float32{2, 2})
	if !ok || math.Abs(score-1) > 1e-9 {
		t.Errorf("parallel vectors: score=%f ok=%v", score, ok)
	}
}

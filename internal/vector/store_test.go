package vector

import (
	"errors"
	"testing"

	"github.com/hyperjump/kokoro/internal/models"
)

func rec(category, statement string, vec ...float32) models.StatementRecord {
	return models.StatementRecord{Category: category, Statement: statement, Embedding: vec}
}

func TestNormalizeStatement(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"I feel Sad", "i feel sad"},
		{"  I   feel\tsad \n", "i feel sad"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := NormalizeStatement(tt.in); got != tt.want {
			t.Errorf("NormalizeStatement(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_Add(t *testing.T) {
	s := NewStore()
	if err := s.Add(rec("anxiety", "I worry a lot", 1, 0, 0)); err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 || s.Dimensions() != 3 {
		t.Errorf("Len=%d Dimensions=%d", s.Len(), s.Dimensions())
	}
	if !s.Processed("  i WORRY a   lot ") {
		t.Error("normalized statement should be processed")
	}
	if s.Processed("something else") {
		t.Error("unknown statement reported as processed")
	}
}

func TestStore_AddRejects(t *testing.T) {
	s := NewStore()
	_ = s.Add(rec("anxiety", "I worry a lot", 1, 0, 0))

	err := s.Add(rec("stress", "deadline pressure", 1, 0))
	var dimErr *DimensionMismatchError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionMismatchError, got %v", err)
	}
	if dimErr.Got != 2 || dimErr.Expected != 3 {
		t.Errorf("got %+v", dimErr)
	}
	if !errors.Is(err, ErrDimensionMismatch) {
		t.Error("errors.Is should match ErrDimensionMismatch")
	}

	if err := s.Add(rec("stress", "I WORRY   a lot", 0, 1, 0)); !errors.Is(err, ErrDuplicateStatement) {
		t.Errorf("expected ErrDuplicateStatement, got %v", err)
	}
	if err := s.Add(rec("stress", "no vector")); !errors.Is(err, ErrEmptyEmbedding) {
		t.Errorf("expected ErrEmptyEmbedding, got %v", err)
	}
	if err := s.Add(rec("stress", "   ", 0, 1, 0)); err == nil {
		t.Error("expected error for blank statement")
	}
	if s.Len() != 1 {
		t.Errorf("rejected adds must not modify the store, Len=%d", s.Len())
	}
}

func TestStore_AddCopiesEmbedding(t *testing.T) {
	s := NewStore()
	vec := []float32{1, 2}
	_ = s.Add(models.StatementRecord{Category: "normal", Statement: "fine", Embedding: vec})
	vec[0] = 99
	if s.Records()[0].Embedding[0] != 1 {
		t.Error("store must copy embeddings on Add")
	}
}

func TestStore_Categories(t *testing.T) {
	s := NewStore()
	_ = s.Add(rec("stress", "a", 1))
	_ = s.Add(rec("anxiety", "b", 1))
	_ = s.Add(rec("stress", "c", 1))
	cats := s.Categories()
	if len(cats) != 2 || cats[0] != "anxiety" || cats[1] != "stress" {
		t.Errorf("Categories() = %v", cats)
	}
	if s.CategoryCounts()["stress"] != 2 {
		t.Errorf("CategoryCounts() = %v", s.CategoryCounts())
	}
}

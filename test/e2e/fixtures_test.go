package e2e

import (
	"reflect"
	"testing"

	"github.com/hyperjump/kokoro/internal/corpus"
)

func TestEncodeCorpus_AllFormatsLoad(t *testing.T) {
	want := BuildCorpus(2).Statements
	for _, ext := range CorpusFormats {
		ext := ext
		t.Run(ext, func(t *testing.T) {
			content, err := EncodeCorpus(ext, want)
			if err != nil {
				t.Fatalf("EncodeCorpus: %v", err)
			}
			got, err := corpus.LoadBytes(content, ext)
			if err != nil {
				t.Fatalf("LoadBytes: %v", err)
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("loaded %d statements, want %d", len(got), len(want))
			}
		})
	}
}

func TestBuildCorpus(t *testing.T) {
	c := BuildCorpus(10)
	if len(c.Statements) != 90 {
		t.Errorf("statements = %d, want 90", len(c.Statements))
	}
	if len(c.TestCases) != 9 {
		t.Errorf("test cases = %d, want 9", len(c.TestCases))
	}
	seen := make(map[string]bool)
	for _, s := range c.Statements {
		if seen[s.Statement] {
			t.Fatalf("duplicate statement %q", s.Statement)
		}
		seen[s.Statement] = true
	}
}

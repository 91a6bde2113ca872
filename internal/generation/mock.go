package generation

import (
	"context"
	"regexp"
	"strings"
	"sync"
)

// MockGenerator returns a fixed reply (or error) and records the prompts it received.
type MockGenerator struct {
	Reply string
	Err   error

	mu      sync.Mutex
	prompts []string
}

// Generate records prompt and returns Reply or Err.
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.prompts = append(m.prompts, prompt)
	m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	return m.Reply, nil
}

// Model returns "mock".
func (m *MockGenerator) Model() string { return "mock" }

// Prompts returns the prompts received so far.
func (m *MockGenerator) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.prompts...)
}

var exemplarCategory = regexp.MustCompile(`\(Category: ([^)]+)\)`)

// VoteGenerator answers with the category that appears most often among the
// "(Category: x)" exemplars in the prompt, preferring the earliest on ties. It lets
// the full pipeline run offline. With no exemplars it answers "unknown".
type VoteGenerator struct{}

// Generate returns the majority exemplar category.
func (VoteGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &ServiceError{Provider: "mock", Err: err}
	}
	counts := make(map[string]int)
	var order []string
	for _, m := range exemplarCategory.FindAllStringSubmatch(prompt, -1) {
		c := strings.TrimSpace(m[1])
		if counts[c] == 0 {
			order = append(order, c)
		}
		counts[c]++
	}
	best := "unknown"
	bestCount := 0
	for _, c := range order {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best, nil
}

// Model returns "mock".
func (VoteGenerator) Model() string { return "mock" }

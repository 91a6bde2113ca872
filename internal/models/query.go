package models

import (
	"fmt"
	"strings"
)

// AnalyzeRequest is the body of an analyze call.
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Validate returns an error if the text is empty or whitespace only.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text input is empty")
	}
	return nil
}

// SearchRequest asks for the statements most similar to Text, without classification.
type SearchRequest struct {
	Text string `json:"text"`
	TopK int    `json:"top_k,omitempty"`
}

// Validate ensures the search request has text and sets a default TopK, capped at maxTopK.
func (r *SearchRequest) Validate(defaultTopK, maxTopK int) error {
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("text input is empty")
	}
	if r.TopK <= 0 {
		r.TopK = defaultTopK
	}
	if maxTopK > 0 && r.TopK > maxTopK {
		r.TopK = maxTopK
	}
	return nil
}

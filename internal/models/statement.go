// Package models defines core data structures for labeled statements, queries, and classification results.
package models

import "time"

// LabeledStatement is one corpus entry before embedding.
type LabeledStatement struct {
	Category  string `json:"category"`
	Statement string `json:"statement"`
}

// StatementRecord is a labeled statement with its embedding. Immutable once written.
type StatementRecord struct {
	Category  string    `json:"category"`
	Statement string    `json:"statement"`
	Embedding []float32 `json:"-"`
}

// ResourceBundle holds the self-help resources for one category.
type ResourceBundle struct {
	Tips   []string `json:"tips"`
	Books  []string `json:"books"`
	Videos []string `json:"videos"`
	Quotes []string `json:"quotes"`
}

// Prediction is one logged classification outcome. The user text itself is never stored.
type Prediction struct {
	ID         string    `json:"id" db:"id"`
	TextID     string    `json:"text_id" db:"text_id"`
	TextLength int       `json:"text_length" db:"text_length"`
	Category   string    `json:"category" db:"category"`
	Fallback   bool      `json:"fallback" db:"fallback"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Package corpus reads labeled statement corpora from JSON, CSV, and Excel files.
package corpus

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/hyperjump/kokoro/internal/models"
)

// Load reads the corpus file at path, choosing the format by extension
// (.json, .csv, .xlsx). Categories are lowercased and trimmed; statements are trimmed.
func Load(path string) ([]models.LabeledStatement, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	ext := strings.ToLower(filepath.Ext(path))
	items, err := LoadBytes(content, ext)
	if err != nil {
		return nil, fmt.Errorf("parse corpus %s: %w", filepath.Base(path), err)
	}
	return items, nil
}

// LoadBytes parses content in the format named by ext, which includes the leading dot.
func LoadBytes(content []byte, ext string) ([]models.LabeledStatement, error) {
	switch ext {
	case ".json":
		return parseJSON(content)
	case ".csv":
		return parseCSV(sanitizeUTF8(content))
	case ".xlsx":
		return parseExcel(content)
	default:
		return nil, fmt.Errorf("unsupported corpus format %q", ext)
	}
}

func newStatement(category, statement string) models.LabeledStatement {
	return models.LabeledStatement{
		Category:  strings.ToLower(strings.TrimSpace(category)),
		Statement: strings.TrimSpace(statement),
	}
}

// sanitizeUTF8 replaces invalid UTF-8 sequences with the replacement character.
func sanitizeUTF8(content []byte) []byte {
	if utf8.Valid(content) {
		return content
	}
	return []byte(strings.ToValidUTF8(string(content), "\uFFFD"))
}

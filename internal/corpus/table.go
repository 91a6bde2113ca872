package corpus

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/hyperjump/kokoro/internal/models"
)

// Header names accepted for the category and statement columns, case-insensitive.
var (
	categoryColumns  = []string{"status", "category", "label"}
	statementColumns = []string{"statement", "text"}
)

func parseCSV(content []byte) ([]models.LabeledStatement, error) {
	r := csv.NewReader(bytes.NewReader(content))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	return rowsToStatements(rows)
}

// rowsToStatements maps a header row plus data rows to statements. Rows missing
// either column value are dropped.
func rowsToStatements(rows [][]string) ([]models.LabeledStatement, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no header row")
	}
	header := rows[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	catCol := findColumn(header, categoryColumns)
	stmtCol := findColumn(header, statementColumns)
	if catCol < 0 || stmtCol < 0 {
		return nil, fmt.Errorf("header must name a category column (%s) and a statement column (%s)",
			strings.Join(categoryColumns, "/"), strings.Join(statementColumns, "/"))
	}
	items := make([]models.LabeledStatement, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if catCol >= len(row) || stmtCol >= len(row) {
			continue
		}
		item := newStatement(row[catCol], row[stmtCol])
		if item.Category == "" || item.Statement == "" {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func findColumn(header []string, names []string) int {
	for _, name := range names {
		for i, h := range header {
			if strings.EqualFold(strings.TrimSpace(h), name) {
				return i
			}
		}
	}
	return -1
}

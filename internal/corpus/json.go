package corpus

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/hyperjump/kokoro/internal/models"
)

// parseJSON accepts either a list of {"category", "statement"} objects or an
// object mapping category to a list of statements. Map categories are visited in
// sorted order so the flattened corpus is deterministic.
func parseJSON(content []byte) ([]models.LabeledStatement, error) {
	trimmed := bytes.TrimSpace(content)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty JSON document")
	}
	switch trimmed[0] {
	case '[':
		var entries []interface{}
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		items := make([]models.LabeledStatement, 0, len(entries))
		for i, e := range entries {
			obj, ok := e.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("expected a list of objects, entry %d is %T", i, e)
			}
			items = append(items, newStatement(scalarString(obj["category"]), scalarString(obj["statement"])))
		}
		return items, nil
	case '{':
		var grouped map[string][]interface{}
		if err := json.Unmarshal(trimmed, &grouped); err != nil {
			return nil, fmt.Errorf("expected an object of category to statement lists: %w", err)
		}
		categories := make([]string, 0, len(grouped))
		for c := range grouped {
			categories = append(categories, c)
		}
		sort.Strings(categories)
		var items []models.LabeledStatement
		for _, c := range categories {
			for _, s := range grouped[c] {
				items = append(items, newStatement(c, scalarString(s)))
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected a list of objects")
	}
}

// scalarString renders a JSON scalar as text; null and missing values become "".
func scalarString(v interface{}) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64, bool:
		return fmt.Sprint(x)
	default:
		return ""
	}
}

// WriteJSON writes items as an indented JSON list of {"category", "statement"} objects.
func WriteJSON(w io.Writer, items []models.LabeledStatement) error {
	if items == nil {
		items = []models.LabeledStatement{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(items)
}

package e2e

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/hyperjump/kokoro/internal/corpus"
	"github.com/hyperjump/kokoro/internal/models"
)

// CorpusFormats are the corpus file extensions exercised end to end.
var CorpusFormats = []string{".json", ".csv", ".xlsx"}

// EncodeCorpus renders items in the format for ext. CSV and XLSX follow the
// public dataset layout: an unnamed index column, "statement" and "status".
func EncodeCorpus(ext string, items []models.LabeledStatement) ([]byte, error) {
	switch ext {
	case ".json":
		var buf bytes.Buffer
		if err := corpus.WriteJSON(&buf, items); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case ".csv":
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		_ = w.Write([]string{"", "statement", "status"})
		for i, it := range items {
			_ = w.Write([]string{strconv.Itoa(i), it.Statement, it.Category})
		}
		w.Flush()
		return buf.Bytes(), w.Error()
	case ".xlsx":
		return encodeXlsx(items)
	default:
		return nil, fmt.Errorf("unsupported corpus format %q", ext)
	}
}

func encodeXlsx(items []models.LabeledStatement) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"", "statement", "status"}); err != nil {
		return nil, err
	}
	for i, it := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{i, it.Statement, it.Category}); err != nil {
			return nil, err
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Package cli provides output writers for the Kokoro command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/hyperjump/kokoro/internal/builder"
	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/pkg/utils"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates s as an output format. Empty means text.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch strings.ToLower(s) {
	case "", string(OutputText):
		return OutputText, nil
	case string(OutputJSON):
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q; use text or json", s)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// WriteAnalyzeResult writes a classification and its resources.
func WriteAnalyzeResult(w io.Writer, resp *models.AnalyzeResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "prediction: %s\n", resp.Prediction)
	writeList(w, "tips", resp.Tips)
	writeList(w, "books", resp.Books)
	writeList(w, "videos", resp.Videos)
	writeList(w, "quotes", resp.Quotes)
	return nil
}

func writeList(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(w, "\n%s:\n", title)
	for _, it := range items {
		fmt.Fprintf(w, "  - %s\n", it)
	}
}

// WriteSearchResults writes retrieved statements in the given format.
func WriteSearchResults(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, resp)
	}
	fmt.Fprintf(w, "\nFound %d similar statements in %dms\n\n", resp.Total, resp.QueryTime)
	for i, r := range resp.Results {
		fmt.Fprintf(w, "%2d. [%s] %.4f  %s\n", i+1, r.Category, r.Score, utils.Truncate(r.Statement, 120))
	}
	return nil
}

// WriteStatus writes index, prediction log and configuration status.
func WriteStatus(w io.Writer, st *models.StatusResponse, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "index_size:         %d   # labeled statements in the vector store\n", st.IndexSize)
	fmt.Fprintf(w, "dimensions:         %d\n", st.Dimensions)
	if st.Predictions != nil {
		fmt.Fprintf(w, "predictions:        %d   # logged classifications\n", *st.Predictions)
	}
	if st.DiskUsageBytes != nil {
		fmt.Fprintf(w, "disk_usage_bytes:   %d   # vector store + prediction log on disk\n", *st.DiskUsageBytes)
	}
	fmt.Fprintf(w, "categories:         %s\n", strings.Join(st.Categories, ", "))
	if len(st.KnowledgeCategories) > 0 {
		fmt.Fprintf(w, "knowledge:          %s\n", strings.Join(st.KnowledgeCategories, ", "))
	}
	if len(st.IndexCategories) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# statements per category")
		writeCounts(w, toInt64(st.IndexCategories))
	}
	if len(st.PredictionsByCategory) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# predictions per category")
		writeCounts(w, st.PredictionsByCategory)
	}
	if c := st.Config; c != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "# configuration")
		fmt.Fprintf(w, "embedding:          %s (%s)\n", c.EmbeddingModel, c.EmbeddingProvider)
		fmt.Fprintf(w, "generation:         %s (%s)\n", c.GenerationModel, c.GenerationProvider)
		fmt.Fprintf(w, "top_k:              %d\n", c.TopK)
		if c.VectorStorePath != "" {
			fmt.Fprintf(w, "vector_store_path:  %s\n", c.VectorStorePath)
		}
		if c.DatabasePath != "" {
			fmt.Fprintf(w, "database_path:      %s\n", c.DatabasePath)
		}
	}
	return nil
}

func writeCounts(w io.Writer, counts map[string]int64) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%-20s%d\n", k+":", counts[k])
	}
}

func toInt64(m map[string]int) map[string]int64 {
	out := make(map[string]int64, len(m))
	for k, v := range m {
		out[k] = int64(v)
	}
	return out
}

// WriteBuildStats writes the summary of a vector store build.
func WriteBuildStats(w io.Writer, st *builder.Stats, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	fmt.Fprintf(w, "total:        %d\n", st.Total)
	fmt.Fprintf(w, "embedded:     %d\n", st.Embedded)
	fmt.Fprintf(w, "skipped:      %d   # already in the store or blank\n", st.Skipped)
	fmt.Fprintf(w, "failed:       %d   # retried on the next run\n", st.Failed)
	fmt.Fprintf(w, "checkpoints:  %d\n", st.Checkpoints)
	fmt.Fprintf(w, "store_size:   %d\n", st.StoreSize)
	fmt.Fprintf(w, "duration:     %s\n", st.Duration)
	return nil
}

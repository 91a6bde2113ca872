package models

// ScoredRecord is a retrieved statement with its similarity to the query.
// Index is the record's insertion position in the store and breaks score ties.
type ScoredRecord struct {
	Category  string  `json:"category"`
	Statement string  `json:"statement"`
	Score     float64 `json:"score"`
	Index     int     `json:"index"`
}

// AnalyzeResponse is the result of an analyze call: the predicted category and its resources.
type AnalyzeResponse struct {
	Prediction string   `json:"prediction"`
	Tips       []string `json:"tips"`
	Books      []string `json:"books"`
	Videos     []string `json:"videos"`
	Quotes     []string `json:"quotes"`
}

// NewAnalyzeResponse builds a response from a category and its resource bundle.
func NewAnalyzeResponse(category string, bundle ResourceBundle) *AnalyzeResponse {
	return &AnalyzeResponse{
		Prediction: category,
		Tips:       nonNil(bundle.Tips),
		Books:      nonNil(bundle.Books),
		Videos:     nonNil(bundle.Videos),
		Quotes:     nonNil(bundle.Quotes),
	}
}

// SearchResponse is the response for a retrieval-only search.
type SearchResponse struct {
	Results   []ScoredRecord `json:"results"`
	Total     int            `json:"total"`
	QueryTime int64          `json:"query_time_ms"`
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// StatusResponse describes the loaded index, the prediction log and the active configuration.
type StatusResponse struct {
	IndexSize             int              `json:"index_size"`
	Dimensions            int              `json:"dimensions"`
	IndexCategories       map[string]int   `json:"index_categories,omitempty"`
	Categories            []string         `json:"categories"`
	KnowledgeCategories   []string         `json:"knowledge_categories"`
	Predictions           *int64           `json:"predictions,omitempty"`
	PredictionsByCategory map[string]int64 `json:"predictions_by_category,omitempty"`
	DiskUsageBytes        *int64           `json:"disk_usage_bytes,omitempty"`
	Config                *StatusConfig    `json:"config,omitempty"`
}

// StatusConfig is the configuration summary included in a StatusResponse.
type StatusConfig struct {
	EmbeddingProvider  string `json:"embedding_provider"`
	EmbeddingModel     string `json:"embedding_model"`
	GenerationProvider string `json:"generation_provider"`
	GenerationModel    string `json:"generation_model"`
	TopK               int    `json:"top_k"`
	VectorStorePath    string `json:"vector_store_path,omitempty"`
	DatabasePath       string `json:"database_path,omitempty"`
}

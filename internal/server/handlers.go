package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/kokoro/internal/classify"
	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/internal/storage"
	"github.com/hyperjump/kokoro/internal/textid"
)

const (
	predictionLogTimeout = 5 * time.Second
	maxRequestBodyBytes  = 1 << 20
)

// decodeBody decodes a JSON request body of at most maxRequestBodyBytes into v.
// It writes the error response itself and reports whether decoding succeeded.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return false
		}
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req models.AnalyzeRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	tid := textid.TextID(req.Text)
	s.logger.Debug("analyze request", zap.String("text_id", tid), zap.Int("text_length", len(req.Text)))

	res, err := s.classifier.Classify(r.Context(), req.Text)
	if err != nil {
		if errors.Is(err, classify.ErrEmptyText) {
			s.respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.logger.Error("analysis failed", zap.String("text_id", tid), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "analysis failed: "+err.Error())
		return
	}

	s.logPrediction(r.Context(), &models.Prediction{
		TextID:     tid,
		TextLength: len(req.Text),
		Category:   res.Category,
		Fallback:   res.Fallback,
	})
	s.respondJSON(w, http.StatusOK, models.NewAnalyzeResponse(res.Category, s.knowledge.Lookup(res.Category)))
}

// logPrediction appends p to the prediction log. Failures are logged and ignored.
func (s *Server) logPrediction(ctx context.Context, p *models.Prediction) {
	if s.storage == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), predictionLogTimeout)
	defer cancel()
	if err := s.storage.CreatePrediction(ctx, p); err != nil {
		s.logger.Warn("failed to log prediction", zap.String("text_id", p.TextID), zap.Error(err))
	}
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req models.SearchRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(s.config.Classify.TopK, maxTopK); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	start := time.Now()
	results, err := s.classifier.Retrieve(r.Context(), req.Text, req.TopK)
	if err != nil {
		s.logger.Error("search failed", zap.String("text_id", textid.TextID(req.Text)), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, "search failed: "+err.Error())
		return
	}
	if results == nil {
		results = []models.ScoredRecord{}
	}
	s.respondJSON(w, http.StatusOK, &models.SearchResponse{
		Results:   results,
		Total:     len(results),
		QueryTime: time.Since(start).Milliseconds(),
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]interface{}{
		"categories": s.classifier.Categories().Names(),
		"default":    s.classifier.Categories().Default(),
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	resp, err := s.Status(r.Context())
	if err != nil {
		s.logger.Error("status failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.respondJSON(w, http.StatusOK, resp)
}

// Status reports the loaded index, the prediction log and the active configuration.
func (s *Server) Status(ctx context.Context) (*models.StatusResponse, error) {
	cfg := s.config
	resp := &models.StatusResponse{
		IndexSize:           s.index.Size(),
		Dimensions:          s.index.Dimensions(),
		IndexCategories:     s.index.CategoryCounts(),
		Categories:          s.classifier.Categories().Names(),
		KnowledgeCategories: s.knowledge.Categories(),
		Config: &models.StatusConfig{
			EmbeddingProvider:  cfg.Embedding.Provider,
			EmbeddingModel:     cfg.Embedding.Model,
			GenerationProvider: cfg.Generation.Provider,
			GenerationModel:    cfg.Generation.Model,
			TopK:               cfg.Classify.TopK,
			VectorStorePath:    cfg.Storage.VectorStorePath,
			DatabasePath:       cfg.Storage.DatabasePath,
		},
	}

	if s.storage != nil {
		total, err := s.storage.CountPredictions(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count predictions: %w", err)
		}
		byCategory, err := s.storage.CountByCategory(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to count predictions by category: %w", err)
		}
		resp.Predictions = &total
		resp.PredictionsByCategory = byCategory
	}

	paths := append([]string{cfg.Storage.VectorStorePath}, storage.DatabaseFiles(cfg.Storage.DatabasePath)...)
	if diskBytes, err := storage.DiskUsageBytes(paths...); err == nil {
		resp.DiskUsageBytes = &diskBytes
	}
	return resp, nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}

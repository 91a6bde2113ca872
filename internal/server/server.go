// Package server provides the HTTP API for Kokoro.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hyperjump/kokoro/internal/classify"
	"github.com/hyperjump/kokoro/internal/config"
	"github.com/hyperjump/kokoro/internal/knowledge"
	"github.com/hyperjump/kokoro/internal/storage"
	"github.com/hyperjump/kokoro/pkg/utils"
)

// maxTopK caps top_k on retrieval-only search requests.
const maxTopK = 50

// IndexInfo describes the loaded vector index.
type IndexInfo interface {
	Size() int
	Dimensions() int
	CategoryCounts() map[string]int
}

// Server is the HTTP server for the Kokoro API.
type Server struct {
	classifier *classify.Classifier
	index      IndexInfo
	knowledge  *knowledge.Base
	storage    storage.Storage // nil disables the prediction log
	config     *config.Config
	logger     *zap.Logger
	server     *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	classifier *classify.Classifier,
	index IndexInfo,
	kb *knowledge.Base,
	store storage.Storage,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	if kb == nil {
		kb = knowledge.Empty()
	}
	return &Server{
		classifier: classifier,
		index:      index,
		knowledge:  kb,
		storage:    store,
		config:     cfg,
		logger:     utils.LoggerOrNop(logger),
	}
}

// Router returns the HTTP handler with all routes and middleware.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(middleware.Compress(5))
	r.Use(cors(s.config.Server.AllowedOrigins))
	r.Use(instrument)

	r.Group(func(r chi.Router) {
		if n := s.config.Server.MaxConcurrent; n > 0 {
			r.Use(middleware.Throttle(n))
		}
		r.Post("/api/v1/analyze", s.handleAnalyze)
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/api/v1/search", s.handleSearch)
	})
	r.Get("/api/v1/categories", s.handleCategories)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

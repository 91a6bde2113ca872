// Package main is the Kokoro CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/hyperjump/kokoro/internal/builder"
	"github.com/hyperjump/kokoro/internal/classify"
	"github.com/hyperjump/kokoro/internal/cli"
	"github.com/hyperjump/kokoro/internal/config"
	"github.com/hyperjump/kokoro/internal/corpus"
	"github.com/hyperjump/kokoro/internal/embedding"
	"github.com/hyperjump/kokoro/internal/generation"
	"github.com/hyperjump/kokoro/internal/knowledge"
	"github.com/hyperjump/kokoro/internal/models"
	"github.com/hyperjump/kokoro/internal/server"
	"github.com/hyperjump/kokoro/internal/storage"
	"github.com/hyperjump/kokoro/internal/vector"
	"github.com/hyperjump/kokoro/internal/watcher"
	"github.com/hyperjump/kokoro/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/kokoro/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development) and uses it if present.
// Returns the config and the path that was actually loaded.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
		if _, statErr := os.Stat(path); errors.Is(statErr, os.ErrNotExist) {
			cfg := &config.Config{}
			config.ApplyDefaults(cfg)
			return cfg, "", nil
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	// Environment variables already set take precedence over .env.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "build":
		runBuild()
	case "classify":
		runClassify()
	case "search":
		runSearch()
	case "status":
		runStatus()
	case "prepare":
		runPrepare()
	case "version", "--version", "-v":
		fmt.Printf("kokoro version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

// setup loads config and creates the logger, exiting on failure.
func setup(configPath string, debug bool) (*config.Config, *zap.Logger) {
	cfg, resolved, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || debug
	cfg.Debug = debugMode
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	logger.Debug("config loaded", zap.String("config_path", resolved), zap.Bool("debug", debugMode))
	return cfg, logger
}

func parseFormat(s string) cli.OutputFormat {
	format, err := cli.ParseOutputFormat(s)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return format
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	components, err := initializeComponents(context.Background(), cfg, logger, componentOptions{models: true, storage: true})
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	srv := server.NewServer(
		components.Classifier,
		components.Index,
		components.Knowledge,
		components.Storage,
		cfg,
		logger,
	)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

func runBuild() {
	fs := flag.NewFlagSet("build", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	corpusPath := fs.String("corpus", "", "labeled corpus (.json, .csv or .xlsx); default builder.corpus_path")
	outPath := fs.String("out", "", "vector store path; default storage.vector_store_path")
	fresh := fs.Bool("fresh", false, "ignore an existing store and embed everything again")
	watch := fs.Bool("watch", false, "keep running and rebuild when the corpus changes")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	format := parseFormat(*outputFormat)
	cfg, logger := setup(*configPath, *debug)
	defer logger.Sync()

	if *corpusPath == "" {
		*corpusPath = cfg.Builder.CorpusPath
	}
	if *corpusPath == "" {
		fmt.Fprintln(os.Stderr, "No corpus given: use --corpus or set builder.corpus_path")
		os.Exit(1)
	}
	if *outPath == "" {
		*outPath = cfg.Storage.VectorStorePath
	}

	embedder, err := embedding.New(&cfg.Embedding)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}

	var store *vector.Store
	if !*fresh {
		store, err = vector.LoadStoreOrEmpty(*outPath)
		if err != nil {
			logger.Fatal("Failed to load existing store", zap.String("path", *outPath), zap.Error(err))
		}
		logger.Info("resuming from existing store", zap.String("path", *outPath), zap.Int("records", store.Len()))
	}

	b := builder.New(embedder, builder.FilePersister(*outPath),
		builder.WithLogger(logger),
		builder.WithCheckpointInterval(cfg.Builder.CheckpointInterval),
		builder.WithRequestsPerMinute(cfg.Builder.RequestsPerMinute),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var mu sync.Mutex
	rebuild := func() error {
		mu.Lock()
		defer mu.Unlock()
		items, err := corpus.Load(*corpusPath)
		if err != nil {
			return err
		}
		logger.Info("corpus loaded", zap.String("path", *corpusPath), zap.Int("items", len(items)))
		next, stats, err := b.Build(ctx, items, store)
		store = next
		if stats != nil {
			_ = cli.WriteBuildStats(os.Stdout, stats, format)
		}
		return err
	}

	if err := rebuild(); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "Build interrupted; progress saved. Run again to resume.")
		} else {
			fmt.Fprintf(os.Stderr, "Build failed: %v\n", err)
		}
		os.Exit(1)
	}
	if !*watch {
		return
	}

	w, err := watcher.NewWatcher([]string{*corpusPath}, func(path string) {
		logger.Info("corpus changed; rebuilding", zap.String("path", path))
		if err := rebuild(); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("rebuild failed", zap.Error(err))
		}
	}, watcher.WithLogger(logger))
	if err != nil {
		logger.Fatal("Failed to create watcher", zap.Error(err))
	}
	if err := w.Start(ctx); err != nil {
		logger.Fatal("Failed to start watcher", zap.Error(err))
	}
	logger.Info("watching corpus for changes", zap.String("path", *corpusPath))
	<-ctx.Done()
	w.Stop()
}

// printQueryUsage prints usage for the classify and search subcommands.
func printQueryUsage(fs *flag.FlagSet, name string) {
	fmt.Fprintf(fs.Output(), "Usage: kokoro %s [flags] <text>\n\n", name)
	fmt.Fprintf(fs.Output(), "Text is all remaining arguments joined by spaces; quoting is optional.\n\n")
	fs.PrintDefaults()
}

// buildQuery joins all positional args with spaces so multi-word input works
// the same with or without shell quoting.
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// argsReorder moves flags (and their values) that appear after the text to the
// front so that flag.Parse sees them. The flag package stops at the first
// non-flag argument.
func argsReorder(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

func runClassify() {
	fs := flag.NewFlagSet("classify", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; empty runs the pipeline locally")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printQueryUsage(fs, "classify") }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	text := buildQuery(fs.Args())
	if text == "" {
		printQueryUsage(fs, "classify")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	var resp models.AnalyzeResponse
	if *serverURL != "" {
		if err := postJSON(*serverURL+"/api/v1/analyze", &models.AnalyzeRequest{Text: text}, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup(*configPath, *debug)
		defer logger.Sync()
		ctx := context.Background()
		components, err := initializeComponents(ctx, cfg, logger, componentOptions{models: true})
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		res, err := components.Classifier.Classify(ctx, text)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Classification failed: %v\n", err)
			os.Exit(1)
		}
		resp = *models.NewAnalyzeResponse(res.Category, components.Knowledge.Lookup(res.Category))
	}
	if err := cli.WriteAnalyzeResult(os.Stdout, &resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "", "server URL; empty searches the local vector store")
	topK := fs.Int("top-k", 0, "number of similar statements (default classify.top_k)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	debug := fs.Bool("debug", false, "enable debug logging")
	fs.Usage = func() { printQueryUsage(fs, "search") }
	_ = fs.Parse(argsReorder(os.Args[2:]))

	text := buildQuery(fs.Args())
	if text == "" {
		printQueryUsage(fs, "search")
		os.Exit(1)
	}
	format := parseFormat(*outputFormat)

	var resp models.SearchResponse
	if *serverURL != "" {
		if err := postJSON(*serverURL+"/api/v1/search", &models.SearchRequest{Text: text, TopK: *topK}, &resp); err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		cfg, logger := setup(*configPath, *debug)
		defer logger.Sync()
		ctx := context.Background()
		components, err := initializeComponents(ctx, cfg, logger, componentOptions{models: true})
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()

		start := time.Now()
		results, err := components.Classifier.Retrieve(ctx, text, *topK)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		resp = models.SearchResponse{Results: results, Total: len(results), QueryTime: time.Since(start).Milliseconds()}
	}
	if err := cli.WriteSearchResults(os.Stdout, &resp, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = read local files)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := parseFormat(*outputFormat)
	var status *models.StatusResponse
	if *serverURL != "" {
		var st models.StatusResponse
		if err := getJSON(*serverURL+"/api/v1/status", &st); err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = &st
	} else {
		cfg, logger := setup(*configPath, false)
		defer logger.Sync()
		ctx := context.Background()
		components, err := initializeComponents(ctx, cfg, logger, componentOptions{storage: true})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()
		srv := server.NewServer(components.Classifier, components.Index, components.Knowledge, components.Storage, cfg, logger)
		status, err = srv.Status(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
	}
	if err := cli.WriteStatus(os.Stdout, status, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runPrepare() {
	fs := flag.NewFlagSet("prepare", flag.ExitOnError)
	outPath := fs.String("out", "", "output JSON path (default stdout)")
	_ = fs.Parse(argsReorder(os.Args[2:]))

	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: kokoro prepare [--out path] <input.csv|input.xlsx|input.json>")
		os.Exit(1)
	}
	items, err := corpus.Load(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read dataset: %v\n", err)
		os.Exit(1)
	}
	if err := writePrepared(*outPath, items); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write corpus: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "Prepared %d labeled statements\n", len(items))
}

// writePrepared writes items as a JSON corpus to path, or stdout when path is empty.
func writePrepared(path string, items []models.LabeledStatement) error {
	if path == "" {
		return corpus.WriteJSON(os.Stdout, items)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := corpus.WriteJSON(f, items); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var httpClient = &http.Client{Timeout: 2 * time.Minute}

func postJSON(url string, in, out interface{}) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}
	resp, err := httpClient.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func getJSON(url string, out interface{}) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	return decodeResponse(resp, out)
}

func decodeResponse(resp *http.Response, out interface{}) error {
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(b, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// Components holds initialized components for the CLI commands.
type Components struct {
	Classifier *classify.Classifier
	Index      *vector.Index
	Knowledge  *knowledge.Base
	Storage    storage.Storage
}

// Close releases resources held by components.
func (c *Components) Close() {
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

type componentOptions struct {
	models  bool // create embedding and generation clients
	storage bool // open the prediction log
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts componentOptions) (*Components, error) {
	categories, err := classify.NewCategorySet(cfg.Classify.Categories, cfg.Classify.DefaultCategory)
	if err != nil {
		return nil, err
	}

	store, err := vector.LoadStoreOrEmpty(cfg.Storage.VectorStorePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load vector store: %w", err)
	}
	if store.Len() == 0 {
		logger.Warn("vector store is empty; run \"kokoro build\" first",
			zap.String("path", cfg.Storage.VectorStorePath))
	}
	index := vector.NewIndex(store)
	logger.Info("vector index loaded",
		zap.Int("records", index.Size()),
		zap.Int("dimensions", index.Dimensions()))

	var (
		embedder  embedding.Embedder
		generator generation.Generator
	)
	if opts.models {
		embedder, err = embedding.New(&cfg.Embedding)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize embedder: %w", err)
		}
		generator, err = generation.New(&cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize generator: %w", err)
		}
		logger.Info("model clients initialized",
			zap.String("embedding_model", embedder.Model()),
			zap.String("generation_model", generator.Model()))
	}

	clfOpts := []classify.Option{classify.WithTopK(cfg.Classify.TopK)}
	if cfg.Debug {
		clfOpts = append(clfOpts, classify.WithLogger(logger))
	}
	classifier := classify.NewClassifier(embedder, index, generator, categories, clfOpts...)

	kb := knowledge.LoadOrEmpty(ctx, cfg.Knowledge.Source, logger,
		knowledge.WithS3Region(cfg.Knowledge.S3Region),
		knowledge.WithS3Endpoint(cfg.Knowledge.S3Endpoint))

	components := &Components{
		Classifier: classifier,
		Index:      index,
		Knowledge:  kb,
	}
	if opts.storage {
		db, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		components.Storage = db
	}
	return components, nil
}

func printUsage() {
	fmt.Println(`kokoro - Retrieval-augmented mental health text classifier

Usage:
  kokoro server [flags]             Start the HTTP server
  kokoro build [flags]              Embed a labeled corpus into the vector store
  kokoro classify [flags] <text>    Classify text and show matching resources
  kokoro search [flags] <text>      Show the most similar labeled statements
  kokoro status [flags]             Show index, prediction log and config status
  kokoro prepare [flags] <input>    Convert a CSV/XLSX/JSON dataset into a JSON corpus
  kokoro version                    Show version
  kokoro help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/kokoro/config.yaml)
  --debug            Enable debug logging

Build Flags:
  --corpus string    Labeled corpus file (default: builder.corpus_path)
  --out string       Vector store path (default: storage.vector_store_path)
  --fresh            Ignore an existing store and start over
  --watch            Rebuild when the corpus file changes
  --output string    Output format: text or json (default: text)

Classify / Search Flags:
  --server string    Server URL; empty (default) runs locally
  --top-k int        Search only: number of similar statements
  --output string    Output format: text or json (default: text)

Status Flags:
  --server string    Server URL (default: http://localhost:8080). Use --server "" to read local files.
  --output string    Output format: text or json (default: text)

Prepare Flags:
  --out string       Output JSON path (default: stdout)

Examples:
  kokoro prepare --out data/corpus.json data/Combined_Data.csv
  kokoro build --corpus data/corpus.json
  kokoro build --watch
  kokoro classify "I can't sleep and keep worrying about work"
  kokoro search --top-k 10 nothing feels worth doing
  kokoro server
  kokoro status --output json`)
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/hazyhaar/docchunk/chunkpipe"
	"github.com/hazyhaar/docchunk/chunkstore"
	"github.com/hazyhaar/docchunk/docpipe"
	"github.com/hazyhaar/docchunk/tokbridge"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "chunk":
		cmdChunk(os.Args[2:])
	case "text":
		cmdText(os.Args[2:])
	case "runs":
		cmdRuns()
	case "formats":
		cmdFormats()
	case "serve":
		cmdServe()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `docchunk — token-bounded document chunking for retrieval pipelines

usage:
  docchunk chunk <file> [out.jsonl]
  docchunk text  [source]
  docchunk runs
  docchunk formats
  docchunk serve

chunk    Converts <file> and writes chunks as JSONL (stdout by default).
text     Chunks raw text from stdin.
runs     Lists recorded chunking runs (requires CHUNK_DB).
formats  Lists supported document formats.
serve    Starts the HTTP API (and MCP stdio with MCP_TRANSPORT=stdio).

environment:
  DOCCHUNK_CONFIG  YAML config file path
  MAX_TOKENS       chunk size ceiling (default 500)
  OVERLAP_TOKENS   window overlap (default 100)
  ENCODING         tokenizer encoding (default cl100k_base)
  CHUNK_DB         SQLite path; when set, chunk runs are recorded
  PORT             serve port (default 8086)
  LOG_LEVEL        debug | info | warn | error
`)
}

// appConfig is the YAML configuration file shape.
type appConfig struct {
	Chunk    chunkpipe.Config `yaml:"chunk"`
	Encoding string           `yaml:"encoding"`
	Port     string           `yaml:"port"`
	DBPath   string           `yaml:"db_path"`
}

// loadConfig merges defaults, the optional YAML file, and env overrides.
func loadConfig() (appConfig, error) {
	cfg := appConfig{
		Chunk:    chunkpipe.DefaultConfig(),
		Encoding: tokbridge.DefaultEncoding,
		Port:     "8086",
	}

	if path := os.Getenv("DOCCHUNK_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	if v := os.Getenv("MAX_TOKENS"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Chunk.MaxTokens); err != nil {
			return cfg, fmt.Errorf("MAX_TOKENS: %w", err)
		}
	}
	if v := os.Getenv("OVERLAP_TOKENS"); v != "" {
		if _, err := fmt.Sscanf(v, "%d", &cfg.Chunk.OverlapTokens); err != nil {
			return cfg, fmt.Errorf("OVERLAP_TOKENS: %w", err)
		}
	}
	cfg.Encoding = env("ENCODING", cfg.Encoding)
	cfg.Port = env("PORT", cfg.Port)
	cfg.DBPath = env("CHUNK_DB", cfg.DBPath)
	return cfg, nil
}

func newLogger() *slog.Logger {
	var lvl slog.Level
	switch env("LOG_LEVEL", "info") {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	slog.SetDefault(logger)
	return logger
}

func newChunker(cfg appConfig, logger *slog.Logger) (*chunkpipe.Pipeline, error) {
	codec, err := tokbridge.New(cfg.Encoding)
	if err != nil {
		return nil, fmt.Errorf("tokenizer: %w", err)
	}
	cfg.Chunk.Logger = logger
	return chunkpipe.New(cfg.Chunk, codec)
}

func cmdChunk(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "chunk requires a file path")
		os.Exit(1)
	}
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	chunker, err := newChunker(cfg, logger)
	if err != nil {
		fatal(err)
	}

	conv := docpipe.New(docpipe.Config{Logger: logger})
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	chunks, err := conv.ChunkFile(ctx, args[0], chunker)
	if err != nil {
		fatal(err)
	}

	if cfg.DBPath != "" {
		store, err := chunkstore.Open(cfg.DBPath)
		if err != nil {
			fatal(err)
		}
		defer store.Close()
		runID, err := store.SaveRun(ctx, args[0], chunker.Config(), chunks)
		if err != nil {
			fatal(err)
		}
		logger.Info("run recorded", "run_id", runID, "chunks", len(chunks))
	}

	if len(args) >= 2 {
		if err := chunkstore.WriteJSONLFile(args[1], chunks); err != nil {
			fatal(err)
		}
		fmt.Fprintf(os.Stderr, "wrote %d chunks to %s\n", len(chunks), args[1])
		return
	}
	if err := chunkstore.WriteJSONL(os.Stdout, chunks); err != nil {
		fatal(err)
	}
}

func cmdText(args []string) {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	chunker, err := newChunker(cfg, logger)
	if err != nil {
		fatal(err)
	}

	source := "stdin"
	if len(args) >= 1 {
		source = args[0]
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		fatal(err)
	}
	chunks, err := chunker.ChunkText(string(data), source)
	if err != nil {
		fatal(err)
	}
	if err := chunkstore.WriteJSONL(os.Stdout, chunks); err != nil {
		fatal(err)
	}
}

func cmdRuns() {
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	if cfg.DBPath == "" {
		fmt.Fprintln(os.Stderr, "runs requires CHUNK_DB (or db_path in config)")
		os.Exit(1)
	}
	store, err := chunkstore.Open(cfg.DBPath)
	if err != nil {
		fatal(err)
	}
	defer store.Close()

	runs, err := store.ListRuns(context.Background())
	if err != nil {
		fatal(err)
	}
	for _, r := range runs {
		fmt.Printf("%s  %s  chunks=%d  max=%d overlap=%d  %s\n",
			r.ID, r.CreatedAt.Format(time.RFC3339), r.ChunkCount,
			r.MaxTokens, r.OverlapTokens, r.SourceFile)
	}
}

func cmdFormats() {
	for _, f := range docpipe.SupportedFormats() {
		fmt.Println(f)
	}
}

func cmdServe() {
	logger := newLogger()
	cfg, err := loadConfig()
	if err != nil {
		fatal(err)
	}
	chunker, err := newChunker(cfg, logger)
	if err != nil {
		fatal(err)
	}
	conv := docpipe.New(docpipe.Config{Logger: logger})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Optional MCP over stdio.
	if env("MCP_TRANSPORT", "") == "stdio" {
		mcpSrv := mcp.NewServer(&mcp.Implementation{
			Name:    "docchunk",
			Version: "1.0.0",
		}, nil)
		chunker.RegisterMCP(mcpSrv)
		conv.RegisterMCP(mcpSrv, chunker)

		go func() {
			slog.Info("MCP stdio starting")
			if err := mcpSrv.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
				slog.Error("MCP stdio", "error", err)
			}
		}()
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	chunker.RegisterRoutes(r)
	conv.RegisterRoutes(r, chunker)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("server stopped")
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}

package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sanonone/kektorrag/internal/config"
	"github.com/sanonone/kektorrag/internal/server"
	"github.com/sanonone/kektorrag/pkg/embeddings"
	"github.com/sanonone/kektorrag/pkg/rag"
	"github.com/sanonone/kektorrag/pkg/text"
)

func main() {
	configPath := flag.String("config", "", "Path to an optional YAML configuration file")
	envFile := flag.String("env-file", ".env", "Path to an optional dotenv file (ignored if missing)")
	flag.Parse()

	// =========
	// Config
	// =========
	cfg, err := config.Load(*configPath, *envFile)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// =========
	// Logging
	// =========
	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}
	defer logger.Sync()

	if cfg.APIKey == "" {
		logger.Warn("OPENROUTER_API_KEY is not set; embedding requests will be rejected by the provider")
	}

	// =========
	// Chunking
	// =========
	counter, err := text.NewCounter(cfg.ChunkUnit, cfg.TokenEncoding)
	if err != nil {
		logger.Fatal("failed to initialize chunk counter", zap.Error(err))
	}

	// =========
	// Embedding Client
	// =========
	embedder := embeddings.NewOpenAIEmbedder(cfg.EmbeddingBaseURL, cfg.EmbeddingModel, cfg.APIKey, cfg.EmbeddingTimeout)

	pipeline, err := rag.NewPipeline(rag.Config{
		ChunkingStrategy: cfg.ChunkingStrategy,
		ChunkSize:        cfg.DefaultChunkSize,
		ChunkOverlap:     cfg.DefaultChunkOverlap,
		Counter:          counter,
	}, embedder, logger.Named("rag"))
	if err != nil {
		logger.Fatal("failed to create pipeline", zap.Error(err))
	}

	// =========
	// HTTP
	// =========
	srv, err := server.NewServer(cfg, pipeline, logger.Named("http"))
	if err != nil {
		logger.Fatal("failed to create server", zap.Error(err))
	}

	logger.Info("Starting service",
		zap.String("version", server.Version),
		zap.String("addr", cfg.Addr()),
		zap.String("embedding_model", cfg.EmbeddingModel),
		zap.String("chunking_strategy", cfg.ChunkingStrategy),
		zap.String("chunk_unit", cfg.ChunkUnit),
		zap.Int("default_chunk_size", cfg.DefaultChunkSize),
		zap.Int("default_chunk_overlap", cfg.DefaultChunkOverlap),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal("server stopped", zap.Error(err))
		}
	case <-ctx.Done():
		if err := srv.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	zcfg := zap.NewProductionConfig()
	if cfg.LogDevelopment {
		zcfg = zap.NewDevelopmentConfig()
	}
	zcfg.Level = zap.NewAtomicLevelAt(level)
	return zcfg.Build()
}

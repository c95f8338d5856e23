// tramites-api is the HTTP backend for municipal procedure inquiries. It
// serves RAG question answering over an ingested corpus of municipal PDF
// documents backed by Postgres with pgvector.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/munidigital/tramites-rag/internal/cache"
	"github.com/munidigital/tramites-rag/internal/chunker"
	"github.com/munidigital/tramites-rag/internal/config"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/ingest"
	"github.com/munidigital/tramites-rag/internal/llm"
	"github.com/munidigital/tramites-rag/internal/observability"
	"github.com/munidigital/tramites-rag/internal/rag"
	"github.com/munidigital/tramites-rag/internal/storage"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "tramites-api: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional; real deployments set environment variables directly.
	_ = godotenv.Load()

	configPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := observability.NewLogger(observability.LogConfig{
		Level:   cfg.Observability.LogLevel,
		Format:  cfg.Observability.LogFormat,
		Service: "tramites-api",
	})

	ctx := context.Background()

	db, err := storage.Open(ctx, storage.PostgresConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := storage.Migrate(ctx, db); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	logger.Info().Msg("database ready")

	var answerCache cache.Client
	switch cfg.Cache.Driver {
	case "redis":
		answerCache, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
	default:
		answerCache = cache.NewMemoryClient(cfg.Cache.MaxEntries)
	}
	defer answerCache.Close()

	embedder, err := embedding.NewClient(embedding.Config{
		APIKey:       cfg.Embedding.APIKey,
		Model:        cfg.Embedding.Model,
		BaseURL:      cfg.Embedding.BaseURL,
		Dimension:    cfg.Embedding.Dimension,
		RequestDelay: cfg.Embedding.RequestDelay,
		Timeout:      cfg.Embedding.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create embedding client: %w", err)
	}

	generator, err := llm.NewClient(llm.Config{
		APIKey:  cfg.Generation.APIKey,
		Model:   cfg.Generation.Model,
		BaseURL: cfg.Generation.BaseURL,
		Timeout: cfg.Generation.Timeout,
	})
	if err != nil {
		return fmt.Errorf("create generation client: %w", err)
	}

	docs := storage.NewDocumentRepository(db)
	chunks := storage.NewChunkRepository(db)

	pipeline := ingest.NewPipeline(docs, chunks, embedder, chunker.Options{
		MaxChunkSize: cfg.RAG.ChunkSize,
		Overlap:      cfg.RAG.ChunkOverlap,
	}, logger)

	service := rag.NewService(embedder, generator, chunks, answerCache, rag.Options{
		SimilarityThreshold: cfg.RAG.SimilarityThreshold,
		TopK:                cfg.RAG.TopK,
		CacheTTL:            cfg.Cache.TTL,
	}, logger)

	router := NewRouter(Deps{
		Query:     service,
		Pipeline:  pipeline,
		Documents: docs,
	}, RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		ExposeErrors:   cfg.Server.ExposeErrors,
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("starting HTTP server")
		serverErrors <- server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case sig := <-shutdown:
		logger.Info().Str("signal", sig.String()).Msg("shutdown started")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulShutdown)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info().Msg("shutdown complete")
	}

	return nil
}

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/cmd/tramites-api/handlers"
	"github.com/munidigital/tramites-rag/cmd/tramites-api/middleware"
)

// Deps carries the wired services the router exposes over HTTP.
type Deps struct {
	Query     handlers.Answerer
	Pipeline  handlers.Processor
	Documents handlers.StatsProvider
}

// RouterOptions carries HTTP-surface settings for the router.
type RouterOptions struct {
	AllowedOrigins []string
	ExposeErrors   bool
}

// NewRouter builds the HTTP routing tree with the standard middleware
// stack and the RAG API mounted under /api/rag.
func NewRouter(deps Deps, opts RouterOptions, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(opts.AllowedOrigins))
	r.Use(chimiddleware.Timeout(120 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok","service":"tramites-api","version":"0.1.0","timestamp":%q}`,
			time.Now().UTC().Format(time.RFC3339))
	})

	queryHandler := handlers.NewQueryHandler(deps.Query, opts.ExposeErrors, logger)
	ingestionHandler := handlers.NewIngestionHandler(deps.Pipeline, logger)
	statsHandler := handlers.NewStatsHandler(deps.Documents, opts.ExposeErrors, logger)

	r.Route("/api/rag", func(r chi.Router) {
		r.Post("/query", queryHandler.Query)
		r.Post("/process-pdf", ingestionHandler.ProcessPDF)
		r.Post("/process-batch", ingestionHandler.ProcessBatch)
		r.Get("/stats", statsHandler.Stats)
	})

	return r
}

// Package rag answers citizen questions about municipal procedures by
// retrieving relevant document chunks and generating a grounded answer.
package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/internal/cache"
	"github.com/munidigital/tramites-rag/internal/domain"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/llm"
	"github.com/munidigital/tramites-rag/internal/storage"
)

// Response is the answer to one question.
type Response struct {
	Answer       string   `json:"answer"`
	DocumentName string   `json:"document_name,omitempty"`
	DownloadURL  string   `json:"download_url,omitempty"`
	Sources      []string `json:"sources"`
}

// Searcher finds chunks similar to a query embedding.
type Searcher interface {
	SearchSimilar(ctx context.Context, embedding storage.Vector, threshold float64, limit int) ([]*storage.SimilarChunk, error)
}

// Options tune retrieval.
type Options struct {
	SimilarityThreshold float64
	TopK                int
	CacheTTL            time.Duration
}

// Service answers questions over the ingested corpus.
type Service struct {
	embedder  embedding.Embedder
	generator llm.Generator
	searcher  Searcher
	answers   cache.Client
	opts      Options
	logger    zerolog.Logger
}

// NewService creates a RAG service. The cache client may be nil to disable
// answer caching.
func NewService(embedder embedding.Embedder, generator llm.Generator, searcher Searcher, answers cache.Client, opts Options, logger zerolog.Logger) *Service {
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = 0.4
	}
	if opts.TopK <= 0 {
		opts.TopK = 5
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = 10 * time.Minute
	}

	return &Service{
		embedder:  embedder,
		generator: generator,
		searcher:  searcher,
		answers:   answers,
		opts:      opts,
		logger:    logger.With().Str("component", "rag").Logger(),
	}
}

// Query answers a user question. Meta questions about the assistant get
// canned answers without touching the corpus; everything else goes through
// embedding, similarity search and generation.
func (s *Service) Query(ctx context.Context, question string) (*Response, error) {
	if strings.TrimSpace(question) == "" {
		return nil, domain.ValidationError("query must not be empty", nil)
	}

	log := s.logger.With().Str("query", question).Logger()
	log.Info().Msg("processing query")

	if resp := cannedResponse(question); resp != nil {
		log.Info().Str("canned", resp.DocumentName).Msg("canned response matched")
		return resp, nil
	}

	cacheKey := cache.QueryCacheKey(question)
	if s.answers != nil {
		if data, err := s.answers.Get(ctx, cacheKey); err == nil {
			var resp Response
			if err := json.Unmarshal(data, &resp); err == nil {
				log.Info().Msg("answer served from cache")
				return &resp, nil
			}
		}
	}

	queryEmbedding, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	chunks, err := s.searcher.SearchSimilar(ctx, storage.Vector(queryEmbedding), s.opts.SimilarityThreshold, s.opts.TopK)
	if err != nil {
		return nil, fmt.Errorf("search similar chunks: %w", err)
	}

	if len(chunks) == 0 {
		log.Warn().Msg("no relevant chunks found")
		return &Response{Answer: noInformationAnswer, Sources: []string{}}, nil
	}

	log.Info().
		Int("chunks", len(chunks)).
		Str("top_document", chunks[0].Filename).
		Float64("top_similarity", chunks[0].Similarity).
		Msg("relevant chunks found")

	answer, err := s.generator.Generate(ctx, buildPrompt(question, buildContext(chunks)))
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	resp := &Response{
		Answer:       answer,
		DocumentName: chunks[0].Filename,
		Sources:      uniqueSources(chunks),
	}

	if s.answers != nil {
		if data, err := json.Marshal(resp); err == nil {
			if err := s.answers.Set(ctx, cacheKey, data, s.opts.CacheTTL); err != nil {
				log.Warn().Err(err).Msg("cache answer failed")
			}
		}
	}

	return resp, nil
}

// buildContext formats retrieved chunks for the prompt, tagging each with
// its source document.
func buildContext(chunks []*storage.SimilarChunk) string {
	parts := make([]string, len(chunks))
	for i, chunk := range chunks {
		parts[i] = fmt.Sprintf("[Fuente: %s]\n%s", chunk.Filename, chunk.ChunkText)
	}
	return strings.Join(parts, "\n\n---\n\n")
}

func buildPrompt(question, context string) string {
	return strings.TrimSpace(fmt.Sprintf(`
Eres un asistente virtual experto en trámites de la Municipalidad de Carabayllo.
Tu objetivo es ayudar a los ciudadanos a entender los procedimientos y requisitos para realizar trámites municipales.

IMPORTANTE: SOLO puedes responder preguntas relacionadas con trámites municipales, licencias, permisos, ordenanzas y procedimientos del municipio.

Analiza la pregunta del usuario:
1. Si la pregunta NO está relacionada con trámites municipales (por ejemplo: matemáticas, recetas de cocina, deportes, entretenimiento, etc.), responde:
   "<p>Lo siento, solo puedo ayudarte con consultas relacionadas a <strong>trámites municipales</strong>. Por favor, pregúntame sobre licencias, permisos, requisitos o procedimientos del municipio.</p>"

2. Si la pregunta SÍ está relacionada con trámites municipales, responde basándote ÚNICAMENTE en el contexto proporcionado.

INSTRUCCIONES PARA RESPUESTAS VÁLIDAS:
- Usa un lenguaje claro y amigable
- Estructura la respuesta con HTML simple (párrafos <p>, listas <ul>, <ol>, negrita <strong>)
- Si la información no está en el contexto, indica claramente que no tienes esa información
- Menciona los documentos fuente cuando sea relevante
- Si hay pasos o requisitos, preséntalos en una lista ordenada

CONTEXTO DE DOCUMENTOS MUNICIPALES:
%s

PREGUNTA DEL USUARIO: %s

RESPUESTA:
`, context, question))
}

// uniqueSources lists each source document once, in retrieval order.
func uniqueSources(chunks []*storage.SimilarChunk) []string {
	seen := make(map[string]bool)
	sources := []string{}
	for _, chunk := range chunks {
		if chunk.Filename == "" || seen[chunk.Filename] {
			continue
		}
		seen[chunk.Filename] = true
		sources = append(sources, chunk.Filename)
	}
	return sources
}

package rag

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramites-rag/internal/cache"
	"github.com/munidigital/tramites-rag/internal/domain"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/llm"
	"github.com/munidigital/tramites-rag/internal/observability"
	"github.com/munidigital/tramites-rag/internal/storage"
)

type stubSearcher struct {
	chunks []*storage.SimilarChunk
	err    error
	calls  int
}

func (s *stubSearcher) SearchSimilar(_ context.Context, _ storage.Vector, _ float64, _ int) ([]*storage.SimilarChunk, error) {
	s.calls++
	return s.chunks, s.err
}

func newTestService(searcher *stubSearcher, gen *llm.MockGenerator, answers cache.Client) *Service {
	logger := observability.NewLogger(observability.LogConfig{Level: "error", Service: "test"})
	return NewService(embedding.NewMockClient(8), gen, searcher, answers, Options{
		SimilarityThreshold: 0.4,
		TopK:                5,
		CacheTTL:            time.Minute,
	}, logger)
}

func TestQueryEmptyQuestion(t *testing.T) {
	svc := newTestService(&stubSearcher{}, &llm.MockGenerator{}, nil)

	_, err := svc.Query(context.Background(), "   ")
	require.Error(t, err)
	assert.Equal(t, domain.KindValidation, domain.Kind(err))
}

func TestQueryCannedResponses(t *testing.T) {
	tests := []struct {
		question string
		document string
	}{
		{"ayuda", "Sistema de Ayuda"},
		{"¿Qué puedes hacer?", "Sistema de Ayuda"},
		{"muéstrame las preguntas frecuentes", "Preguntas Frecuentes"},
		{"¿cómo preguntar mejor?", "Guía de Uso del RAG"},
		{"temas disponibles", "Catálogo de Temas"},
	}

	searcher := &stubSearcher{}
	svc := newTestService(searcher, &llm.MockGenerator{}, nil)

	for _, tt := range tests {
		t.Run(tt.question, func(t *testing.T) {
			resp, err := svc.Query(context.Background(), tt.question)
			require.NoError(t, err)
			assert.Equal(t, tt.document, resp.DocumentName)
			assert.NotEmpty(t, resp.Answer)
			assert.Empty(t, resp.Sources)
		})
	}

	// Canned answers never hit retrieval.
	assert.Zero(t, searcher.calls)
}

func TestQueryCannedPrecedence(t *testing.T) {
	// Help keywords are checked first, so a question matching both help
	// and FAQ rules resolves to the help message.
	svc := newTestService(&stubSearcher{}, &llm.MockGenerator{}, nil)

	resp, err := svc.Query(context.Background(), "ayuda con preguntas frecuentes")
	require.NoError(t, err)
	assert.Equal(t, "Sistema de Ayuda", resp.DocumentName)
}

func TestQueryNoChunksFound(t *testing.T) {
	gen := &llm.MockGenerator{Response: "should not be called"}
	svc := newTestService(&stubSearcher{chunks: nil}, gen, nil)

	resp, err := svc.Query(context.Background(), "¿Cómo registro mi mascota?")
	require.NoError(t, err)
	assert.Contains(t, resp.Answer, "no encontré información")
	assert.Empty(t, resp.DocumentName)
	assert.Empty(t, resp.Sources)
	assert.Empty(t, gen.Prompts)
}

func TestQueryGeneratesGroundedAnswer(t *testing.T) {
	searcher := &stubSearcher{chunks: []*storage.SimilarChunk{
		{Filename: "Formato_Licencia_Bodega.pdf", ChunkText: "Requisitos: DNI y recibo.", Similarity: 0.82},
		{Filename: "Ley_27972.pdf", ChunkText: "Las municipalidades otorgan licencias.", Similarity: 0.61},
		{Filename: "Formato_Licencia_Bodega.pdf", ChunkText: "El plazo es de 15 días.", Similarity: 0.55},
	}}
	gen := &llm.MockGenerator{Response: "<p>Necesitas DNI y recibo.</p>"}
	svc := newTestService(searcher, gen, nil)

	resp, err := svc.Query(context.Background(), "¿Qué requisitos pide una bodega?")
	require.NoError(t, err)

	assert.Equal(t, "<p>Necesitas DNI y recibo.</p>", resp.Answer)
	assert.Equal(t, "Formato_Licencia_Bodega.pdf", resp.DocumentName)
	assert.Equal(t, []string{"Formato_Licencia_Bodega.pdf", "Ley_27972.pdf"}, resp.Sources)

	// The prompt carries every chunk tagged with its source.
	require.Len(t, gen.Prompts, 1)
	prompt := gen.Prompts[0]
	assert.Contains(t, prompt, "[Fuente: Formato_Licencia_Bodega.pdf]")
	assert.Contains(t, prompt, "Requisitos: DNI y recibo.")
	assert.Contains(t, prompt, "---")
	assert.Contains(t, prompt, "¿Qué requisitos pide una bodega?")
}

func TestQuerySearchError(t *testing.T) {
	searcher := &stubSearcher{err: errors.New("db down")}
	svc := newTestService(searcher, &llm.MockGenerator{}, nil)

	_, err := svc.Query(context.Background(), "¿Cómo saco una licencia?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "search similar chunks")
}

func TestQueryGenerationError(t *testing.T) {
	searcher := &stubSearcher{chunks: []*storage.SimilarChunk{
		{Filename: "doc.pdf", ChunkText: "texto", Similarity: 0.5},
	}}
	gen := &llm.MockGenerator{Err: domain.GenerationError("model unavailable", nil)}
	svc := newTestService(searcher, gen, nil)

	_, err := svc.Query(context.Background(), "¿Cómo saco una licencia?")
	require.Error(t, err)
	assert.Equal(t, domain.KindGeneration, domain.Kind(err))
}

func TestQueryAnswerCaching(t *testing.T) {
	searcher := &stubSearcher{chunks: []*storage.SimilarChunk{
		{Filename: "doc.pdf", ChunkText: "texto", Similarity: 0.5},
	}}
	gen := &llm.MockGenerator{Response: "<p>Respuesta</p>"}
	answers := cache.NewMemoryClient(10)
	defer answers.Close()
	svc := newTestService(searcher, gen, answers)

	first, err := svc.Query(context.Background(), "¿Cómo saco una licencia?")
	require.NoError(t, err)

	// Second call is served from cache: no new search, no new generation.
	second, err := svc.Query(context.Background(), "¿cómo saco una licencia?")
	require.NoError(t, err)
	assert.Equal(t, first.Answer, second.Answer)
	assert.Equal(t, 1, searcher.calls)
	assert.Len(t, gen.Prompts, 1)
}

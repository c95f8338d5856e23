package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramites-rag/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: srv.URL})
	require.NoError(t, err)
	return client
}

func TestGenerate(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.Contains(r.URL.Path, "gemini-1.5-flash:generateContent"))

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "¿Qué requisitos pide una bodega?", req.Contents[0].Parts[0].Text)

		json.NewEncoder(w).Encode(map[string]any{
			"candidates": []map[string]any{
				{"content": map[string]any{"parts": []map[string]any{{"text": "<p>Respuesta</p>"}}}},
			},
		})
	})

	answer, err := client.Generate(context.Background(), "¿Qué requisitos pide una bodega?")
	require.NoError(t, err)
	assert.Equal(t, "<p>Respuesta</p>", answer)
}

func TestGenerateAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "invalid argument", "status": "INVALID_ARGUMENT"},
		})
	})

	_, err := client.Generate(context.Background(), "hola")
	require.Error(t, err)
	assert.Equal(t, domain.KindGeneration, domain.Kind(err))
}

func TestGenerateEmptyCandidates(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"candidates": []any{}})
	})

	_, err := client.Generate(context.Background(), "hola")
	require.Error(t, err)
	assert.Equal(t, domain.KindGeneration, domain.Kind(err))
}

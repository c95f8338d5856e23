package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramites-rag/internal/domain"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		APIKey:       "test-key",
		BaseURL:      srv.URL,
		Dimension:    4,
		RequestDelay: time.Millisecond,
	})
	require.NoError(t, err)
	return srv, client
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestEmbedDocumentSendsTaskType(t *testing.T) {
	var gotTask string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotTask = req.TaskType
		assert.Equal(t, "hola", req.Content.Parts[0].Text)

		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{0.1, 0.2, 0.3, 0.4}},
		})
	})

	emb, err := client.EmbedDocument(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3, 0.4}, emb)
	assert.Equal(t, "RETRIEVAL_DOCUMENT", gotTask)

	_, err = client.EmbedQuery(context.Background(), "hola")
	require.NoError(t, err)
	assert.Equal(t, "RETRIEVAL_QUERY", gotTask)
}

func TestEmbedDocumentsSequential(t *testing.T) {
	var calls int
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{float32(calls), 0, 0, 0}},
		})
	})

	embs, err := client.EmbedDocuments(context.Background(), []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Len(t, embs, 3)
	assert.Equal(t, 3, calls)
	assert.Equal(t, float32(1), embs[0][0])
	assert.Equal(t, float32(3), embs[2][0])
}

func TestEmbedAPIError(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 429, "message": "quota exceeded", "status": "RESOURCE_EXHAUSTED"},
		})
	})

	_, err := client.EmbedDocument(context.Background(), "hola")
	require.Error(t, err)
	assert.Equal(t, domain.KindEmbedding, domain.Kind(err))
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestEmbedDocumentsCancellation(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"embedding": map[string]any{"values": []float32{1, 0, 0, 0}},
		})
	})
	client.requestDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := client.EmbedDocuments(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMockClientDeterministic(t *testing.T) {
	mock := NewMockClient(8)

	a, err := mock.EmbedDocument(context.Background(), "licencia")
	require.NoError(t, err)
	b, err := mock.EmbedDocument(context.Background(), "licencia")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 8)

	c, err := mock.EmbedDocument(context.Background(), "ordenanza")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

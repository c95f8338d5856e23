package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/munidigital/tramites-rag/internal/chunker"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/extract"
	"github.com/munidigital/tramites-rag/internal/observability"
	"github.com/munidigital/tramites-rag/internal/storage"
)

func testPipeline() *Pipeline {
	logger := observability.NewLogger(observability.LogConfig{Level: "error", Service: "test"})
	return NewPipeline(nil, nil, embedding.NewMockClient(8), chunker.DefaultOptions(), logger)
}

// memDocStore keeps documents in memory keyed by content hash.
type memDocStore struct {
	byHash  map[string]*storage.Document
	creates int
}

func newMemDocStore() *memDocStore {
	return &memDocStore{byHash: make(map[string]*storage.Document)}
}

func (s *memDocStore) Create(_ context.Context, doc *storage.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	s.byHash[doc.FileHash] = doc
	s.creates++
	return nil
}

func (s *memDocStore) GetByHash(_ context.Context, fileHash string) (*storage.Document, error) {
	doc, ok := s.byHash[fileHash]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

func (s *memDocStore) MarkProcessed(_ context.Context, id uuid.UUID) error {
	for _, doc := range s.byHash {
		if doc.ID == id {
			doc.Processed = true
			return nil
		}
	}
	return storage.ErrNotFound
}

type memChunkStore struct {
	batches [][]*storage.DocumentChunk
}

func (s *memChunkStore) CreateBatch(_ context.Context, chunks []*storage.DocumentChunk) error {
	s.batches = append(s.batches, chunks)
	return nil
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	content := []byte("contenido del documento")
	require.NoError(t, os.WriteFile(path, content, 0o644))

	hash, size, err := hashFile(path)
	require.NoError(t, err)

	expected := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(expected[:]), hash)
	assert.Equal(t, int64(len(content)), size)
}

func TestHashFileMissing(t *testing.T) {
	_, _, err := hashFile("/nonexistent/file.pdf")
	assert.Error(t, err)
}

func TestProcessPDFExtractionFailure(t *testing.T) {
	p := testPipeline()

	path := filepath.Join(t.TempDir(), "broken.pdf")
	require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))

	status := p.ProcessPDF(context.Background(), path, "broken.pdf", "")
	assert.Equal(t, storage.ProcessingStateError, status.State)
	assert.Equal(t, "broken.pdf", status.Filename)
	assert.Contains(t, status.ErrorMessage, "extract text")
	assert.Zero(t, status.ChunksCreated)
}

func TestProcessPDFCompletesAndStoresChunks(t *testing.T) {
	docs := newMemDocStore()
	chunks := &memChunkStore{}
	logger := observability.NewLogger(observability.LogConfig{Level: "error", Service: "test"})
	p := NewPipeline(docs, chunks, embedding.NewMockClient(8), chunker.DefaultOptions(), logger)
	p.extractFn = func(string) (*extract.Result, error) {
		return &extract.Result{Text: "Requisitos para obtener la licencia de funcionamiento.", NumPages: 2}, nil
	}

	path := filepath.Join(t.TempDir(), "guia_licencia.pdf")
	require.NoError(t, os.WriteFile(path, []byte("pdf bytes"), 0o644))

	status := p.ProcessPDF(context.Background(), path, "guia_licencia.pdf", "")
	require.Equal(t, storage.ProcessingStateCompleted, status.State)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, 1, status.ChunksCreated)
	assert.NotEmpty(t, status.DocumentID)

	require.Equal(t, 1, docs.creates)
	doc := docs.byHash[mustHash(t, path)]
	require.NotNil(t, doc)
	assert.True(t, doc.Processed)
	assert.Equal(t, "guia", doc.DocumentType)
	assert.Equal(t, "informacion", doc.Category)

	require.Len(t, chunks.batches, 1)
	require.Len(t, chunks.batches[0], 1)
	assert.Equal(t, doc.ID, chunks.batches[0][0].DocumentID)
	assert.Equal(t, 0, chunks.batches[0][0].ChunkIndex)
}

func TestProcessPDFSameContentTwiceCreatesOneDocument(t *testing.T) {
	docs := newMemDocStore()
	chunks := &memChunkStore{}
	logger := observability.NewLogger(observability.LogConfig{Level: "error", Service: "test"})
	p := NewPipeline(docs, chunks, embedding.NewMockClient(8), chunker.DefaultOptions(), logger)
	p.extractFn = func(string) (*extract.Result, error) {
		return &extract.Result{Text: "Guía de trámites municipales.", NumPages: 1}, nil
	}

	path := filepath.Join(t.TempDir(), "guia.pdf")
	require.NoError(t, os.WriteFile(path, []byte("same bytes"), 0o644))

	first := p.ProcessPDF(context.Background(), path, "guia.pdf", "")
	second := p.ProcessPDF(context.Background(), path, "guia.pdf", "")

	assert.Equal(t, storage.ProcessingStateCompleted, first.State)
	assert.Equal(t, storage.ProcessingStateCompleted, second.State)
	assert.Equal(t, 100, second.Progress)
	assert.Equal(t, first.DocumentID, second.DocumentID)

	// The second run short-circuits on the content hash: no new document,
	// no new chunks, no embedding calls.
	assert.Equal(t, 1, docs.creates)
	assert.Len(t, chunks.batches, 1)
	assert.Zero(t, second.ChunksCreated)
}

func mustHash(t *testing.T, path string) string {
	t.Helper()
	hash, _, err := hashFile(path)
	require.NoError(t, err)
	return hash
}

func TestProcessBatchCountsFailures(t *testing.T) {
	p := testPipeline()

	dir := t.TempDir()
	paths := []string{
		filepath.Join(dir, "a.pdf"),
		filepath.Join(dir, "b.pdf"),
	}
	for _, path := range paths {
		require.NoError(t, os.WriteFile(path, []byte("not a pdf"), 0o644))
	}

	result := p.ProcessBatch(context.Background(), paths, "normativa")
	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Results, 2)
	assert.Equal(t, "a.pdf", result.Results[0].Filename)
}

// Package ingest implements the PDF ingestion pipeline: extraction, type
// detection, chunking, embedding and persistence.
package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/internal/chunker"
	"github.com/munidigital/tramites-rag/internal/detect"
	"github.com/munidigital/tramites-rag/internal/embedding"
	"github.com/munidigital/tramites-rag/internal/extract"
	"github.com/munidigital/tramites-rag/internal/storage"
)

// Status reports ingestion progress for one file. ProcessPDF never returns
// an error: failures are folded into the status so batch processing can
// continue past a bad file.
type Status struct {
	DocumentID    string                  `json:"document_id"`
	Filename      string                  `json:"filename"`
	State         storage.ProcessingState `json:"status"`
	Progress      int                     `json:"progress"`
	ChunksCreated int                     `json:"chunks_created,omitempty"`
	ErrorMessage  string                  `json:"error_message,omitempty"`
}

// BatchResult aggregates the statuses of a batch run.
type BatchResult struct {
	Results    []*Status `json:"results"`
	Total      int       `json:"total"`
	Successful int       `json:"successful"`
	Failed     int       `json:"failed"`
}

// DocumentStore is the document persistence surface the pipeline needs.
type DocumentStore interface {
	Create(ctx context.Context, doc *storage.Document) error
	GetByHash(ctx context.Context, fileHash string) (*storage.Document, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) error
}

// ChunkStore is the chunk persistence surface the pipeline needs.
type ChunkStore interface {
	CreateBatch(ctx context.Context, chunks []*storage.DocumentChunk) error
}

// Pipeline orchestrates document ingestion.
type Pipeline struct {
	docs      DocumentStore
	chunks    ChunkStore
	embedder  embedding.Embedder
	opts      chunker.Options
	logger    zerolog.Logger
	extractFn func(path string) (*extract.Result, error)
}

// NewPipeline creates an ingestion pipeline.
func NewPipeline(docs DocumentStore, chunks ChunkStore, embedder embedding.Embedder, opts chunker.Options, logger zerolog.Logger) *Pipeline {
	return &Pipeline{
		docs:      docs,
		chunks:    chunks,
		embedder:  embedder,
		opts:      opts,
		logger:    logger.With().Str("component", "ingest").Logger(),
		extractFn: extract.PDF,
	}
}

// ProcessPDF ingests a single PDF. Files already ingested (by content hash)
// short-circuit to a completed status without reprocessing.
func (p *Pipeline) ProcessPDF(ctx context.Context, filePath, filename, category string) *Status {
	status := &Status{
		Filename: filename,
		State:    storage.ProcessingStateProcessing,
	}

	log := p.logger.With().Str("filename", filename).Logger()
	log.Info().Msg("processing pdf")

	result, err := p.extractFn(filePath)
	if err != nil {
		return status.fail(log, "extract text", err)
	}
	status.Progress = 20

	detection := detect.Detect(filename, result.Text)
	log.Info().
		Str("document_type", detection.Type).
		Str("category", detection.Category).
		Int("pages", result.NumPages).
		Msg("document type detected")

	fileHash, fileSize, err := hashFile(filePath)
	if err != nil {
		return status.fail(log, "hash file", err)
	}
	status.Progress = 30

	existing, err := p.docs.GetByHash(ctx, fileHash)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return status.fail(log, "check existing document", err)
	}
	if existing != nil {
		log.Info().Str("document_id", existing.ID.String()).Msg("document already ingested")
		status.DocumentID = existing.ID.String()
		status.State = storage.ProcessingStateCompleted
		status.Progress = 100
		return status
	}

	if category == "" {
		category = detection.Category
	}

	metadata, err := json.Marshal(detection.Metadata)
	if err != nil {
		return status.fail(log, "marshal metadata", err)
	}

	doc := &storage.Document{
		Filename:     filename,
		OriginalPath: filePath,
		FileHash:     fileHash,
		FileSize:     fileSize,
		TotalPages:   result.NumPages,
		DocumentType: detection.Type,
		Category:     category,
		Metadata:     metadata,
	}
	if err := p.docs.Create(ctx, doc); err != nil {
		return status.fail(log, "insert document", err)
	}
	status.DocumentID = doc.ID.String()
	status.Progress = 40

	texts := chunker.Chunk(result.Text, detection.Type, result.NumPages, p.opts)
	log.Info().Int("chunks", len(texts)).Msg("text chunked")
	status.Progress = 50

	embeddings, err := p.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return status.fail(log, "generate embeddings", err)
	}
	status.Progress = 80

	chunkMeta, _ := json.Marshal(map[string]string{"source": filename})
	chunks := make([]*storage.DocumentChunk, len(texts))
	for i, text := range texts {
		chunks[i] = &storage.DocumentChunk{
			DocumentID: doc.ID,
			ChunkIndex: i,
			ChunkText:  text,
			Embedding:  storage.Vector(embeddings[i]),
			Metadata:   chunkMeta,
		}
	}
	if err := p.chunks.CreateBatch(ctx, chunks); err != nil {
		return status.fail(log, "insert chunks", err)
	}

	if err := p.docs.MarkProcessed(ctx, doc.ID); err != nil {
		return status.fail(log, "mark processed", err)
	}

	status.State = storage.ProcessingStateCompleted
	status.Progress = 100
	status.ChunksCreated = len(chunks)
	log.Info().Int("chunks", len(chunks)).Msg("pdf processed")
	return status
}

// ProcessBatch ingests several PDFs sequentially. One bad file does not
// stop the rest.
func (p *Pipeline) ProcessBatch(ctx context.Context, filePaths []string, category string) *BatchResult {
	result := &BatchResult{Total: len(filePaths)}

	for _, path := range filePaths {
		status := p.ProcessPDF(ctx, path, filepath.Base(path), category)
		result.Results = append(result.Results, status)
		if status.State == storage.ProcessingStateCompleted {
			result.Successful++
		} else {
			result.Failed++
		}
	}

	return result
}

func (s *Status) fail(log zerolog.Logger, stage string, err error) *Status {
	log.Error().Err(err).Str("stage", stage).Msg("ingestion failed")
	s.State = storage.ProcessingStateError
	s.ErrorMessage = fmt.Sprintf("%s: %v", stage, err)
	return s
}

// hashFile computes the SHA-256 of a file's contents.
func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}

	return hex.EncodeToString(h.Sum(nil)), size, nil
}

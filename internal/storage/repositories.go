package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var ErrNotFound = errors.New("record not found")

// DB represents a database connection interface.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// DocumentRepository handles document CRUD operations.
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a new document repository.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create inserts a new document record.
func (r *DocumentRepository) Create(ctx context.Context, doc *Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if len(doc.Metadata) == 0 {
		doc.Metadata = []byte("{}")
	}
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = time.Now()

	query := `
		INSERT INTO documents (id, filename, original_path, file_hash, file_size,
			total_pages, document_type, category, metadata, processed, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := r.db.ExecContext(ctx, query,
		doc.ID, doc.Filename, doc.OriginalPath, doc.FileHash, doc.FileSize,
		doc.TotalPages, doc.DocumentType, doc.Category, doc.Metadata, doc.Processed,
		doc.CreatedAt, doc.UpdatedAt,
	)
	return err
}

// GetByHash retrieves a document by its content hash.
func (r *DocumentRepository) GetByHash(ctx context.Context, fileHash string) (*Document, error) {
	query := `
		SELECT id, filename, original_path, file_hash, file_size, total_pages,
			document_type, category, metadata, processed, created_at, updated_at
		FROM documents WHERE file_hash = $1
	`
	doc := &Document{}
	err := r.db.QueryRowContext(ctx, query, fileHash).Scan(
		&doc.ID, &doc.Filename, &doc.OriginalPath, &doc.FileHash, &doc.FileSize,
		&doc.TotalPages, &doc.DocumentType, &doc.Category, &doc.Metadata, &doc.Processed,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// GetByID retrieves a document by ID.
func (r *DocumentRepository) GetByID(ctx context.Context, id uuid.UUID) (*Document, error) {
	query := `
		SELECT id, filename, original_path, file_hash, file_size, total_pages,
			document_type, category, metadata, processed, created_at, updated_at
		FROM documents WHERE id = $1
	`
	doc := &Document{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID, &doc.Filename, &doc.OriginalPath, &doc.FileHash, &doc.FileSize,
		&doc.TotalPages, &doc.DocumentType, &doc.Category, &doc.Metadata, &doc.Processed,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return doc, err
}

// MarkProcessed flags a document as fully ingested.
func (r *DocumentRepository) MarkProcessed(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE documents SET processed = TRUE, updated_at = $2 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, time.Now())
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document; its chunks cascade.
func (r *DocumentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAll removes every document and, via cascade, every chunk.
func (r *DocumentRepository) DeleteAll(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM documents`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

// Stats aggregates corpus counts grouped by category and document type.
func (r *DocumentRepository) Stats(ctx context.Context) (*DocumentStats, error) {
	stats := &DocumentStats{
		Categories:    make(map[string]int),
		DocumentTypes: make(map[string]int),
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(total_pages), 0),
			(SELECT COUNT(*) FROM document_chunks)
		FROM documents
	`
	err := r.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalDocuments, &stats.TotalPages, &stats.TotalChunks,
	)
	if err != nil {
		return nil, fmt.Errorf("count documents: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT category, COUNT(*) FROM documents GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("count categories: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, err
		}
		stats.Categories[category] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	typeRows, err := r.db.QueryContext(ctx, `SELECT document_type, COUNT(*) FROM documents GROUP BY document_type`)
	if err != nil {
		return nil, fmt.Errorf("count document types: %w", err)
	}
	defer typeRows.Close()
	for typeRows.Next() {
		var docType string
		var count int
		if err := typeRows.Scan(&docType, &count); err != nil {
			return nil, err
		}
		stats.DocumentTypes[docType] = count
	}
	return stats, typeRows.Err()
}

// ChunkRepository handles chunk persistence and similarity search.
type ChunkRepository struct {
	db DB
}

// NewChunkRepository creates a new chunk repository.
func NewChunkRepository(db DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateBatch inserts chunks one by one. Callers wanting atomicity should
// pass a transaction as the repository's DB.
func (r *ChunkRepository) CreateBatch(ctx context.Context, chunks []*DocumentChunk) error {
	query := `
		INSERT INTO document_chunks (id, document_id, chunk_index, chunk_text, embedding, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5::vector, $6, $7)
	`
	for _, chunk := range chunks {
		if chunk.ID == uuid.Nil {
			chunk.ID = uuid.New()
		}
		if len(chunk.Metadata) == 0 {
			chunk.Metadata = []byte("{}")
		}
		chunk.CreatedAt = time.Now()

		_, err := r.db.ExecContext(ctx, query,
			chunk.ID, chunk.DocumentID, chunk.ChunkIndex, chunk.ChunkText,
			chunk.Embedding, chunk.Metadata, chunk.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert chunk %d: %w", chunk.ChunkIndex, err)
		}
	}
	return nil
}

// DeleteByDocument removes all chunks of a document.
func (r *ChunkRepository) DeleteByDocument(ctx context.Context, documentID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM document_chunks WHERE document_id = $1`, documentID)
	return err
}

// Count returns the total number of stored chunks.
func (r *ChunkRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM document_chunks`).Scan(&count)
	return count, err
}

// SearchSimilar returns the chunks most similar to the query embedding,
// filtered by a minimum cosine similarity and ordered best first.
func (r *ChunkRepository) SearchSimilar(ctx context.Context, embedding Vector, threshold float64, limit int) ([]*SimilarChunk, error) {
	query := `
		SELECT c.id, c.document_id, d.filename, c.chunk_text,
			1 - (c.embedding <=> $1::vector) AS similarity
		FROM document_chunks c
		JOIN documents d ON d.id = c.document_id
		WHERE 1 - (c.embedding <=> $1::vector) >= $2
		ORDER BY c.embedding <=> $1::vector
		LIMIT $3
	`
	rows, err := r.db.QueryContext(ctx, query, embedding, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("similarity search: %w", err)
	}
	defer rows.Close()

	var chunks []*SimilarChunk
	for rows.Next() {
		chunk := &SimilarChunk{}
		if err := rows.Scan(&chunk.ChunkID, &chunk.DocumentID, &chunk.Filename, &chunk.ChunkText, &chunk.Similarity); err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}
	return chunks, rows.Err()
}

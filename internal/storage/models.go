// Package storage provides database models and repositories for the
// tramites backend.
package storage

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// ProcessingState represents the lifecycle of a document ingestion.
type ProcessingState string

const (
	ProcessingStatePending    ProcessingState = "pending"
	ProcessingStateProcessing ProcessingState = "processing"
	ProcessingStateCompleted  ProcessingState = "completed"
	ProcessingStateError      ProcessingState = "error"
)

// Document represents an ingested PDF document.
type Document struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	Filename     string          `json:"filename" db:"filename"`
	OriginalPath string          `json:"original_path" db:"original_path"`
	FileHash     string          `json:"file_hash" db:"file_hash"`
	FileSize     int64           `json:"file_size" db:"file_size"`
	TotalPages   int             `json:"total_pages" db:"total_pages"`
	DocumentType string          `json:"document_type" db:"document_type"`
	Category     string          `json:"category" db:"category"`
	Metadata     json.RawMessage `json:"metadata" db:"metadata"`
	Processed    bool            `json:"processed" db:"processed"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// DocumentChunk represents one embedded slice of a document.
type DocumentChunk struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	DocumentID uuid.UUID       `json:"document_id" db:"document_id"`
	ChunkIndex int             `json:"chunk_index" db:"chunk_index"`
	ChunkText  string          `json:"chunk_text" db:"chunk_text"`
	Embedding  Vector          `json:"-" db:"embedding"`
	Metadata   json.RawMessage `json:"metadata" db:"metadata"`
	CreatedAt  time.Time       `json:"created_at" db:"created_at"`
}

// SimilarChunk is a chunk returned by similarity search, joined with its
// source document.
type SimilarChunk struct {
	ChunkID    uuid.UUID `json:"chunk_id"`
	DocumentID uuid.UUID `json:"document_id"`
	Filename   string    `json:"filename"`
	ChunkText  string    `json:"chunk_text"`
	Similarity float64   `json:"similarity"`
}

// DocumentStats aggregates corpus counts for the stats endpoint.
type DocumentStats struct {
	TotalDocuments int            `json:"total_documents"`
	TotalChunks    int            `json:"total_chunks"`
	TotalPages     int            `json:"total_pages"`
	Categories     map[string]int `json:"categories"`
	DocumentTypes  map[string]int `json:"document_types"`
}

package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/internal/ingest"
)

// Processor is the ingestion surface the handler needs from the pipeline.
type Processor interface {
	ProcessPDF(ctx context.Context, filePath, filename, category string) *ingest.Status
	ProcessBatch(ctx context.Context, filePaths []string, category string) *ingest.BatchResult
}

// IngestionHandler serves document ingestion requests.
type IngestionHandler struct {
	pipeline Processor
	logger   zerolog.Logger
}

func NewIngestionHandler(pipeline Processor, logger zerolog.Logger) *IngestionHandler {
	return &IngestionHandler{
		pipeline: pipeline,
		logger:   logger.With().Str("handler", "ingestion").Logger(),
	}
}

type processPDFRequest struct {
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
	Category string `json:"category,omitempty"`
}

type processBatchRequest struct {
	FilePaths []string `json:"file_paths"`
	Category  string   `json:"category,omitempty"`
}

// ProcessPDF handles POST /api/rag/process-pdf.
func (h *IngestionHandler) ProcessPDF(w http.ResponseWriter, r *http.Request) {
	var req processPDFRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Cuerpo de la petición inválido", err.Error())
		return
	}
	if strings.TrimSpace(req.FilePath) == "" || strings.TrimSpace(req.Filename) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "file_path y filename son obligatorios", "")
		return
	}

	status := h.pipeline.ProcessPDF(r.Context(), req.FilePath, req.Filename, req.Category)
	writeJSON(w, h.logger, http.StatusOK, status)
}

// ProcessBatch handles POST /api/rag/process-batch.
func (h *IngestionHandler) ProcessBatch(w http.ResponseWriter, r *http.Request) {
	var req processBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Cuerpo de la petición inválido", err.Error())
		return
	}
	if len(req.FilePaths) == 0 {
		writeError(w, h.logger, http.StatusBadRequest, "file_paths no puede estar vacío", "")
		return
	}

	result := h.pipeline.ProcessBatch(r.Context(), req.FilePaths, req.Category)
	writeJSON(w, h.logger, http.StatusOK, result)
}

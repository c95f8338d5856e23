package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/internal/domain"
	"github.com/munidigital/tramites-rag/internal/rag"
)

// Answerer is the query surface the handler needs from the RAG service.
type Answerer interface {
	Query(ctx context.Context, question string) (*rag.Response, error)
}

// QueryHandler serves question answering requests.
type QueryHandler struct {
	service      Answerer
	logger       zerolog.Logger
	exposeErrors bool
}

func NewQueryHandler(service Answerer, exposeErrors bool, logger zerolog.Logger) *QueryHandler {
	return &QueryHandler{
		service:      service,
		logger:       logger.With().Str("handler", "query").Logger(),
		exposeErrors: exposeErrors,
	}
}

type queryRequest struct {
	Query string `json:"query"`
}

type queryResponse struct {
	Answer       string   `json:"answer"`
	DocumentName string   `json:"document_name,omitempty"`
	DownloadURL  string   `json:"download_url,omitempty"`
	Sources      []string `json:"sources"`
}

// Query handles POST /api/rag/query.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Cuerpo de la petición inválido", err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, h.logger, http.StatusBadRequest, "La consulta no puede estar vacía", "")
		return
	}

	resp, err := h.service.Query(r.Context(), req.Query)
	if err != nil {
		if domain.Kind(err) == domain.KindValidation {
			writeError(w, h.logger, http.StatusBadRequest, "La consulta no puede estar vacía", err.Error())
			return
		}
		h.logger.Error().Err(err).Msg("query failed")
		writeError(w, h.logger, http.StatusInternalServerError, "Error al procesar la consulta", internalDetail(err, h.exposeErrors))
		return
	}

	sources := resp.Sources
	if sources == nil {
		sources = []string{}
	}
	writeJSON(w, h.logger, http.StatusOK, queryResponse{
		Answer:       resp.Answer,
		DocumentName: resp.DocumentName,
		DownloadURL:  resp.DownloadURL,
		Sources:      sources,
	})
}

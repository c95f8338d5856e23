package handlers

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/munidigital/tramites-rag/internal/storage"
)

// StatsProvider reports aggregate figures over the document store.
type StatsProvider interface {
	Stats(ctx context.Context) (*storage.DocumentStats, error)
}

// StatsHandler serves corpus statistics.
type StatsHandler struct {
	docs         StatsProvider
	logger       zerolog.Logger
	exposeErrors bool
}

func NewStatsHandler(docs StatsProvider, exposeErrors bool, logger zerolog.Logger) *StatsHandler {
	return &StatsHandler{
		docs:         docs,
		logger:       logger.With().Str("handler", "stats").Logger(),
		exposeErrors: exposeErrors,
	}
}

// Stats handles GET /api/rag/stats.
func (h *StatsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.docs.Stats(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("stats query failed")
		writeError(w, h.logger, http.StatusInternalServerError, "Error al obtener estadísticas", internalDetail(err, h.exposeErrors))
		return
	}
	writeJSON(w, h.logger, http.StatusOK, stats)
}

// internal/handlers/fetch.go
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// RecordSetFetcher assembles one stored record set as a JSON document.
type RecordSetFetcher interface {
	FetchRecordSet(ctx context.Context, id string) (map[string]any, error)
}

// FetchHandler handles record set retrieval HTTP requests
type FetchHandler struct {
	fetcher RecordSetFetcher
	logger  *slog.Logger
}

// NewFetchHandler creates a new fetch handler
func NewFetchHandler(fetcher RecordSetFetcher, logger *slog.Logger) *FetchHandler {
	return &FetchHandler{
		fetcher: fetcher,
		logger:  logger.With(slog.String("handler", "fetch")),
	}
}

// FetchRecordSet handles GET /inventory-upsert-fetch/{id}
func (h *FetchHandler) FetchRecordSet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	idStr := r.PathValue("id")

	if _, err := uuid.Parse(idStr); err != nil {
		respondJSON(h.logger, w, http.StatusBadRequest,
			map[string]string{"error": "invalid instance id format"})
		return
	}

	recordSet, err := h.fetcher.FetchRecordSet(ctx, idStr)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			respondJSON(h.logger, w, http.StatusNotFound,
				map[string]string{"error": "no instance with id " + idStr})
			return
		}
		h.logger.ErrorContext(ctx, "failed to fetch record set",
			slog.String("id", idStr),
			slog.String("error", err.Error()))
		respondJSON(h.logger, w, http.StatusInternalServerError,
			map[string]string{"error": "failed to fetch record set"})
		return
	}

	respondJSON(h.logger, w, http.StatusOK, recordSet)
}

// internal/handlers/update.go
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/core/services"
)

// UpdateHandler handles inventory upsert and delete HTTP requests
type UpdateHandler struct {
	upserter ports.Upserter
	deleter  ports.Deleter
	logger   *slog.Logger
}

// NewUpdateHandler creates a new update handler
func NewUpdateHandler(upserter ports.Upserter, deleter ports.Deleter, logger *slog.Logger) *UpdateHandler {
	return &UpdateHandler{
		upserter: upserter,
		deleter:  deleter,
		logger:   logger.With(slog.String("handler", "update")),
	}
}

// upsertRequest accepts either a batch wrapper or a single record set. A bare
// record set is recognized by its top-level "instance" property.
type upsertRequest struct {
	InventoryRecordSets []map[string]any `json:"inventoryRecordSets"`
}

// deleteRequest identifies the record set to remove.
type deleteRequest struct {
	HRID          string `json:"hrid"`
	InstitutionID string `json:"institutionId,omitempty"`
}

// BatchUpsertHRID handles PUT /inventory-batch-upsert-hrid
func (h *UpdateHandler) BatchUpsertHRID(w http.ResponseWriter, r *http.Request) {
	h.upsert(w, r, string(services.ModeHRID))
}

// SharedUpsertMatchKey handles PUT /shared-inventory-upsert-matchkey
func (h *UpdateHandler) SharedUpsertMatchKey(w http.ResponseWriter, r *http.Request) {
	h.upsert(w, r, string(services.ModeSharedMatchKey))
}

func (h *UpdateHandler) upsert(w http.ResponseWriter, r *http.Request, mode string) {
	ctx := r.Context()

	payloads, err := parseUpsertBody(r)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	outcome, err := h.upserter.UpsertBatch(ctx, mode, payloads)
	if err == nil {
		status := http.StatusOK
		if outcome.Status() == domain.BatchPartialSuccess {
			status = http.StatusMultiStatus
		}
		h.respondJSON(w, status, outcome.AsMap())
		return
	}

	if errors.Is(err, ports.ErrRetrySingly) {
		h.logger.WarnContext(ctx, "batch failed, retrying record by record",
			slog.String("mode", mode),
			slog.Int("records", len(payloads)),
			slog.String("error", err.Error()))

		outcomes, retryErr := h.upserter.MultipleSingleRecordUpserts(ctx, mode, payloads)
		if retryErr != nil {
			h.respondError(w, http.StatusInternalServerError, retryErr.Error())
			return
		}
		results := make([]map[string]any, 0, len(outcomes))
		for _, o := range outcomes {
			results = append(results, o.AsMap())
		}
		h.respondJSON(w, http.StatusMultiStatus, map[string]any{"outcomes": results})
		return
	}

	h.logger.ErrorContext(ctx, "batch upsert failed",
		slog.String("mode", mode),
		slog.Int("records", len(payloads)),
		slog.String("error", err.Error()))
	h.respondJSON(w, upsertErrorStatus(err), errorBody(err, outcome))
}

// DeleteByHRID handles DELETE /inventory-batch-upsert-hrid
func (h *UpdateHandler) DeleteByHRID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HRID == "" {
		h.respondError(w, http.StatusBadRequest, "request body must carry an hrid")
		return
	}

	outcome, err := h.deleter.DeleteByHRID(ctx, req.HRID)
	h.respondDelete(w, r, req.HRID, outcome, err)
}

// DeleteSharedInstitution handles DELETE /shared-inventory-upsert-matchkey
func (h *UpdateHandler) DeleteSharedInstitution(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req deleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HRID == "" {
		h.respondError(w, http.StatusBadRequest, "request body must carry an hrid")
		return
	}
	if req.InstitutionID == "" {
		h.respondError(w, http.StatusBadRequest, "request body must carry an institutionId")
		return
	}

	outcome, err := h.deleter.DeleteSharedInstitution(ctx, req.HRID, req.InstitutionID)
	h.respondDelete(w, r, req.HRID, outcome, err)
}

func (h *UpdateHandler) respondDelete(w http.ResponseWriter, r *http.Request, hrid string, outcome *domain.UpdateOutcome, err error) {
	ctx := r.Context()

	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			h.respondError(w, http.StatusNotFound, "no inventory record set with hrid "+hrid)
			return
		}
		h.logger.ErrorContext(ctx, "delete failed",
			slog.String("hrid", hrid),
			slog.String("error", err.Error()))
		h.respondJSON(w, upsertErrorStatus(err), errorBody(err, outcome))
		return
	}

	status := http.StatusOK
	if outcome.Status() == domain.BatchPartialSuccess {
		status = http.StatusMultiStatus
	}
	h.respondJSON(w, status, outcome.AsMap())
}

// parseUpsertBody decodes the request body. Clients send either
// {"inventoryRecordSets": [...]} or one bare record set object.
func parseUpsertBody(r *http.Request) ([]map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errors.New("request body is not a JSON object")
	}

	if sets, ok := raw["inventoryRecordSets"]; ok {
		var payloads []map[string]any
		if err := json.Unmarshal(sets, &payloads); err != nil {
			return nil, errors.New("inventoryRecordSets must be an array of record sets")
		}
		return payloads, nil
	}

	single := make(map[string]any, len(raw))
	for k, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return nil, errors.New("request body is not a JSON object")
		}
		single[k] = val
	}
	return []map[string]any{single}, nil
}

// upsertErrorStatus maps a service error onto an HTTP status. Storage faults
// the caller cannot fix are 500, everything else is a 422 on their payload.
func upsertErrorStatus(err error) int {
	var se *ports.StorageError
	if errors.As(err, &se) {
		if se.BatchScope() {
			return http.StatusInternalServerError
		}
		return http.StatusUnprocessableEntity
	}
	return http.StatusUnprocessableEntity
}

func errorBody(err error, outcome *domain.UpdateOutcome) map[string]any {
	body := map[string]any{"error": err.Error()}
	if outcome != nil {
		for k, v := range outcome.AsMap() {
			body[k] = v
		}
	}
	return body
}

// Shared response helpers

func (h *UpdateHandler) respondJSON(w http.ResponseWriter, status int, data any) {
	respondJSON(h.logger, w, status, data)
}

func (h *UpdateHandler) respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(h.logger, w, status, map[string]string{"error": message})
}

func respondJSON(logger *slog.Logger, w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response",
			slog.String("error", err.Error()))
	}
}

// internal/workers/upsert_processor.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
)

const (
	TypeUpsertRecord     = "inventory:upsert_record"
	TypeRefreshLocations = "inventory:refresh_locations"
)

// UpsertTaskPayload represents one queued single-record upsert
type UpsertTaskPayload struct {
	Tenant string         `json:"tenant"`
	Mode   string         `json:"mode"`
	Record map[string]any `json:"record"`
}

// UpsertProcessor retries single-record upserts that failed on a transient
// storage fault. Asynq handles the backoff; a record that keeps failing ends
// up in the archive queue for operator review.
type UpsertProcessor struct {
	upserter ports.Upserter
	logger   *slog.Logger
}

// NewUpsertProcessor creates a new upsert processor
func NewUpsertProcessor(upserter ports.Upserter, logger *slog.Logger) *UpsertProcessor {
	return &UpsertProcessor{
		upserter: upserter,
		logger:   logger.With(slog.String("processor", "upsert")),
	}
}

// ProcessUpsertRecord processes one queued record upsert
func (p *UpsertProcessor) ProcessUpsertRecord(ctx context.Context, t *asynq.Task) error {
	var payload UpsertTaskPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("failed to unmarshal payload: %w", err)
	}
	if payload.Tenant == "" {
		return fmt.Errorf("task payload has no tenant")
	}

	ctx = tenant.With(ctx, payload.Tenant)

	p.logger.InfoContext(ctx, "retrying queued record upsert",
		slog.String("tenant", payload.Tenant),
		slog.String("mode", payload.Mode))

	outcome, err := p.upserter.UpsertBatch(ctx, payload.Mode, []map[string]any{payload.Record})
	if err != nil {
		// Returning the error hands the task back to asynq for backoff.
		return fmt.Errorf("queued upsert failed: %w", err)
	}

	if outcome.Status() != domain.BatchSuccess {
		// Record-scope failures will not get better on retry; surface them
		// in the log and settle the task.
		p.logger.WarnContext(ctx, "queued upsert settled with record errors",
			slog.String("tenant", payload.Tenant),
			slog.Any("errors", outcome.Errors()))
	}

	return nil
}

// LocationsProcessor reloads the location reference data on a schedule
type LocationsProcessor struct {
	resolver ports.LocationResolver
	logger   *slog.Logger
}

// NewLocationsProcessor creates a new locations processor
func NewLocationsProcessor(resolver ports.LocationResolver, logger *slog.Logger) *LocationsProcessor {
	return &LocationsProcessor{
		resolver: resolver,
		logger:   logger.With(slog.String("processor", "locations")),
	}
}

// RefreshLocations handles the periodic location cache refresh
func (p *LocationsProcessor) RefreshLocations(ctx context.Context, t *asynq.Task) error {
	if err := p.resolver.Refresh(ctx); err != nil {
		return fmt.Errorf("failed to refresh locations: %w", err)
	}
	p.logger.InfoContext(ctx, "location cache refreshed")
	return nil
}

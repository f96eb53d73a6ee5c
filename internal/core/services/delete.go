// internal/core/services/delete.go
package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// DeleteService runs deletion plans through the same build/plan/execute
// pipeline as upserts.
type DeleteService struct {
	storage   ports.StorageClient
	locations ports.LocationResolver
	logger    *slog.Logger
	updateLog ports.UpdateLogRepository
}

// Statically assert that *DeleteService implements the Deleter interface.
var _ ports.Deleter = (*DeleteService)(nil)

// NewDeleteService creates the deletion service. updateLog may be nil.
func NewDeleteService(storage ports.StorageClient, locations ports.LocationResolver, logger *slog.Logger, updateLog ports.UpdateLogRepository) *DeleteService {
	return &DeleteService{
		storage:   storage,
		locations: locations,
		logger:    logger.With(slog.String("service", "delete")),
		updateLog: updateLog,
	}
}

// DeleteByHRID retires the full record graph under the foreign identifier.
func (s *DeleteService) DeleteByHRID(ctx context.Context, hrid string) (*domain.UpdateOutcome, error) {
	plan := NewHRIDDeletePlan(s.storage, s.logger, hrid)
	return s.execute(ctx, "hrid-delete", plan)
}

// DeleteSharedInstitution removes one institution's holdings and items from
// the shared instance under the foreign identifier.
func (s *DeleteService) DeleteSharedInstitution(ctx context.Context, hrid, institutionID string) (*domain.UpdateOutcome, error) {
	plan := NewSharedDeletePlan(s.storage, s.locations, s.logger, hrid, institutionID)
	return s.execute(ctx, "shared-delete", plan)
}

func (s *DeleteService) execute(ctx context.Context, mode string, plan ports.UpdatePlan) (*domain.UpdateOutcome, error) {
	outcome := plan.Outcome()
	if err := plan.BuildFromStorage(ctx); err != nil {
		// A missing target is the caller's mistake, not a failed batch; the
		// outcome stays empty and is not logged.
		if errors.Is(err, ports.ErrNotFound) {
			return outcome, err
		}
		outcome.MarkFailed()
		saveOutcomeLog(ctx, s.updateLog, s.logger, mode, 1, outcome)
		return outcome, err
	}
	if err := plan.PlanInventoryUpdates(ctx); err != nil {
		outcome.MarkFailed()
		saveOutcomeLog(ctx, s.updateLog, s.logger, mode, 1, outcome)
		return outcome, err
	}
	err := plan.DoInventoryUpdates(ctx)
	saveOutcomeLog(ctx, s.updateLog, s.logger, mode, 1, outcome)
	return outcome, err
}

// internal/core/services/upsert.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
)

// UpsertService drives the full batch pipeline: parse and validate the
// payloads, select a plan for the requested mode, build it from storage,
// assign transactions, execute, then persist and triage the outcome.
type UpsertService struct {
	storage   ports.StorageClient
	locations ports.LocationResolver
	logger    *slog.Logger
	merge     MergePolicy

	// institution pins the shared-inventory owning institution for this
	// deployment; "" derives it per batch from the incoming locations.
	institution string

	// archiver and updateLog are best-effort side channels; nil disables them.
	archiver  ports.Archiver
	updateLog ports.UpdateLogRepository

	// retryQueue, when set, receives single records that still hit
	// batch-scope failures on the record-by-record path.
	retryQueue ports.RetryQueue
}

// Statically assert that *UpsertService implements the Upserter interface.
var _ ports.Upserter = (*UpsertService)(nil)

// UpsertOption configures optional service collaborators.
type UpsertOption func(*UpsertService)

// WithArchiver enables failed-batch payload archiving.
func WithArchiver(a ports.Archiver) UpsertOption {
	return func(s *UpsertService) { s.archiver = a }
}

// WithUpdateLog enables batch outcome persistence.
func WithUpdateLog(r ports.UpdateLogRepository) UpsertOption {
	return func(s *UpsertService) { s.updateLog = r }
}

// WithRetryQueue enables asynchronous retry of single records that fail
// with batch scope even on the fallback path.
func WithRetryQueue(q ports.RetryQueue) UpsertOption {
	return func(s *UpsertService) { s.retryQueue = q }
}

// WithInstitution pins the shared-inventory owning institution.
func WithInstitution(id string) UpsertOption {
	return func(s *UpsertService) { s.institution = id }
}

// NewUpsertService creates the batch upsert service.
func NewUpsertService(storage ports.StorageClient, locations ports.LocationResolver, logger *slog.Logger, merge MergePolicy, opts ...UpsertOption) *UpsertService {
	s := &UpsertService{
		storage:   storage,
		locations: locations,
		logger:    logger.With(slog.String("service", "upsert")),
		merge:     merge,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertBatch runs one batch through the pipeline. On a batch-scope
// execution failure of a multi-record batch the raw payload is archived
// and the returned error wraps ErrRetrySingly, so the caller can fall back
// to MultipleSingleRecordUpserts.
func (s *UpsertService) UpsertBatch(ctx context.Context, mode string, payloads []map[string]any) (*domain.UpdateOutcome, error) {
	incoming, outcome, err := s.parseAndValidate(Mode(mode), payloads)
	if err != nil {
		s.saveLog(ctx, mode, len(payloads), outcome)
		return outcome, err
	}

	plan, err := s.planFor(Mode(mode), incoming)
	if err != nil {
		outcome.MarkFailed()
		s.saveLog(ctx, mode, len(payloads), outcome)
		return outcome, err
	}
	outcome = plan.Outcome()

	if err := plan.BuildFromStorage(ctx); err != nil {
		outcome.MarkFailed()
		s.saveLog(ctx, mode, len(payloads), outcome)
		return outcome, fmt.Errorf("fetching existing records: %w", err)
	}
	if err := plan.PlanInventoryUpdates(ctx); err != nil {
		outcome.MarkFailed()
		s.saveLog(ctx, mode, len(payloads), outcome)
		return outcome, fmt.Errorf("planning updates: %w", err)
	}

	execErr := plan.DoInventoryUpdates(ctx)
	s.saveLog(ctx, mode, len(payloads), outcome)
	if execErr == nil {
		return outcome, nil
	}

	if ports.IsBatchScope(execErr) && len(payloads) > 1 {
		s.archive(ctx, payloads)
		return outcome, errors.Join(ports.ErrRetrySingly, execErr)
	}
	return outcome, execErr
}

// MultipleSingleRecordUpserts re-submits each payload as its own
// single-record batch, sequentially, so one poisoned record cannot take the
// rest down with it. Records that still fail with batch scope are handed to
// the retry queue when one is configured.
func (s *UpsertService) MultipleSingleRecordUpserts(ctx context.Context, mode string, payloads []map[string]any) ([]*domain.UpdateOutcome, error) {
	outcomes := make([]*domain.UpdateOutcome, 0, len(payloads))
	for _, payload := range payloads {
		outcome, err := s.UpsertBatch(ctx, mode, []map[string]any{payload})
		outcomes = append(outcomes, outcome)
		if err == nil {
			continue
		}
		s.logger.WarnContext(ctx, "single record upsert failed",
			slog.String("mode", mode),
			slog.String("error", err.Error()))
		if s.retryQueue != nil && ports.IsBatchScope(err) {
			if qErr := s.retryQueue.EnqueueSingleRecord(ctx, tenant.From(ctx), mode, payload); qErr != nil {
				s.logger.ErrorContext(ctx, "enqueueing record for retry failed",
					slog.String("error", qErr.Error()))
			}
		}
	}
	return outcomes, nil
}

// parseAndValidate turns raw payloads into incoming record sets and rejects
// the whole batch before any storage I/O when a payload fails to parse or
// when two payloads would collide on the same correlation key.
func (s *UpsertService) parseAndValidate(mode Mode, payloads []map[string]any) ([]*domain.InventoryRecordSet, *domain.UpdateOutcome, error) {
	outcome := domain.NewUpdateOutcome()
	if len(payloads) == 0 {
		outcome.MarkFailed()
		return nil, outcome, fmt.Errorf("empty batch")
	}

	incoming := make([]*domain.InventoryRecordSet, 0, len(payloads))
	seen := map[string]bool{}
	for idx, payload := range payloads {
		set, err := domain.NewIncomingRecordSet(payload)
		if err != nil {
			outcome.MarkFailed()
			return nil, outcome, fmt.Errorf("record set at index %d: %w", idx, err)
		}

		var key string
		switch mode {
		case ModeHRID:
			key = set.Instance.HRID()
			if key == "" {
				outcome.MarkFailed()
				return nil, outcome, fmt.Errorf("record set at index %d: instance has no hrid", idx)
			}
		case ModeSharedMatchKey:
			key = set.Instance.MatchKey()
			if key == "" {
				outcome.MarkFailed()
				return nil, outcome, fmt.Errorf("record set at index %d: instance yields no match key", idx)
			}
		default:
			outcome.MarkFailed()
			return nil, outcome, fmt.Errorf("unknown upsert mode %q", mode)
		}
		if seen[key] {
			outcome.MarkFailed()
			return nil, outcome, fmt.Errorf("record set at index %d: duplicate correlation key %q in batch", idx, key)
		}
		seen[key] = true
		incoming = append(incoming, set)
	}
	return incoming, outcome, nil
}

func (s *UpsertService) planFor(mode Mode, incoming []*domain.InventoryRecordSet) (ports.UpdatePlan, error) {
	switch mode {
	case ModeHRID:
		return NewHRIDPlan(s.storage, s.logger, incoming, s.merge), nil
	case ModeSharedMatchKey:
		return NewSharedInventoryPlan(s.storage, s.locations, s.logger, incoming, s.merge, s.institution), nil
	default:
		return nil, fmt.Errorf("unknown upsert mode %q", mode)
	}
}

// archive stores the raw batch payload for later replay. Failures are
// logged and swallowed; archiving never changes the caller-visible result.
func (s *UpsertService) archive(ctx context.Context, payloads []map[string]any) {
	if s.archiver == nil {
		return
	}
	raw, err := json.Marshal(payloads)
	if err != nil {
		s.logger.ErrorContext(ctx, "marshalling failed batch for archive", slog.String("error", err.Error()))
		return
	}
	key, err := s.archiver.ArchiveBatch(ctx, tenant.From(ctx), raw)
	if err != nil {
		s.logger.ErrorContext(ctx, "archiving failed batch", slog.String("error", err.Error()))
		return
	}
	s.logger.InfoContext(ctx, "failed batch archived", slog.String("key", key))
}

// saveLog persists the batch outcome, best effort.
func (s *UpsertService) saveLog(ctx context.Context, mode string, recordCount int, outcome *domain.UpdateOutcome) {
	saveOutcomeLog(ctx, s.updateLog, s.logger, mode, recordCount, outcome)
}

// saveOutcomeLog is shared by the upsert and delete services.
func saveOutcomeLog(ctx context.Context, repo ports.UpdateLogRepository, logger *slog.Logger, mode string, recordCount int, outcome *domain.UpdateOutcome) {
	if repo == nil {
		return
	}
	rendered := outcome.AsMap()
	entry := ports.UpdateLogEntry{
		Tenant:      tenant.From(ctx),
		Mode:        mode,
		Status:      outcome.Status().String(),
		RecordCount: recordCount,
	}
	if m, ok := rendered["metrics"].(map[string]any); ok {
		entry.Metrics = m
	}
	if errs, ok := rendered["errors"].([]map[string]any); ok {
		entry.Errors = errs
	}
	if err := repo.SaveOutcome(ctx, entry); err != nil {
		logger.WarnContext(ctx, "persisting batch outcome failed", slog.String("error", err.Error()))
	}
}

// internal/workers/enqueuer.go
package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// Enqueuer pushes failed single-record upserts onto the retry queue.
type Enqueuer struct {
	client *asynq.Client
	queue  string
	logger *slog.Logger
}

// Statically assert that *Enqueuer implements the RetryQueue interface.
var _ ports.RetryQueue = (*Enqueuer)(nil)

// NewEnqueuer creates a new retry queue enqueuer
func NewEnqueuer(client *asynq.Client, queue string, logger *slog.Logger) *Enqueuer {
	if queue == "" {
		queue = "default"
	}
	return &Enqueuer{
		client: client,
		queue:  queue,
		logger: logger.With(slog.String("component", "retry_queue")),
	}
}

// EnqueueSingleRecord implements ports.RetryQueue.
func (e *Enqueuer) EnqueueSingleRecord(ctx context.Context, tenantID, mode string, record map[string]any) error {
	raw, err := json.Marshal(UpsertTaskPayload{
		Tenant: tenantID,
		Mode:   mode,
		Record: record,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal task payload: %w", err)
	}

	task := asynq.NewTask(TypeUpsertRecord, raw)
	info, err := e.client.EnqueueContext(ctx, task,
		asynq.Queue(e.queue),
		asynq.MaxRetry(5),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		return fmt.Errorf("failed to enqueue record upsert: %w", err)
	}

	e.logger.InfoContext(ctx, "record upsert queued for retry",
		slog.String("task_id", info.ID),
		slog.String("tenant", tenantID),
		slog.String("mode", mode))

	return nil
}

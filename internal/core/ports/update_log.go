// internal/core/ports/update_log.go
package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// UpdateLogEntry is one persisted batch outcome, for operational bookkeeping.
type UpdateLogEntry struct {
	ID          uuid.UUID      `json:"id"`
	Tenant      string         `json:"tenant"`
	Mode        string         `json:"mode"`
	Status      string         `json:"status"`
	RecordCount int            `json:"record_count"`
	Metrics     map[string]any `json:"metrics"`
	Errors      []map[string]any `json:"errors,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

// UpdateLogRepository persists batch outcomes.
type UpdateLogRepository interface {
	SaveOutcome(ctx context.Context, entry UpdateLogEntry) error
	Recent(ctx context.Context, tenant string, limit int) ([]UpdateLogEntry, error)
}

// internal/core/ports/update_plan.go
package ports

import (
	"context"
	"errors"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

// UpdatePlan is one reconciliation strategy over one batch: populate the
// staging repository from storage, assign a transaction to every node of
// every graph, then execute the plan in dependency order. Implementations
// are single-use; a fresh plan is built per batch request.
type UpdatePlan interface {
	// BuildFromStorage bulk-fetches all potentially matching existing graphs.
	// All-or-nothing: on error no partial population is visible.
	BuildFromStorage(ctx context.Context) error

	// PlanInventoryUpdates diffs incoming against existing graphs and tags
	// every record. Side-effect-free on storage.
	PlanInventoryUpdates(ctx context.Context) error

	// DoInventoryUpdates executes the planned storage operations in strict
	// dependency phases. A returned error is a batch-scope failure; record
	// scope failures are absorbed into the outcome.
	DoInventoryUpdates(ctx context.Context) error

	// Outcome returns the aggregated per-record result of the batch.
	Outcome() *domain.UpdateOutcome
}

// ErrNotFound is returned when no record graph matches the given identifier.
var ErrNotFound = errors.New("record set not found")

// ErrRetrySingly signals that a multi-record batch hit a batch-scope
// failure and the caller should re-submit it as independent single-record
// batches so the good records still converge.
var ErrRetrySingly = errors.New("batch failed, retry record by record")

// Upserter is the surface the request-handling layer talks to.
type Upserter interface {
	// UpsertBatch reconciles a batch of incoming record sets using the named
	// strategy. The returned outcome is always populated; the error, when
	// not nil, is a batch failure (validation, build, or batch-scope
	// execution, possibly ErrRetrySingly).
	UpsertBatch(ctx context.Context, mode string, payloads []map[string]any) (*domain.UpdateOutcome, error)

	// MultipleSingleRecordUpserts is the record-by-record fallback path:
	// sequential, one fully-resolved outcome per input record.
	MultipleSingleRecordUpserts(ctx context.Context, mode string, payloads []map[string]any) ([]*domain.UpdateOutcome, error)
}

// Deleter plans and executes deletion requests.
type Deleter interface {
	// DeleteByHRID retires the full record graph matching the foreign
	// identifier: items, holdings and relations are deleted, the instance
	// itself is suppressed rather than removed.
	DeleteByHRID(ctx context.Context, hrid string) (*domain.UpdateOutcome, error)

	// DeleteSharedInstitution removes one institution's contribution from a
	// shared instance identified by foreign identifier, leaving other
	// institutions' holdings untouched.
	DeleteSharedInstitution(ctx context.Context, hrid, institutionID string) (*domain.UpdateOutcome, error)
}

// RetryQueue defers a single-record upsert for asynchronous retry with
// backoff, used when even the record-by-record path hits transient
// batch-scope failures.
type RetryQueue interface {
	EnqueueSingleRecord(ctx context.Context, tenant, mode string, payload map[string]any) error
}

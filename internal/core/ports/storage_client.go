// internal/core/ports/storage_client.go
package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

// StorageClient is the narrow client interface to the remote inventory
// store. The core never talks to the store any other way, and it never
// retries transport failures itself; retry/backoff is a caller concern.
type StorageClient interface {
	// FetchByIdentifiers is the bulk correlation query: all records of the
	// given kind whose field matches any of the values.
	FetchByIdentifiers(ctx context.Context, kind domain.EntityKind, field string, values []string) ([]map[string]any, error)

	// FetchByQuery runs an arbitrary query against one entity collection;
	// used for location listings and secondary match-key lookups.
	FetchByQuery(ctx context.Context, kind domain.EntityKind, query string) ([]map[string]any, error)

	// Create stores a new record and returns the stored representation.
	Create(ctx context.Context, kind domain.EntityKind, record map[string]any) (map[string]any, error)

	// Replace overwrites the record with the given id. The record must carry
	// its current optimistic-concurrency version; storage rejects stale ones.
	Replace(ctx context.Context, kind domain.EntityKind, id string, record map[string]any) error

	// Delete removes the record with the given id.
	Delete(ctx context.Context, kind domain.EntityKind, id string) error
}

// StorageError is a failed storage call with enough context to triage it.
// StatusCode 0 means the call never reached the store (transport failure).
type StorageError struct {
	Op         string
	Kind       domain.EntityKind
	StatusCode int
	Message    string
	Body       string
}

// Error implements error
func (e *StorageError) Error() string {
	return fmt.Sprintf("inventory storage %s %s failed (status %d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
}

// BatchScope reports whether the failure indicates the whole batch is
// unsafe to continue, as opposed to a single record being rejected.
// Transport failures and 5xx responses are batch scope; 4xx responses are
// specific to the offending record.
func (e *StorageError) BatchScope() bool {
	return e.StatusCode == 0 || e.StatusCode >= 500
}

// IsBatchScope reports whether err carries a batch-scope storage failure.
// Errors that are not StorageError at all (context cancellation, coding
// errors) are treated as batch scope: nothing ties them to one record.
func IsBatchScope(err error) bool {
	var se *StorageError
	if errors.As(err, &se) {
		return se.BatchScope()
	}
	return true
}

// internal/core/ports/locations.go
package ports

import (
	"context"
	"errors"
)

// ErrUnknownLocation is returned when a location reference cannot be
// resolved to an owning institution.
var ErrUnknownLocation = errors.New("unknown location")

// LocationResolver resolves a location reference to its owning institution.
// Implementations are shared, read-mostly caches: entries are immutable once
// known and the mapping is slow-changing reference data, so there is no
// per-entry invalidation, only a full Refresh.
type LocationResolver interface {
	Institution(ctx context.Context, locationID string) (string, error)
	Refresh(ctx context.Context) error
}

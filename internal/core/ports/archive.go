// internal/core/ports/archive.go
package ports

import "context"

// Archiver stores the raw payload of a failed batch for later replay and
// diagnostics. Returns the archive key.
type Archiver interface {
	ArchiveBatch(ctx context.Context, tenant string, payload []byte) (string, error)
}

// internal/adapters/db/update_log_repository.go
package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// updateLogRepository implements ports.UpdateLogRepository
type updateLogRepository struct {
	db     *Database
	logger *slog.Logger
}

// NewUpdateLogRepository creates a new update log repository
func NewUpdateLogRepository(db *Database, logger *slog.Logger) ports.UpdateLogRepository {
	return &updateLogRepository{
		db:     db,
		logger: logger.With(slog.String("repository", "update_log")),
	}
}

// SaveOutcome persists one batch outcome. Metrics and errors land in jsonb
// columns so the log stays queryable without a schema change per entity kind.
func (r *updateLogRepository) SaveOutcome(ctx context.Context, entry ports.UpdateLogEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}

	metrics, err := json.Marshal(entry.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	errorsJSON, err := json.Marshal(entry.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}

	query, args, err := squirrel.Insert("inventory_update_log").
		Columns("id", "tenant", "mode", "status", "record_count", "metrics", "errors", "created_at").
		Values(entry.ID, entry.Tenant, entry.Mode, entry.Status, entry.RecordCount, metrics, errorsJSON, entry.CreatedAt).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build insert query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to save update log entry: %w", err)
	}

	r.logger.DebugContext(ctx, "update log entry saved",
		slog.String("id", entry.ID.String()),
		slog.String("tenant", entry.Tenant),
		slog.String("status", entry.Status))

	return nil
}

// Recent returns the latest entries, newest first. An empty tenant returns
// entries across all tenants.
func (r *updateLogRepository) Recent(ctx context.Context, tenant string, limit int) ([]ports.UpdateLogEntry, error) {
	if limit <= 0 {
		limit = 50
	}

	qb := squirrel.Select("id", "tenant", "mode", "status", "record_count", "metrics", "errors", "created_at").
		From("inventory_update_log").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)
	if tenant != "" {
		qb = qb.Where(squirrel.Eq{"tenant": tenant})
	}

	query, args, err := qb.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build select query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query update log: %w", err)
	}
	defer rows.Close()

	var entries []ports.UpdateLogEntry
	for rows.Next() {
		var (
			entry      ports.UpdateLogEntry
			metrics    []byte
			errorsJSON []byte
		)
		if err := rows.Scan(&entry.ID, &entry.Tenant, &entry.Mode, &entry.Status,
			&entry.RecordCount, &metrics, &errorsJSON, &entry.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan update log entry: %w", err)
		}
		if len(metrics) > 0 {
			if err := json.Unmarshal(metrics, &entry.Metrics); err != nil {
				return nil, fmt.Errorf("failed to unmarshal metrics: %w", err)
			}
		}
		if len(errorsJSON) > 0 {
			if err := json.Unmarshal(errorsJSON, &entry.Errors); err != nil {
				return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
			}
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate update log entries: %w", err)
	}

	return entries, nil
}

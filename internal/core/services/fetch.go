// internal/core/services/fetch.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// FetchService assembles one stored record graph back into the request
// shape, so callers can inspect what an upsert produced.
type FetchService struct {
	storage ports.StorageClient
	logger  *slog.Logger
}

// NewFetchService creates the record set fetch service.
func NewFetchService(storage ports.StorageClient, logger *slog.Logger) *FetchService {
	return &FetchService{
		storage: storage,
		logger:  logger.With(slog.String("service", "fetch")),
	}
}

// FetchRecordSet returns the full record graph rooted at the instance with
// the given UUID, rendered in the upsert request shape. ports.ErrNotFound
// when no such instance exists.
func (s *FetchService) FetchRecordSet(ctx context.Context, id string) (map[string]any, error) {
	repo := newRepository(s.storage, s.logger, nil)

	var found *domain.Instance
	err := repo.fetchInstancesByField(ctx, "id", []string{id}, 1, func(inst *domain.Instance) {
		repo.instancesByID[inst.ID()] = inst
		found = inst
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("instance %s: %w", id, ports.ErrNotFound)
	}
	if err := repo.fetchGraphs(ctx, []string{found.ID()}); err != nil {
		return nil, err
	}
	set := repo.existingSetFor(found)

	holdings := make([]map[string]any, 0, len(set.Instance.HoldingsRecords))
	for _, hr := range set.Instance.HoldingsRecords {
		bag := hr.Payload()
		items := make([]map[string]any, 0, len(hr.Items))
		for _, it := range hr.Items {
			items = append(items, it.Payload())
		}
		bag["items"] = items
		holdings = append(holdings, bag)
	}

	relations := map[string]any{}
	var parents, children []map[string]any
	for _, rel := range repo.RelationsFor(found.ID()) {
		if rel.SubInstanceID() == found.ID() {
			parents = append(parents, rel.Payload())
		} else {
			children = append(children, rel.Payload())
		}
	}
	var preceding, succeeding []map[string]any
	for _, t := range repo.SuccessionsFor(found.ID()) {
		if t.SucceedingInstanceID() == found.ID() {
			preceding = append(preceding, t.Payload())
		} else {
			succeeding = append(succeeding, t.Payload())
		}
	}
	if parents != nil {
		relations["parentInstances"] = parents
	}
	if children != nil {
		relations["childInstances"] = children
	}
	if preceding != nil {
		relations["precedingTitles"] = preceding
	}
	if succeeding != nil {
		relations["succeedingTitles"] = succeeding
	}

	out := map[string]any{
		"instance":        set.Instance.Payload(),
		"holdingsRecords": holdings,
	}
	if len(relations) > 0 {
		out["instanceRelations"] = relations
	}
	return out, nil
}

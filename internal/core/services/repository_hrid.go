// internal/core/services/repository_hrid.go
package services

import (
	"context"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// HRIDRepository correlates incoming and existing graphs by the foreign
// system identifier (exact match).
type HRIDRepository struct {
	repository
}

// NewHRIDRepository creates the by-identifier staging repository for one batch.
func NewHRIDRepository(storage ports.StorageClient, logger *slog.Logger, incoming []*domain.InventoryRecordSet) *HRIDRepository {
	return &HRIDRepository{
		repository: newRepository(storage, logger.With(slog.String("repository", "hrid")), incoming),
	}
}

// BuildFromStorage populates the staging indexes: wave one fetches instance
// candidates by HRID (including instances referenced only by incoming
// relations), waves two and three fetch their holdings, relations and items.
func (r *HRIDRepository) BuildFromStorage(ctx context.Context) error {
	hrids := map[string]bool{}
	for _, set := range r.incoming {
		if hrid := set.Instance.HRID(); hrid != "" {
			hrids[hrid] = true
		}
	}
	referenced := relationReferencedHRIDs(r.incoming)
	all := make([]string, 0, len(hrids)+len(referenced))
	for hrid := range hrids {
		all = append(all, hrid)
	}
	for _, hrid := range referenced {
		if !hrids[hrid] {
			all = append(all, hrid)
		}
	}

	err := r.fetchInstancesByField(ctx, "hrid", all, hridChunkSize, func(inst *domain.Instance) {
		r.instancesByID[inst.ID()] = inst
		if hrid := inst.HRID(); hrid != "" {
			if hrids[hrid] {
				r.instancesByHRID[hrid] = inst
			} else {
				r.referencedByHRID[hrid] = inst
			}
		}
	})
	if err != nil {
		return err
	}

	var matchedIDs []string
	for _, inst := range r.instancesByHRID {
		matchedIDs = append(matchedIDs, inst.ID())
	}
	if err := r.fetchGraphs(ctx, matchedIDs); err != nil {
		return err
	}

	for _, set := range r.incoming {
		pair := &domain.PairedRecordSets{Incoming: set}
		if existing, ok := r.instancesByHRID[set.Instance.HRID()]; ok {
			pair.Existing = r.existingSetFor(existing)
		}
		r.pairs = append(r.pairs, pair)
	}

	r.logger.DebugContext(ctx, "staging repository populated",
		slog.Int("incoming", len(r.incoming)),
		slog.Int("matched", len(matchedIDs)))

	return nil
}

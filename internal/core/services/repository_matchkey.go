// internal/core/services/repository_matchkey.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// MatchKeyRepository correlates incoming and existing graphs by the derived
// match key. Besides the primary match it performs a secondary lookup per
// incoming record for an existing instance carrying the same foreign
// identifier but a different match key — the descriptive data drifted and
// the old ("shifting key") instance's holdings must be folded into deletion
// planning.
type MatchKeyRepository struct {
	repository

	shiftingByHRID map[string]*domain.Instance
}

// NewMatchKeyRepository creates the by-match-key staging repository for one batch.
func NewMatchKeyRepository(storage ports.StorageClient, logger *slog.Logger, incoming []*domain.InventoryRecordSet) *MatchKeyRepository {
	return &MatchKeyRepository{
		repository:     newRepository(storage, logger.With(slog.String("repository", "matchkey")), incoming),
		shiftingByHRID: map[string]*domain.Instance{},
	}
}

// BuildFromStorage populates the staging indexes: wave one fetches instance
// candidates by match key plus the per-record shifting-key lookups, waves
// two and three fetch holdings, relations and items for everything found.
func (r *MatchKeyRepository) BuildFromStorage(ctx context.Context) error {
	keys := map[string]bool{}
	for _, set := range r.incoming {
		keys[set.Instance.MatchKey()] = true
	}
	values := make([]string, 0, len(keys))
	for key := range keys {
		values = append(values, key)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return r.fetchInstancesByField(gctx, "matchKey", values, matchKeyChunkSize, func(inst *domain.Instance) {
			r.instancesByID[inst.ID()] = inst
			r.instancesByMatchKey[inst.MatchKey()] = inst
		})
	})
	g.Go(func() error {
		return r.fetchShiftingInstances(gctx)
	})
	if err := g.Wait(); err != nil {
		return err
	}

	ids := map[string]bool{}
	for _, inst := range r.instancesByMatchKey {
		ids[inst.ID()] = true
	}
	for _, inst := range r.shiftingByHRID {
		ids[inst.ID()] = true
	}
	var instanceIDs []string
	for id := range ids {
		instanceIDs = append(instanceIDs, id)
	}
	if err := r.fetchGraphs(ctx, instanceIDs); err != nil {
		return err
	}

	for _, set := range r.incoming {
		pair := &domain.PairedRecordSets{Incoming: set}
		if existing, ok := r.instancesByMatchKey[set.Instance.MatchKey()]; ok {
			pair.Existing = r.existingSetFor(existing)
		}
		if shifting, ok := r.shiftingByHRID[set.Instance.HRID()]; ok {
			pair.Shifting = r.existingSetFor(shifting)
		}
		r.pairs = append(r.pairs, pair)
	}

	r.logger.DebugContext(ctx, "staging repository populated",
		slog.Int("incoming", len(r.incoming)),
		slog.Int("matched", len(r.instancesByMatchKey)),
		slog.Int("shifting", len(r.shiftingByHRID)))

	return nil
}

// fetchShiftingInstances looks up, per incoming record with a foreign
// identifier, an existing instance under the same identifier whose match
// key no longer matches.
func (r *MatchKeyRepository) fetchShiftingInstances(ctx context.Context) error {
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, set := range r.incoming {
		hrid := set.Instance.HRID()
		if hrid == "" {
			continue
		}
		key := set.Instance.MatchKey()
		g.Go(func() error {
			query := fmt.Sprintf(`hrid==%q and matchKey<>%q`, hrid, key)
			records, err := r.storage.FetchByQuery(gctx, domain.KindInstance, query)
			if err != nil {
				return fmt.Errorf("shifting match key lookup for %s: %w", hrid, err)
			}
			if len(records) == 0 {
				return nil
			}
			mu.Lock()
			defer mu.Unlock()
			inst := domain.NewInstance(records[0])
			r.shiftingByHRID[hrid] = inst
			r.instancesByID[inst.ID()] = inst
			return nil
		})
	}
	return g.Wait()
}

// internal/core/services/repository.go
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// Bulk lookup chunk sizes. Foreign identifiers are short and can be packed
// densely; match keys are long fixed-width strings so their query chunks
// stay small to respect downstream query-length limits.
const (
	hridChunkSize     = 50
	matchKeyChunkSize = 5
)

// repository is the in-memory staging area for one reconciliation batch: it
// bulk-fetches all potentially matching existing graphs from storage,
// indexes them, and pairs them with their incoming counterparts. Built
// fresh per batch, discarded after metrics extraction.
type repository struct {
	storage ports.StorageClient
	logger  *slog.Logger

	incoming []*domain.InventoryRecordSet
	pairs    []*domain.PairedRecordSets

	instancesByID       map[string]*domain.Instance
	instancesByHRID     map[string]*domain.Instance
	instancesByMatchKey map[string]*domain.Instance

	// referencedByHRID indexes instances fetched only because an incoming
	// relation references them by foreign identifier.
	referencedByHRID map[string]*domain.Instance

	holdingsByInstanceID map[string][]*domain.HoldingsRecord
	itemsByHoldingsID    map[string][]*domain.Item

	relationsByInstanceID   map[string][]*domain.InstanceRelationship
	successionsByInstanceID map[string][]*domain.TitleSuccession
}

func newRepository(storage ports.StorageClient, logger *slog.Logger, incoming []*domain.InventoryRecordSet) repository {
	return repository{
		storage:                 storage,
		logger:                  logger,
		incoming:                incoming,
		instancesByID:           map[string]*domain.Instance{},
		instancesByHRID:         map[string]*domain.Instance{},
		instancesByMatchKey:     map[string]*domain.Instance{},
		referencedByHRID:        map[string]*domain.Instance{},
		holdingsByInstanceID:    map[string][]*domain.HoldingsRecord{},
		itemsByHoldingsID:       map[string][]*domain.Item{},
		relationsByInstanceID:   map[string][]*domain.InstanceRelationship{},
		successionsByInstanceID: map[string][]*domain.TitleSuccession{},
	}
}

// Pairs returns the paired record sets assembled by BuildFromStorage.
func (r *repository) Pairs() []*domain.PairedRecordSets {
	return r.pairs
}

// ExistingInstanceByHRID returns a fetched instance by foreign identifier,
// whether it was matched to an incoming set or only referenced by a
// relation.
func (r *repository) ExistingInstanceByHRID(hrid string) *domain.Instance {
	if inst, ok := r.instancesByHRID[hrid]; ok {
		return inst
	}
	return r.referencedByHRID[hrid]
}

// RelationsFor returns the existing relations touching the given instance.
func (r *repository) RelationsFor(instanceID string) []*domain.InstanceRelationship {
	return r.relationsByInstanceID[instanceID]
}

// SuccessionsFor returns the existing title successions touching the given
// instance.
func (r *repository) SuccessionsFor(instanceID string) []*domain.TitleSuccession {
	return r.successionsByInstanceID[instanceID]
}

// fetchInstancesByField issues one chunked, concurrent wave of bulk
// instance lookups and hands each fetched instance to index.
func (r *repository) fetchInstancesByField(ctx context.Context, field string, values []string, chunkSize int, index func(*domain.Instance)) error {
	if len(values) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range chunk(values, chunkSize) {
		g.Go(func() error {
			records, err := r.storage.FetchByIdentifiers(gctx, domain.KindInstance, field, part)
			if err != nil {
				return fmt.Errorf("instance lookup by %s: %w", field, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, props := range records {
				index(domain.NewInstance(props))
			}
			return nil
		})
	}
	return g.Wait()
}

// fetchGraphs runs waves two and three: holdings for the given existing
// instances, relations touching them, then items for the discovered
// holdings. Population is all-or-nothing; callers see either the full
// result or an error.
func (r *repository) fetchGraphs(ctx context.Context, instanceIDs []string) error {
	if len(instanceIDs) == 0 {
		return nil
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, part := range chunk(instanceIDs, hridChunkSize) {
		g.Go(func() error {
			records, err := r.storage.FetchByIdentifiers(gctx, domain.KindHoldingsRecord, "instanceId", part)
			if err != nil {
				return fmt.Errorf("holdings lookup: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, props := range records {
				hr := domain.NewHoldingsRecord(props)
				r.holdingsByInstanceID[hr.InstanceID()] = append(r.holdingsByInstanceID[hr.InstanceID()], hr)
			}
			return nil
		})
		g.Go(func() error {
			return r.fetchRelations(gctx, &mu, part)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var holdingsIDs []string
	for _, list := range r.holdingsByInstanceID {
		for _, hr := range list {
			holdingsIDs = append(holdingsIDs, hr.ID())
		}
	}
	if len(holdingsIDs) == 0 {
		return nil
	}

	g, gctx = errgroup.WithContext(ctx)
	for _, part := range chunk(holdingsIDs, hridChunkSize) {
		g.Go(func() error {
			records, err := r.storage.FetchByIdentifiers(gctx, domain.KindItem, "holdingsRecordId", part)
			if err != nil {
				return fmt.Errorf("item lookup: %w", err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, props := range records {
				it := domain.NewItem(props)
				r.itemsByHoldingsID[it.HoldingsRecordID()] = append(r.itemsByHoldingsID[it.HoldingsRecordID()], it)
			}
			return nil
		})
	}
	return g.Wait()
}

func (r *repository) fetchRelations(ctx context.Context, mu *sync.Mutex, instanceIDs []string) error {
	fields := []struct {
		kind  domain.EntityKind
		field string
	}{
		{domain.KindInstanceRelationship, "superInstanceId"},
		{domain.KindInstanceRelationship, "subInstanceId"},
		{domain.KindTitleSuccession, "precedingInstanceId"},
		{domain.KindTitleSuccession, "succeedingInstanceId"},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fields {
		g.Go(func() error {
			records, err := r.storage.FetchByIdentifiers(gctx, f.kind, f.field, instanceIDs)
			if err != nil {
				return fmt.Errorf("%s lookup by %s: %w", strings.ToLower(string(f.kind)), f.field, err)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, props := range records {
				r.indexRelation(f.kind, props)
			}
			return nil
		})
	}
	return g.Wait()
}

// indexRelation indexes a fetched relation under the endpoint instance ids,
// deduplicating records discovered through both endpoints.
func (r *repository) indexRelation(kind domain.EntityKind, props map[string]any) {
	switch kind {
	case domain.KindInstanceRelationship:
		rel := domain.NewInstanceRelationship(props)
		for _, id := range []string{rel.SuperInstanceID(), rel.SubInstanceID()} {
			if id == "" || containsRelation(r.relationsByInstanceID[id], rel.ID()) {
				continue
			}
			r.relationsByInstanceID[id] = append(r.relationsByInstanceID[id], rel)
		}
	case domain.KindTitleSuccession:
		t := domain.NewTitleSuccession(props)
		for _, id := range []string{t.PrecedingInstanceID(), t.SucceedingInstanceID()} {
			if id == "" || containsSuccession(r.successionsByInstanceID[id], t.ID()) {
				continue
			}
			r.successionsByInstanceID[id] = append(r.successionsByInstanceID[id], t)
		}
	}
}

// existingSetFor assembles the full existing record set of one fetched
// instance, bottom-up: items onto holdings, holdings onto the instance.
func (r *repository) existingSetFor(inst *domain.Instance) *domain.InventoryRecordSet {
	for _, hr := range r.holdingsByInstanceID[inst.ID()] {
		hr.Items = r.itemsByHoldingsID[hr.ID()]
		inst.AddHoldingsRecord(hr)
	}
	return domain.ExistingRecordSet(inst)
}

// relationReferencedHRIDs collects foreign identifiers that incoming
// relations point at, so the referenced instances can be pre-fetched for
// endpoint resolution.
func relationReferencedHRIDs(incoming []*domain.InventoryRecordSet) []string {
	seen := map[string]bool{}
	var out []string
	for _, set := range incoming {
		for _, rec := range set.Relations() {
			var ref *domain.InstanceReference
			switch rel := rec.(type) {
			case *domain.InstanceRelationship:
				ref = rel.Reference
			case *domain.TitleSuccession:
				ref = rel.Reference
			}
			if ref != nil && ref.HRID != "" && !seen[ref.HRID] {
				seen[ref.HRID] = true
				out = append(out, ref.HRID)
			}
		}
	}
	return out
}

func containsRelation(list []*domain.InstanceRelationship, id string) bool {
	for _, rel := range list {
		if rel.ID() == id {
			return true
		}
	}
	return false
}

func containsSuccession(list []*domain.TitleSuccession, id string) bool {
	for _, t := range list {
		if t.ID() == id {
			return true
		}
	}
	return false
}

func chunk(values []string, size int) [][]string {
	var out [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		out = append(out, values[start:end])
	}
	return out
}

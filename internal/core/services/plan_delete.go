// internal/core/services/plan_delete.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// HRIDDeletePlan retires a full record graph located by foreign
// identifier: items, holdings and relations are deleted bottom-up, the
// instance itself is kept but suppressed, so sources that still reference
// it by identifier keep resolving.
type HRIDDeletePlan struct {
	planBase
	repo repository
	hrid string
	pair *domain.PairedRecordSets
}

// Statically assert that *HRIDDeletePlan implements the UpdatePlan interface.
var _ ports.UpdatePlan = (*HRIDDeletePlan)(nil)

// NewHRIDDeletePlan creates the by-identifier deletion plan.
func NewHRIDDeletePlan(storage ports.StorageClient, logger *slog.Logger, hrid string) *HRIDDeletePlan {
	logger = logger.With(slog.String("plan", "hrid-delete"))
	return &HRIDDeletePlan{
		planBase: newPlanBase(storage, logger, MergePolicy{}),
		repo:     newRepository(storage, logger, nil),
		hrid:     hrid,
	}
}

// BuildFromStorage fetches the target graph; ports.ErrNotFound when no
// instance carries the identifier.
func (p *HRIDDeletePlan) BuildFromStorage(ctx context.Context) error {
	existing, err := fetchExistingByHRID(ctx, &p.repo, p.hrid)
	if err != nil {
		return err
	}
	p.pair = &domain.PairedRecordSets{Existing: existing}
	return nil
}

// PlanInventoryUpdates tags the whole graph: children deleted, instance
// suppressed.
func (p *HRIDDeletePlan) PlanInventoryUpdates(ctx context.Context) error {
	instance := p.pair.Existing.Instance
	for _, hr := range instance.HoldingsRecords {
		hr.SetTransaction(domain.TransactionDelete)
		markItems(hr, domain.TransactionDelete)
	}
	for _, rel := range p.repo.RelationsFor(instance.ID()) {
		rel.SetTransaction(domain.TransactionDelete)
		p.pair.Existing.Parents = append(p.pair.Existing.Parents, rel)
	}
	for _, succ := range p.repo.SuccessionsFor(instance.ID()) {
		succ.SetTransaction(domain.TransactionDelete)
		p.pair.Existing.Preceding = append(p.pair.Existing.Preceding, succ)
	}

	instance.SetProperty("staffSuppress", true)
	instance.SetProperty("discoverySuppress", true)
	instance.SetTransaction(domain.TransactionUpdate)

	// The suppression update rides the standard phases as the "incoming"
	// instance of the pair; its holdings only carry delete tags, which the
	// incoming walk ignores.
	p.pair.Incoming = domain.ExistingRecordSet(instance)
	return nil
}

// DoInventoryUpdates executes the deletion phases.
func (p *HRIDDeletePlan) DoInventoryUpdates(ctx context.Context) error {
	exec := &executor{storage: p.storage, logger: p.logger, outcome: p.outcome}
	return exec.run(ctx, p.buildPhases([]*domain.PairedRecordSets{p.pair}))
}

// SharedDeletePlan removes one institution's contribution from a shared
// instance, leaving the instance and every other institution's holdings
// untouched.
type SharedDeletePlan struct {
	planBase
	repo        repository
	locations   ports.LocationResolver
	hrid        string
	institution string
	pair        *domain.PairedRecordSets
}

// Statically assert that *SharedDeletePlan implements the UpdatePlan interface.
var _ ports.UpdatePlan = (*SharedDeletePlan)(nil)

// NewSharedDeletePlan creates the institution-scoped deletion plan.
func NewSharedDeletePlan(storage ports.StorageClient, locations ports.LocationResolver, logger *slog.Logger, hrid, institution string) *SharedDeletePlan {
	logger = logger.With(slog.String("plan", "shared-delete"))
	return &SharedDeletePlan{
		planBase:    newPlanBase(storage, logger, MergePolicy{}),
		repo:        newRepository(storage, logger, nil),
		locations:   locations,
		hrid:        hrid,
		institution: institution,
	}
}

// BuildFromStorage fetches the target graph; ports.ErrNotFound when no
// instance carries the identifier.
func (p *SharedDeletePlan) BuildFromStorage(ctx context.Context) error {
	existing, err := fetchExistingByHRID(ctx, &p.repo, p.hrid)
	if err != nil {
		return err
	}
	p.pair = &domain.PairedRecordSets{Existing: existing}
	return nil
}

// PlanInventoryUpdates deletes only the requesting institution's holdings
// and items; everything else is tagged NONE.
func (p *SharedDeletePlan) PlanInventoryUpdates(ctx context.Context) error {
	if p.institution == "" {
		return fmt.Errorf("shared deletion requires an institution")
	}
	for _, hr := range p.pair.Existing.Instance.HoldingsRecords {
		owner, err := p.locations.Institution(ctx, hr.PermanentLocationID())
		if err != nil || owner != p.institution {
			hr.SetTransaction(domain.TransactionNone)
			markItems(hr, domain.TransactionNone)
			continue
		}
		hr.SetInstitutionID(owner)
		hr.SetTransaction(domain.TransactionDelete)
		markItems(hr, domain.TransactionDelete)
	}
	return nil
}

// DoInventoryUpdates executes the deletion phases.
func (p *SharedDeletePlan) DoInventoryUpdates(ctx context.Context) error {
	exec := &executor{storage: p.storage, logger: p.logger, outcome: p.outcome}
	return exec.run(ctx, p.buildPhases([]*domain.PairedRecordSets{p.pair}))
}

// fetchExistingByHRID populates a bare repository with the single graph
// matching the identifier and returns its existing record set.
func fetchExistingByHRID(ctx context.Context, repo *repository, hrid string) (*domain.InventoryRecordSet, error) {
	if hrid == "" {
		return nil, fmt.Errorf("deletion requires a foreign identifier")
	}
	var found *domain.Instance
	err := repo.fetchInstancesByField(ctx, "hrid", []string{hrid}, 1, func(inst *domain.Instance) {
		repo.instancesByID[inst.ID()] = inst
		repo.instancesByHRID[inst.HRID()] = inst
		found = inst
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("instance %q: %w", hrid, ports.ErrNotFound)
	}
	if err := repo.fetchGraphs(ctx, []string{found.ID()}); err != nil {
		return nil, err
	}
	return repo.existingSetFor(found), nil
}

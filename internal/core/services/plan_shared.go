// internal/core/services/plan_shared.go
package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// SharedInventoryPlan is the shared-inventory strategy: one instance is
// jointly owned across institutions, each contributing its own holdings and
// items. An update from one institution replaces that institution's
// contribution wholesale and must never touch holdings owned by another
// institution on the same instance.
type SharedInventoryPlan struct {
	planBase
	repo      *MatchKeyRepository
	locations ports.LocationResolver

	// institution, when set, pins the batch's owning institution instead
	// of deriving it from the incoming holdings' locations.
	institution string
}

// Statically assert that *SharedInventoryPlan implements the UpdatePlan interface.
var _ ports.UpdatePlan = (*SharedInventoryPlan)(nil)

// NewSharedInventoryPlan creates the shared-inventory update plan for one batch.
func NewSharedInventoryPlan(storage ports.StorageClient, locations ports.LocationResolver, logger *slog.Logger, incoming []*domain.InventoryRecordSet, merge MergePolicy, institution string) *SharedInventoryPlan {
	logger = logger.With(slog.String("plan", "shared-inventory"))
	return &SharedInventoryPlan{
		planBase:    newPlanBase(storage, logger, merge),
		repo:        NewMatchKeyRepository(storage, logger, incoming),
		locations:   locations,
		institution: institution,
	}
}

// BuildFromStorage populates the staging repository, including the
// shifting-match-key secondary instances.
func (p *SharedInventoryPlan) BuildFromStorage(ctx context.Context) error {
	return p.repo.BuildFromStorage(ctx)
}

// PlanInventoryUpdates partitions holdings by owning institution rather
// than diffing per record: the batch institution's existing holdings
// (including those under a shifting-key instance) are replaced wholesale,
// other institutions' holdings are tagged NONE and never touched.
func (p *SharedInventoryPlan) PlanInventoryUpdates(ctx context.Context) error {
	for _, pair := range p.repo.Pairs() {
		p.planInstance(pair)

		institution, err := p.institutionFor(ctx, pair.Incoming)
		if err != nil {
			return err
		}

		for _, existingSet := range []*domain.InventoryRecordSet{pair.Existing, pair.Shifting} {
			if existingSet == nil {
				continue
			}
			p.partitionExistingHoldings(ctx, existingSet, institution)
		}

		for _, hr := range pair.Incoming.Instance.HoldingsRecords {
			hr.EnsureID()
			hr.SetTransaction(domain.TransactionCreate)
			hr.SetInstitutionID(institution)
			for _, it := range hr.Items {
				it.EnsureID()
				it.SetTransaction(domain.TransactionCreate)
			}
		}

		p.planRelations(p.repo, pair)
		wireChildIdentifiers(pair.Incoming)
	}
	return nil
}

// DoInventoryUpdates executes the plan in dependency phases.
func (p *SharedInventoryPlan) DoInventoryUpdates(ctx context.Context) error {
	exec := &executor{storage: p.storage, logger: p.logger, outcome: p.outcome}
	return exec.run(ctx, p.buildPhases(p.repo.Pairs()))
}

// institutionFor resolves the owning institution of one incoming record
// set: the configured institution when pinned, otherwise the institution
// of the first resolvable incoming holdings location.
func (p *SharedInventoryPlan) institutionFor(ctx context.Context, incoming *domain.InventoryRecordSet) (string, error) {
	if p.institution != "" {
		return p.institution, nil
	}
	for _, hr := range incoming.Instance.HoldingsRecords {
		loc := hr.PermanentLocationID()
		if loc == "" {
			continue
		}
		institution, err := p.locations.Institution(ctx, loc)
		if err == nil {
			return institution, nil
		}
		if err != ports.ErrUnknownLocation {
			return "", fmt.Errorf("resolving institution for location %s: %w", loc, err)
		}
	}
	return "", fmt.Errorf("cannot determine owning institution for instance %q", incoming.Instance.HRID())
}

// partitionExistingHoldings tags the batch institution's holdings DELETE
// with their items cascading, and everything else NONE. A holdings record
// whose institution cannot be attributed is left NONE: never touch what
// cannot be attributed to the updating institution.
func (p *SharedInventoryPlan) partitionExistingHoldings(ctx context.Context, existingSet *domain.InventoryRecordSet, institution string) {
	for _, hr := range existingSet.Instance.HoldingsRecords {
		owner, err := p.locations.Institution(ctx, hr.PermanentLocationID())
		if err != nil {
			p.logger.WarnContext(ctx, "holdings location not attributable to an institution, leaving record untouched",
				slog.String("holdings_id", hr.ID()),
				slog.String("location_id", hr.PermanentLocationID()))
			hr.SetTransaction(domain.TransactionNone)
			markItems(hr, domain.TransactionNone)
			continue
		}
		hr.SetInstitutionID(owner)
		if owner == institution {
			hr.SetTransaction(domain.TransactionDelete)
			markItems(hr, domain.TransactionDelete)
		} else {
			hr.SetTransaction(domain.TransactionNone)
			markItems(hr, domain.TransactionNone)
		}
	}
}

func markItems(hr *domain.HoldingsRecord, txn domain.Transaction) {
	for _, it := range hr.Items {
		it.SetTransaction(txn)
	}
}

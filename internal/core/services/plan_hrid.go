// internal/core/services/plan_hrid.go
package services

import (
	"context"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// HRIDPlan is the non-shared reconciliation strategy: every node of the
// graph is correlated by its foreign-system identifier, and only the diff
// is sent to storage.
type HRIDPlan struct {
	planBase
	repo *HRIDRepository
}

// Statically assert that *HRIDPlan implements the UpdatePlan interface.
var _ ports.UpdatePlan = (*HRIDPlan)(nil)

// NewHRIDPlan creates the by-identifier update plan for one batch.
func NewHRIDPlan(storage ports.StorageClient, logger *slog.Logger, incoming []*domain.InventoryRecordSet, merge MergePolicy) *HRIDPlan {
	logger = logger.With(slog.String("plan", "hrid"))
	return &HRIDPlan{
		planBase: newPlanBase(storage, logger, merge),
		repo:     NewHRIDRepository(storage, logger, incoming),
	}
}

// BuildFromStorage populates the staging repository.
func (p *HRIDPlan) BuildFromStorage(ctx context.Context) error {
	return p.repo.BuildFromStorage(ctx)
}

// PlanInventoryUpdates assigns a transaction to every record of every pair.
// Side-effect-free on storage.
func (p *HRIDPlan) PlanInventoryUpdates(ctx context.Context) error {
	for _, pair := range p.repo.Pairs() {
		p.planInstance(pair)
		p.planHoldingsAndItems(pair)
		p.planRelations(p.repo, pair)
		wireChildIdentifiers(pair.Incoming)
	}
	return nil
}

// DoInventoryUpdates executes the plan in dependency phases.
func (p *HRIDPlan) DoInventoryUpdates(ctx context.Context) error {
	exec := &executor{storage: p.storage, logger: p.logger, outcome: p.outcome}
	return exec.run(ctx, p.buildPhases(p.repo.Pairs()))
}

// planHoldingsAndItems runs the per-identifier diff below the instance.
// Existing holdings absent from the incoming graph are deleted with their
// items cascading, except items the incoming graph re-attached under a
// different holdings record: those become updates with their identifier
// carried over — a local move, not a delete and re-create. Whatever the
// diff leaves UNKNOWN on the incoming side is created.
func (p *HRIDPlan) planHoldingsAndItems(pair *domain.PairedRecordSets) {
	incoming := pair.Incoming

	if pair.HasExisting() {
		for _, existingHR := range pair.Existing.Instance.HoldingsRecords {
			match := incoming.HoldingsRecordByHRID(existingHR.HRID())
			if match == nil {
				existingHR.SetTransaction(domain.TransactionDelete)
				p.diffItems(incoming, existingHR)
				continue
			}
			match.SetID(existingHR.ID())
			match.SetVersion(existingHR.Version())
			match.SetTransaction(domain.TransactionUpdate)
			p.diffItems(incoming, existingHR)
		}
	}

	for _, hr := range incoming.Instance.HoldingsRecords {
		if hr.Transaction() == domain.TransactionUnknown {
			hr.EnsureID()
			hr.SetTransaction(domain.TransactionCreate)
		}
		for _, it := range hr.Items {
			if it.Transaction() == domain.TransactionUnknown {
				it.EnsureID()
				it.SetTransaction(domain.TransactionCreate)
			}
		}
	}
}

// diffItems applies the matching rule over one existing holdings record's
// items. An existing item re-matched anywhere in the incoming graph turns
// into an update of the incoming item; one matched nowhere is deleted.
func (p *HRIDPlan) diffItems(incoming *domain.InventoryRecordSet, existingHR *domain.HoldingsRecord) {
	for _, existingItem := range existingHR.Items {
		if match := incoming.ItemByHRID(existingItem.HRID()); match != nil {
			match.SetID(existingItem.ID())
			match.SetVersion(existingItem.Version())
			match.SetTransaction(domain.TransactionUpdate)
			existingItem.SetTransaction(domain.TransactionNone)
			continue
		}
		existingItem.SetTransaction(domain.TransactionDelete)
	}
}

// internal/core/services/plan.go
package services

import (
	"fmt"
	"log/slog"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
)

// Mode selects the reconciliation strategy for a batch.
type Mode string

const (
	ModeHRID           Mode = "hrid"
	ModeSharedMatchKey Mode = "shared-matchkey"
)

// stagingRepo is what planners need from a populated staging repository.
type stagingRepo interface {
	Pairs() []*domain.PairedRecordSets
	ExistingInstanceByHRID(hrid string) *domain.Instance
	RelationsFor(instanceID string) []*domain.InstanceRelationship
	SuccessionsFor(instanceID string) []*domain.TitleSuccession
}

// planBase carries the state shared by all update plan strategies.
type planBase struct {
	storage ports.StorageClient
	logger  *slog.Logger
	outcome *domain.UpdateOutcome
	merge   MergePolicy

	// provisional instances created during relation endpoint resolution,
	// keyed by foreign identifier so multiple references share one record.
	provisional       []*domain.Instance
	provisionalByHRID map[string]*domain.Instance

	// relationDeps records which in-batch instance creations a relation
	// depends on, for SKIPPED propagation during execution.
	relationDeps map[domain.Record][]domain.Record
}

func newPlanBase(storage ports.StorageClient, logger *slog.Logger, merge MergePolicy) planBase {
	return planBase{
		storage:           storage,
		logger:            logger,
		outcome:           domain.NewUpdateOutcome(),
		merge:             merge,
		provisionalByHRID: map[string]*domain.Instance{},
		relationDeps:      map[domain.Record][]domain.Record{},
	}
}

// Outcome returns the aggregated batch outcome.
func (p *planBase) Outcome() *domain.UpdateOutcome {
	return p.outcome
}

// planInstance matches spec step one: copy identifier and version from the
// existing instance and tag UPDATE, merging retained properties; or
// generate an identifier and tag CREATE.
func (p *planBase) planInstance(pair *domain.PairedRecordSets) {
	incoming := pair.Incoming.Instance
	if pair.HasExisting() {
		existing := pair.Existing.Instance
		incoming.SetID(existing.ID())
		incoming.SetVersion(existing.Version())
		incoming.SetTransaction(domain.TransactionUpdate)
		mergeInstanceProperties(incoming, existing, p.merge)
		return
	}
	incoming.EnsureID()
	incoming.SetTransaction(domain.TransactionCreate)
}

// resolveReference resolves a relation's far-end instance reference to a
// UUID. Resolution order: direct UUID, an instance elsewhere in this batch,
// an instance pre-fetched from storage, then a provisional instance when
// the reference supplies one. The returned dep, when not nil, is a record
// the relation's creation depends on.
func (p *planBase) resolveReference(repo stagingRepo, ref *domain.InstanceReference) (string, domain.Record, error) {
	if ref == nil {
		return "", nil, fmt.Errorf("relation carries no instance reference")
	}
	if ref.UUID != "" {
		return ref.UUID, nil, nil
	}
	if ref.HRID == "" {
		return "", nil, fmt.Errorf("relation carries neither uuid nor hrid reference")
	}

	for _, other := range repo.Pairs() {
		inst := other.Incoming.Instance
		if inst.HRID() == ref.HRID && inst.ID() != "" {
			if inst.Transaction() == domain.TransactionCreate {
				return inst.ID(), inst, nil
			}
			return inst.ID(), nil, nil
		}
	}

	if inst := repo.ExistingInstanceByHRID(ref.HRID); inst != nil {
		return inst.ID(), nil, nil
	}

	if prov, ok := p.provisionalByHRID[ref.HRID]; ok {
		return prov.ID(), prov, nil
	}
	if ref.Provisional != nil {
		prov := domain.NewInstance(ref.Provisional)
		if prov.HRID() == "" {
			prov.SetProperty("hrid", ref.HRID)
		}
		prov.EnsureID()
		prov.SetTransaction(domain.TransactionCreate)
		p.provisional = append(p.provisional, prov)
		p.provisionalByHRID[ref.HRID] = prov
		return prov.ID(), prov, nil
	}

	return "", nil, fmt.Errorf("referenced instance %q not found and no provisional instance supplied", ref.HRID)
}

// planRelations diffs the incoming instance-to-instance relations against
// the existing ones, matched by value identity of the resolved endpoints.
// A payload silent about relations leaves existing relations untouched.
func (p *planBase) planRelations(repo stagingRepo, pair *domain.PairedRecordSets) {
	incoming := pair.Incoming
	if !incoming.HasRelations() {
		return
	}
	instanceID := incoming.Instance.ID()

	incomingRels := map[string]*domain.InstanceRelationship{}
	for _, rel := range incoming.Parents {
		p.resolveRelationship(repo, rel, instanceID, true, incomingRels)
	}
	for _, rel := range incoming.Children {
		p.resolveRelationship(repo, rel, instanceID, false, incomingRels)
	}

	incomingSucc := map[string]*domain.TitleSuccession{}
	for _, t := range incoming.Preceding {
		p.resolveSuccession(repo, t, instanceID, true, incomingSucc)
	}
	for _, t := range incoming.Succeeding {
		p.resolveSuccession(repo, t, instanceID, false, incomingSucc)
	}

	for _, existing := range repo.RelationsFor(instanceID) {
		if match, ok := incomingRels[existing.IdentityKey()]; ok {
			match.SetTransaction(domain.TransactionNone)
			existing.SetTransaction(domain.TransactionNone)
			continue
		}
		existing.SetTransaction(domain.TransactionDelete)
		p.staleRelations(pair, existing, nil)
	}
	for _, existing := range repo.SuccessionsFor(instanceID) {
		if match, ok := incomingSucc[existing.IdentityKey()]; ok {
			match.SetTransaction(domain.TransactionNone)
			existing.SetTransaction(domain.TransactionNone)
			continue
		}
		existing.SetTransaction(domain.TransactionDelete)
		p.staleRelations(pair, nil, existing)
	}

	for _, rel := range incomingRels {
		if rel.Transaction() == domain.TransactionUnknown && rel.Resolved() {
			rel.EnsureID()
			rel.SetTransaction(domain.TransactionCreate)
		}
	}
	for _, t := range incomingSucc {
		if t.Transaction() == domain.TransactionUnknown && t.Resolved() {
			t.EnsureID()
			t.SetTransaction(domain.TransactionCreate)
		}
	}
}

func (p *planBase) resolveRelationship(repo stagingRepo, rel *domain.InstanceRelationship, instanceID string, parent bool, resolved map[string]*domain.InstanceRelationship) {
	other, dep, err := p.resolveReference(repo, rel.Reference)
	if err != nil {
		p.skipRelation(rel, err)
		return
	}
	if parent {
		rel.SetSubInstanceID(instanceID)
		rel.SetSuperInstanceID(other)
	} else {
		rel.SetSuperInstanceID(instanceID)
		rel.SetSubInstanceID(other)
	}
	if dep != nil {
		p.relationDeps[rel] = append(p.relationDeps[rel], dep)
	}
	resolved[rel.IdentityKey()] = rel
}

func (p *planBase) resolveSuccession(repo stagingRepo, t *domain.TitleSuccession, instanceID string, preceding bool, resolved map[string]*domain.TitleSuccession) {
	other, dep, err := p.resolveReference(repo, t.Reference)
	if err != nil {
		p.skipRelation(t, err)
		return
	}
	if preceding {
		t.SetSucceedingInstanceID(instanceID)
		t.SetPrecedingInstanceID(other)
	} else {
		t.SetPrecedingInstanceID(instanceID)
		t.SetSucceedingInstanceID(other)
	}
	if dep != nil {
		p.relationDeps[t] = append(p.relationDeps[t], dep)
	}
	resolved[t.IdentityKey()] = t
}

// skipRelation settles an unresolvable relation at planning time.
func (p *planBase) skipRelation(rec domain.Record, err error) {
	rec.SetOutcome(domain.OutcomeSkipped)
	p.outcome.Count(rec.Kind(), domain.TransactionCreate, domain.OutcomeSkipped)
	p.outcome.AddError(domain.RecordError{
		Kind:        rec.Kind(),
		Transaction: domain.TransactionCreate,
		Message:     err.Error(),
		Record:      rec.Payload(),
	})
}

// staleRelations collects existing relations tagged for deletion onto the
// pair so phase construction finds them.
func (p *planBase) staleRelations(pair *domain.PairedRecordSets, rel *domain.InstanceRelationship, succ *domain.TitleSuccession) {
	if pair.Existing == nil {
		return
	}
	if rel != nil {
		pair.Existing.Parents = append(pair.Existing.Parents, rel)
	}
	if succ != nil {
		pair.Existing.Preceding = append(pair.Existing.Preceding, succ)
	}
}

// wireChildIdentifiers points holdings at their instance and items at their
// holdings. Applied after transactions are assigned, so moved items are
// re-pointed at their new parents too.
func wireChildIdentifiers(set *domain.InventoryRecordSet) {
	instanceID := set.Instance.ID()
	for _, hr := range set.Instance.HoldingsRecords {
		hr.SetInstanceID(instanceID)
		for _, it := range hr.Items {
			it.SetHoldingsRecordID(hr.ID())
		}
	}
}

// buildPhases assembles the strict dependency phases from every tagged
// record of every pair. Order: deletes bottom-up (items, holdings, stale
// relations), creates top-down (instances, holdings), updates, relations,
// then items last (updates before creates).
func (p *planBase) buildPhases(pairs []*domain.PairedRecordSets) []phase {
	deleteItems := phase{name: "delete items"}
	deleteHoldings := phase{name: "delete holdings"}
	deleteRelations := phase{name: "delete relations"}
	createInstances := phase{name: "create instances"}
	createHoldings := phase{name: "create holdings"}
	updateInstancesHoldings := phase{name: "update instances and holdings"}
	createRelations := phase{name: "create relations"}
	updateItems := phase{name: "update items"}
	createItems := phase{name: "create items"}

	for _, prov := range p.provisional {
		createInstances.add(prov)
	}

	for _, pair := range pairs {
		for _, existingSet := range []*domain.InventoryRecordSet{pair.Existing, pair.Shifting} {
			if existingSet == nil {
				continue
			}
			for _, hr := range existingSet.Instance.HoldingsRecords {
				var itemDeps []domain.Record
				for _, it := range hr.Items {
					if it.Transaction() == domain.TransactionDelete {
						deleteItems.add(it)
						itemDeps = append(itemDeps, it)
					}
				}
				if hr.Transaction() == domain.TransactionDelete {
					deleteHoldings.add(hr, itemDeps...)
				}
			}
			for _, rec := range existingSet.Relations() {
				if rec.Transaction() == domain.TransactionDelete {
					deleteRelations.add(rec)
				}
			}
		}

		incoming := pair.Incoming
		if incoming == nil {
			continue
		}
		inst := incoming.Instance
		switch inst.Transaction() {
		case domain.TransactionCreate:
			createInstances.add(inst)
		case domain.TransactionUpdate:
			updateInstancesHoldings.add(inst)
		}

		for _, hr := range inst.HoldingsRecords {
			switch hr.Transaction() {
			case domain.TransactionCreate:
				if inst.Transaction() == domain.TransactionCreate {
					createHoldings.add(hr, inst)
				} else {
					createHoldings.add(hr)
				}
			case domain.TransactionUpdate:
				updateInstancesHoldings.add(hr)
			}
			for _, it := range hr.Items {
				switch it.Transaction() {
				case domain.TransactionCreate:
					if hr.Transaction() == domain.TransactionCreate {
						createItems.add(it, hr)
					} else {
						createItems.add(it)
					}
				case domain.TransactionUpdate:
					if hr.Transaction() == domain.TransactionCreate {
						updateItems.add(it, hr)
					} else {
						updateItems.add(it)
					}
				}
			}
		}

		for _, rec := range incoming.Relations() {
			if rec.Transaction() == domain.TransactionCreate {
				createRelations.add(rec, p.relationDeps[rec]...)
			}
		}
	}

	return []phase{
		deleteItems,
		deleteHoldings,
		deleteRelations,
		createInstances,
		createHoldings,
		updateInstancesHoldings,
		createRelations,
		updateItems,
		createItems,
	}
}

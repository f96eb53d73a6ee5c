// internal/core/domain/recordset.go
package domain

import (
	"errors"
	"fmt"
)

// ErrMissingInstance is returned when an incoming record set carries no instance.
var ErrMissingInstance = errors.New("inventory record set has no instance")

// InventoryRecordSet is one full record graph: an instance, its holdings and
// items, plus the instance-to-instance relations. The same shape is used for
// the incoming flavor (parsed from a request) and the existing flavor
// (assembled from storage by the staging repository).
type InventoryRecordSet struct {
	Instance *Instance

	Parents    []*InstanceRelationship
	Children   []*InstanceRelationship
	Preceding  []*TitleSuccession
	Succeeding []*TitleSuccession

	// hasRelations distinguishes "payload declared instanceRelations"
	// (possibly empty, meaning: remove what exists) from "payload was
	// silent about relations" (leave them alone).
	hasRelations bool

	// source is the raw request payload, kept for diagnostics and archiving.
	source map[string]any
}

// NewIncomingRecordSet parses one request payload of the shape
//
//	{"instance": {...},
//	 "holdingsRecords": [{..., "items": [...]}, ...],
//	 "instanceRelations": {"parentInstances": [...], "childInstances": [...],
//	                       "precedingTitles": [...], "succeedingTitles": [...]}}
//
// Items are detached from their holdings bag during parsing so each bag is
// exactly what goes to storage for its own entity kind.
func NewIncomingRecordSet(payload map[string]any) (*InventoryRecordSet, error) {
	instProps, ok := payload["instance"].(map[string]any)
	if !ok {
		return nil, ErrMissingInstance
	}

	set := &InventoryRecordSet{
		Instance: NewInstance(instProps),
		source:   payload,
	}

	if holdings, ok := payload["holdingsRecords"].([]any); ok {
		for idx, raw := range holdings {
			hrProps, ok := raw.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("holdings record at index %d is not an object", idx)
			}
			hr := NewHoldingsRecord(hrProps)
			if items, ok := hrProps["items"].([]any); ok {
				for j, rawItem := range items {
					itProps, ok := rawItem.(map[string]any)
					if !ok {
						return nil, fmt.Errorf("item at index %d.%d is not an object", idx, j)
					}
					hr.AddItem(NewItem(itProps))
				}
				delete(hrProps, "items")
			}
			set.Instance.AddHoldingsRecord(hr)
		}
	}

	if rels, ok := payload["instanceRelations"].(map[string]any); ok {
		set.hasRelations = true
		if err := set.parseRelations(rels); err != nil {
			return nil, err
		}
	}

	return set, nil
}

// ExistingRecordSet wraps an instance graph assembled from storage.
func ExistingRecordSet(instance *Instance) *InventoryRecordSet {
	return &InventoryRecordSet{Instance: instance}
}

func (s *InventoryRecordSet) parseRelations(rels map[string]any) error {
	for _, raw := range asObjects(rels["parentInstances"]) {
		rel := NewInstanceRelationship(map[string]any{})
		if typeID, ok := raw["instanceRelationshipTypeId"].(string); ok {
			rel.SetProperty("instanceRelationshipTypeId", typeID)
		}
		rel.Reference = parseReference(raw, "superInstanceId")
		s.Parents = append(s.Parents, rel)
	}
	for _, raw := range asObjects(rels["childInstances"]) {
		rel := NewInstanceRelationship(map[string]any{})
		if typeID, ok := raw["instanceRelationshipTypeId"].(string); ok {
			rel.SetProperty("instanceRelationshipTypeId", typeID)
		}
		rel.Reference = parseReference(raw, "subInstanceId")
		s.Children = append(s.Children, rel)
	}
	for _, raw := range asObjects(rels["precedingTitles"]) {
		t := NewTitleSuccession(map[string]any{})
		t.Reference = parseReference(raw, "precedingInstanceId")
		s.Preceding = append(s.Preceding, t)
	}
	for _, raw := range asObjects(rels["succeedingTitles"]) {
		t := NewTitleSuccession(map[string]any{})
		t.Reference = parseReference(raw, "succeedingInstanceId")
		s.Succeeding = append(s.Succeeding, t)
	}
	return nil
}

// parseReference reads the far-end reference of a relation entry: either a
// direct UUID under uuidField, or a foreign identifier under
// instanceIdentifier.hrid, optionally with a provisional instance body.
func parseReference(raw map[string]any, uuidField string) *InstanceReference {
	ref := &InstanceReference{}
	if id, ok := raw[uuidField].(string); ok {
		ref.UUID = id
	}
	if ident, ok := raw["instanceIdentifier"].(map[string]any); ok {
		if hrid, ok := ident["hrid"].(string); ok {
			ref.HRID = hrid
		}
	}
	if prov, ok := raw["provisionalInstance"].(map[string]any); ok {
		ref.Provisional = prov
	}
	return ref
}

func asObjects(raw any) []map[string]any {
	list, ok := raw.([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(list))
	for _, e := range list {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// HasRelations reports whether the payload declared an instanceRelations
// object at all.
func (s *InventoryRecordSet) HasRelations() bool {
	return s.hasRelations
}

// Source returns the raw request payload this set was parsed from, nil for
// existing sets.
func (s *InventoryRecordSet) Source() map[string]any {
	return s.source
}

// HoldingsRecordByHRID finds a holdings record in this set by foreign
// identifier, nil when absent.
func (s *InventoryRecordSet) HoldingsRecordByHRID(hrid string) *HoldingsRecord {
	if hrid == "" {
		return nil
	}
	for _, hr := range s.Instance.HoldingsRecords {
		if hr.HRID() == hrid {
			return hr
		}
	}
	return nil
}

// ItemByHRID finds an item anywhere in this set by foreign identifier.
func (s *InventoryRecordSet) ItemByHRID(hrid string) *Item {
	if hrid == "" {
		return nil
	}
	for _, hr := range s.Instance.HoldingsRecords {
		for _, it := range hr.Items {
			if it.HRID() == hrid {
				return it
			}
		}
	}
	return nil
}

// Relations returns all relation records of the set.
func (s *InventoryRecordSet) Relations() []Record {
	var out []Record
	for _, r := range s.Parents {
		out = append(out, r)
	}
	for _, r := range s.Children {
		out = append(out, r)
	}
	for _, t := range s.Preceding {
		out = append(out, t)
	}
	for _, t := range s.Succeeding {
		out = append(out, t)
	}
	return out
}

// PairedRecordSets holds one incoming record set and the existing graph it
// was correlated with, if any. The match-key strategy may additionally carry
// a secondary existing instance found under the same foreign identifier but
// a different match key ("shifting match key"); its holdings are folded into
// deletion planning.
type PairedRecordSets struct {
	Incoming *InventoryRecordSet
	Existing *InventoryRecordSet
	Shifting *InventoryRecordSet
}

// HasExisting reports whether a primary existing match was found.
func (p *PairedRecordSets) HasExisting() bool {
	return p.Existing != nil && p.Existing.Instance != nil
}

// HasShifting reports whether a shifting-key secondary instance was found.
func (p *PairedRecordSets) HasShifting() bool {
	return p.Shifting != nil && p.Shifting.Instance != nil
}

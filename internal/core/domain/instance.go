// internal/core/domain/instance.go
package domain

// Instance is the root of a bibliographic record graph. It owns its
// holdings records; traversal back up the graph goes through the staging
// repository's indexes, never through object back-references.
type Instance struct {
	InventoryRecord
	HoldingsRecords []*HoldingsRecord
}

// NewInstance wraps instance properties.
func NewInstance(props map[string]any) *Instance {
	return &Instance{InventoryRecord: NewInventoryRecord(props)}
}

// Kind implements Record.
func (i *Instance) Kind() EntityKind { return KindInstance }

// Title returns the instance title, "" when absent.
func (i *Instance) Title() string {
	return i.GetString("title")
}

// MatchKey returns the instance's match key. An explicit matchKey string
// property wins verbatim; otherwise the key is derived from the descriptive
// fields and cached on the property bag so repeated reads are stable.
func (i *Instance) MatchKey() string {
	if s, ok := i.props["matchKey"].(string); ok && s != "" {
		return s
	}
	key := BuildMatchKey(i.props)
	i.props["matchKey"] = key
	return key
}

// AddHoldingsRecord attaches a holdings record to this instance.
func (i *Instance) AddHoldingsRecord(hr *HoldingsRecord) {
	i.HoldingsRecords = append(i.HoldingsRecords, hr)
}

// Items returns all items across the instance's holdings.
func (i *Instance) Items() []*Item {
	var items []*Item
	for _, hr := range i.HoldingsRecords {
		items = append(items, hr.Items...)
	}
	return items
}

// HoldingsRecord sits between an Instance and its Items and carries the
// location reference used to resolve an owning institution.
type HoldingsRecord struct {
	InventoryRecord
	Items []*Item

	// institutionID is resolved lazily from the permanent location by
	// the shared-inventory planner; "" until resolved.
	institutionID string
}

// NewHoldingsRecord wraps holdings properties.
func NewHoldingsRecord(props map[string]any) *HoldingsRecord {
	return &HoldingsRecord{InventoryRecord: NewInventoryRecord(props)}
}

// Kind implements Record.
func (h *HoldingsRecord) Kind() EntityKind { return KindHoldingsRecord }

// InstanceID returns the owning instance UUID reference.
func (h *HoldingsRecord) InstanceID() string {
	return h.GetString("instanceId")
}

// SetInstanceID points the holdings record at its owning instance.
func (h *HoldingsRecord) SetInstanceID(id string) {
	h.SetProperty("instanceId", id)
}

// PermanentLocationID returns the location reference, "" when absent.
func (h *HoldingsRecord) PermanentLocationID() string {
	return h.GetString("permanentLocationId")
}

// InstitutionID returns the owning institution resolved for this holdings
// record, or "" when not resolved yet.
func (h *HoldingsRecord) InstitutionID() string {
	return h.institutionID
}

// SetInstitutionID records the resolved owning institution.
func (h *HoldingsRecord) SetInstitutionID(id string) {
	h.institutionID = id
}

// AddItem attaches an item to this holdings record.
func (h *HoldingsRecord) AddItem(item *Item) {
	h.Items = append(h.Items, item)
}

// Item is a physical or circulating copy under one holdings record.
type Item struct {
	InventoryRecord
}

// NewItem wraps item properties.
func NewItem(props map[string]any) *Item {
	return &Item{InventoryRecord: NewInventoryRecord(props)}
}

// Kind implements Record.
func (it *Item) Kind() EntityKind { return KindItem }

// HoldingsRecordID returns the owning holdings UUID reference.
func (it *Item) HoldingsRecordID() string {
	return it.GetString("holdingsRecordId")
}

// SetHoldingsRecordID points the item at its owning holdings record.
func (it *Item) SetHoldingsRecordID(id string) {
	it.SetProperty("holdingsRecordId", id)
}

// Barcode returns the item barcode, "" when absent.
func (it *Item) Barcode() string {
	return it.GetString("barcode")
}

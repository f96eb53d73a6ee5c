// internal/core/domain/relations.go
package domain

import "fmt"

// InstanceReference identifies the far end of an instance-to-instance
// relation. Incoming relations may point at another instance by UUID or by
// foreign identifier; by-HRID references are resolved during planning,
// optionally against a provisional instance when the referenced instance
// exists nowhere yet.
type InstanceReference struct {
	HRID        string
	UUID        string
	Provisional map[string]any
}

// InstanceRelationship is a parent/child relation between two instances.
// Storage shape: {id, superInstanceId, subInstanceId, instanceRelationshipTypeId}.
type InstanceRelationship struct {
	InventoryRecord
	Reference *InstanceReference
}

// NewInstanceRelationship wraps relationship properties.
func NewInstanceRelationship(props map[string]any) *InstanceRelationship {
	return &InstanceRelationship{InventoryRecord: NewInventoryRecord(props)}
}

// Kind implements Record.
func (r *InstanceRelationship) Kind() EntityKind { return KindInstanceRelationship }

// SuperInstanceID returns the parent instance UUID.
func (r *InstanceRelationship) SuperInstanceID() string { return r.GetString("superInstanceId") }

// SubInstanceID returns the child instance UUID.
func (r *InstanceRelationship) SubInstanceID() string { return r.GetString("subInstanceId") }

// RelationshipTypeID returns the relation type reference.
func (r *InstanceRelationship) RelationshipTypeID() string {
	return r.GetString("instanceRelationshipTypeId")
}

// SetSuperInstanceID points the relation at its parent instance.
func (r *InstanceRelationship) SetSuperInstanceID(id string) { r.SetProperty("superInstanceId", id) }

// SetSubInstanceID points the relation at its child instance.
func (r *InstanceRelationship) SetSubInstanceID(id string) { r.SetProperty("subInstanceId", id) }

// IdentityKey is the value identity used to diff relations: two relations
// are the same when type and both endpoints agree.
func (r *InstanceRelationship) IdentityKey() string {
	return fmt.Sprintf("%s|%s|%s", r.RelationshipTypeID(), r.SuperInstanceID(), r.SubInstanceID())
}

// Resolved reports whether both endpoints carry UUIDs.
func (r *InstanceRelationship) Resolved() bool {
	return r.SuperInstanceID() != "" && r.SubInstanceID() != ""
}

// TitleSuccession is a preceding/succeeding title relation between two
// instances. Storage shape: {id, precedingInstanceId, succeedingInstanceId}.
type TitleSuccession struct {
	InventoryRecord
	Reference *InstanceReference
}

// NewTitleSuccession wraps title succession properties.
func NewTitleSuccession(props map[string]any) *TitleSuccession {
	return &TitleSuccession{InventoryRecord: NewInventoryRecord(props)}
}

// Kind implements Record.
func (t *TitleSuccession) Kind() EntityKind { return KindTitleSuccession }

// PrecedingInstanceID returns the preceding title's instance UUID.
func (t *TitleSuccession) PrecedingInstanceID() string { return t.GetString("precedingInstanceId") }

// SucceedingInstanceID returns the succeeding title's instance UUID.
func (t *TitleSuccession) SucceedingInstanceID() string { return t.GetString("succeedingInstanceId") }

// SetPrecedingInstanceID points the succession at its preceding instance.
func (t *TitleSuccession) SetPrecedingInstanceID(id string) {
	t.SetProperty("precedingInstanceId", id)
}

// SetSucceedingInstanceID points the succession at its succeeding instance.
func (t *TitleSuccession) SetSucceedingInstanceID(id string) {
	t.SetProperty("succeedingInstanceId", id)
}

// IdentityKey is the value identity used to diff title successions.
func (t *TitleSuccession) IdentityKey() string {
	return fmt.Sprintf("%s|%s", t.PrecedingInstanceID(), t.SucceedingInstanceID())
}

// Resolved reports whether both endpoints carry UUIDs.
func (t *TitleSuccession) Resolved() bool {
	return t.PrecedingInstanceID() != "" && t.SucceedingInstanceID() != ""
}

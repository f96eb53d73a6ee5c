// internal/core/domain/record.go
package domain

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Transaction is the life-cycle intent assigned to a record during planning.
type Transaction int

const (
	TransactionUnknown Transaction = iota
	TransactionCreate
	TransactionUpdate
	TransactionDelete
	TransactionGet
	// TransactionNone marks a record that exists and is intentionally left untouched.
	TransactionNone
)

// String returns the transaction name
func (t Transaction) String() string {
	switch t {
	case TransactionCreate:
		return "CREATE"
	case TransactionUpdate:
		return "UPDATE"
	case TransactionDelete:
		return "DELETE"
	case TransactionGet:
		return "GET"
	case TransactionNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

// Outcome is the terminal execution result of a single record operation.
type Outcome int

const (
	OutcomePending Outcome = iota
	OutcomeCompleted
	OutcomeFailed
	OutcomeSkipped
)

// String returns the outcome name
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "COMPLETED"
	case OutcomeFailed:
		return "FAILED"
	case OutcomeSkipped:
		return "SKIPPED"
	default:
		return "PENDING"
	}
}

// EntityKind identifies the storage entity a record maps to.
type EntityKind string

const (
	KindInstance             EntityKind = "INSTANCE"
	KindHoldingsRecord       EntityKind = "HOLDINGS_RECORD"
	KindItem                 EntityKind = "ITEM"
	KindInstanceRelationship EntityKind = "INSTANCE_RELATIONSHIP"
	KindTitleSuccession      EntityKind = "INSTANCE_TITLE_SUCCESSION"
	KindLocation             EntityKind = "LOCATION"
)

// Record is the narrow view the executor needs of any graph node.
type Record interface {
	Kind() EntityKind
	ID() string
	Transaction() Transaction
	SetTransaction(Transaction)
	Outcome() Outcome
	SetOutcome(Outcome)
	Payload() map[string]any
	Error() error
	Fail(error)
}

// InventoryRecord is the base for Instance, HoldingsRecord, Item and the
// instance-to-instance relation records. It carries the raw JSON property
// bag verbatim; the engine only reasons about the handful of fields it
// manages (id, hrid, _version, matchKey, location references).
type InventoryRecord struct {
	props       map[string]any
	transaction Transaction
	outcome     Outcome
	err         error
}

// NewInventoryRecord wraps a property bag. A nil bag becomes an empty one.
func NewInventoryRecord(props map[string]any) InventoryRecord {
	if props == nil {
		props = map[string]any{}
	}
	return InventoryRecord{props: props}
}

// ID returns the record's UUID, or "" when not yet assigned.
func (r *InventoryRecord) ID() string {
	return r.GetString("id")
}

// SetID assigns the record's UUID.
func (r *InventoryRecord) SetID(id string) {
	r.props["id"] = id
}

// EnsureID generates a UUID if the record has none yet and returns it.
func (r *InventoryRecord) EnsureID() string {
	if r.ID() == "" {
		r.SetID(uuid.NewString())
	}
	return r.ID()
}

// HRID returns the foreign-system identifier, or "".
func (r *InventoryRecord) HRID() string {
	return r.GetString("hrid")
}

// Version returns the optimistic-concurrency version, 0 when absent.
func (r *InventoryRecord) Version() int64 {
	switch v := r.props["_version"].(type) {
	case float64:
		return int64(v)
	case int:
		return int64(v)
	case int64:
		return v
	case json.Number:
		n, _ := v.Int64()
		return n
	case string:
		var n int64
		fmt.Sscanf(v, "%d", &n)
		return n
	}
	return 0
}

// SetVersion stores the optimistic-concurrency version on the bag.
func (r *InventoryRecord) SetVersion(v int64) {
	r.props["_version"] = v
}

// Transaction returns the planned transaction tag.
func (r *InventoryRecord) Transaction() Transaction {
	return r.transaction
}

// SetTransaction assigns the planned transaction tag.
func (r *InventoryRecord) SetTransaction(t Transaction) {
	r.transaction = t
}

// Outcome returns the execution outcome.
func (r *InventoryRecord) Outcome() Outcome {
	return r.outcome
}

// SetOutcome assigns the execution outcome.
func (r *InventoryRecord) SetOutcome(o Outcome) {
	r.outcome = o
}

// Error returns the record-level execution error, if any.
func (r *InventoryRecord) Error() error {
	return r.err
}

// Fail marks the record FAILED and attaches the error.
func (r *InventoryRecord) Fail(err error) {
	r.outcome = OutcomeFailed
	r.err = err
}

// Payload returns the property bag as it should go over the wire.
func (r *InventoryRecord) Payload() map[string]any {
	return r.props
}

// GetString reads a top-level string property, "" when absent or non-string.
func (r *InventoryRecord) GetString(key string) string {
	if s, ok := r.props[key].(string); ok {
		return s
	}
	return ""
}

// SetProperty writes a top-level property on the bag.
func (r *InventoryRecord) SetProperty(key string, value any) {
	r.props[key] = value
}

// HasProperty reports whether the bag carries the given top-level key.
func (r *InventoryRecord) HasProperty(key string) bool {
	_, ok := r.props[key]
	return ok
}

// arrayOfMaps reads a top-level JSON array of objects from the bag.
func (r *InventoryRecord) arrayOfMaps(key string) []map[string]any {
	raw, ok := r.props[key].([]any)
	if !ok {
		return nil
	}
	out := make([]map[string]any, 0, len(raw))
	for _, e := range raw {
		if m, ok := e.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

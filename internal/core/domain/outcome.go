// internal/core/domain/outcome.go
package domain

import "sync"

// BatchStatus is the caller-visible shape of a batch outcome.
type BatchStatus int

const (
	BatchSuccess BatchStatus = iota
	BatchPartialSuccess
	BatchFailure
)

// String returns the status name
func (s BatchStatus) String() string {
	switch s {
	case BatchSuccess:
		return "OK"
	case BatchPartialSuccess:
		return "PARTIAL"
	default:
		return "FAILED"
	}
}

// RecordError is one record-level failure with enough context to render a
// diagnostic response without stack traces.
type RecordError struct {
	Kind        EntityKind     `json:"entityType"`
	Transaction Transaction    `json:"transaction"`
	Message     string         `json:"message"`
	Record      map[string]any `json:"record,omitempty"`
}

// UpdateOutcome aggregates per-entity-kind, per-transaction counts of
// completed, failed and skipped operations plus the ordered record-level
// error list for one batch. Safe for concurrent use by the executor's
// per-record goroutines.
type UpdateOutcome struct {
	mu       sync.Mutex
	counters map[EntityKind]map[Transaction]map[Outcome]int
	errors   []RecordError
	failed   bool
}

// NewUpdateOutcome returns an empty outcome.
func NewUpdateOutcome() *UpdateOutcome {
	return &UpdateOutcome{
		counters: map[EntityKind]map[Transaction]map[Outcome]int{},
	}
}

// Count records one settled record operation.
func (u *UpdateOutcome) Count(kind EntityKind, txn Transaction, outcome Outcome) {
	u.mu.Lock()
	defer u.mu.Unlock()
	byTxn, ok := u.counters[kind]
	if !ok {
		byTxn = map[Transaction]map[Outcome]int{}
		u.counters[kind] = byTxn
	}
	byOutcome, ok := byTxn[txn]
	if !ok {
		byOutcome = map[Outcome]int{}
		byTxn[txn] = byOutcome
	}
	byOutcome[outcome]++
}

// AddError appends one record-level error, in encounter order.
func (u *UpdateOutcome) AddError(e RecordError) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.errors = append(u.errors, e)
}

// MarkFailed flags the whole batch as failed (validation, build, or
// batch-scope execution failure).
func (u *UpdateOutcome) MarkFailed() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.failed = true
}

// Errors returns the ordered record-level error list.
func (u *UpdateOutcome) Errors() []RecordError {
	u.mu.Lock()
	defer u.mu.Unlock()
	out := make([]RecordError, len(u.errors))
	copy(out, u.errors)
	return out
}

// Get returns one counter value.
func (u *UpdateOutcome) Get(kind EntityKind, txn Transaction, outcome Outcome) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.counters[kind][txn][outcome]
}

// Status reports the overall batch shape: failure when the batch was
// aborted, partial success when any record failed or was skipped, success
// otherwise.
func (u *UpdateOutcome) Status() BatchStatus {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.failed {
		return BatchFailure
	}
	for _, byTxn := range u.counters {
		for _, byOutcome := range byTxn {
			if byOutcome[OutcomeFailed] > 0 || byOutcome[OutcomeSkipped] > 0 {
				return BatchPartialSuccess
			}
		}
	}
	if len(u.errors) > 0 {
		return BatchPartialSuccess
	}
	return BatchSuccess
}

// AsMap renders the outcome as a JSON-friendly structure:
//
//	{"status": "...",
//	 "metrics": {"INSTANCE": {"CREATE": {"COMPLETED": 1, ...}, ...}, ...},
//	 "errors": [...]}
func (u *UpdateOutcome) AsMap() map[string]any {
	status := u.Status()

	u.mu.Lock()
	defer u.mu.Unlock()

	metrics := map[string]any{}
	for kind, byTxn := range u.counters {
		txns := map[string]any{}
		for txn, byOutcome := range byTxn {
			outcomes := map[string]any{}
			for outcome, n := range byOutcome {
				outcomes[outcome.String()] = n
			}
			txns[txn.String()] = outcomes
		}
		metrics[string(kind)] = txns
	}

	errs := make([]map[string]any, 0, len(u.errors))
	for _, e := range u.errors {
		entry := map[string]any{
			"entityType":  string(e.Kind),
			"transaction": e.Transaction.String(),
			"message":     e.Message,
		}
		if e.Record != nil {
			entry["record"] = e.Record
		}
		errs = append(errs, entry)
	}

	return map[string]any{
		"status":  status.String(),
		"metrics": metrics,
		"errors":  errs,
	}
}

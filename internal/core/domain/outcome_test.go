// internal/core/domain/outcome_test.go
package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

func TestUpdateOutcome_Status(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(*domain.UpdateOutcome)
		expected domain.BatchStatus
	}{
		{
			name:     "empty_batch_is_ok",
			setup:    func(*domain.UpdateOutcome) {},
			expected: domain.BatchSuccess,
		},
		{
			name: "all_completed_is_ok",
			setup: func(o *domain.UpdateOutcome) {
				o.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
				o.Count(domain.KindItem, domain.TransactionDelete, domain.OutcomeCompleted)
			},
			expected: domain.BatchSuccess,
		},
		{
			name: "one_failed_record_is_partial",
			setup: func(o *domain.UpdateOutcome) {
				o.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
				o.Count(domain.KindItem, domain.TransactionCreate, domain.OutcomeFailed)
			},
			expected: domain.BatchPartialSuccess,
		},
		{
			name: "skipped_record_is_partial",
			setup: func(o *domain.UpdateOutcome) {
				o.Count(domain.KindItem, domain.TransactionCreate, domain.OutcomeSkipped)
			},
			expected: domain.BatchPartialSuccess,
		},
		{
			name: "marked_failed_wins_over_counters",
			setup: func(o *domain.UpdateOutcome) {
				o.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
				o.MarkFailed()
			},
			expected: domain.BatchFailure,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := domain.NewUpdateOutcome()
			tt.setup(outcome)
			assert.Equal(t, tt.expected, outcome.Status())
		})
	}
}

func TestUpdateOutcome_AsMap(t *testing.T) {
	outcome := domain.NewUpdateOutcome()
	outcome.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
	outcome.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
	outcome.Count(domain.KindHoldingsRecord, domain.TransactionDelete, domain.OutcomeFailed)
	outcome.AddError(domain.RecordError{
		Kind:        domain.KindHoldingsRecord,
		Transaction: domain.TransactionDelete,
		Message:     "storage said no",
	})

	rendered := outcome.AsMap()
	assert.Equal(t, "PARTIAL", rendered["status"])

	metrics, ok := rendered["metrics"].(map[string]any)
	require.True(t, ok)
	instance := metrics["INSTANCE"].(map[string]any)["CREATE"].(map[string]any)
	assert.Equal(t, 2, instance["COMPLETED"])

	errs, ok := rendered["errors"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, errs, 1)
	assert.Equal(t, "HOLDINGS_RECORD", errs[0]["entityType"])
	assert.Equal(t, "DELETE", errs[0]["transaction"])
	assert.Equal(t, "storage said no", errs[0]["message"])
}

func TestUpdateOutcome_Get(t *testing.T) {
	outcome := domain.NewUpdateOutcome()
	outcome.Count(domain.KindItem, domain.TransactionUpdate, domain.OutcomeCompleted)

	assert.Equal(t, 1, outcome.Get(domain.KindItem, domain.TransactionUpdate, domain.OutcomeCompleted))
	assert.Equal(t, 0, outcome.Get(domain.KindItem, domain.TransactionCreate, domain.OutcomeCompleted))
}

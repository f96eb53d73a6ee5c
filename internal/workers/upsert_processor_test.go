package workers_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
	"github.com/biblioflow/inventory-update/internal/workers"
	"github.com/biblioflow/inventory-update/test/helpers"
	"github.com/biblioflow/inventory-update/test/mocks"
)

func upsertTask(t *testing.T, payload workers.UpsertTaskPayload) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(workers.TypeUpsertRecord, raw)
}

func TestUpsertProcessor_ProcessUpsertRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Len(1)).
		DoAndReturn(func(ctx context.Context, mode string, payloads []map[string]any) (*domain.UpdateOutcome, error) {
			assert.Equal(t, "diku", tenant.From(ctx))
			outcome := domain.NewUpdateOutcome()
			outcome.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
			return outcome, nil
		})

	processor := workers.NewUpsertProcessor(upserter, helpers.TestLogger())

	task := upsertTask(t, workers.UpsertTaskPayload{
		Tenant: "diku",
		Mode:   "hrid",
		Record: helpers.RecordSetPayload(helpers.InstancePayload("in-1", "Middlemarch")),
	})

	err := processor.ProcessUpsertRecord(context.Background(), task)
	assert.NoError(t, err)
}

func TestUpsertProcessor_ProcessUpsertRecord_FailureIsRetried(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)

	failed := domain.NewUpdateOutcome()
	failed.MarkFailed()
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Any()).
		Return(failed, &ports.StorageError{Op: "create", Kind: domain.KindInstance, StatusCode: 503, Message: "storage down"})

	processor := workers.NewUpsertProcessor(upserter, helpers.TestLogger())

	task := upsertTask(t, workers.UpsertTaskPayload{
		Tenant: "diku",
		Mode:   "hrid",
		Record: helpers.RecordSetPayload(helpers.InstancePayload("in-1", "Middlemarch")),
	})

	err := processor.ProcessUpsertRecord(context.Background(), task)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage down")
}

func TestUpsertProcessor_ProcessUpsertRecord_RecordErrorsSettle(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)

	partial := domain.NewUpdateOutcome()
	partial.Count(domain.KindInstance, domain.TransactionUpdate, domain.OutcomeCompleted)
	partial.Count(domain.KindItem, domain.TransactionCreate, domain.OutcomeFailed)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Any()).
		Return(partial, nil)

	processor := workers.NewUpsertProcessor(upserter, helpers.TestLogger())

	task := upsertTask(t, workers.UpsertTaskPayload{
		Tenant: "diku",
		Mode:   "hrid",
		Record: helpers.RecordSetPayload(helpers.InstancePayload("in-1", "Middlemarch")),
	})

	// A 4xx on one record will not get better on retry.
	assert.NoError(t, processor.ProcessUpsertRecord(context.Background(), task))
}

func TestUpsertProcessor_ProcessUpsertRecord_BadPayload(t *testing.T) {
	ctrl := gomock.NewController(t)
	processor := workers.NewUpsertProcessor(mocks.NewMockUpserter(ctrl), helpers.TestLogger())

	err := processor.ProcessUpsertRecord(context.Background(),
		asynq.NewTask(workers.TypeUpsertRecord, []byte("not json")))
	assert.Error(t, err)

	err = processor.ProcessUpsertRecord(context.Background(),
		asynq.NewTask(workers.TypeUpsertRecord, []byte(`{"mode":"hrid"}`)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tenant")
}

func TestLocationsProcessor_RefreshLocations(t *testing.T) {
	resolver := &helpers.FakeLocations{Institutions: map[string]string{}}
	processor := workers.NewLocationsProcessor(resolver, helpers.TestLogger())

	task := asynq.NewTask(workers.TypeRefreshLocations, nil)
	assert.NoError(t, processor.RefreshLocations(context.Background(), task))
}

package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/handlers"
	"github.com/biblioflow/inventory-update/test/helpers"
	"github.com/biblioflow/inventory-update/test/mocks"
)

func successOutcome() *domain.UpdateOutcome {
	outcome := domain.NewUpdateOutcome()
	outcome.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
	return outcome
}

func partialOutcome() *domain.UpdateOutcome {
	outcome := domain.NewUpdateOutcome()
	outcome.Count(domain.KindInstance, domain.TransactionCreate, domain.OutcomeCompleted)
	outcome.Count(domain.KindItem, domain.TransactionCreate, domain.OutcomeFailed)
	outcome.AddError(domain.RecordError{
		Kind:        domain.KindItem,
		Transaction: domain.TransactionCreate,
		Message:     "422 Unprocessable Entity",
	})
	return outcome
}

func failedOutcome() *domain.UpdateOutcome {
	outcome := domain.NewUpdateOutcome()
	outcome.MarkFailed()
	return outcome
}

func putJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

func TestUpdateHandler_BatchUpsertHRID_OK(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Len(2)).
		Return(successOutcome(), nil)

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	w := putJSON(t, h.BatchUpsertHRID, "/inventory-batch-upsert-hrid", map[string]any{
		"inventoryRecordSets": []any{
			helpers.RecordSetPayload(helpers.InstancePayload("in-1", "First")),
			helpers.RecordSetPayload(helpers.InstancePayload("in-2", "Second")),
		},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "OK", body["status"])
}

func TestUpdateHandler_BatchUpsertHRID_SingleRecordSetBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Len(1)).
		Return(successOutcome(), nil)

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	// A bare record set, no wrapper array.
	w := putJSON(t, h.BatchUpsertHRID, "/inventory-batch-upsert-hrid",
		helpers.RecordSetPayload(helpers.InstancePayload("in-1", "Only")))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateHandler_SharedUpsertMatchKey_PartialIs207(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "shared-matchkey", gomock.Any()).
		Return(partialOutcome(), nil)

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	w := putJSON(t, h.SharedUpsertMatchKey, "/shared-inventory-upsert-matchkey",
		helpers.RecordSetPayload(helpers.InstancePayload("in-1", "First")))

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, "PARTIAL", body["status"])
	assert.NotEmpty(t, body["errors"])
}

func TestUpdateHandler_BatchUpsertHRID_ValidationErrorIs422(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Any()).
		Return(failedOutcome(), errors.New("record set 0 has no instance"))

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	w := putJSON(t, h.BatchUpsertHRID, "/inventory-batch-upsert-hrid", map[string]any{
		"inventoryRecordSets": []any{map[string]any{"holdingsRecords": []any{}}},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	body := decodeBody(t, w)
	assert.Contains(t, body["error"], "no instance")
	assert.Equal(t, "FAILED", body["status"])
}

func TestUpdateHandler_BatchUpsertHRID_StorageFaultIs500(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Any()).
		Return(failedOutcome(), &ports.StorageError{
			Op: "create", Kind: domain.KindInstance, StatusCode: 503, Message: "storage down",
		})

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	w := putJSON(t, h.BatchUpsertHRID, "/inventory-batch-upsert-hrid",
		helpers.RecordSetPayload(helpers.InstancePayload("in-1", "Only")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestUpdateHandler_BatchUpsertHRID_RetrySinglyFallsBackTo207(t *testing.T) {
	ctrl := gomock.NewController(t)
	upserter := mocks.NewMockUpserter(ctrl)

	batchErr := errors.Join(ports.ErrRetrySingly, &ports.StorageError{
		Op: "create", Kind: domain.KindInstance, StatusCode: 503, Message: "storage down",
	})
	upserter.EXPECT().
		UpsertBatch(gomock.Any(), "hrid", gomock.Len(2)).
		Return(failedOutcome(), batchErr)
	upserter.EXPECT().
		MultipleSingleRecordUpserts(gomock.Any(), "hrid", gomock.Len(2)).
		Return([]*domain.UpdateOutcome{failedOutcome(), successOutcome()}, nil)

	h := handlers.NewUpdateHandler(upserter, mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	w := putJSON(t, h.BatchUpsertHRID, "/inventory-batch-upsert-hrid", map[string]any{
		"inventoryRecordSets": []any{
			helpers.RecordSetPayload(helpers.InstancePayload("in-1", "First")),
			helpers.RecordSetPayload(helpers.InstancePayload("in-2", "Second")),
		},
	})

	assert.Equal(t, http.StatusMultiStatus, w.Code)
	body := decodeBody(t, w)
	outcomes, ok := body["outcomes"].([]any)
	require.True(t, ok)
	require.Len(t, outcomes, 2)
	first := outcomes[0].(map[string]any)
	second := outcomes[1].(map[string]any)
	assert.Equal(t, "FAILED", first["status"])
	assert.Equal(t, "OK", second["status"])
}

func TestUpdateHandler_BatchUpsertHRID_BadBody(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handlers.NewUpdateHandler(mocks.NewMockUpserter(ctrl), mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	req := httptest.NewRequest(http.MethodPut, "/inventory-batch-upsert-hrid",
		bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	h.BatchUpsertHRID(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateHandler_DeleteByHRID(t *testing.T) {
	ctrl := gomock.NewController(t)
	deleter := mocks.NewMockDeleter(ctrl)
	deleter.EXPECT().
		DeleteByHRID(gomock.Any(), "in-1").
		Return(successOutcome(), nil)

	h := handlers.NewUpdateHandler(mocks.NewMockUpserter(ctrl), deleter, helpers.TestLogger())

	raw, _ := json.Marshal(map[string]any{"hrid": "in-1"})
	req := httptest.NewRequest(http.MethodDelete, "/inventory-batch-upsert-hrid", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.DeleteByHRID(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateHandler_DeleteByHRID_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	deleter := mocks.NewMockDeleter(ctrl)
	deleter.EXPECT().
		DeleteByHRID(gomock.Any(), "in-missing").
		Return(nil, ports.ErrNotFound)

	h := handlers.NewUpdateHandler(mocks.NewMockUpserter(ctrl), deleter, helpers.TestLogger())

	raw, _ := json.Marshal(map[string]any{"hrid": "in-missing"})
	req := httptest.NewRequest(http.MethodDelete, "/inventory-batch-upsert-hrid", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.DeleteByHRID(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateHandler_DeleteSharedInstitution_RequiresInstitution(t *testing.T) {
	ctrl := gomock.NewController(t)
	h := handlers.NewUpdateHandler(mocks.NewMockUpserter(ctrl), mocks.NewMockDeleter(ctrl), helpers.TestLogger())

	raw, _ := json.Marshal(map[string]any{"hrid": "in-1"})
	req := httptest.NewRequest(http.MethodDelete, "/shared-inventory-upsert-matchkey", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.DeleteSharedInstitution(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "institutionId")
}

func TestUpdateHandler_DeleteSharedInstitution(t *testing.T) {
	ctrl := gomock.NewController(t)
	deleter := mocks.NewMockDeleter(ctrl)
	deleter.EXPECT().
		DeleteSharedInstitution(gomock.Any(), "in-1", "institution-alpha").
		Return(successOutcome(), nil)

	h := handlers.NewUpdateHandler(mocks.NewMockUpserter(ctrl), deleter, helpers.TestLogger())

	raw, _ := json.Marshal(map[string]any{"hrid": "in-1", "institutionId": "institution-alpha"})
	req := httptest.NewRequest(http.MethodDelete, "/shared-inventory-upsert-matchkey", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	h.DeleteSharedInstitution(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

// internal/core/services/delete_test.go
package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/core/services"
	"github.com/biblioflow/inventory-update/test/helpers"
)

func TestDeleteService_DeleteByHRID(t *testing.T) {
	storage := helpers.NewFakeStorage()

	instance := helpers.StoredInstance("in-1", "Middlemarch", 2)
	instanceID := instance["id"].(string)
	holdings := helpers.StoredHoldings("ho-1", instanceID, locAlpha)
	item := helpers.StoredItem("it-1", holdings["id"].(string), "b-1")
	relation := map[string]any{
		"id":                         "8f0e0c9a-0000-4000-8000-000000000002",
		"superInstanceId":            "8f0e0c9a-0000-4000-8000-00000000beef",
		"subInstanceId":              instanceID,
		"instanceRelationshipTypeId": "type-multipart",
	}

	storage.Seed(domain.KindInstance, instance)
	storage.Seed(domain.KindHoldingsRecord, holdings)
	storage.Seed(domain.KindItem, item)
	storage.Seed(domain.KindInstanceRelationship, relation)

	svc := services.NewDeleteService(storage, sharedLocations(), helpers.TestLogger(), nil)
	outcome, err := svc.DeleteByHRID(context.Background(), "in-1")
	require.NoError(t, err)

	assert.Equal(t, domain.BatchSuccess, outcome.Status())
	assert.Equal(t, 1, outcome.Get(domain.KindItem, domain.TransactionDelete, domain.OutcomeCompleted))
	assert.Equal(t, 1, outcome.Get(domain.KindHoldingsRecord, domain.TransactionDelete, domain.OutcomeCompleted))
	assert.Equal(t, 1, outcome.Get(domain.KindInstanceRelationship, domain.TransactionDelete, domain.OutcomeCompleted))
	assert.Equal(t, 1, outcome.Get(domain.KindInstance, domain.TransactionUpdate, domain.OutcomeCompleted))

	assert.Empty(t, storage.Stored(domain.KindItem))
	assert.Empty(t, storage.Stored(domain.KindHoldingsRecord))
	assert.Empty(t, storage.Stored(domain.KindInstanceRelationship))

	// The instance itself survives, suppressed.
	instances := storage.Stored(domain.KindInstance)
	require.Len(t, instances, 1)
	assert.Equal(t, instanceID, instances[0]["id"])
	assert.Equal(t, true, instances[0]["staffSuppress"])
	assert.Equal(t, true, instances[0]["discoverySuppress"])
}

func TestDeleteService_DeleteByHRID_NotFound(t *testing.T) {
	storage := helpers.NewFakeStorage()
	svc := services.NewDeleteService(storage, sharedLocations(), helpers.TestLogger(), nil)

	_, err := svc.DeleteByHRID(context.Background(), "in-missing")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestDeleteService_DeleteSharedInstitution(t *testing.T) {
	storage := helpers.NewFakeStorage()

	instance := helpers.StoredInstance("in-1", "Middlemarch", 1)
	instanceID := instance["id"].(string)
	alphaHoldings := helpers.StoredHoldings("ho-a", instanceID, locAlpha)
	betaHoldings := helpers.StoredHoldings("ho-b", instanceID, locBeta)
	alphaItem := helpers.StoredItem("it-a", alphaHoldings["id"].(string), "b-a")
	betaItem := helpers.StoredItem("it-b", betaHoldings["id"].(string), "b-b")

	storage.Seed(domain.KindInstance, instance)
	storage.Seed(domain.KindHoldingsRecord, alphaHoldings, betaHoldings)
	storage.Seed(domain.KindItem, alphaItem, betaItem)

	svc := services.NewDeleteService(storage, sharedLocations(), helpers.TestLogger(), nil)
	outcome, err := svc.DeleteSharedInstitution(context.Background(), "in-1", instAlpha)
	require.NoError(t, err)

	assert.Equal(t, 1, outcome.Get(domain.KindHoldingsRecord, domain.TransactionDelete, domain.OutcomeCompleted))
	assert.Equal(t, 1, outcome.Get(domain.KindItem, domain.TransactionDelete, domain.OutcomeCompleted))

	// The shared instance and beta's contribution stand.
	assert.Len(t, storage.Stored(domain.KindInstance), 1)
	holdings := storage.Stored(domain.KindHoldingsRecord)
	require.Len(t, holdings, 1)
	assert.Equal(t, betaHoldings["id"], holdings[0]["id"])
	items := storage.Stored(domain.KindItem)
	require.Len(t, items, 1)
	assert.Equal(t, betaItem["id"], items[0]["id"])
}

// internal/core/services/fetch_test.go
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

func TestFetchService_FetchRecordSet(t *testing.T) {
	storage := helpers.NewFakeStorage()

	instance := helpers.StoredInstance("in-1", "Middlemarch", 1)
	instanceID := instance["id"].(string)
	holdings := helpers.StoredHoldings("ho-1", instanceID, locAlpha)
	item := helpers.StoredItem("it-1", holdings["id"].(string), "b-1")

	storage.Seed(domain.KindInstance, instance)
	storage.Seed(domain.KindHoldingsRecord, holdings)
	storage.Seed(domain.KindItem, item)

	svc := services.NewFetchService(storage, helpers.TestLogger())
	set, err := svc.FetchRecordSet(context.Background(), instanceID)
	require.NoError(t, err)

	inst, ok := set["instance"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "in-1", inst["hrid"])

	hrs, ok := set["holdingsRecords"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, hrs, 1)
	items, ok := hrs[0]["items"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "b-1", items[0]["barcode"])
}

func TestFetchService_FetchRecordSet_NotFound(t *testing.T) {
	storage := helpers.NewFakeStorage()
	svc := services.NewFetchService(storage, helpers.TestLogger())

	_, err := svc.FetchRecordSet(context.Background(), "b5c0df1e-0000-4000-8000-000000000009")
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

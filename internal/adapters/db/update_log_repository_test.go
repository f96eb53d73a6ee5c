//go:build integration

package db_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/adapters/db"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/test/helpers"
)

func sampleEntry(tenantID, status string) ports.UpdateLogEntry {
	return ports.UpdateLogEntry{
		ID:          uuid.New(),
		Tenant:      tenantID,
		Mode:        "hrid",
		Status:      status,
		RecordCount: 3,
		Metrics: map[string]any{
			"INSTANCE": map[string]any{
				"CREATE": map[string]any{"COMPLETED": 3},
			},
		},
	}
}

func TestUpdateLogRepository_SaveAndRecent(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewUpdateLogRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	entry := sampleEntry("diku", "OK")
	require.NoError(t, repo.SaveOutcome(ctx, entry))

	entries, err := repo.Recent(ctx, "diku", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	got := entries[0]
	assert.Equal(t, entry.ID, got.ID)
	assert.Equal(t, "diku", got.Tenant)
	assert.Equal(t, "hrid", got.Mode)
	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, 3, got.RecordCount)
	assert.WithinDuration(t, time.Now(), got.CreatedAt, time.Minute)

	metrics, ok := got.Metrics["INSTANCE"].(map[string]any)
	require.True(t, ok)
	create, ok := metrics["CREATE"].(map[string]any)
	require.True(t, ok)
	assert.EqualValues(t, 3, create["COMPLETED"])
}

func TestUpdateLogRepository_Recent_FiltersByTenant(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewUpdateLogRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	require.NoError(t, repo.SaveOutcome(ctx, sampleEntry("diku", "OK")))
	require.NoError(t, repo.SaveOutcome(ctx, sampleEntry("other", "FAILED")))

	entries, err := repo.Recent(ctx, "diku", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "diku", entries[0].Tenant)

	// Empty tenant spans all tenants.
	all, err := repo.Recent(ctx, "", 10)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateLogRepository_Recent_OrdersNewestFirst(t *testing.T) {
	testDB := helpers.SetupTestDB(t)
	defer testDB.Database.Close()

	repo := db.NewUpdateLogRepository(testDB.Database, helpers.TestLogger())
	ctx := context.Background()

	older := sampleEntry("diku", "OK")
	older.CreatedAt = time.Now().UTC().Add(-time.Hour)
	newer := sampleEntry("diku", "PARTIAL")

	require.NoError(t, repo.SaveOutcome(ctx, older))
	require.NoError(t, repo.SaveOutcome(ctx, newer))

	entries, err := repo.Recent(ctx, "diku", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, newer.ID, entries[0].ID)
	assert.Equal(t, "PARTIAL", entries[0].Status)
}

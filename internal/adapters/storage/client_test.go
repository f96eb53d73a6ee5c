// internal/adapters/storage/client_test.go
package storage_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/adapters/storage"
	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
	"github.com/biblioflow/inventory-update/test/helpers"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *storage.Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return storage.NewClient(storage.Config{
		BaseURL: server.URL,
		Token:   "test-token",
	}, helpers.TestLogger())
}

func TestClient_FetchByIdentifiers(t *testing.T) {
	var gotPath, gotQuery, gotTenant, gotAuth string

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query().Get("query")
		gotTenant = r.Header.Get("X-Tenant")
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]any{
			"instances": []any{
				map[string]any{"id": "id-1", "hrid": "in-1"},
				map[string]any{"id": "id-2", "hrid": "in-2"},
			},
			"totalRecords": 2,
		})
	})

	ctx := tenant.With(context.Background(), "diku")
	records, err := client.FetchByIdentifiers(ctx, domain.KindInstance, "hrid", []string{"in-1", "in-2"})
	require.NoError(t, err)

	assert.Len(t, records, 2)
	assert.Equal(t, "/instance-storage/instances", gotPath)
	assert.Equal(t, `hrid==("in-1" or "in-2")`, gotQuery)
	assert.Equal(t, "diku", gotTenant)
	assert.Equal(t, "Bearer test-token", gotAuth)
}

func TestClient_FetchByIdentifiers_EmptyValuesShortCircuits(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	records, err := client.FetchByIdentifiers(context.Background(), domain.KindInstance, "hrid", nil)
	require.NoError(t, err)
	assert.Nil(t, records)
	assert.False(t, called)
}

func TestClient_Create(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/item-storage/items", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		body["_version"] = 1
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(body)
	})

	stored, err := client.Create(context.Background(), domain.KindItem, map[string]any{"id": "it-1", "barcode": "b-1"})
	require.NoError(t, err)
	assert.Equal(t, "b-1", stored["barcode"])
	assert.EqualValues(t, 1, stored["_version"])
}

func TestClient_Create_EmptyResponseBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	record := map[string]any{"id": "it-1"}
	stored, err := client.Create(context.Background(), domain.KindItem, record)
	require.NoError(t, err)
	assert.Equal(t, record, stored)
}

func TestClient_Replace(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/holdings-storage/holdings/ho-id-1", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	err := client.Replace(context.Background(), domain.KindHoldingsRecord, "ho-id-1", map[string]any{"id": "ho-id-1"})
	assert.NoError(t, err)
}

func TestClient_ErrorScopes(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		batchScope bool
	}{
		{"client_error_is_record_scope", http.StatusUnprocessableEntity, false},
		{"conflict_is_record_scope", http.StatusConflict, false},
		{"server_error_is_batch_scope", http.StatusInternalServerError, true},
		{"bad_gateway_is_batch_scope", http.StatusBadGateway, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "nope", tt.status)
			})

			err := client.Delete(context.Background(), domain.KindItem, "it-1")
			require.Error(t, err)

			var se *ports.StorageError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, tt.status, se.StatusCode)
			assert.Equal(t, tt.batchScope, se.BatchScope())
		})
	}
}

func TestClient_TransportFailureIsBatchScope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := storage.NewClient(storage.Config{BaseURL: server.URL}, helpers.TestLogger())
	err := client.Delete(context.Background(), domain.KindItem, "it-1")
	require.Error(t, err)

	var se *ports.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 0, se.StatusCode)
	assert.True(t, se.BatchScope())
	assert.True(t, ports.IsBatchScope(err))
}

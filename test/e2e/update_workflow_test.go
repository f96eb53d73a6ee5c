//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	redis_a "github.com/biblioflow/inventory-update/internal/adapters/redis_adapter"
	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/services"
	"github.com/biblioflow/inventory-update/internal/handlers"
	"github.com/biblioflow/inventory-update/internal/handlers/middleware"
	"github.com/biblioflow/inventory-update/test/helpers"
)

// UpdateWorkflowSuite runs the full HTTP stack in process: real handlers,
// middleware, services, and a Redis-backed location cache, with only the
// remote inventory storage faked.
type UpdateWorkflowSuite struct {
	suite.Suite
	server        *httptest.Server
	client        *http.Client
	storage       *helpers.FakeStorage
	locationID    string
	institutionID string
}

func (s *UpdateWorkflowSuite) SetupSuite() {
	logger := helpers.TestLogger()

	s.storage = helpers.NewFakeStorage()
	s.locationID = uuid.NewString()
	s.institutionID = uuid.NewString()
	s.storage.Seed(domain.KindLocation, map[string]any{
		"id":            s.locationID,
		"institutionId": s.institutionID,
	})
	s.storage.QueryFunc = func(kind domain.EntityKind, _ string) ([]map[string]any, error) {
		if kind == domain.KindLocation {
			return s.storage.Stored(domain.KindLocation), nil
		}
		return nil, nil
	}

	mr := miniredis.RunT(s.T())
	redisClient := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	locations := redis_a.NewLocationCache(redisClient, s.storage, time.Hour, logger)

	merge := services.MergePolicy{Policy: services.RetainAllOmitted}
	upsertSvc := services.NewUpsertService(s.storage, locations, logger, merge)
	deleteSvc := services.NewDeleteService(s.storage, locations, logger, nil)
	fetchSvc := services.NewFetchService(s.storage, logger)

	updateHandler := handlers.NewUpdateHandler(upsertSvc, deleteSvc, logger)
	fetchHandler := handlers.NewFetchHandler(fetchSvc, logger)

	mux := http.NewServeMux()
	mux.Handle("PUT /inventory-batch-upsert-hrid", middleware.Tenant(http.HandlerFunc(updateHandler.BatchUpsertHRID)))
	mux.Handle("DELETE /inventory-batch-upsert-hrid", middleware.Tenant(http.HandlerFunc(updateHandler.DeleteByHRID)))
	mux.Handle("PUT /shared-inventory-upsert-matchkey", middleware.Tenant(http.HandlerFunc(updateHandler.SharedUpsertMatchKey)))
	mux.Handle("DELETE /shared-inventory-upsert-matchkey", middleware.Tenant(http.HandlerFunc(updateHandler.DeleteSharedInstitution)))
	mux.Handle("GET /inventory-upsert-fetch/{id}", middleware.Tenant(http.HandlerFunc(fetchHandler.FetchRecordSet)))

	var handler http.Handler = mux
	handler = middleware.RequestID(handler)

	s.server = httptest.NewServer(handler)
	s.client = &http.Client{Timeout: 10 * time.Second}
}

func (s *UpdateWorkflowSuite) TearDownSuite() {
	s.server.Close()
}

func (s *UpdateWorkflowSuite) makeRequest(method, path string, body any) (*http.Response, map[string]any) {
	var reqBody io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, s.server.URL+path, reqBody)
	s.Require().NoError(err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant", "diku")

	resp, err := s.client.Do(req)
	s.Require().NoError(err)

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	s.Require().NoError(err)
	resp.Body.Close()
	if len(raw) > 0 {
		s.Require().NoError(json.Unmarshal(raw, &decoded), "body: %s", raw)
	}

	return resp, decoded
}

func (s *UpdateWorkflowSuite) TestCompleteUpdateWorkflow() {
	// 1. Create a record set through the batch endpoint
	item := helpers.ItemPayload("it-e2e-1", "e2e-barcode-1")
	holdings := helpers.HoldingsPayload("ho-e2e-1", s.locationID, item)
	payload := map[string]any{
		"inventoryRecordSets": []any{
			helpers.RecordSetPayload(helpers.InstancePayload("in-e2e-1", "Daniel Deronda"), holdings),
		},
	}

	resp, body := s.makeRequest(http.MethodPut, "/inventory-batch-upsert-hrid", payload)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])

	stored := s.storage.Stored(domain.KindInstance)
	s.Require().Len(stored, 1)
	instanceID := stored[0]["id"].(string)

	// 2. Fetch it back as an assembled record set
	resp, body = s.makeRequest(http.MethodGet, "/inventory-upsert-fetch/"+instanceID, nil)
	s.Equal(http.StatusOK, resp.StatusCode)
	instance := body["instance"].(map[string]any)
	s.Equal("in-e2e-1", instance["hrid"])
	s.Len(body["holdingsRecords"], 1)

	// 3. Upsert again with a changed title, same hrid
	payload = map[string]any{
		"inventoryRecordSets": []any{
			helpers.RecordSetPayload(helpers.InstancePayload("in-e2e-1", "Daniel Deronda, 2nd ed."), holdings),
		},
	}
	resp, body = s.makeRequest(http.MethodPut, "/inventory-batch-upsert-hrid", payload)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])

	stored = s.storage.Stored(domain.KindInstance)
	s.Require().Len(stored, 1)
	s.Equal("Daniel Deronda, 2nd ed.", stored[0]["title"])

	// 4. Delete the whole record set by hrid
	resp, body = s.makeRequest(http.MethodDelete, "/inventory-batch-upsert-hrid",
		map[string]any{"hrid": "in-e2e-1"})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])
	s.Empty(s.storage.Stored(domain.KindItem))
	s.Empty(s.storage.Stored(domain.KindHoldingsRecord))
	s.Empty(s.storage.Stored(domain.KindInstance))
}

func (s *UpdateWorkflowSuite) TestSharedInventoryWorkflow() {
	item := helpers.ItemPayload("it-e2e-shared", "e2e-barcode-shared")
	holdings := helpers.HoldingsPayload("ho-e2e-shared", s.locationID, item)
	payload := map[string]any{
		"inventoryRecordSets": []any{
			helpers.RecordSetPayload(helpers.InstancePayload("in-e2e-shared", "Shared Union Title"), holdings),
		},
	}

	resp, body := s.makeRequest(http.MethodPut, "/shared-inventory-upsert-matchkey", payload)
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])

	stored := s.storage.Stored(domain.KindInstance)
	s.Require().NotEmpty(stored)
	var shared map[string]any
	for _, in := range stored {
		if in["hrid"] == "in-e2e-shared" {
			shared = in
		}
	}
	s.Require().NotNil(shared)
	s.NotEmpty(shared["matchKey"])

	resp, body = s.makeRequest(http.MethodDelete, "/shared-inventory-upsert-matchkey",
		map[string]any{"hrid": "in-e2e-shared", "institutionId": s.institutionID})
	s.Equal(http.StatusOK, resp.StatusCode)
	s.Equal("OK", body["status"])
}

func (s *UpdateWorkflowSuite) TestMissingTenantRejected() {
	req, err := http.NewRequest(http.MethodPut, s.server.URL+"/inventory-batch-upsert-hrid",
		bytes.NewReader([]byte(`{"inventoryRecordSets":[]}`)))
	s.Require().NoError(err)

	resp, err := s.client.Do(req)
	s.Require().NoError(err)
	defer resp.Body.Close()
	s.Equal(http.StatusBadRequest, resp.StatusCode)

	raw, _ := io.ReadAll(resp.Body)
	s.Contains(string(raw), "X-Tenant")
}

func (s *UpdateWorkflowSuite) TestValidationFailureSurfacesRecordError() {
	payload := map[string]any{
		"inventoryRecordSets": []any{
			map[string]any{"holdingsRecords": []any{}},
		},
	}

	resp, body := s.makeRequest(http.MethodPut, "/inventory-batch-upsert-hrid", payload)
	s.Equal(http.StatusUnprocessableEntity, resp.StatusCode)
	s.Equal("FAILED", body["status"])
	s.NotEmpty(fmt.Sprint(body["error"]))
}

func TestUpdateWorkflowSuite(t *testing.T) {
	suite.Run(t, new(UpdateWorkflowSuite))
}

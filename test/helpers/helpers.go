// test/helpers/helpers.go
package helpers

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/adapters/db"
	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/ports"
	"github.com/biblioflow/inventory-update/internal/pkg/config"
)

// TestDB represents a test database instance
type TestDB struct {
	PgxPool  *pgxpool.Pool
	Database *db.Database
	Resource *dockertest.Resource
	Pool     *dockertest.Pool
	Config   *db.Config
}

// TestRedis represents a test Redis instance
type TestRedis struct {
	Client *redis.Client
	Server *miniredis.Miniredis
}

// TestLogger returns a test logger
func TestLogger() *slog.Logger {
	if testing.Verbose() {
		return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))
}

// SetupTestDB creates a PostgreSQL container for integration tests
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err, "Could not connect to Docker")

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_USER=test",
			"POSTGRES_PASSWORD=test",
			"POSTGRES_DB=test_inventory_update",
			"listen_addresses = '*'",
		},
	}, func(config *docker.HostConfig) {
		config.AutoRemove = true
		config.RestartPolicy = docker.RestartPolicy{Name: "no"}
	})
	require.NoError(t, err, "Could not start PostgreSQL container")

	t.Cleanup(func() {
		if err := pool.Purge(resource); err != nil {
			t.Logf("Could not purge resource: %s", err)
		}
	})

	dbConfig := &db.Config{
		Host:               "localhost",
		Port:               resource.GetPort("5432/tcp"),
		User:               "test",
		Password:           "test",
		Database:           "test_inventory_update",
		SSLMode:            "disable",
		MaxConnections:     5,
		MinConnections:     1,
		MaxConnLifetime:    time.Hour,
		MaxConnIdleTime:    time.Minute * 30,
		HealthCheckPeriod:  time.Minute,
		ConnectTimeout:     time.Second * 10,
		EnableQueryLogging: testing.Verbose(),
	}

	var database *db.Database
	err = pool.Retry(func() error {
		ctx := context.Background()
		var err error
		database, err = db.NewDatabase(ctx, dbConfig, TestLogger())
		if err != nil {
			return err
		}
		return database.Ping(ctx)
	})
	require.NoError(t, err, "Could not connect to PostgreSQL")

	ctx := context.Background()
	migrationConfig := &db.MigrationConfig{
		DatabaseURL: fmt.Sprintf("postgresql://%s:%s@%s:%s/%s?sslmode=%s",
			dbConfig.User, dbConfig.Password, dbConfig.Host, dbConfig.Port,
			dbConfig.Database, dbConfig.SSLMode),
		SourcePath: "../../migrations",
		TableName:  "schema_migrations",
		SchemaName: "public",
	}

	err = db.RunMigrationsWithRetry(ctx, migrationConfig, TestLogger(), 3)
	require.NoError(t, err, "Could not run migrations")

	return &TestDB{
		PgxPool:  database.Pool(),
		Database: database,
		Resource: resource,
		Pool:     pool,
		Config:   dbConfig,
	}
}

// SetupTestRedis creates a mock Redis instance for testing
func SetupTestRedis(t *testing.T) *TestRedis {
	t.Helper()

	mr := miniredis.RunT(t)

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})

	return &TestRedis{
		Client: client,
		Server: mr,
	}
}

// SetupMockDB creates a mock database for unit testing
func SetupMockDB(t *testing.T) (sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err, "Failed to create mock DB")

	t.Cleanup(func() {
		mockDB.Close()
	})

	return mock, mockDB
}

// LoadTestConfig returns a test configuration
func LoadTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{
			Name:        "test-inventory-update",
			Environment: "test",
			Version:     "test",
			LogLevel:    "debug",
			LogFormat:   "text",
			Debug:       true,
		},
		Server: config.ServerConfig{
			Host:         "localhost",
			Port:         "8080",
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		},
		Storage: config.StorageConfig{
			BaseURL:        "http://localhost:9130",
			Token:          "test-token",
			Timeout:        10 * time.Second,
			RateLimitRPS:   100,
			RateLimitBurst: 20,
		},
		Inventory: config.InventoryConfig{
			RetentionPolicy:    "retainAllOmitted",
			RetainedProperties: []string{"statisticalCodeIds"},
		},
		Database: config.DatabaseConfig{
			Host:               "localhost",
			Port:               "5432",
			User:               "test",
			Password:           "test",
			Name:               "test_inventory_update",
			SSLMode:            "disable",
			MaxConnections:     10,
			MinConnections:     2,
			EnableQueryLogging: true,
		},
		Redis: config.RedisConfig{
			Host:     "localhost",
			Port:     "6379",
			DB:       0,
			TTL:      time.Hour,
			PoolSize: 10,
		},
	}
}

// StorageCall is one recorded FakeStorage operation.
type StorageCall struct {
	Op   string
	Kind domain.EntityKind
	ID   string
}

// FakeStorage is an in-memory ports.StorageClient for service tests: seeded
// collections per entity kind, a call log, and per-operation failure
// injection.
type FakeStorage struct {
	mu      sync.Mutex
	records map[domain.EntityKind][]map[string]any
	calls   []StorageCall

	// QueryFunc handles FetchByQuery; nil returns no results.
	QueryFunc func(kind domain.EntityKind, query string) ([]map[string]any, error)

	// FailOn, when set, is consulted before every write; a non-nil return
	// fails the call.
	FailOn func(op string, kind domain.EntityKind, record map[string]any) error
}

// NewFakeStorage creates an empty fake storage client.
func NewFakeStorage() *FakeStorage {
	return &FakeStorage{records: map[domain.EntityKind][]map[string]any{}}
}

// Seed pre-loads records of one kind.
func (f *FakeStorage) Seed(kind domain.EntityKind, records ...map[string]any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records[kind] = append(f.records[kind], records...)
}

// Calls returns the recorded operations in order.
func (f *FakeStorage) Calls() []StorageCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]StorageCall, len(f.calls))
	copy(out, f.calls)
	return out
}

// Stored returns the current records of one kind.
func (f *FakeStorage) Stored(kind domain.EntityKind) []map[string]any {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]map[string]any, len(f.records[kind]))
	copy(out, f.records[kind])
	return out
}

// FetchByIdentifiers implements ports.StorageClient.
func (f *FakeStorage) FetchByIdentifiers(_ context.Context, kind domain.EntityKind, field string, values []string) ([]map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, StorageCall{Op: "fetch", Kind: kind})

	wanted := map[string]bool{}
	for _, v := range values {
		wanted[v] = true
	}
	var out []map[string]any
	for _, rec := range f.records[kind] {
		if v, ok := rec[field].(string); ok && wanted[v] {
			out = append(out, clone(rec))
		}
	}
	return out, nil
}

// FetchByQuery implements ports.StorageClient.
func (f *FakeStorage) FetchByQuery(_ context.Context, kind domain.EntityKind, query string) ([]map[string]any, error) {
	f.mu.Lock()
	f.calls = append(f.calls, StorageCall{Op: "query", Kind: kind})
	f.mu.Unlock()
	if f.QueryFunc == nil {
		return nil, nil
	}
	return f.QueryFunc(kind, query)
}

// Create implements ports.StorageClient.
func (f *FakeStorage) Create(_ context.Context, kind domain.EntityKind, record map[string]any) (map[string]any, error) {
	if err := f.failOn("create", kind, record); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id, _ := record["id"].(string)
	f.calls = append(f.calls, StorageCall{Op: "create", Kind: kind, ID: id})
	f.records[kind] = append(f.records[kind], clone(record))
	return clone(record), nil
}

// Replace implements ports.StorageClient.
func (f *FakeStorage) Replace(_ context.Context, kind domain.EntityKind, id string, record map[string]any) error {
	if err := f.failOn("replace", kind, record); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, StorageCall{Op: "replace", Kind: kind, ID: id})
	for i, rec := range f.records[kind] {
		if rec["id"] == id {
			f.records[kind][i] = clone(record)
			return nil
		}
	}
	return &ports.StorageError{Op: "replace", Kind: kind, StatusCode: 404, Message: "not found"}
}

// Delete implements ports.StorageClient.
func (f *FakeStorage) Delete(_ context.Context, kind domain.EntityKind, id string) error {
	if err := f.failOn("delete", kind, map[string]any{"id": id}); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, StorageCall{Op: "delete", Kind: kind, ID: id})
	for i, rec := range f.records[kind] {
		if rec["id"] == id {
			f.records[kind] = append(f.records[kind][:i], f.records[kind][i+1:]...)
			return nil
		}
	}
	return &ports.StorageError{Op: "delete", Kind: kind, StatusCode: 404, Message: "not found"}
}

func (f *FakeStorage) failOn(op string, kind domain.EntityKind, record map[string]any) error {
	f.mu.Lock()
	hook := f.FailOn
	f.mu.Unlock()
	if hook == nil {
		return nil
	}
	return hook(op, kind, record)
}

func clone(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// FakeLocations is a static ports.LocationResolver keyed by location UUID.
type FakeLocations struct {
	Institutions map[string]string
}

// Institution implements ports.LocationResolver.
func (f *FakeLocations) Institution(_ context.Context, locationID string) (string, error) {
	if inst, ok := f.Institutions[locationID]; ok {
		return inst, nil
	}
	return "", ports.ErrUnknownLocation
}

// Refresh implements ports.LocationResolver.
func (f *FakeLocations) Refresh(context.Context) error { return nil }

// InstancePayload builds an instance property bag for test record sets.
func InstancePayload(hrid, title string, overrides ...func(map[string]any)) map[string]any {
	props := map[string]any{
		"hrid":   hrid,
		"title":  title,
		"source": "TEST",
	}
	for _, o := range overrides {
		o(props)
	}
	return props
}

// HoldingsPayload builds a holdings property bag with nested items.
func HoldingsPayload(hrid, locationID string, items ...map[string]any) map[string]any {
	props := map[string]any{
		"hrid":                hrid,
		"permanentLocationId": locationID,
	}
	if items != nil {
		list := make([]any, 0, len(items))
		for _, it := range items {
			list = append(list, it)
		}
		props["items"] = list
	}
	return props
}

// ItemPayload builds an item property bag.
func ItemPayload(hrid, barcode string) map[string]any {
	return map[string]any{
		"hrid":    hrid,
		"barcode": barcode,
		"status":  map[string]any{"name": "Available"},
	}
}

// RecordSetPayload builds a full upsert payload from an instance bag and
// holdings bags.
func RecordSetPayload(instance map[string]any, holdings ...map[string]any) map[string]any {
	payload := map[string]any{"instance": instance}
	if holdings != nil {
		list := make([]any, 0, len(holdings))
		for _, hr := range holdings {
			list = append(list, hr)
		}
		payload["holdingsRecords"] = list
	}
	return payload
}

// StoredInstance builds a stored-flavor instance bag with id and version.
func StoredInstance(hrid, title string, version int) map[string]any {
	return map[string]any{
		"id":       uuid.NewString(),
		"hrid":     hrid,
		"title":    title,
		"_version": version,
		"source":   "TEST",
	}
}

// StoredHoldings builds a stored-flavor holdings bag attached to an instance.
func StoredHoldings(hrid, instanceID, locationID string) map[string]any {
	return map[string]any{
		"id":                  uuid.NewString(),
		"hrid":                hrid,
		"instanceId":          instanceID,
		"permanentLocationId": locationID,
		"_version":            1,
	}
}

// StoredItem builds a stored-flavor item bag attached to a holdings record.
func StoredItem(hrid, holdingsID, barcode string) map[string]any {
	return map[string]any{
		"id":               uuid.NewString(),
		"hrid":             hrid,
		"holdingsRecordId": holdingsID,
		"barcode":          barcode,
		"_version":         1,
	}
}

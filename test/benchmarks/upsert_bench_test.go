// test/benchmarks/upsert_bench_test.go
package benchmarks

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/internal/core/services"
	"github.com/biblioflow/inventory-update/internal/pkg/tenant"
	"github.com/biblioflow/inventory-update/test/helpers"
)

func BenchmarkUpsertBatch(b *testing.B) {
	locationID := uuid.NewString()
	locations := &helpers.FakeLocations{Institutions: map[string]string{locationID: uuid.NewString()}}
	merge := services.MergePolicy{Policy: services.RetainAllOmitted}
	ctx := tenant.With(context.Background(), "bench")

	for _, size := range []int{1, 10, 100} {
		payloads := batchOf(size, locationID)

		b.Run(fmt.Sprintf("CreatePath/%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				storage := helpers.NewFakeStorage()
				svc := services.NewUpsertService(storage, locations, helpers.TestLogger(), merge)
				b.StartTimer()

				outcome, err := svc.UpsertBatch(ctx, string(services.ModeHRID), payloads)
				if err != nil {
					b.Fatal(err)
				}
				if outcome.Status() != domain.BatchSuccess {
					b.Fatalf("unexpected batch status %s", outcome.Status())
				}
			}
		})

		b.Run(fmt.Sprintf("UpdatePath/%d", size), func(b *testing.B) {
			b.ReportAllocs()
			for i := 0; i < b.N; i++ {
				b.StopTimer()
				storage := helpers.NewFakeStorage()
				seedExisting(storage, size, locationID)
				svc := services.NewUpsertService(storage, locations, helpers.TestLogger(), merge)
				b.StartTimer()

				outcome, err := svc.UpsertBatch(ctx, string(services.ModeHRID), payloads)
				if err != nil {
					b.Fatal(err)
				}
				if outcome.Status() != domain.BatchSuccess {
					b.Fatalf("unexpected batch status %s", outcome.Status())
				}
			}
		})
	}
}

func BenchmarkBuildMatchKey(b *testing.B) {
	instances := make([]map[string]any, 64)
	for i := range instances {
		instances[i] = matchKeyInstance(i)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if key := domain.BuildMatchKey(instances[i%len(instances)]); key == "" {
			b.Fatal("empty match key")
		}
	}
}

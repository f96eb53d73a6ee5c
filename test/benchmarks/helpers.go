// test/benchmarks/helpers.go
package benchmarks

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/biblioflow/inventory-update/internal/core/domain"
	"github.com/biblioflow/inventory-update/test/helpers"
)

// batchOf builds n single-instance record sets, each with one holdings
// record and one item, the shape a typical MARC-derived feed produces.
func batchOf(n int, locationID string) []map[string]any {
	payloads := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		item := helpers.ItemPayload(fmt.Sprintf("it-%06d", i), uuid.NewString())
		holdings := helpers.HoldingsPayload(fmt.Sprintf("ho-%06d", i), locationID, item)
		payloads = append(payloads, helpers.RecordSetPayload(
			helpers.InstancePayload(fmt.Sprintf("in-%06d", i), fmt.Sprintf("Benchmark Title %d", i)),
			holdings,
		))
	}
	return payloads
}

// seedExisting populates storage with counterpart records for every
// incoming set, so the planner takes the update path instead of create.
func seedExisting(storage *helpers.FakeStorage, n int, locationID string) {
	for i := 0; i < n; i++ {
		instance := helpers.StoredInstance(fmt.Sprintf("in-%06d", i), fmt.Sprintf("Benchmark Title %d", i), 1)
		holdings := helpers.StoredHoldings(fmt.Sprintf("ho-%06d", i), instance["id"].(string), locationID)
		item := helpers.StoredItem(fmt.Sprintf("it-%06d", i), holdings["id"].(string), fmt.Sprintf("bc-%06d", i))
		storage.Seed(domain.KindInstance, instance)
		storage.Seed(domain.KindHoldingsRecord, holdings)
		storage.Seed(domain.KindItem, item)
	}
}

// matchKeyInstance builds an instance bag rich enough to exercise every
// match key segment.
func matchKeyInstance(i int) map[string]any {
	return map[string]any{
		"hrid":   fmt.Sprintf("in-%06d", i),
		"title":  fmt.Sprintf("The Collected Benchmarks of Volume %d", i),
		"source": "TEST",
		"editions": []any{
			fmt.Sprintf("%d. ed.", i%9+1),
		},
		"physicalDescriptions": []any{
			fmt.Sprintf("%d p. : ill. ; 24 cm", 100+i%400),
		},
		"publication": []any{
			map[string]any{
				"publisher":         "Benchmark House",
				"dateOfPublication": fmt.Sprintf("%d", 1900+i%120),
			},
		},
		"contributors": []any{
			map[string]any{"name": "Eliot, George", "primary": true},
		},
	}
}

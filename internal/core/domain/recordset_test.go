// internal/core/domain/recordset_test.go
package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

func TestNewIncomingRecordSet_ParsesGraph(t *testing.T) {
	payload := map[string]any{
		"instance": map[string]any{"hrid": "in-1", "title": "Middlemarch"},
		"holdingsRecords": []any{
			map[string]any{
				"hrid": "ho-1",
				"items": []any{
					map[string]any{"hrid": "it-1", "barcode": "b-1"},
					map[string]any{"hrid": "it-2", "barcode": "b-2"},
				},
			},
			map[string]any{"hrid": "ho-2"},
		},
	}

	set, err := domain.NewIncomingRecordSet(payload)
	require.NoError(t, err)

	assert.Equal(t, "in-1", set.Instance.HRID())
	require.Len(t, set.Instance.HoldingsRecords, 2)
	assert.Len(t, set.Instance.HoldingsRecords[0].Items, 2)
	assert.Empty(t, set.Instance.HoldingsRecords[1].Items)
	assert.False(t, set.HasRelations())
	assert.Equal(t, payload, set.Source())

	// Items are detached from the holdings bag so each bag maps one-to-one
	// to its storage entity.
	assert.False(t, set.Instance.HoldingsRecords[0].HasProperty("items"))
}

func TestNewIncomingRecordSet_MissingInstance(t *testing.T) {
	_, err := domain.NewIncomingRecordSet(map[string]any{
		"holdingsRecords": []any{},
	})
	assert.ErrorIs(t, err, domain.ErrMissingInstance)
}

func TestNewIncomingRecordSet_ParsesRelations(t *testing.T) {
	set, err := domain.NewIncomingRecordSet(map[string]any{
		"instance": map[string]any{"hrid": "in-1", "title": "Vol. 2"},
		"instanceRelations": map[string]any{
			"parentInstances": []any{
				map[string]any{
					"superInstanceId":            "9a1b7c52-0001-4f6e-b7c1-2d81d3f0a111",
					"instanceRelationshipTypeId": "type-multipart",
				},
			},
			"childInstances": []any{
				map[string]any{
					"instanceIdentifier":         map[string]any{"hrid": "in-child"},
					"instanceRelationshipTypeId": "type-multipart",
				},
			},
			"precedingTitles": []any{
				map[string]any{
					"instanceIdentifier":  map[string]any{"hrid": "in-prev"},
					"provisionalInstance": map[string]any{"title": "Former title", "source": "TEST"},
				},
			},
		},
	})
	require.NoError(t, err)

	assert.True(t, set.HasRelations())
	require.Len(t, set.Parents, 1)
	require.Len(t, set.Children, 1)
	require.Len(t, set.Preceding, 1)
	assert.Empty(t, set.Succeeding)

	assert.Equal(t, "9a1b7c52-0001-4f6e-b7c1-2d81d3f0a111", set.Parents[0].Reference.UUID)
	assert.Equal(t, "in-child", set.Children[0].Reference.HRID)
	assert.Equal(t, "in-prev", set.Preceding[0].Reference.HRID)
	assert.NotNil(t, set.Preceding[0].Reference.Provisional)
	assert.Len(t, set.Relations(), 3)
}

func TestNewIncomingRecordSet_EmptyRelationsObjectStillCounts(t *testing.T) {
	set, err := domain.NewIncomingRecordSet(map[string]any{
		"instance":          map[string]any{"hrid": "in-1", "title": "Middlemarch"},
		"instanceRelations": map[string]any{},
	})
	require.NoError(t, err)

	// An empty relations object means "this instance has no relations", as
	// opposed to a payload silent about relations.
	assert.True(t, set.HasRelations())
	assert.Empty(t, set.Relations())
}

func TestInventoryRecordSet_Lookups(t *testing.T) {
	set, err := domain.NewIncomingRecordSet(map[string]any{
		"instance": map[string]any{"hrid": "in-1", "title": "Middlemarch"},
		"holdingsRecords": []any{
			map[string]any{
				"hrid":  "ho-1",
				"items": []any{map[string]any{"hrid": "it-1"}},
			},
			map[string]any{
				"hrid":  "ho-2",
				"items": []any{map[string]any{"hrid": "it-2"}},
			},
		},
	})
	require.NoError(t, err)

	assert.NotNil(t, set.HoldingsRecordByHRID("ho-2"))
	assert.Nil(t, set.HoldingsRecordByHRID("ho-9"))
	assert.Nil(t, set.HoldingsRecordByHRID(""))

	// Item lookup searches across all holdings.
	assert.NotNil(t, set.ItemByHRID("it-2"))
	assert.Nil(t, set.ItemByHRID("it-9"))
}

func TestVersion_ToleratesWireShapes(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected int64
	}{
		{"float64_from_json", float64(3), 3},
		{"int", 4, 4},
		{"string", "5", 5},
		{"absent", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			props := map[string]any{}
			if tt.value != nil {
				props["_version"] = tt.value
			}
			inst := domain.NewInstance(props)
			assert.Equal(t, tt.expected, inst.Version())
		})
	}
}

// internal/core/domain/matchkey_test.go
package domain_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biblioflow/inventory-update/internal/core/domain"
)

const instanceTypeText = "6312d172-f0cf-40f6-b27d-9fa8feaf332f"

func TestBuildMatchKey_TitleFragment(t *testing.T) {
	tests := []struct {
		name          string
		props         map[string]any
		expectedTitle string
	}{
		{
			name:          "simple_title_padded_to_width",
			props:         map[string]any{"title": "Silas Marner"},
			expectedTitle: "silas_marner" + strings.Repeat("_", 58),
		},
		{
			name:          "leading_article_dropped",
			props:         map[string]any{"title": "The Silas Marner"},
			expectedTitle: "silas_marner" + strings.Repeat("_", 58),
		},
		{
			name:          "punctuation_collapsed",
			props:         map[string]any{"title": "Silas Marner; or, weaving"},
			expectedTitle: "silas_marner_or_weaving" + strings.Repeat("_", 47),
		},
		{
			name: "match_key_object_title_wins",
			props: map[string]any{
				"title":    "Cataloguing mistake",
				"matchKey": map[string]any{"title": "Silas Marner"},
			},
			expectedTitle: "silas_marner" + strings.Repeat("_", 58),
		},
		{
			name:          "long_title_truncated",
			props:         map[string]any{"title": strings.Repeat("abcde ", 20)},
			expectedTitle: strings.Repeat("abcde_", 12)[:70],
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := domain.BuildMatchKey(tt.props)
			assert.Equal(t, tt.expectedTitle, key[:70])
		})
	}
}

func TestBuildMatchKey_AccentStripping(t *testing.T) {
	plain := domain.BuildMatchKey(map[string]any{"title": "Les Miserables"})
	accented := domain.BuildMatchKey(map[string]any{"title": "Les Misérables"})
	assert.Equal(t, plain, accented)
}

func TestBuildMatchKey_Deterministic(t *testing.T) {
	props := map[string]any{
		"title":          "Middlemarch",
		"instanceTypeId": instanceTypeText,
		"publication": []any{
			map[string]any{"dateOfPublication": "1871.", "publisher": "Blackwood"},
		},
	}
	first := domain.BuildMatchKey(props)
	second := domain.BuildMatchKey(props)
	assert.Equal(t, first, second)
}

func TestBuildMatchKey_TypeOfResource(t *testing.T) {
	known := domain.BuildMatchKey(map[string]any{
		"title":          "Middlemarch",
		"instanceTypeId": instanceTypeText,
	})
	assert.Equal(t, "a", known[70:71])

	unknown := domain.BuildMatchKey(map[string]any{
		"title":          "Middlemarch",
		"instanceTypeId": "not-a-known-type",
	})
	assert.Equal(t, "_", unknown[70:71])
}

func TestBuildMatchKey_PublicationDate(t *testing.T) {
	tests := []struct {
		name     string
		props    map[string]any
		expected string
	}{
		{
			name: "four_digit_year_extracted",
			props: map[string]any{
				"title":       "Middlemarch",
				"publication": []any{map[string]any{"dateOfPublication": "c1871."}},
			},
			expected: "1871",
		},
		{
			name: "short_digit_run_falls_back",
			props: map[string]any{
				"title":       "Middlemarch",
				"publication": []any{map[string]any{"dateOfPublication": "18?"}},
			},
			expected: "0000",
		},
		{
			name:     "missing_publication_falls_back",
			props:    map[string]any{"title": "Middlemarch"},
			expected: "0000",
		},
	}

	// The date fragment sits after title (70), type (1), part name (30)
	// and part number (10).
	const dateOffset = 70 + 1 + 30 + 10

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := domain.BuildMatchKey(tt.props)
			assert.Equal(t, tt.expected, key[dateOffset:dateOffset+4])
		})
	}
}

func TestBuildMatchKey_FormatCharacter(t *testing.T) {
	physical := domain.BuildMatchKey(map[string]any{"title": "Middlemarch"})
	assert.True(t, strings.HasSuffix(physical, "p"))

	electronic := domain.BuildMatchKey(map[string]any{
		"title": "Middlemarch [electronic resource]",
	})
	assert.True(t, strings.HasSuffix(electronic, "e"))

	viaMedium := domain.BuildMatchKey(map[string]any{
		"title":    "Middlemarch",
		"matchKey": map[string]any{"medium": "[electronic resource]"},
	})
	assert.True(t, strings.HasSuffix(viaMedium, "e"))
}

func TestBuildMatchKey_Contributor(t *testing.T) {
	key := domain.BuildMatchKey(map[string]any{
		"title": "Middlemarch",
		"contributors": []any{
			map[string]any{
				"name":                  "Illustrator, Ignored",
				"contributorNameTypeId": "some-other-type",
			},
			map[string]any{
				"name":                  "Eliot, George",
				"contributorNameTypeId": "2b94c631-fca9-4892-a730-03ee529ffe2a",
			},
		},
	})
	assert.Contains(t, key, "eliot_george")
}

func TestInstance_MatchKey_ExplicitOverride(t *testing.T) {
	inst := domain.NewInstance(map[string]any{
		"title":    "Middlemarch",
		"matchKey": "externally_computed_key",
	})
	assert.Equal(t, "externally_computed_key", inst.MatchKey())
}

func TestInstance_MatchKey_CachedOnBag(t *testing.T) {
	inst := domain.NewInstance(map[string]any{"title": "Middlemarch"})
	key := inst.MatchKey()
	require.NotEmpty(t, key)

	// The derived key is written back so the stored instance carries it.
	assert.Equal(t, key, inst.Payload()["matchKey"])
	assert.Equal(t, key, inst.MatchKey())
}

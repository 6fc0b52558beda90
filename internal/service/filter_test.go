package service

import (
	"testing"

	"github.com/raphaelgruber/estatehub/internal/models"
	"github.com/raphaelgruber/estatehub/internal/seed"
	"github.com/stretchr/testify/assert"
)

func ptr[T any](v T) *T { return &v }

func ids(props []models.Property) []string {
	out := make([]string, len(props))
	for i, p := range props {
		out[i] = p.ID
	}
	return out
}

func TestFilterProperties(t *testing.T) {
	props := seed.MustLoad().Properties()

	tests := []struct {
		name   string
		filter models.PropertyFilter
		want   []string
	}{
		{"empty filter keeps order", models.PropertyFilter{}, []string{"prop1", "prop2", "prop3", "prop4", "prop5", "prop6"}},
		{"type all", models.PropertyFilter{Type: models.TypeAll}, []string{"prop1", "prop2", "prop3", "prop4", "prop5", "prop6"}},
		{"rent only", models.PropertyFilter{Type: models.ListingRent}, []string{"prop2", "prop4", "prop6"}},
		{"sale only", models.PropertyFilter{Type: models.ListingSale}, []string{"prop1", "prop3", "prop5"}},
		{"inclusive price range", models.PropertyFilter{MinPrice: ptr[int64](625000), MaxPrice: ptr[int64](785000)}, []string{"prop3", "prop5"}},
		{"min bedrooms", models.PropertyFilter{Bedrooms: ptr(3)}, []string{"prop1", "prop3", "prop4", "prop6"}},
		{"min bathrooms", models.PropertyFilter{Bathrooms: ptr(3)}, []string{"prop1", "prop4"}},
		{"search title case-insensitive", models.PropertyFilter{SearchQuery: "PENTHOUSE"}, []string{"prop4"}},
		{"search city", models.PropertyFilter{SearchQuery: "bellevue"}, []string{"prop3"}},
		{"search address", models.PropertyFilter{SearchQuery: "oak street"}, []string{"prop5"}},
		{"search description", models.PropertyFilter{SearchQuery: "garden"}, []string{"prop3"}},
		{"search ANDs with bedrooms", models.PropertyFilter{SearchQuery: "seattle", Bedrooms: ptr(3)}, []string{"prop1", "prop4"}},
		{"search ANDs with type", models.PropertyFilter{SearchQuery: "seattle", Type: models.ListingRent}, []string{"prop2", "prop4"}},
		{"no match", models.PropertyFilter{SearchQuery: "castle"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterProperties(props, tt.filter)
			assert.Equal(t, tt.want, ids(got))
		})
	}
}

func TestFilterPropertiesInvariants(t *testing.T) {
	props := seed.MustLoad().Properties()

	for _, p := range FilterProperties(props, models.PropertyFilter{Type: models.ListingRent}) {
		assert.Equal(t, models.ListingRent, p.Type)
	}

	for _, p := range FilterProperties(props, models.PropertyFilter{MinPrice: ptr[int64](100000), MaxPrice: ptr[int64](200000)}) {
		assert.GreaterOrEqual(t, p.Price, int64(100000))
		assert.LessOrEqual(t, p.Price, int64(200000))
	}

	assert.Equal(t, props, FilterProperties(props, models.PropertyFilter{}))
	assert.Empty(t, FilterProperties(nil, models.PropertyFilter{}))
}

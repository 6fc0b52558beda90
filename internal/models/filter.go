package models

// TypeAll disables the listing-type constraint of a filter.
const TypeAll ListingType = "all"

// PropertyFilter constrains a property listing. Nil pointer fields and an
// empty or "all" Type impose no constraint.
type PropertyFilter struct {
	Type        ListingType
	MinPrice    *int64
	MaxPrice    *int64
	Bedrooms    *int
	Bathrooms   *int
	SearchQuery string
}

// IsEmpty reports whether the filter imposes no constraint at all.
func (f PropertyFilter) IsEmpty() bool {
	return (f.Type == "" || f.Type == TypeAll) &&
		f.MinPrice == nil && f.MaxPrice == nil &&
		f.Bedrooms == nil && f.Bathrooms == nil &&
		f.SearchQuery == ""
}

// SortOrder names an ordering for property listings.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortOldest    SortOrder = "oldest"
	SortPriceHigh SortOrder = "price-high"
	SortPriceLow  SortOrder = "price-low"
)

// ParseSortOrder validates a sort order name. Empty means newest.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(s) {
	case "":
		return SortNewest, true
	case SortNewest, SortOldest, SortPriceHigh, SortPriceLow:
		return SortOrder(s), true
	}
	return "", false
}

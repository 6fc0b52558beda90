package service

import (
	"strings"

	"github.com/raphaelgruber/estatehub/internal/models"
)

// FilterProperties returns the properties matching every constraint of f,
// in input order. It performs no I/O and no simulated latency.
//
// All predicates combine with AND: a search query narrows the result further
// and never bypasses the type, price, bedroom or bathroom constraints.
func FilterProperties(props []models.Property, f models.PropertyFilter) []models.Property {
	query := strings.ToLower(strings.TrimSpace(f.SearchQuery))

	out := make([]models.Property, 0, len(props))
	for _, p := range props {
		if matches(p, f, query) {
			out = append(out, p)
		}
	}
	return out
}

func matches(p models.Property, f models.PropertyFilter, query string) bool {
	if f.Type != "" && f.Type != models.TypeAll && p.Type != f.Type {
		return false
	}
	if f.MinPrice != nil && p.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && p.Price > *f.MaxPrice {
		return false
	}
	if f.Bedrooms != nil && p.Bedrooms < *f.Bedrooms {
		return false
	}
	if f.Bathrooms != nil && p.Bathrooms < *f.Bathrooms {
		return false
	}
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(p.Title), query) ||
		strings.Contains(strings.ToLower(p.Description), query) ||
		strings.Contains(strings.ToLower(p.Location.Address), query) ||
		strings.Contains(strings.ToLower(p.Location.City), query)
}

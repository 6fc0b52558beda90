package service

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/raphaelgruber/estatehub/internal/db"
	"github.com/raphaelgruber/estatehub/internal/metrics"
	"github.com/raphaelgruber/estatehub/internal/models"
)

// ListProperties merges published properties (newest first) with the seed.
// When ids collide the published copy wins. Every call returns a new slice.
func (s *Service) ListProperties(ctx context.Context) (_ []models.Property, err error) {
	defer s.observe(metrics.OpListProperties, time.Now(), &err)

	published, err := s.publishedProperties(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.simulate(ctx, metrics.OpListProperties); err != nil {
		return nil, err
	}

	return mergeProperties(published, s.seed.Properties()), nil
}

// GetProperty looks up a published property, falling back to the seed.
// Published properties are served without simulated latency.
func (s *Service) GetProperty(ctx context.Context, id string) (_ *models.Property, err error) {
	defer s.observe(metrics.OpGetProperty, time.Now(), &err)

	published, err := s.publishedProperties(ctx)
	if err != nil {
		return nil, err
	}
	if p, ok := propertyByID(published, id); ok {
		return &p, nil
	}

	if err := s.simulate(ctx, metrics.OpGetProperty); err != nil {
		return nil, err
	}

	p, ok := s.seed.PropertyByID(id)
	if !ok {
		return nil, &NotFoundError{Resource: "property", ID: id}
	}
	return &p, nil
}

// PublishProperty stores a new listing with a generated id and creation
// time. The listing is prepended to the published collection. Nothing is
// persisted if validation, the wait or the write fails.
func (s *Service) PublishProperty(ctx context.Context, draft models.PropertyDraft) (_ *models.Property, err error) {
	defer s.observe(metrics.OpPublishProperty, time.Now(), &err)

	if err := validateDraft(draft); err != nil {
		return nil, err
	}

	if err := s.simulate(ctx, metrics.OpPublishProperty); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.publishedProperties(ctx)
	if err != nil {
		return nil, err
	}

	property := draft.ToProperty(newID("property"), s.now())

	updated := make([]models.Property, 0, len(existing)+1)
	updated = append(updated, property)
	updated = append(updated, existing...)
	if err := s.store.Put(ctx, db.KeyProperties, updated); err != nil {
		return nil, fmt.Errorf("persist property: %w", err)
	}

	s.logger.Info("property published", "property_id", property.ID, "owner_id", property.OwnerID)
	out := property.Clone()
	return &out, nil
}

func validateDraft(d models.PropertyDraft) error {
	switch {
	case strings.TrimSpace(d.Title) == "":
		return &ValidationError{Field: "title", Reason: "is required"}
	case len(d.Images) == 0:
		return &ValidationError{Field: "images", Reason: "at least one image is required"}
	case !d.Type.Valid():
		return &ValidationError{Field: "type", Reason: fmt.Sprintf("must be %q or %q", models.ListingSale, models.ListingRent)}
	case d.Price < 0:
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	case d.Bedrooms < 0 || d.Bathrooms < 0 || d.Area < 0:
		return &ValidationError{Field: "rooms", Reason: "bedrooms, bathrooms and area must not be negative"}
	case d.OwnerID == "":
		return &ValidationError{Field: "owner", Reason: "a signed-in owner is required"}
	}
	return nil
}

// publishedProperties loads user-submitted properties, newest first.
func (s *Service) publishedProperties(ctx context.Context) ([]models.Property, error) {
	var props []models.Property
	if _, err := s.store.Get(ctx, db.KeyProperties, &props); err != nil {
		return nil, fmt.Errorf("read properties: %w", err)
	}
	return props, nil
}

// mergeProperties concatenates sources, keeping the first property seen for
// each id.
func mergeProperties(sources ...[]models.Property) []models.Property {
	seen := make(map[string]bool)
	out := []models.Property{}
	for _, src := range sources {
		for _, p := range src {
			if seen[p.ID] {
				continue
			}
			seen[p.ID] = true
			out = append(out, p.Clone())
		}
	}
	return out
}

func propertyByID(props []models.Property, id string) (models.Property, bool) {
	for _, p := range props {
		if p.ID == id {
			return p.Clone(), true
		}
	}
	return models.Property{}, false
}

// SortProperties returns a sorted copy of props. Ties keep input order.
func SortProperties(props []models.Property, order models.SortOrder) []models.Property {
	out := slices.Clone(props)
	slices.SortStableFunc(out, func(a, b models.Property) int {
		switch order {
		case models.SortOldest:
			return a.CreatedAt.Compare(b.CreatedAt)
		case models.SortPriceHigh:
			return cmp.Compare(b.Price, a.Price)
		case models.SortPriceLow:
			return cmp.Compare(a.Price, b.Price)
		default:
			return b.CreatedAt.Compare(a.CreatedAt)
		}
	})
	return out
}

// FeaturedProperties returns up to limit featured properties in input order.
// A non-positive limit means no limit.
func FeaturedProperties(props []models.Property, limit int) []models.Property {
	out := []models.Property{}
	for _, p := range props {
		if !p.Featured {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// PropertiesByOwner returns the properties published by ownerID.
func PropertiesByOwner(props []models.Property, ownerID string) []models.Property {
	out := []models.Property{}
	for _, p := range props {
		if p.OwnerID == ownerID {
			out = append(out, p)
		}
	}
	return out
}

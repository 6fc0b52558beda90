package models

import "time"

// ListingType distinguishes properties for sale from rentals.
type ListingType string

const (
	ListingSale ListingType = "sale"
	ListingRent ListingType = "rent"
)

// Valid reports whether t is one of the known listing types.
func (t ListingType) Valid() bool {
	return t == ListingSale || t == ListingRent
}

// Location is the postal address and map coordinates of a property.
type Location struct {
	Address string  `json:"address" yaml:"address"`
	City    string  `json:"city" yaml:"city"`
	State   string  `json:"state" yaml:"state"`
	Zip     string  `json:"zip" yaml:"zip"`
	Lat     float64 `json:"lat" yaml:"lat"`
	Lng     float64 `json:"lng" yaml:"lng"`
}

// Property is a marketplace listing.
// OwnerID is a weak reference to a User; OwnerName is a display copy taken at
// publish time.
type Property struct {
	ID          string      `json:"id" yaml:"id"`
	Title       string      `json:"title" yaml:"title"`
	Description string      `json:"description" yaml:"description"`
	Price       int64       `json:"price" yaml:"price"`
	Bedrooms    int         `json:"bedrooms" yaml:"bedrooms"`
	Bathrooms   int         `json:"bathrooms" yaml:"bathrooms"`
	Area        int         `json:"area" yaml:"area"`
	Location    Location    `json:"location" yaml:"location"`
	Images      []string    `json:"images" yaml:"images"`
	Featured    bool        `json:"featured" yaml:"featured"`
	Type        ListingType `json:"type" yaml:"type"`
	CreatedAt   time.Time   `json:"createdAt" yaml:"createdAt"`
	OwnerID     string      `json:"ownerId" yaml:"ownerId"`
	OwnerName   string      `json:"ownerName" yaml:"ownerName"`
}

// Clone returns a deep copy of the property.
func (p Property) Clone() Property {
	if p.Images != nil {
		p.Images = append([]string(nil), p.Images...)
	}
	return p
}

// PropertyDraft is the caller-supplied part of a new listing. The service
// generates ID and CreatedAt on publish.
type PropertyDraft struct {
	Title       string
	Description string
	Price       int64
	Bedrooms    int
	Bathrooms   int
	Area        int
	Location    Location
	Images      []string
	Featured    bool
	Type        ListingType
	OwnerID     string
	OwnerName   string
}

// ToProperty merges the draft with generated fields.
func (d PropertyDraft) ToProperty(id string, createdAt time.Time) Property {
	return Property{
		ID:          id,
		Title:       d.Title,
		Description: d.Description,
		Price:       d.Price,
		Bedrooms:    d.Bedrooms,
		Bathrooms:   d.Bathrooms,
		Area:        d.Area,
		Location:    d.Location,
		Images:      append([]string(nil), d.Images...),
		Featured:    d.Featured,
		Type:        d.Type,
		CreatedAt:   createdAt,
		OwnerID:     d.OwnerID,
		OwnerName:   d.OwnerName,
	}
}

// CloneProperties deep-copies a slice of properties.
func CloneProperties(props []Property) []Property {
	out := make([]Property, len(props))
	for i, p := range props {
		out[i] = p.Clone()
	}
	return out
}

package model

import (
	"math"
	"time"
)

// PosType classifies a point of sale.
type PosType string

const (
	PosTypeCafe       PosType = "CAFE"
	PosTypeRestaurant PosType = "RESTAURANT"
	PosTypeOther      PosType = "OTHER"
)

// Valid reports whether t is one of the known POS types.
func (t PosType) Valid() bool {
	switch t {
	case PosTypeCafe, PosTypeRestaurant, PosTypeOther:
		return true
	default:
		return false
	}
}

// Campus identifies the university campus a POS belongs to.
type Campus string

const (
	CampusAltstadt Campus = "ALTSTADT"
	CampusBergheim Campus = "BERGHEIM"
	CampusINF      Campus = "INF"
)

// Valid reports whether c is one of the known campuses.
func (c Campus) Valid() bool {
	switch c {
	case CampusAltstadt, CampusBergheim, CampusINF:
		return true
	default:
		return false
	}
}

// Address is the postal address of a POS. Every field is optional.
type Address struct {
	Street      string `json:"street,omitempty" yaml:"street,omitempty"`
	HouseNumber string `json:"house_number,omitempty" yaml:"house_number,omitempty"`
	PostalCode  string `json:"postal_code,omitempty" yaml:"postal_code,omitempty"`
	City        string `json:"city,omitempty" yaml:"city,omitempty"`
}

// Pos is a point of sale in the catalog. Name is unique across the catalog.
type Pos struct {
	ID        string    `json:"id,omitempty" yaml:"id,omitempty"`
	Name      string    `json:"name" yaml:"name"`
	Type      PosType   `json:"type" yaml:"type"`
	Address   Address   `json:"address" yaml:"address"`
	Latitude  *float64  `json:"latitude,omitempty" yaml:"latitude,omitempty"`
	Longitude *float64  `json:"longitude,omitempty" yaml:"longitude,omitempty"`
	Campus    Campus    `json:"campus" yaml:"campus"`
	CreatedAt time.Time `json:"created_at,omitzero" yaml:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitzero" yaml:"updated_at,omitempty"`
}

// HasLocation reports whether both coordinates are set.
func (p *Pos) HasLocation() bool {
	return p.Latitude != nil && p.Longitude != nil
}

// ValidLatitude reports whether v is a finite latitude within [-90, 90].
func ValidLatitude(v float64) bool {
	return !math.IsNaN(v) && v >= -90 && v <= 90
}

// ValidLongitude reports whether v is a finite longitude within [-180, 180].
func ValidLongitude(v float64) bool {
	return !math.IsNaN(v) && v >= -180 && v <= 180
}

package model

// OsmNode is an OpenStreetMap node reduced to the tags relevant for a POS.
// It only lives for the duration of an import. Empty strings mean the tag
// was absent; nil coordinates mean the attribute was absent.
type OsmNode struct {
	NodeID      int64    `json:"node_id"`
	Name        string   `json:"name,omitempty"`
	Amenity     string   `json:"amenity,omitempty"`
	Street      string   `json:"street,omitempty"`
	HouseNumber string   `json:"house_number,omitempty"`
	PostalCode  string   `json:"postal_code,omitempty"`
	City        string   `json:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

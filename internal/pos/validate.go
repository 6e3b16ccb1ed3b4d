package pos

import (
	"strings"

	"github.com/sells-group/pos-catalog/internal/model"
	"github.com/sells-group/pos-catalog/internal/osm"
)

// FieldLatLon names the coordinate pair, which is required as one unit.
const FieldLatLon = "lat/lon"

// missingFields accumulates violations so every required field is reported
// in a single error.
type missingFields struct {
	fields []string
}

func (m *missingFields) requireText(field, value string) {
	if strings.TrimSpace(value) == "" {
		m.fields = append(m.fields, field)
	}
}

func (m *missingFields) requireCoordinates(lat, lon *float64) {
	if lat == nil || lon == nil {
		m.fields = append(m.fields, FieldLatLon)
	}
}

func (m *missingFields) err(nodeID int64) error {
	if len(m.fields) == 0 {
		return nil
	}
	return &model.MissingFieldsError{NodeID: nodeID, Fields: m.fields}
}

// Validate checks that node carries every field a POS needs. All checks run;
// failures are returned together as a *model.MissingFieldsError, in the order
// name, amenity, addr:street, addr:housenumber, addr:postcode, addr:city, lat/lon.
func Validate(node *model.OsmNode) error {
	var m missingFields
	m.requireText(osm.TagName, node.Name)
	m.requireText(osm.TagAmenity, node.Amenity)
	m.requireText(osm.TagStreet, node.Street)
	m.requireText(osm.TagHouseNumber, node.HouseNumber)
	m.requireText(osm.TagPostcode, node.PostalCode)
	m.requireText(osm.TagCity, node.City)
	m.requireCoordinates(node.Latitude, node.Longitude)
	return m.err(node.NodeID)
}

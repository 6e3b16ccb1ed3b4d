package pos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pos-catalog/internal/model"
)

func ptr(v float64) *float64 { return &v }

func completeNode() *model.OsmNode {
	return &model.OsmNode{
		NodeID:      123,
		Name:        "Campus Cafe",
		Amenity:     "cafe",
		Street:      "Grabengasse",
		HouseNumber: "1",
		PostalCode:  "69117",
		City:        "Heidelberg",
		Latitude:    ptr(49.41),
		Longitude:   ptr(8.71),
	}
}

func missing(t *testing.T, err error) []string {
	t.Helper()
	var mf *model.MissingFieldsError
	require.ErrorAs(t, err, &mf)
	return mf.Fields
}

func TestValidate_Complete(t *testing.T) {
	assert.NoError(t, Validate(completeNode()))
}

func TestValidate_PostcodeAndCityReportedInOrder(t *testing.T) {
	n := completeNode()
	n.PostalCode = ""
	n.City = ""

	err := Validate(n)
	assert.Equal(t, []string{"addr:postcode", "addr:city"}, missing(t, err))
	assert.EqualError(t, err, "osm node 123 is missing required fields: addr:postcode, addr:city")
}

func TestValidate_OnlyLatitudeMissing(t *testing.T) {
	n := completeNode()
	n.Latitude = nil
	assert.Equal(t, []string{"lat/lon"}, missing(t, Validate(n)))
}

func TestValidate_BothCoordinatesMissingReportedOnce(t *testing.T) {
	n := completeNode()
	n.Latitude = nil
	n.Longitude = nil
	assert.Equal(t, []string{"lat/lon"}, missing(t, Validate(n)))
}

func TestValidate_BlankCountsAsMissing(t *testing.T) {
	n := completeNode()
	n.Name = "   "
	n.Street = "\t"
	assert.Equal(t, []string{"name", "addr:street"}, missing(t, Validate(n)))
}

func TestValidate_EverythingMissing(t *testing.T) {
	err := Validate(&model.OsmNode{NodeID: 9})
	assert.Equal(t, []string{
		"name", "amenity", "addr:street", "addr:housenumber",
		"addr:postcode", "addr:city", "lat/lon",
	}, missing(t, err))
}

func TestValidate_DoesNotModifyNode(t *testing.T) {
	n := completeNode()
	n.Name = "  Campus Cafe  "
	require.NoError(t, Validate(n))
	assert.Equal(t, "  Campus Cafe  ", n.Name)
}

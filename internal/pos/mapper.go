package pos

import (
	"golang.org/x/text/cases"

	"github.com/sells-group/pos-catalog/internal/model"
)

// DefaultCampus is assigned to every imported POS. It is a placeholder: OSM
// data carries no campus, and no rule derives one from the coordinates yet.
const DefaultCampus = model.CampusAltstadt

// amenityTypes maps case-folded OSM amenity values to POS types. New
// categories are added here; anything absent maps to OTHER.
var amenityTypes = map[string]model.PosType{
	"cafe":       model.PosTypeCafe,
	"restaurant": model.PosTypeRestaurant,
	"fast_food":  model.PosTypeRestaurant,
}

var fold = cases.Fold()

// TypeForAmenity returns the POS type for an OSM amenity value, ignoring case.
func TypeForAmenity(amenity string) model.PosType {
	if t, ok := amenityTypes[fold.String(amenity)]; ok {
		return t
	}
	return model.PosTypeOther
}

// MapNode converts a validated node into a new, unsaved POS.
func MapNode(node *model.OsmNode) *model.Pos {
	return &model.Pos{
		Name: node.Name,
		Type: TypeForAmenity(node.Amenity),
		Address: model.Address{
			Street:      node.Street,
			HouseNumber: node.HouseNumber,
			PostalCode:  node.PostalCode,
			City:        node.City,
		},
		Latitude:  copyFloat(node.Latitude),
		Longitude: copyFloat(node.Longitude),
		Campus:    DefaultCampus,
	}
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

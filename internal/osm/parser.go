// Package osm reads OpenStreetMap node data: it fetches raw node payloads from
// the OSM API and scans them into model.OsmNode values.
package osm

import (
	"math"
	"strconv"
	"strings"

	"github.com/sells-group/pos-catalog/internal/model"
)

// Tag keys read from a node payload.
const (
	TagName        = "name"
	TagAmenity     = "amenity"
	TagStreet      = "addr:street"
	TagHouseNumber = "addr:housenumber"
	TagPostcode    = "addr:postcode"
	TagCity        = "addr:city"
)

var entityReplacer = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&amp;", "&",
)

// Parse scans an OSM node payload into an OsmNode.
//
// This is a text scan, not an XML parse. Node attributes (id, lat, lon) are
// taken from the first `name="value"` occurrence anywhere in the payload, so an
// attribute of the same name on another element, or a longer attribute ending
// in the same name, wins if it comes first. Tag values come from the first
// <tag> fragment whose k attribute matches exactly.
func Parse(payload string) (*model.OsmNode, error) {
	if strings.TrimSpace(payload) == "" {
		return nil, &model.ParseError{Reason: "empty payload"}
	}

	rawID, ok := attribute(payload, "id")
	if !ok {
		return nil, &model.ParseError{Reason: `missing attribute "id"`}
	}
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, &model.ParseError{Reason: `attribute "id"`, Err: err}
	}

	lat, err := floatAttribute(payload, "lat", model.ValidLatitude)
	if err != nil {
		return nil, err
	}
	lon, err := floatAttribute(payload, "lon", model.ValidLongitude)
	if err != nil {
		return nil, err
	}

	return &model.OsmNode{
		NodeID:      id,
		Name:        TagValue(payload, TagName),
		Amenity:     TagValue(payload, TagAmenity),
		Street:      TagValue(payload, TagStreet),
		HouseNumber: TagValue(payload, TagHouseNumber),
		PostalCode:  TagValue(payload, TagPostcode),
		City:        TagValue(payload, TagCity),
		Latitude:    lat,
		Longitude:   lon,
	}, nil
}

// floatAttribute returns nil when the attribute is absent.
func floatAttribute(payload, name string, inRange func(float64) bool) (*float64, error) {
	raw, ok := attribute(payload, name)
	if !ok {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, &model.ParseError{Reason: "attribute " + strconv.Quote(name), Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, &model.ParseError{Reason: "attribute " + strconv.Quote(name) + " is not a finite number"}
	}
	if !inRange(v) {
		return nil, &model.ParseError{Reason: "attribute " + strconv.Quote(name) + " is out of range"}
	}
	return &v, nil
}

// attribute returns the value of the first `name="..."` in s.
func attribute(s, name string) (string, bool) {
	needle := name + `="`
	i := strings.Index(s, needle)
	if i < 0 {
		return "", false
	}
	rest := s[i+len(needle):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		return "", false
	}
	return rest[:end], true
}

// TagValue returns the v attribute of the first <tag> fragment in payload whose
// k attribute equals key, or "" if there is none.
func TagValue(payload, key string) string {
	rest := payload
	for {
		i := strings.Index(rest, "<tag")
		if i < 0 {
			return ""
		}
		rest = rest[i+len("<tag"):]
		if rest == "" || !isSpace(rest[0]) {
			continue
		}

		attrs := scanAttributes(rest)
		if k, ok := attrs["k"]; !ok || k != key {
			continue
		}
		if v, ok := attrs["v"]; ok {
			return entityReplacer.Replace(v)
		}
	}
}

// scanAttributes collects the double-quoted name="value" pairs of an element,
// stopping at the first '>' outside a quoted value. The first occurrence of a
// name wins.
func scanAttributes(element string) map[string]string {
	attrs := make(map[string]string, 2)
	s := element
	for {
		s = strings.TrimLeft(s, " \t\r\n/")
		eq := strings.Index(s, `="`)
		if eq <= 0 {
			return attrs
		}
		if strings.IndexByte(s[:eq], '>') >= 0 {
			return attrs
		}
		name := s[:eq]
		if strings.ContainsAny(name, " \t\r\n") {
			// Stray token before the next attribute; resume after it.
			name = name[strings.LastIndexAny(name, " \t\r\n")+1:]
		}
		s = s[eq+2:]
		end := strings.IndexByte(s, '"')
		if end < 0 {
			return attrs
		}
		if _, seen := attrs[name]; !seen && name != "" {
			attrs[name] = s[:end]
		}
		s = s[end+1:]
	}
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

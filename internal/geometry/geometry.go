// Package geometry decodes the geometry envelopes returned by the upstream
// registries into a canonical, envelope-independent representation.
package geometry

import (
	"regexp"
	"strconv"

	"github.com/twpayne/go-geom"
)

// Kind identifies a canonical geometry kind.
type Kind string

const (
	KindPoint        Kind = "Point"
	KindPolygon      Kind = "Polygon"
	KindMultiPolygon Kind = "MultiPolygon"
)

// Classification describes the outcome of decoding one record's geometry.
type Classification string

const (
	// Present means a usable canonical geometry was recovered.
	Present Classification = "present"
	// Absent means the record carries no geometry at all. A missing geometry
	// field and the service's explicit null/empty placeholders both land here;
	// absence is never represented as an empty geometry.
	Absent Classification = "absent"
	// Malformed means a geometry object was found but its kind or coordinate
	// nesting could not be interpreted. Malformed records are unusable.
	Malformed Classification = "malformed"
)

// Decoded is the result of decoding a single record's geometry.
type Decoded struct {
	// Geom is the canonical geometry with its source EPSG recorded as SRID.
	// Nil unless Class is Present.
	Geom  geom.T
	Class Classification
}

// KindOf reports the canonical kind of g, or "" for unsupported types.
func KindOf(g geom.T) Kind {
	switch g.(type) {
	case *geom.Point:
		return KindPoint
	case *geom.Polygon:
		return KindPolygon
	case *geom.MultiPolygon:
		return KindMultiPolygon
	}
	return ""
}

// NewPoint builds a canonical point geometry in the given reference system.
func NewPoint(x, y float64, epsg int) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{x, y}).SetSRID(epsg)
}

var epsgURLPattern = regexp.MustCompile(`(?i)EPSG/[0-9.]+/(\d+)\s*$`)
var epsgPattern = regexp.MustCompile(`(?i)EPSG[:/]{0,2}(\d+)`)
var digitsPattern = regexp.MustCompile(`(\d+)`)

// ParseEPSG extracts an EPSG code from the identifier forms the registries
// use: "urn:ogc:def:crs:EPSG::4258", "EPSG:25833", "http://.../EPSG/0/4258"
// or a bare number. Returns 0 when no code can be recovered.
func ParseEPSG(s string) int {
	// OGC URL identifiers carry a registry revision between "EPSG" and the
	// code, so the trailing segment must win over the first run of digits.
	if m := epsgURLPattern.FindStringSubmatch(s); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return code
		}
	}
	if m := epsgPattern.FindStringSubmatch(s); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return code
		}
	}
	if m := digitsPattern.FindStringSubmatch(s); m != nil {
		if code, err := strconv.Atoi(m[1]); err == nil {
			return code
		}
	}
	return 0
}

package geometry

import (
	"encoding/json"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-geom"
)

// Decode interprets one record's geometry body and classifies the outcome.
// epsg is the reference system the surrounding envelope declared for the
// record; it is recorded as the SRID of the canonical geometry.
//
// A missing or null body, empty coordinates, and the service's known
// placeholder coordinates (arrays of strings emitted during degraded
// operation) all classify as Absent. A body that parses but whose kind or
// coordinate nesting cannot be interpreted classifies as Malformed.
func Decode(body json.RawMessage, epsg int) Decoded {
	if len(body) == 0 || isJSONNull(body) {
		return Decoded{Class: Absent}
	}

	// Probe coordinates before handing the body to the GeoJSON decoder so
	// that "no geometry" placeholders are not misreported as malformed.
	var probe struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return Decoded{Class: Malformed}
	}
	if probe.Type == "" && probe.Coordinates == nil {
		return Decoded{Class: Absent}
	}
	if coordsAbsent(probe.Coordinates) {
		return Decoded{Class: Absent}
	}

	gj, err := geojson.UnmarshalGeometry(body)
	if err != nil {
		return Decoded{Class: Malformed}
	}

	g, ok := fromOrb(gj.Geometry(), epsg)
	if !ok {
		return Decoded{Class: Malformed}
	}
	if g == nil {
		return Decoded{Class: Absent}
	}
	return Decoded{Geom: g, Class: Present}
}

// coordsAbsent reports whether the coordinates member is one of the shapes
// the registries use to signal "match without geometry": missing, null, an
// empty array, or an array of placeholder strings.
func coordsAbsent(raw json.RawMessage) bool {
	if len(raw) == 0 || isJSONNull(raw) {
		return true
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(raw, &arr); err != nil {
		return false
	}
	if len(arr) == 0 {
		return true
	}
	var s string
	return json.Unmarshal(arr[0], &s) == nil
}

// fromOrb converts a decoded orb geometry to the canonical go-geom form.
// Returns (nil, true) for geometries that parsed but are empty, and
// (nil, false) for kinds outside the canonical set.
func fromOrb(g orb.Geometry, epsg int) (geom.T, bool) {
	switch o := g.(type) {
	case orb.Point:
		return NewPoint(o[0], o[1], epsg), true

	case orb.Polygon:
		coords := ringCoords(o)
		if coords == nil {
			return nil, true
		}
		p := geom.NewPolygon(geom.XY)
		if _, err := p.SetCoords(coords); err != nil {
			return nil, false
		}
		return p.SetSRID(epsg), true

	case orb.MultiPolygon:
		var polys [][][]geom.Coord
		for _, poly := range o {
			if coords := ringCoords(poly); coords != nil {
				polys = append(polys, coords)
			}
		}
		if polys == nil {
			return nil, true
		}
		mp := geom.NewMultiPolygon(geom.XY)
		if _, err := mp.SetCoords(polys); err != nil {
			return nil, false
		}
		return mp.SetSRID(epsg), true
	}

	return nil, false
}

func ringCoords(poly orb.Polygon) [][]geom.Coord {
	var rings [][]geom.Coord
	for _, ring := range poly {
		if len(ring) == 0 {
			continue
		}
		coords := make([]geom.Coord, 0, len(ring))
		for _, pt := range ring {
			coords = append(coords, geom.Coord{pt[0], pt[1]})
		}
		rings = append(rings, coords)
	}
	if len(rings) == 0 || len(rings[0]) == 0 {
		return nil
	}
	return rings
}

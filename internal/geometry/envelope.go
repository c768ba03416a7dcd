package geometry

import (
	"encoding/json"

	"github.com/rotisserie/eris"
)

// The registries answer in one of two envelope shapes: a GeoJSON-style
// feature collection where every element carries a "geometry" member, or a
// single area object nested under an "omrade" key. Envelope is the closed
// union over those shapes; a payload that matches neither is rejected rather
// than guessed at.

// EnvelopeShape tags the recognized payload shapes.
type EnvelopeShape string

const (
	ShapeFeatureCollection EnvelopeShape = "feature_collection"
	ShapeNestedArea        EnvelopeShape = "nested_area"
)

// Envelope is a parsed upstream payload.
type Envelope struct {
	Shape EnvelopeShape

	// EPSG is the reference system declared by the payload's crs member,
	// or 0 when the payload declares none.
	EPSG int

	// Features holds the elements of a feature collection payload.
	Features []Feature

	// Area holds the geometry body of a nested-area payload.
	Area json.RawMessage
}

// Feature is one element of a feature collection envelope.
type Feature struct {
	Properties map[string]any  `json:"properties"`
	Geometry   json.RawMessage `json:"geometry"`
}

// rawEnvelope mirrors the superset of both payload shapes.
type rawEnvelope struct {
	Features []Feature       `json:"features"`
	Omrade   json.RawMessage `json:"omrade"`
	CRS      json.RawMessage `json:"crs"`
}

// crsMember matches the GeoJSON crs member: either
// {"type":"name","properties":{"name":"urn:ogc:def:crs:EPSG::4258"}} or a
// bare string.
type crsMember struct {
	Name       string `json:"name"`
	Properties struct {
		Name string `json:"name"`
	} `json:"properties"`
}

// ParseEnvelope classifies a raw payload into exactly one envelope variant.
// The feature-collection shape is attempted first; a payload with no
// "features" array is then probed for a nested area object. Anything else is
// unrecognized. A missing geometry field on a feature stays a missing field
// here; it is never conflated with geometry nested under a different key.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, eris.Wrap(err, "geometry: parse envelope")
	}

	if raw.Features != nil {
		return &Envelope{
			Shape:    ShapeFeatureCollection,
			EPSG:     parseCRSMember(raw.CRS),
			Features: raw.Features,
		}, nil
	}

	if len(raw.Omrade) > 0 && !isJSONNull(raw.Omrade) {
		epsg := parseCRSMember(raw.CRS)
		// The area object may carry its own crs member; it wins over the
		// top-level one.
		var area struct {
			CRS json.RawMessage `json:"crs"`
		}
		if err := json.Unmarshal(raw.Omrade, &area); err == nil {
			if inner := parseCRSMember(area.CRS); inner != 0 {
				epsg = inner
			}
		}
		return &Envelope{
			Shape: ShapeNestedArea,
			EPSG:  epsg,
			Area:  raw.Omrade,
		}, nil
	}

	return nil, eris.New("geometry: unrecognized payload shape")
}

// parseCRSMember extracts an EPSG code from a GeoJSON crs member, which the
// registries emit either as an object or a bare string. Returns 0 when the
// member is missing or carries no recognizable code.
func parseCRSMember(raw json.RawMessage) int {
	if len(raw) == 0 || isJSONNull(raw) {
		return 0
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return ParseEPSG(s)
	}

	var m crsMember
	if err := json.Unmarshal(raw, &m); err != nil {
		return 0
	}
	if m.Properties.Name != "" {
		return ParseEPSG(m.Properties.Name)
	}
	return ParseEPSG(m.Name)
}

func isJSONNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

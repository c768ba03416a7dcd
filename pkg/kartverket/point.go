package kartverket

import (
	"strconv"
	"strings"

	"github.com/norgeo/kvsok/internal/geometry"
)

// RepPoint is a registry representation point with an explicit reference
// system.
type RepPoint struct {
	X    float64
	Y    float64
	EPSG int
}

// parseCoord accepts the number and string forms the registries emit,
// including comma decimal separators.
func parseCoord(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case string:
		s := strings.TrimSpace(strings.ReplaceAll(n, ",", "."))
		if s == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func looksLikeDegrees(x, y float64) bool {
	return x >= -180 && x <= 180 && y >= -90 && y <= 90
}

func looksLikeUTM(x, y float64) bool {
	return x >= 0 && x <= 1_000_000 && y >= 5_000_000 && y <= 8_000_000
}

// parseRepPoint extracts an (x, y, epsg) point from a representation-point
// object. The registries name the coordinate fields inconsistently (x/y,
// ost/øst/nord, lon/lat) and occasionally label coordinates with the wrong
// reference system, so the declared EPSG is cross-checked against coordinate
// magnitude: degrees-range values under a UTM code resolve to EPSG:4258, and
// metre-range values under a geographic code resolve to projectedEPSG.
func parseRepPoint(obj map[string]any, projectedEPSG int) (RepPoint, bool) {
	if obj == nil {
		return RepPoint{}, false
	}

	epsg := 4258
	for _, key := range []string{"epsg", "koordinatsystem", "srid"} {
		if v, ok := obj[key]; ok && v != nil {
			switch s := v.(type) {
			case string:
				if code := geometry.ParseEPSG(s); code != 0 {
					epsg = code
				}
			case float64:
				epsg = int(s)
			}
			break
		}
	}

	xm, xOK := firstCoord(obj, "x", "ost", "øst")
	ym, yOK := firstCoord(obj, "y", "nord")
	lon, lonOK := firstCoord(obj, "lon")
	lat, latOK := firstCoord(obj, "lat")

	var x, y float64
	switch {
	case xOK && yOK && looksLikeUTM(xm, ym):
		x, y = xm, ym
	case lonOK && latOK:
		x, y = lon, lat
	case xOK && yOK:
		x, y = xm, ym
	default:
		return RepPoint{}, false
	}

	if geographicCode(epsg) && !looksLikeDegrees(x, y) && looksLikeUTM(x, y) {
		if projectedEPSG > 0 {
			epsg = projectedEPSG
		} else {
			epsg = 25833
		}
	}
	if utmCode(epsg) && looksLikeDegrees(x, y) {
		epsg = 4258
	}

	return RepPoint{X: x, Y: y, EPSG: epsg}, true
}

func firstCoord(obj map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		if v, ok := obj[key]; ok && v != nil {
			if f, ok := parseCoord(v); ok {
				return f, true
			}
		}
	}
	return 0, false
}

func geographicCode(epsg int) bool { return epsg == 4258 || epsg == 4326 }

func utmCode(epsg int) bool { return epsg >= 25832 && epsg <= 25835 }

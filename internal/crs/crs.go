// Package crs reprojects canonical geometry between the reference systems
// the registries deliver in and the project's working system.
//
// Supported identifiers are the geographic systems EPSG:4258 (ETRS89) and
// EPSG:4326 (WGS84), and the ETRS89 UTM zones EPSG:25832 through EPSG:25835.
// ETRS89 and WGS84 are treated as coincident; the datum separation is well
// below the registries' coordinate precision.
package crs

import (
	"fmt"

	"github.com/twpayne/go-geom"
)

// UnsupportedCRSError reports a reference system this package cannot
// reproject from or to. EPSG 0 means the source system was missing entirely.
type UnsupportedCRSError struct {
	EPSG int
}

func (e *UnsupportedCRSError) Error() string {
	if e.EPSG == 0 {
		return "crs: source reference system missing"
	}
	return fmt.Sprintf("crs: unsupported reference system EPSG:%d", e.EPSG)
}

// Supported reports whether epsg names a reference system this package can
// reproject.
func Supported(epsg int) bool {
	return epsg == 4258 || epsg == 4326 || (epsg >= 25832 && epsg <= 25835)
}

// Geographic reports whether epsg names a geographic (degrees) system.
func Geographic(epsg int) bool {
	return epsg == 4258 || epsg == 4326
}

// utmZone returns the UTM zone for a supported projected code.
func utmZone(epsg int) int {
	return epsg - 25800
}

// TransformXY reprojects a single coordinate pair. Coordinates are
// (east, north) for projected systems and (lon, lat) for geographic ones.
func TransformXY(x, y float64, from, to int) (float64, float64, error) {
	if !Supported(from) {
		return 0, 0, &UnsupportedCRSError{EPSG: from}
	}
	if !Supported(to) {
		return 0, 0, &UnsupportedCRSError{EPSG: to}
	}
	if from == to || (Geographic(from) && Geographic(to)) {
		return x, y, nil
	}

	lon, lat := x, y
	if !Geographic(from) {
		lon, lat = utmToGeographic(x, y, utmZone(from))
	}
	if Geographic(to) {
		return lon, lat, nil
	}
	e, n := geographicToUTM(lon, lat, utmZone(to))
	return e, n, nil
}

// Reconcile reprojects g from its recorded source system into target. When
// source and target identifiers are equal the input is returned unchanged,
// coordinates byte for byte. A missing or unsupported source system fails
// with UnsupportedCRSError; it is never silently assumed to be the target.
func Reconcile(g geom.T, target int) (geom.T, error) {
	src := g.SRID()
	if src == target {
		return g, nil
	}
	if !Supported(src) {
		return nil, &UnsupportedCRSError{EPSG: src}
	}
	if !Supported(target) {
		return nil, &UnsupportedCRSError{EPSG: target}
	}

	flat := make([]float64, len(g.FlatCoords()))
	copy(flat, g.FlatCoords())

	stride := g.Stride()
	for i := 0; i+1 < len(flat); i += stride {
		x, y, err := TransformXY(flat[i], flat[i+1], src, target)
		if err != nil {
			return nil, err
		}
		flat[i], flat[i+1] = x, y
	}

	switch t := g.(type) {
	case *geom.Point:
		return geom.NewPointFlat(t.Layout(), flat).SetSRID(target), nil
	case *geom.Polygon:
		ends := make([]int, len(t.Ends()))
		copy(ends, t.Ends())
		return geom.NewPolygonFlat(t.Layout(), flat, ends).SetSRID(target), nil
	case *geom.MultiPolygon:
		endss := make([][]int, len(t.Endss()))
		for i, e := range t.Endss() {
			endss[i] = make([]int, len(e))
			copy(endss[i], e)
		}
		return geom.NewMultiPolygonFlat(t.Layout(), flat, endss).SetSRID(target), nil
	}

	return nil, fmt.Errorf("crs: cannot reconcile geometry type %T", g)
}

package crs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"
)

func TestTransformXY_CentralMeridian(t *testing.T) {
	// The equator on the central meridian maps to the false easting exactly.
	east, north, err := TransformXY(15.0, 0.0, 4258, 25833)
	require.NoError(t, err)
	assert.InDelta(t, 500000.0, east, 1e-6)
	assert.InDelta(t, 0.0, north, 1e-6)
}

func TestTransformXY_OsloRoundTrip(t *testing.T) {
	lon, lat := 10.7522, 59.9139

	east, north, err := TransformXY(lon, lat, 4258, 25833)
	require.NoError(t, err)
	// Oslo sits near the western edge of zone 33.
	assert.InDelta(t, 262000, east, 5000)
	assert.InDelta(t, 6650000, north, 5000)

	lon2, lat2, err := TransformXY(east, north, 25833, 4258)
	require.NoError(t, err)
	assert.InDelta(t, lon, lon2, 1e-7)
	assert.InDelta(t, lat, lat2, 1e-7)
}

func TestTransformXY_ZoneToZone(t *testing.T) {
	// Bergen in zone 32, reprojected to zone 33 and back.
	east, north, err := TransformXY(297000, 6700000, 25832, 25833)
	require.NoError(t, err)

	east2, north2, err := TransformXY(east, north, 25833, 25832)
	require.NoError(t, err)
	assert.InDelta(t, 297000, east2, 1e-4)
	assert.InDelta(t, 6700000, north2, 1e-4)
}

func TestTransformXY_GeographicPair(t *testing.T) {
	// ETRS89 and WGS84 are treated as coincident.
	x, y, err := TransformXY(10.5, 60.5, 4258, 4326)
	require.NoError(t, err)
	assert.Equal(t, 10.5, x)
	assert.Equal(t, 60.5, y)
}

func TestTransformXY_Unsupported(t *testing.T) {
	_, _, err := TransformXY(1, 2, 3857, 4258)
	var ucrs *UnsupportedCRSError
	require.ErrorAs(t, err, &ucrs)
	assert.Equal(t, 3857, ucrs.EPSG)
}

func TestReconcile_SameSystemIsIdentity(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{262000, 6650000}).SetSRID(25833)

	got, err := Reconcile(p, 25833)
	require.NoError(t, err)
	// Same instance, coordinates untouched.
	assert.Same(t, geom.T(p), got)

	// Reconciling an already-reconciled geometry again changes nothing.
	again, err := Reconcile(got, 25833)
	require.NoError(t, err)
	assert.Equal(t, got.FlatCoords(), again.FlatCoords())
}

func TestReconcile_MissingSource(t *testing.T) {
	p := geom.NewPointFlat(geom.XY, []float64{10, 60}) // SRID 0

	_, err := Reconcile(p, 25833)
	var ucrs *UnsupportedCRSError
	require.ErrorAs(t, err, &ucrs)
	assert.Equal(t, 0, ucrs.EPSG)
}

func TestReconcile_Polygon(t *testing.T) {
	poly := geom.NewPolygon(geom.XY).SetSRID(4258)
	_, err := poly.SetCoords([][]geom.Coord{{
		{10.0, 59.9}, {10.1, 59.9}, {10.1, 60.0}, {10.0, 59.9},
	}})
	require.NoError(t, err)

	got, err := Reconcile(poly, 25833)
	require.NoError(t, err)
	require.IsType(t, &geom.Polygon{}, got)
	assert.Equal(t, 25833, got.SRID())

	back, err := Reconcile(got, 4258)
	require.NoError(t, err)
	for i, v := range poly.FlatCoords() {
		assert.InDelta(t, v, back.FlatCoords()[i], 1e-7)
	}
}

func TestReconcile_MultiPolygonPreservesStructure(t *testing.T) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(4258)
	_, err := mp.SetCoords([][][]geom.Coord{
		{{{10, 59}, {11, 59}, {11, 60}, {10, 59}}},
		{{{12, 61}, {13, 61}, {13, 62}, {12, 61}}},
	})
	require.NoError(t, err)

	got, err := Reconcile(mp, 25833)
	require.NoError(t, err)
	out, ok := got.(*geom.MultiPolygon)
	require.True(t, ok)
	assert.Equal(t, 2, out.NumPolygons())
}

package layers

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/norgeo/kvsok/internal/geometry"
)

// ExportShapefile writes one layer to a shapefile at path. Point layers
// become POINT files and polygon layers POLYGON files; multipolygons are
// written as multi-part polygon shapes.
func ExportShapefile(ctx context.Context, store Store, layerName, path string) error {
	layers, err := store.Layers(ctx)
	if err != nil {
		return err
	}
	var layer *Layer
	for i := range layers {
		if layers[i].Name == layerName {
			layer = &layers[i]
			break
		}
	}
	if layer == nil {
		return eris.Errorf("layers: no such layer %s", layerName)
	}

	records, err := store.Records(ctx, layerName)
	if err != nil {
		return err
	}

	var shapeType shp.ShapeType = shp.POINT
	if layer.Kind != geometry.KindPoint {
		shapeType = shp.POLYGON
	}
	w, err := shp.Create(path, shapeType)
	if err != nil {
		return eris.Wrapf(err, "layers: create shapefile %s", path)
	}
	defer w.Close()

	fields := make([]shp.Field, len(layer.Fields))
	for i, f := range layer.Fields {
		switch f.Type {
		case FieldInt:
			fields[i] = shp.NumberField(dbfFieldName(f.Name), 12)
		case FieldFloat:
			fields[i] = shp.FloatField(dbfFieldName(f.Name), 20, 8)
		default:
			fields[i] = shp.StringField(dbfFieldName(f.Name), 120)
		}
	}
	w.SetFields(fields)

	for n, rec := range records {
		shape, err := toShape(rec.Geometry)
		if err != nil {
			return err
		}
		w.Write(shape)
		for i, f := range layer.Fields {
			w.WriteAttribute(n, i, attributeValue(rec.Attributes[f.Name]))
		}
	}
	return nil
}

// dbfFieldName squeezes a field name into DBF's 10-byte ASCII limit.
func dbfFieldName(name string) string {
	replacer := strings.NewReplacer(
		"æ", "ae", "ø", "o", "å", "a",
		"Æ", "AE", "Ø", "O", "Å", "A",
	)
	ascii := replacer.Replace(name)
	if len(ascii) > 10 {
		ascii = ascii[:10]
	}
	return ascii
}

func attributeValue(v any) any {
	switch n := v.(type) {
	case nil:
		return ""
	case float64:
		// JSON round-tripping turns ints into float64; write them back
		// without a fraction when they are whole.
		if n == float64(int64(n)) {
			return int64(n)
		}
		return n
	default:
		return fmt.Sprintf("%v", v)
	}
}

func toShape(g geom.T) (shp.Shape, error) {
	switch t := g.(type) {
	case *geom.Point:
		return &shp.Point{X: t.X(), Y: t.Y()}, nil
	case *geom.Polygon:
		return polygonShape(polygonParts(t)), nil
	case *geom.MultiPolygon:
		var parts [][]shp.Point
		for i := 0; i < t.NumPolygons(); i++ {
			parts = append(parts, polygonParts(t.Polygon(i))...)
		}
		return polygonShape(parts), nil
	}
	return nil, eris.Errorf("layers: cannot export geometry kind %s", geometry.KindOf(g))
}

func polygonParts(p *geom.Polygon) [][]shp.Point {
	parts := make([][]shp.Point, 0, p.NumLinearRings())
	for i := 0; i < p.NumLinearRings(); i++ {
		ring := p.LinearRing(i)
		coords := ring.FlatCoords()
		stride := ring.Stride()
		pts := make([]shp.Point, 0, len(coords)/stride)
		for j := 0; j+1 < len(coords); j += stride {
			pts = append(pts, shp.Point{X: coords[j], Y: coords[j+1]})
		}
		parts = append(parts, pts)
	}
	return parts
}

func polygonShape(parts [][]shp.Point) *shp.Polygon {
	poly := shp.Polygon(*shp.NewPolyLine(parts))
	return &poly
}

package layers

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/norgeo/kvsok/internal/geometry"
	"github.com/norgeo/kvsok/internal/search"
)

// The five fixed target layers, one per search category.
const (
	LayerAddresses      = "søkte_adresser"
	LayerProperties     = "søkte_eiendommer"
	LayerCounties       = "søkte_fylker"
	LayerMunicipalities = "søkte_kommuner"
	LayerPlaceNames     = "søkte_stedsnavn"
)

type layerSpec struct {
	name   string
	kind   geometry.Kind
	fields []FieldDef
}

var layerSpecs = map[search.Category]layerSpec{
	search.CategoryAddress: {
		name: LayerAddresses,
		kind: geometry.KindPoint,
		fields: []FieldDef{
			{Name: "adresse", Type: FieldString},
			{Name: "kommunenavn", Type: FieldString},
			{Name: "kommunenummer", Type: FieldString},
			{Name: "postnummer", Type: FieldString},
			{Name: "poststed", Type: FieldString},
			{Name: "matrikkel", Type: FieldString},
		},
	},
	search.CategoryProperty: {
		name: LayerProperties,
		kind: geometry.KindPolygon,
		fields: []FieldDef{
			{Name: "kommunenummer", Type: FieldString},
			{Name: "matrikkel", Type: FieldString},
			{Name: "objekt", Type: FieldString},
			{Name: "gardsnummer", Type: FieldInt},
			{Name: "bruksnummer", Type: FieldInt},
		},
	},
	search.CategoryCounty: {
		name: LayerCounties,
		kind: geometry.KindMultiPolygon,
		fields: []FieldDef{
			{Name: "nummer", Type: FieldString},
			{Name: "navn", Type: FieldString},
		},
	},
	search.CategoryMunicipality: {
		name: LayerMunicipalities,
		kind: geometry.KindMultiPolygon,
		fields: []FieldDef{
			{Name: "nummer", Type: FieldString},
			{Name: "navn", Type: FieldString},
		},
	},
	search.CategoryPlaceName: {
		name: LayerPlaceNames,
		kind: geometry.KindPoint,
		fields: []FieldDef{
			{Name: "skrivemåte", Type: FieldString},
			{Name: "navneobjekttype", Type: FieldString},
			{Name: "stedsnummer", Type: FieldInt},
			{Name: "kommuner", Type: FieldString},
		},
	},
}

// Materializer writes accepted results into the fixed per-category layers.
// Appends to the same layer are serialized so interleaved saves from
// concurrent searches keep insertion order coherent.
type Materializer struct {
	store  Store
	epsg   int
	scheme FieldTypeScheme

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewMaterializer creates a materializer writing layers in the project's
// reference system.
func NewMaterializer(store Store, projectEPSG int, scheme FieldTypeScheme) *Materializer {
	return &Materializer{
		store:  store,
		epsg:   projectEPSG,
		scheme: scheme,
		locks:  make(map[string]*sync.Mutex),
	}
}

func (m *Materializer) layerLock(name string) *sync.Mutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	l, ok := m.locks[name]
	if !ok {
		l = &sync.Mutex{}
		m.locks[name] = l
	}
	return l
}

// Scheme returns the field-type scheme the materializer declares layers
// with.
func (m *Materializer) Scheme() FieldTypeScheme { return m.scheme }

// LayerNameFor returns the fixed target layer for a category.
func LayerNameFor(cat search.Category) (string, bool) {
	s, ok := layerSpecs[cat]
	return s.name, ok
}

// Save appends one result to its category's layer, creating the layer on
// first use. The result must be complete: degraded and unusable results have
// nothing to materialize. Geometry must already be in the project system.
func (m *Materializer) Save(ctx context.Context, r search.Result) error {
	spec, ok := layerSpecs[r.Category]
	if !ok {
		return eris.Errorf("layers: no layer for category %s", r.Category)
	}
	if r.Geometry == nil {
		return eris.Errorf("layers: result %q has no geometry", r.Label)
	}
	if srid := r.Geometry.SRID(); srid != m.epsg {
		return eris.Errorf("layers: geometry in EPSG:%d, layer expects EPSG:%d", srid, m.epsg)
	}

	g, err := conformKind(r.Geometry, spec.kind)
	if err != nil {
		return err
	}

	lock := m.layerLock(spec.name)
	lock.Lock()
	defer lock.Unlock()

	// The layer declares host type names resolved through the configured
	// field-type scheme, so a store created under one scheme reads back
	// with the names that scheme chose.
	fields := make([]FieldDef, len(spec.fields))
	for i, f := range spec.fields {
		f.TypeName = m.scheme.TypeName(f.Type)
		fields[i] = f
	}
	if _, err := m.store.EnsureLayer(ctx, LayerDef{
		Name:   spec.name,
		Kind:   spec.kind,
		EPSG:   m.epsg,
		Fields: fields,
	}); err != nil {
		return err
	}

	attrs := make(map[string]any, len(spec.fields))
	for _, f := range spec.fields {
		if v, ok := r.Attributes[f.Name]; ok {
			attrs[f.Name] = v
		}
	}

	if err := m.store.Append(ctx, spec.name, Record{Attributes: attrs, Geometry: g}); err != nil {
		return err
	}
	zap.L().Info("saved result to layer",
		zap.String("layer", spec.name),
		zap.String("label", r.Label))
	return nil
}

// SaveSet appends every complete result of a set, skipping degraded and
// unusable ones. It reports how many results were saved.
func (m *Materializer) SaveSet(ctx context.Context, set *search.ResultSet) (int, error) {
	saved := 0
	for _, r := range set.Results {
		if r.Completeness != search.Complete {
			continue
		}
		if err := m.Save(ctx, r); err != nil {
			return saved, err
		}
		saved++
	}
	return saved, nil
}

// conformKind coerces a geometry into the layer's declared kind. Polygons
// are promoted to single-part multipolygons for the administrative layers;
// any other mismatch is rejected.
func conformKind(g geom.T, want geometry.Kind) (geom.T, error) {
	got := geometry.KindOf(g)
	if got == want {
		return g, nil
	}
	if want == geometry.KindMultiPolygon && got == geometry.KindPolygon {
		poly := g.(*geom.Polygon)
		mp := geom.NewMultiPolygon(geom.XY)
		mp.SetSRID(poly.SRID())
		if err := mp.Push(poly); err != nil {
			return nil, eris.Wrap(err, "layers: promote polygon")
		}
		return mp, nil
	}
	return nil, eris.Errorf("layers: geometry kind %s does not fit layer kind %s", got, want)
}

// Package layers persists accepted search results into named, typed
// collections, one per search category, and exports them to shapefiles.
package layers

import (
	"context"
	"time"

	"github.com/twpayne/go-geom"

	"github.com/norgeo/kvsok/internal/geometry"
)

// FieldType is the abstract attribute type a layer field carries.
type FieldType int

const (
	FieldString FieldType = iota
	FieldInt
	FieldFloat
	FieldDateTime
)

// FieldDef declares one attribute field of a layer. TypeName is the host
// type name the field-type scheme resolved at declaration time; it persists
// with the layer so later readers see the scheme the layer was created
// under.
type FieldDef struct {
	Name     string    `json:"name"`
	Type     FieldType `json:"type"`
	TypeName string    `json:"type_name,omitempty"`
}

// LayerDef declares a layer: its name, geometry kind, reference system and
// attribute schema. EnsureLayer is idempotent over the same definition.
type LayerDef struct {
	Name   string
	Kind   geometry.Kind
	EPSG   int
	Fields []FieldDef
}

// Layer is a stored layer with its declared schema.
type Layer struct {
	Name      string
	Kind      geometry.Kind
	EPSG      int
	Fields    []FieldDef
	CreatedAt time.Time
}

// Record is one stored feature. Geometry must already be in the layer's
// reference system when appended.
type Record struct {
	ID         string
	Attributes map[string]any
	Geometry   geom.T
	CreatedAt  time.Time
}

// Store is the persistence backend for layers.
type Store interface {
	// EnsureLayer creates the layer if missing and returns it. An existing
	// layer with a different geometry kind is an error.
	EnsureLayer(ctx context.Context, def LayerDef) (*Layer, error)
	// Append adds one record to a layer.
	Append(ctx context.Context, layerName string, rec Record) error
	// Layers lists every stored layer.
	Layers(ctx context.Context) ([]Layer, error)
	// Records returns a layer's records in insertion order.
	Records(ctx context.Context, layerName string) ([]Record, error)
	Close() error
}

// FieldTypeScheme maps abstract field types onto the concrete type names a
// host layer backend declares. Two host generations name the types
// differently; the scheme is chosen once at startup from configuration and
// used for every layer created in that run.
type FieldTypeScheme interface {
	Name() string
	TypeName(t FieldType) string
}

type variantScheme struct{}

func (variantScheme) Name() string { return "variant" }
func (variantScheme) TypeName(t FieldType) string {
	switch t {
	case FieldInt:
		return "Int"
	case FieldFloat:
		return "Double"
	case FieldDateTime:
		return "DateTime"
	default:
		return "String"
	}
}

type typeIDScheme struct{}

func (typeIDScheme) Name() string { return "typeid" }
func (typeIDScheme) TypeName(t FieldType) string {
	switch t {
	case FieldInt:
		return "int"
	case FieldFloat:
		return "double"
	case FieldDateTime:
		return "QDateTime"
	default:
		return "QString"
	}
}

// SchemeForName selects a field-type scheme by its configured name. Unknown
// names fall back to the newer typeid scheme.
func SchemeForName(name string) FieldTypeScheme {
	if name == "variant" {
		return variantScheme{}
	}
	return typeIDScheme{}
}

// Package search orchestrates registry queries and turns their raw responses
// into uniformly shaped results in the project's reference system. One search
// may be in flight per category; a newer search supersedes an older one and
// the older completion is discarded.
package search

import (
	"github.com/twpayne/go-geom"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

// Category names one of the five searchable registries.
type Category string

const (
	CategoryAddress      Category = "address"
	CategoryProperty     Category = "property"
	CategoryCounty       Category = "county"
	CategoryMunicipality Category = "municipality"
	CategoryPlaceName    Category = "placename"
)

// Categories lists every category in presentation order.
func Categories() []Category {
	return []Category{
		CategoryAddress,
		CategoryProperty,
		CategoryCounty,
		CategoryMunicipality,
		CategoryPlaceName,
	}
}

// Completeness grades how much of a registry hit survived normalization.
type Completeness int

const (
	// Complete results carry usable geometry and full attributes.
	Complete Completeness = iota
	// Degraded results keep their attributes but the registry delivered no
	// geometry, typically during registry downtime.
	Degraded
	// Unusable marks a hit whose geometry the decoder could not make sense
	// of, or geometry in a reference system that cannot be transformed.
	// Unusable hits never appear in a ResultSet's visible list; they only
	// show up as a diagnostics count.
	Unusable
)

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Degraded:
		return "degraded"
	case Unusable:
		return "unusable"
	}
	return "unknown"
}

// Result is one normalized registry hit. Geometry is nil unless the result
// is Complete, and a non-nil geometry always carries the project's SRID once
// the orchestrator has accepted the set.
type Result struct {
	Category     Category
	Label        string
	Attributes   map[string]any
	Geometry     geom.T
	Completeness Completeness
}

// Diagnostics counts the results that lost geometry during normalization.
type Diagnostics struct {
	Degraded int
	Unusable int
}

func (d *Diagnostics) note(c Completeness) {
	switch c {
	case Degraded:
		d.Degraded++
	case Unusable:
		d.Unusable++
	}
}

// ResultSet is the outcome of one accepted search. Page is zero-valued for
// the registries that do not page.
type ResultSet struct {
	Category    Category
	Query       string
	Results     []Result
	Page        kartverket.PageMetadata
	Diagnostics Diagnostics
}

// HasMore reports whether the service said pages remain after this set.
func (s *ResultSet) HasMore() bool {
	return s.Page.HasMore()
}

// add records a normalized hit. Unusable hits are counted in the
// diagnostics but kept out of the visible result list.
func (s *ResultSet) add(r Result) {
	s.Diagnostics.note(r.Completeness)
	if r.Completeness == Unusable {
		return
	}
	s.Results = append(s.Results, r)
}

package search

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/norgeo/kvsok/internal/crs"
	"github.com/norgeo/kvsok/internal/geometry"
	"github.com/norgeo/kvsok/pkg/kartverket"
)

// normalizeAddresses shapes one address page into results. Records without a
// parseable representation point are kept as degraded rather than dropped.
func normalizeAddresses(page *kartverket.AddressPage, projectEPSG int) *ResultSet {
	set := &ResultSet{Category: CategoryAddress, Page: page.Metadata}
	for _, rec := range page.Adresser {
		r := Result{
			Category: CategoryAddress,
			Label:    addressLabel(rec),
			Attributes: map[string]any{
				"adresse":       rec.Adressetekst,
				"kommunenavn":   rec.Kommunenavn,
				"kommunenummer": rec.Kommunenummer,
				"postnummer":    rec.Postnummer,
				"poststed":      rec.Poststed,
				"matrikkel":     rec.CadastralRef(),
			},
		}
		if pt, ok := rec.Point(projectEPSG); ok {
			r.Geometry = geometry.NewPoint(pt.X, pt.Y, pt.EPSG)
		} else {
			r.Completeness = Degraded
		}
		set.add(r)
	}
	return set
}

func addressLabel(rec kartverket.AddressRecord) string {
	parts := []string{rec.Adressetekst}
	if rec.Postnummer != "" || rec.Poststed != "" {
		parts = append(parts, strings.TrimSpace(rec.Postnummer+" "+rec.Poststed))
	}
	return strings.Join(parts, ", ")
}

// normalizeProperty shapes the property registry's feature-collection
// envelope. Each feature is classified independently so one bad geometry
// does not void the rest of a multi-parcel response.
func normalizeProperty(body []byte, q kartverket.PropertyQuery) (*ResultSet, error) {
	env, err := geometry.ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	set := &ResultSet{Category: CategoryProperty, Query: q.Ref()}
	for _, feat := range env.Features {
		r := Result{
			Category:   CategoryProperty,
			Label:      fmt.Sprintf("%s %s %s", propertyObjectType(q), q.MunicipalityNumber, q.Ref()),
			Attributes: propertyAttributes(feat.Properties, q),
		}
		applyDecoded(&r, geometry.Decode(feat.Geometry, env.EPSG))
		set.add(r)
	}
	return set, nil
}

// propertyObjectType names the cadastral unit the query addresses: a
// section number means a condominium section, a leasehold number without one
// a leased site, and bare gnr/bnr the parcel itself.
func propertyObjectType(q kartverket.PropertyQuery) string {
	switch {
	case q.Snr > 0:
		return "Seksjon"
	case q.Fnr > 0:
		return "Festetomt"
	}
	return "Eiendom"
}

func propertyAttributes(props map[string]any, q kartverket.PropertyQuery) map[string]any {
	attrs := map[string]any{
		"kommunenummer": q.MunicipalityNumber,
		"gardsnummer":   q.Gnr,
		"bruksnummer":   q.Bnr,
		"matrikkel":     q.Ref(),
		"objekt":        propertyObjectType(q),
	}
	if q.Fnr > 0 {
		attrs["festenummer"] = q.Fnr
	}
	if q.Snr > 0 {
		attrs["seksjonsnummer"] = q.Snr
	}
	for k, v := range props {
		if _, taken := attrs[k]; !taken {
			attrs[k] = v
		}
	}
	return attrs
}

// normalizeArea shapes a county or municipality boundary response, which
// arrives either as a feature collection or as a nested area object.
func normalizeArea(body []byte, cat Category, unit kartverket.AdminUnit) (*ResultSet, error) {
	env, err := geometry.ParseEnvelope(body)
	if err != nil {
		return nil, err
	}

	set := &ResultSet{Category: cat, Query: unit.Number}
	attrs := map[string]any{"nummer": unit.Number, "navn": unit.Name}

	switch env.Shape {
	case geometry.ShapeNestedArea:
		r := Result{Category: cat, Label: areaLabel(unit), Attributes: attrs}
		applyDecoded(&r, geometry.Decode(env.Area, env.EPSG))
		set.add(r)
	default:
		for _, feat := range env.Features {
			r := Result{Category: cat, Label: areaLabel(unit), Attributes: attrs}
			applyDecoded(&r, geometry.Decode(feat.Geometry, env.EPSG))
			set.add(r)
		}
	}
	return set, nil
}

func areaLabel(unit kartverket.AdminUnit) string {
	if unit.Name == "" {
		return unit.Number
	}
	return fmt.Sprintf("%s (%s)", unit.Name, unit.Number)
}

// normalizePlaceNames shapes one place-name page into results.
func normalizePlaceNames(page *kartverket.PlacePage, projectEPSG int) *ResultSet {
	set := &ResultSet{Category: CategoryPlaceName, Page: page.Metadata}
	for _, rec := range page.Navn {
		r := Result{
			Category: CategoryPlaceName,
			Label:    placeLabel(rec),
			Attributes: map[string]any{
				"skrivemåte":      rec.Skrivemate,
				"navneobjekttype": rec.Navneobjekttype,
				"stedsnummer":     rec.Stedsnummer,
				"kommuner":        rec.MunicipalityNames(),
			},
		}
		if pt, ok := rec.Point(projectEPSG); ok {
			r.Geometry = geometry.NewPoint(pt.X, pt.Y, pt.EPSG)
		} else {
			r.Completeness = Degraded
		}
		set.add(r)
	}
	return set
}

func placeLabel(rec kartverket.PlaceRecord) string {
	label := rec.Skrivemate
	if rec.Navneobjekttype != "" {
		label += " – " + rec.Navneobjekttype
	}
	if names := rec.MunicipalityNames(); names != "" {
		label += " (" + names + ")"
	}
	return label
}

func applyDecoded(r *Result, d geometry.Decoded) {
	switch d.Class {
	case geometry.Present:
		r.Geometry = d.Geom
	case geometry.Absent:
		r.Completeness = Degraded
	case geometry.Malformed:
		r.Completeness = Unusable
	}
}

// reconcile transforms every result geometry into the project's reference
// system. Results whose source system is unsupported become unusable: they
// drop out of the visible list and only raise the diagnostics count, instead
// of failing the whole set.
func reconcile(set *ResultSet, projectEPSG int) {
	kept := set.Results[:0]
	for _, r := range set.Results {
		if r.Geometry != nil {
			g, err := crs.Reconcile(r.Geometry, projectEPSG)
			if err != nil {
				zap.L().Warn("dropping geometry in unsupported reference system",
					zap.String("category", string(r.Category)),
					zap.String("label", r.Label),
					zap.Error(err))
				set.Diagnostics.Unusable++
				continue
			}
			r.Geometry = g
		}
		kept = append(kept, r)
	}
	set.Results = kept
}

package kartverket

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
)

var municipalityNumberPattern = regexp.MustCompile(`^\d{4}$`)

// PropertyQuery locates a cadastral property by municipality and parcel
// numbers. Municipality number and the primary parcel pair (gnr, bnr) are
// required; leasehold (fnr) and section (snr) numbers are optional and only
// sent when set.
type PropertyQuery struct {
	MunicipalityNumber string
	Gnr                int
	Bnr                int
	Fnr                int
	Snr                int

	// OutputEPSG asks the registry to deliver geometry in this reference
	// system.
	OutputEPSG int
}

// Validate checks the query before any network call. Sub-identifiers
// without the primary parcel pair are rejected rather than guessed at.
func (q PropertyQuery) Validate() error {
	if q.MunicipalityNumber == "" {
		return invalidQuery("municipality", "municipality number is required")
	}
	if !municipalityNumberPattern.MatchString(q.MunicipalityNumber) {
		return invalidQuery("municipality", "must be a four-digit number")
	}
	if q.Gnr <= 0 || q.Bnr <= 0 {
		return invalidQuery("parcel", "gnr and bnr are required")
	}
	if q.Fnr < 0 || q.Snr < 0 {
		return invalidQuery("parcel", "fnr and snr must not be negative")
	}
	return nil
}

// Ref formats the query's cadastral reference as "gnr/bnr[/fnr][-snr]".
func (q PropertyQuery) Ref() string {
	ref := fmt.Sprintf("%d/%d", q.Gnr, q.Bnr)
	if q.Fnr > 0 {
		ref += fmt.Sprintf("/%d", q.Fnr)
	}
	if q.Snr > 0 {
		ref += fmt.Sprintf("-%d", q.Snr)
	}
	return ref
}

// GeocodeProperty fetches the property registry's geocoding response for
// the query. The body is a GeoJSON-style feature collection envelope; it is
// returned raw for the normalizer, which must classify features that arrive
// without geometry during registry downtime.
func (c *Client) GeocodeProperty(ctx context.Context, q PropertyQuery) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	params := url.Values{
		"omrade":        {"true"},
		"kommunenummer": {q.MunicipalityNumber},
		"gardsnummer":   {strconv.Itoa(q.Gnr)},
		"bruksnummer":   {strconv.Itoa(q.Bnr)},
	}
	if q.Fnr > 0 {
		params.Set("festenummer", strconv.Itoa(q.Fnr))
	}
	if q.Snr > 0 {
		params.Set("seksjonsnummer", strconv.Itoa(q.Snr))
	}
	if q.OutputEPSG > 0 {
		params.Set("utkoordsys", strconv.Itoa(q.OutputEPSG))
	}

	return c.getJSON(ctx, c.propertyBase+"/geokoding", params)
}

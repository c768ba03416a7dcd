package kartverket

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// AddressQuery is a free-text road address search. At least one of the
// fields must be set.
type AddressQuery struct {
	Street string
	Number string // house number, digits only
	Letter string // house letter, at most two characters

	// OutputEPSG asks the registry to deliver points in this reference
	// system. Zero means the registry default (EPSG:4258).
	OutputEPSG int
	PageSize   int
}

// Validate checks the query before any network call.
func (q AddressQuery) Validate() error {
	if strings.TrimSpace(q.Street) == "" && strings.TrimSpace(q.Number) == "" && strings.TrimSpace(q.Letter) == "" {
		return invalidQuery("address", "at least one of street, number or letter is required")
	}
	if n := strings.TrimSpace(q.Number); n != "" {
		if _, err := strconv.Atoi(n); err != nil {
			return invalidQuery("number", "must be numeric")
		}
	}
	if len(strings.TrimSpace(q.Letter)) > 2 {
		return invalidQuery("letter", "at most two characters")
	}
	return nil
}

// PageMetadata is the paging envelope the address and place-name registries
// report. Side is the page index as the service itself counts pages; callers
// paginating must follow it rather than a local counter.
type PageMetadata struct {
	Side              int `json:"side"`
	TreffPerSide      int `json:"treffPerSide"`
	TotaltAntallTreff int `json:"totaltAntallTreff"`
	ViserFra          int `json:"viserFra"`
	ViserTil          int `json:"viserTil"`
}

// HasMore reports whether the service says pages remain after this one.
func (m PageMetadata) HasMore() bool {
	return m.ViserTil < m.TotaltAntallTreff
}

// AddressRecord is one hit from the address registry.
type AddressRecord struct {
	Adressetekst  string         `json:"adressetekst"`
	Objtype       string         `json:"objtype"`
	Kommunenavn   string         `json:"kommunenavn"`
	Kommunenummer string         `json:"kommunenummer"`
	Postnummer    string         `json:"postnummer"`
	Poststed      string         `json:"poststed"`
	Gardsnummer   int            `json:"gardsnummer"`
	Bruksnummer   int            `json:"bruksnummer"`
	Festenummer   int            `json:"festenummer"`
	Undernummer   int            `json:"undernummer"`
	Punkt         map[string]any `json:"representasjonspunkt"`
}

// Point extracts the record's representation point. projectedEPSG is used to
// resolve mislabeled metre coordinates; see parseRepPoint.
func (r AddressRecord) Point(projectedEPSG int) (RepPoint, bool) {
	return parseRepPoint(r.Punkt, projectedEPSG)
}

// CadastralRef formats the record's cadastral reference as
// "gnr/bnr[/fnr][-snr]", or "" when the record carries none.
func (r AddressRecord) CadastralRef() string {
	if r.Gardsnummer == 0 || r.Bruksnummer == 0 {
		return ""
	}
	ref := fmt.Sprintf("%d/%d", r.Gardsnummer, r.Bruksnummer)
	if r.Festenummer > 0 {
		ref += fmt.Sprintf("/%d", r.Festenummer)
	}
	if r.Undernummer > 0 {
		ref += fmt.Sprintf("-%d", r.Undernummer)
	}
	return ref
}

// AddressPage is one page of address search results.
type AddressPage struct {
	Metadata PageMetadata    `json:"metadata"`
	Adresser []AddressRecord `json:"adresser"`
}

// SearchAddresses fetches one page of road-address hits. The address
// registry counts pages from zero.
func (c *Client) SearchAddresses(ctx context.Context, q AddressQuery, page int) (*AddressPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = 100
	}

	params := url.Values{
		"objtype":         {"Vegadresse"},
		"treffPerSide":    {strconv.Itoa(pageSize)},
		"side":            {strconv.Itoa(page)},
		"asciiKompatibel": {"true"},
	}
	if s := strings.TrimSpace(q.Street); s != "" {
		params.Set("adressenavn", s)
	}
	if n := strings.TrimSpace(q.Number); n != "" {
		params.Set("nummer", n)
	}
	if l := strings.TrimSpace(q.Letter); l != "" {
		params.Set("bokstav", l)
	}
	if q.OutputEPSG > 0 {
		params.Set("utkoordsys", strconv.Itoa(q.OutputEPSG))
	}

	body, err := c.getJSON(ctx, c.addressBase+"/sok", params)
	if err != nil {
		return nil, err
	}

	var result AddressPage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kartverket: parse address response")
	}
	return &result, nil
}

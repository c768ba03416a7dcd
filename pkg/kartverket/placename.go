package kartverket

import (
	"context"
	"encoding/json"
	"net/url"
	"strconv"
	"unicode/utf8"

	"github.com/rotisserie/eris"
)

// PlaceQuery is a place-name search against the stedsnavn registry.
type PlaceQuery struct {
	Name       string
	OutputEPSG int
	PageSize   int
}

// Validate rejects queries too short for the registry to accept.
func (q PlaceQuery) Validate() error {
	if utf8.RuneCountInString(q.Name) < 2 {
		return invalidQuery("name", "at least 2 characters required")
	}
	return nil
}

// PlaceMunicipality is a municipality a named place lies in.
type PlaceMunicipality struct {
	Kommunenummer string `json:"kommunenummer"`
	Kommunenavn   string `json:"kommunenavn"`
}

// PlaceRecord is one hit from the place-name registry.
type PlaceRecord struct {
	Skrivemate      string              `json:"skrivemåte"`
	Navneobjekttype string              `json:"navneobjekttype"`
	Stedsnummer     int                 `json:"stedsnummer"`
	Kommuner        []PlaceMunicipality `json:"kommuner"`
	Punkt           map[string]any      `json:"representasjonspunkt"`
}

// Point extracts the record's representation point, if present and sane.
func (r PlaceRecord) Point(projectedEPSG int) (RepPoint, bool) {
	return parseRepPoint(r.Punkt, projectedEPSG)
}

// MunicipalityNames joins the record's municipality names for display.
func (r PlaceRecord) MunicipalityNames() string {
	joined := ""
	for i, k := range r.Kommuner {
		if i > 0 {
			joined += ", "
		}
		joined += k.Kommunenavn
	}
	return joined
}

// PlacePage is one page of place-name results. The registry pages from 1,
// unlike the address registry.
type PlacePage struct {
	Metadata PageMetadata  `json:"metadata"`
	Navn     []PlaceRecord `json:"navn"`
}

// SearchPlaceNames fetches one page of place-name hits. Page numbers start
// at 1; passing 0 fetches the first page.
func (c *Client) SearchPlaceNames(ctx context.Context, q PlaceQuery, page int) (*PlacePage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}

	params := url.Values{}
	params.Set("sok", q.Name)
	params.Set("fuzzy", "true")
	params.Set("side", strconv.Itoa(page))
	if q.PageSize > 0 {
		params.Set("treffPerSide", strconv.Itoa(q.PageSize))
	}
	if q.OutputEPSG > 0 {
		params.Set("utkoordsys", strconv.Itoa(q.OutputEPSG))
	}

	body, err := c.getJSON(ctx, c.placeBase+"/navn", params)
	if err != nil {
		return nil, err
	}
	var result PlacePage
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, eris.Wrap(err, "kartverket: decode place-name response")
	}
	return &result, nil
}

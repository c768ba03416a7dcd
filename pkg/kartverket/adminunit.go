package kartverket

import (
	"context"
	"encoding/json"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// AdminUnit is a county or municipality pick-list entry.
type AdminUnit struct {
	Number string `json:"number"`
	Name   string `json:"name"`
}

// The "no" macrolanguage carries no collation tailoring in the CLDR data the
// collate package ships, so æ/ø/å would sort as plain a/o. Bokmål does.
var norwegian = collate.New(language.MustParse("nb"), collate.IgnoreCase)

// sortUnits orders pick lists by name with Norwegian collation, so Ø and Å
// sort after Z rather than interleaved.
func sortUnits(units []AdminUnit) {
	sort.SliceStable(units, func(i, j int) bool {
		return norwegian.CompareString(units[i].Name, units[j].Name) < 0
	})
}

// parseUnitList tolerates the list shapes the kommuneinfo hosts emit: a bare
// array, or an object keyed by the unit kind (or generic data/content keys).
func parseUnitList(body []byte, listKeys, numberKeys, nameKeys []string) []AdminUnit {
	var items []map[string]any

	if err := json.Unmarshal(body, &items); err != nil {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(body, &wrapper); err != nil {
			return nil
		}
		for _, key := range listKeys {
			if raw, ok := wrapper[key]; ok {
				if err := json.Unmarshal(raw, &items); err == nil {
					break
				}
			}
		}
	}

	var units []AdminUnit
	for _, item := range items {
		number := firstString(item, numberKeys)
		name := firstString(item, nameKeys)
		if number == "" || name == "" {
			continue
		}
		units = append(units, AdminUnit{Number: number, Name: name})
	}
	return units
}

func firstString(obj map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := obj[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			return strconv.Itoa(int(v))
		}
	}
	return ""
}

// ListCounties returns the county pick list, sorted by Norwegian collation.
// The list is cached; the fallback host is tried when the primary fails.
func (c *Client) ListCounties(ctx context.Context) ([]AdminUnit, error) {
	if cached, ok := c.pickLists.Get("fylker"); ok {
		return cached.([]AdminUnit), nil
	}

	body, err := c.getJSONWithFallback(ctx, "/fylker", nil)
	if err != nil {
		return nil, err
	}

	units := parseUnitList(body,
		[]string{"fylker", "data", "content"},
		[]string{"fylkesnummer", "nummer", "kode"},
		[]string{"fylkesnavn", "navn", "name"},
	)
	if units == nil {
		return nil, eris.New("kartverket: no counties in response")
	}
	sortUnits(units)
	c.pickLists.SetDefault("fylker", units)
	return units, nil
}

// ListMunicipalities returns the municipality pick list, sorted by Norwegian
// collation. The list is cached; the fallback host is tried when the
// primary fails.
func (c *Client) ListMunicipalities(ctx context.Context) ([]AdminUnit, error) {
	if cached, ok := c.pickLists.Get("kommuner"); ok {
		return cached.([]AdminUnit), nil
	}

	body, err := c.getJSONWithFallback(ctx, "/kommuner", nil)
	if err != nil {
		return nil, err
	}

	units := parseUnitList(body,
		[]string{"kommuner", "data", "content"},
		[]string{"kommunenummer", "kommuneNr", "nummer", "kode"},
		[]string{"kommunenavn", "kommuneNavn", "navn", "name"},
	)
	if units == nil {
		return nil, eris.New("kartverket: no municipalities in response")
	}
	sortUnits(units)
	c.pickLists.SetDefault("kommuner", units)
	return units, nil
}

// AreaQuery identifies a county or municipality boundary request. Number is
// the unit's registry number; OutputEPSG asks for geometry in that system.
type AreaQuery struct {
	Number     string
	OutputEPSG int
}

// Validate checks the query before any network call.
func (q AreaQuery) Validate() error {
	if q.Number == "" {
		return invalidQuery("number", "unit number is required")
	}
	for _, r := range q.Number {
		if r < '0' || r > '9' {
			return invalidQuery("number", "must be numeric")
		}
	}
	return nil
}

// CountyArea fetches a county's boundary. The response is either a feature
// collection or a nested area object; it is returned raw for the normalizer.
func (c *Client) CountyArea(ctx context.Context, q AreaQuery) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.getJSONWithFallback(ctx, "/fylker/"+q.Number+"/omrade", areaParams(q))
}

// MunicipalityArea fetches a municipality's boundary in the same dual shape
// as CountyArea.
func (c *Client) MunicipalityArea(ctx context.Context, q AreaQuery) ([]byte, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}
	return c.getJSONWithFallback(ctx, "/kommuner/"+q.Number+"/omrade", areaParams(q))
}

func areaParams(q AreaQuery) url.Values {
	params := url.Values{}
	if q.OutputEPSG > 0 {
		params.Set("utkoordsys", strconv.Itoa(q.OutputEPSG))
	}
	return params
}

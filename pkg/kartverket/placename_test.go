package kartverket

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPlaceNames_Success(t *testing.T) {
	var gotQuery map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"metadata": {"side": 1, "treffPerSide": 50, "totaltAntallTreff": 1, "viserFra": 1, "viserTil": 1},
			"navn": [{
				"skrivemåte": "Galdhøpiggen",
				"navneobjekttype": "Fjelltopp",
				"stedsnummer": 61135,
				"kommuner": [{"kommunenummer": "3434", "kommunenavn": "Lom"}],
				"representasjonspunkt": {"øst": 8.3125, "nord": 61.6364, "koordinatsystem": "EPSG:4258"}
			}]
		}`)
	}))

	page, err := c.SearchPlaceNames(context.Background(), PlaceQuery{Name: "Galdhøpiggen"}, 0)
	require.NoError(t, err)

	// The place-name registry counts pages from 1; page 0 becomes page 1.
	assert.Equal(t, "1", gotQuery["side"])
	assert.Equal(t, "Galdhøpiggen", gotQuery["sok"])

	require.Len(t, page.Navn, 1)
	rec := page.Navn[0]
	assert.Equal(t, "Galdhøpiggen", rec.Skrivemate)
	assert.Equal(t, "Fjelltopp", rec.Navneobjekttype)
	assert.Equal(t, "Lom", rec.MunicipalityNames())

	pt, ok := rec.Point(25832)
	require.True(t, ok)
	assert.Equal(t, 4258, pt.EPSG)
	assert.InDelta(t, 8.3125, pt.X, 1e-9)
	assert.InDelta(t, 61.6364, pt.Y, 1e-9)
}

func TestSearchPlaceNames_TooShort(t *testing.T) {
	c := NewClient()
	_, err := c.SearchPlaceNames(context.Background(), PlaceQuery{Name: "a"}, 1)
	var iq *InvalidQueryError
	require.ErrorAs(t, err, &iq)
	assert.Equal(t, "name", iq.Field)

	// Two runes pass even when they are multi-byte.
	assert.NoError(t, PlaceQuery{Name: "Ås"}.Validate())
}

func TestPlaceRecord_MunicipalityNames(t *testing.T) {
	rec := PlaceRecord{Kommuner: []PlaceMunicipality{
		{Kommunenavn: "Lom"},
		{Kommunenavn: "Skjåk"},
	}}
	assert.Equal(t, "Lom, Skjåk", rec.MunicipalityNames())
	assert.Equal(t, "", PlaceRecord{}.MunicipalityNames())
}

package kartverket

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchAddresses_Success(t *testing.T) {
	var gotQuery map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"metadata": {"side": 0, "treffPerSide": 100, "totaltAntallTreff": 1, "viserFra": 1, "viserTil": 1},
			"adresser": [{
				"adressetekst": "Karl Johans gate 22",
				"objtype": "Vegadresse",
				"kommunenavn": "OSLO",
				"kommunenummer": "0301",
				"postnummer": "0026",
				"poststed": "OSLO",
				"gardsnummer": 209,
				"bruksnummer": 44,
				"representasjonspunkt": {"epsg": "EPSG:4258", "lat": 59.913, "lon": 10.738}
			}]
		}`)
	}))

	page, err := c.SearchAddresses(context.Background(), AddressQuery{Street: "Karl Johans gate", Number: "22"}, 0)
	require.NoError(t, err)

	assert.Equal(t, "Karl Johans gate", gotQuery["adressenavn"])
	assert.Equal(t, "22", gotQuery["nummer"])
	assert.Equal(t, "Vegadresse", gotQuery["objtype"])
	assert.Equal(t, "0", gotQuery["side"])
	assert.Equal(t, "true", gotQuery["asciiKompatibel"])

	require.Len(t, page.Adresser, 1)
	rec := page.Adresser[0]
	assert.Equal(t, "Karl Johans gate 22", rec.Adressetekst)
	assert.Equal(t, "209/44", rec.CadastralRef())
	assert.False(t, page.Metadata.HasMore())

	pt, ok := rec.Point(25833)
	require.True(t, ok)
	assert.Equal(t, 4258, pt.EPSG)
	assert.InDelta(t, 10.738, pt.X, 1e-9)
	assert.InDelta(t, 59.913, pt.Y, 1e-9)
}

func TestSearchAddresses_PaginationFollowsService(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("side") == "0" {
			_, _ = io.WriteString(w, `{
				"metadata": {"side": 0, "treffPerSide": 1, "totaltAntallTreff": 2, "viserFra": 1, "viserTil": 1},
				"adresser": [{"adressetekst": "Storgata 1"}]
			}`)
			return
		}
		_, _ = io.WriteString(w, `{
			"metadata": {"side": 1, "treffPerSide": 1, "totaltAntallTreff": 2, "viserFra": 2, "viserTil": 2},
			"adresser": [{"adressetekst": "Storgata 2"}]
		}`)
	}))

	q := AddressQuery{Street: "Storgata", PageSize: 1}
	first, err := c.SearchAddresses(context.Background(), q, 0)
	require.NoError(t, err)
	require.True(t, first.Metadata.HasMore())

	second, err := c.SearchAddresses(context.Background(), q, first.Metadata.Side+1)
	require.NoError(t, err)
	assert.False(t, second.Metadata.HasMore())
	require.Len(t, second.Adresser, 1)
	assert.Equal(t, "Storgata 2", second.Adresser[0].Adressetekst)
}

func TestSearchAddresses_EmptyResult(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"metadata": {"totaltAntallTreff": 0}, "adresser": []}`)
	}))

	page, err := c.SearchAddresses(context.Background(), AddressQuery{Street: "Finnesikke"}, 0)
	require.NoError(t, err)
	assert.Empty(t, page.Adresser)
}

func TestAddressQuery_Validate(t *testing.T) {
	tests := []struct {
		name  string
		query AddressQuery
		field string
	}{
		{"all empty", AddressQuery{}, "address"},
		{"non-numeric number", AddressQuery{Number: "22b"}, "number"},
		{"letter too long", AddressQuery{Street: "Storgata", Letter: "ABC"}, "letter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			var iq *InvalidQueryError
			require.ErrorAs(t, err, &iq)
			assert.Equal(t, tt.field, iq.Field)
		})
	}

	assert.NoError(t, AddressQuery{Street: "Storgata"}.Validate())
	assert.NoError(t, AddressQuery{Number: "22", Letter: "B"}.Validate())
}

func TestAddressRecord_CadastralRef(t *testing.T) {
	assert.Equal(t, "", AddressRecord{}.CadastralRef())
	assert.Equal(t, "209/44", AddressRecord{Gardsnummer: 209, Bruksnummer: 44}.CadastralRef())
	assert.Equal(t, "209/44/3", AddressRecord{Gardsnummer: 209, Bruksnummer: 44, Festenummer: 3}.CadastralRef())
	assert.Equal(t, "209/44-2", AddressRecord{Gardsnummer: 209, Bruksnummer: 44, Undernummer: 2}.CadastralRef())
}

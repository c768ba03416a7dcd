package kartverket

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeocodeProperty_Success(t *testing.T) {
	var gotQuery map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"type": "FeatureCollection",
			"crs": {"type": "name", "properties": {"name": "urn:ogc:def:crs:EPSG::25833"}},
			"features": [{"type": "Feature", "properties": {"matrikkelnummer": "0301-209/44"},
				"geometry": {"type": "Polygon", "coordinates": [[[262000,6650000],[262100,6650000],[262100,6650100],[262000,6650000]]]}}]
		}`)
	}))

	body, err := c.GeocodeProperty(context.Background(), PropertyQuery{
		MunicipalityNumber: "0301", Gnr: 209, Bnr: 44, OutputEPSG: 25833,
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), "FeatureCollection")

	assert.Equal(t, "true", gotQuery["omrade"])
	assert.Equal(t, "0301", gotQuery["kommunenummer"])
	assert.Equal(t, "209", gotQuery["gardsnummer"])
	assert.Equal(t, "44", gotQuery["bruksnummer"])
	assert.Equal(t, "25833", gotQuery["utkoordsys"])
	_, hasFnr := gotQuery["festenummer"]
	assert.False(t, hasFnr)
	_, hasSnr := gotQuery["seksjonsnummer"]
	assert.False(t, hasSnr)
}

func TestGeocodeProperty_OptionalIdentifiers(t *testing.T) {
	var gotQuery map[string]string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		_, _ = io.WriteString(w, `{"type": "FeatureCollection", "features": []}`)
	}))

	_, err := c.GeocodeProperty(context.Background(), PropertyQuery{
		MunicipalityNumber: "3201", Gnr: 1, Bnr: 2, Fnr: 3, Snr: 4,
	})
	require.NoError(t, err)
	assert.Equal(t, "3", gotQuery["festenummer"])
	assert.Equal(t, "4", gotQuery["seksjonsnummer"])
}

func TestPropertyQuery_Validate(t *testing.T) {
	tests := []struct {
		name  string
		query PropertyQuery
		field string
	}{
		{"missing municipality", PropertyQuery{Gnr: 1, Bnr: 1}, "municipality"},
		{"short municipality", PropertyQuery{MunicipalityNumber: "301", Gnr: 1, Bnr: 1}, "municipality"},
		{"non-numeric municipality", PropertyQuery{MunicipalityNumber: "03o1", Gnr: 1, Bnr: 1}, "municipality"},
		{"missing gnr", PropertyQuery{MunicipalityNumber: "0301", Bnr: 1}, "parcel"},
		{"missing bnr", PropertyQuery{MunicipalityNumber: "0301", Gnr: 1}, "parcel"},
		{"negative fnr", PropertyQuery{MunicipalityNumber: "0301", Gnr: 1, Bnr: 1, Fnr: -1}, "parcel"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			var iq *InvalidQueryError
			require.ErrorAs(t, err, &iq)
			assert.Equal(t, tt.field, iq.Field)
		})
	}

	assert.NoError(t, PropertyQuery{MunicipalityNumber: "0301", Gnr: 209, Bnr: 44}.Validate())
}

func TestPropertyQuery_Ref(t *testing.T) {
	assert.Equal(t, "209/44", PropertyQuery{Gnr: 209, Bnr: 44}.Ref())
	assert.Equal(t, "209/44/3", PropertyQuery{Gnr: 209, Bnr: 44, Fnr: 3}.Ref())
	assert.Equal(t, "1/2-5", PropertyQuery{Gnr: 1, Bnr: 2, Snr: 5}.Ref())
}

package kartverket

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norgeo/kvsok/internal/resilience"
)

func TestListCounties_SortedAndCached(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"fylkesnummer": "55", "fylkesnavn": "Troms"},
			{"fylkesnummer": "31", "fylkesnavn": "Østfold"},
			{"fylkesnummer": "42", "fylkesnavn": "Agder"}
		]`)
	}))

	counties, err := c.ListCounties(context.Background())
	require.NoError(t, err)
	require.Len(t, counties, 3)

	// Norwegian collation puts Østfold after Troms, not between Agder and it.
	assert.Equal(t, "Agder", counties[0].Name)
	assert.Equal(t, "Troms", counties[1].Name)
	assert.Equal(t, "Østfold", counties[2].Name)

	again, err := c.ListCounties(context.Background())
	require.NoError(t, err)
	assert.Equal(t, counties, again)
	assert.Equal(t, int32(1), calls.Load())
}

func TestListMunicipalities_WrappedShape(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"kommuner": [
			{"kommunenummer": "0301", "kommunenavn": "Oslo"},
			{"kommunenummer": "4601", "kommunenavn": "Bergen"}
		]}`)
	}))

	units, err := c.ListMunicipalities(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, AdminUnit{Number: "4601", Name: "Bergen"}, units[0])
	assert.Equal(t, AdminUnit{Number: "0301", Name: "Oslo"}, units[1])
}

func TestListCounties_FallbackHost(t *testing.T) {
	fallback := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[{"fylkesnummer": "42", "fylkesnavn": "Agder"}]`)
	}))
	defer fallback.Close()
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	c := NewClient(
		WithRateLimit(10000),
		WithRetry(resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
		WithAdminUnitBase(primary.URL, fallback.URL),
	)

	counties, err := c.ListCounties(context.Background())
	require.NoError(t, err)
	require.Len(t, counties, 1)
	assert.Equal(t, "Agder", counties[0].Name)
}

func TestListCounties_BothHostsDown(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer down.Close()

	c := NewClient(
		WithRateLimit(10000),
		WithRetry(resilience.RetryConfig{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}),
		WithAdminUnitBase(down.URL, down.URL),
	)

	_, err := c.ListCounties(context.Background())
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusServiceUnavailable, terr.StatusCode)
}

func TestCountyArea_ParamsAndBody(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fylker/42/omrade", r.URL.Path)
		assert.Equal(t, "25833", r.URL.Query().Get("utkoordsys"))
		_, _ = io.WriteString(w, `{"omrade": {"type": "MultiPolygon", "coordinates": []}}`)
	}))

	body, err := c.CountyArea(context.Background(), AreaQuery{Number: "42", OutputEPSG: 25833})
	require.NoError(t, err)
	assert.Contains(t, string(body), "MultiPolygon")
}

func TestMunicipalityArea_Path(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/kommuner/0301/omrade", r.URL.Path)
		_, _ = io.WriteString(w, `{"omrade": {"type": "MultiPolygon", "coordinates": []}}`)
	}))

	_, err := c.MunicipalityArea(context.Background(), AreaQuery{Number: "0301"})
	require.NoError(t, err)
}

func TestAreaQuery_Validate(t *testing.T) {
	var iq *InvalidQueryError
	require.ErrorAs(t, AreaQuery{}.Validate(), &iq)
	require.ErrorAs(t, AreaQuery{Number: "4a"}.Validate(), &iq)
	assert.NoError(t, AreaQuery{Number: "0301"}.Validate())
}

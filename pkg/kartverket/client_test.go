package kartverket

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = io.WriteString(w, `{"metadata": {"totaltAntallTreff": 0}, "adresser": []}`)
	}))

	_, err := c.SearchAddresses(context.Background(), AddressQuery{Street: "Storgata"}, 0)
	require.NoError(t, err)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_NoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))

	_, err := c.SearchAddresses(context.Background(), AddressQuery{Street: "Storgata"}, 0)
	var terr *TransportError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusBadRequest, terr.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_SendsUserAgent(t *testing.T) {
	var gotUA string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = io.WriteString(w, `{"adresser": []}`)
	}))

	_, err := c.SearchAddresses(context.Background(), AddressQuery{Street: "Storgata"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "kvsok/1.0", gotUA)
}

func TestClient_ContextCancellation(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"adresser": []}`)
	}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.SearchAddresses(ctx, AddressQuery{Street: "Storgata"}, 0)
	require.Error(t, err)
}

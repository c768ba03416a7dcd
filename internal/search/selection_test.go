package search

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

func TestSelect_PreviewsAndZooms(t *testing.T) {
	canvas := &recordingCanvas{}
	o := newTestOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, addressBody(r.URL.Query().Get("adressenavn")))
	}), WithCanvas(canvas))

	set, err := o.SearchAddresses(context.Background(), kartverket.AddressQuery{Street: "Storgata"}, 0)
	require.NoError(t, err)

	r, err := o.Select(CategoryAddress, 0)
	require.NoError(t, err)
	assert.Equal(t, "Storgata 1", r.Label)
	assert.Equal(t, 1, canvas.previews)
	assert.Equal(t, 1, canvas.zooms)
	assert.Same(t, set.Results[0].Geometry, canvas.lastGeom)

	sel, ok := o.Selected()
	require.True(t, ok)
	assert.Same(t, r, sel)
}

func TestSelect_DegradedResultClearsPreview(t *testing.T) {
	canvas := &recordingCanvas{}
	o := newTestOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{
			"metadata": {"totaltAntallTreff": 1, "viserTil": 1},
			"adresser": [{"adressetekst": "Uten Punkt 1"}]
		}`)
	}), WithCanvas(canvas))

	_, err := o.SearchAddresses(context.Background(), kartverket.AddressQuery{Street: "Uten"}, 0)
	require.NoError(t, err)

	clearsBefore := canvas.clears
	r, err := o.Select(CategoryAddress, 0)
	require.NoError(t, err)
	assert.Nil(t, r.Geometry)
	assert.Equal(t, 0, canvas.previews)
	assert.Greater(t, canvas.clears, clearsBefore)
}

func TestSelect_Errors(t *testing.T) {
	o := newTestOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, addressBody(r.URL.Query().Get("adressenavn")))
	}))

	_, err := o.Select(CategoryAddress, 0)
	require.Error(t, err)

	_, err = o.SearchAddresses(context.Background(), kartverket.AddressQuery{Street: "Storgata"}, 0)
	require.NoError(t, err)

	_, err = o.Select(CategoryAddress, 5)
	require.Error(t, err)
	_, err = o.Select(CategoryAddress, -1)
	require.Error(t, err)
}

func TestClearSelection(t *testing.T) {
	canvas := &recordingCanvas{}
	o := newTestOrchestrator(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, addressBody(r.URL.Query().Get("adressenavn")))
	}), WithCanvas(canvas))

	_, err := o.SearchAddresses(context.Background(), kartverket.AddressQuery{Street: "Storgata"}, 0)
	require.NoError(t, err)
	_, err = o.Select(CategoryAddress, 0)
	require.NoError(t, err)

	o.ClearSelection()
	_, ok := o.Selected()
	assert.False(t, ok)
}

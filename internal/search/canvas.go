package search

import "github.com/twpayne/go-geom"

// MapCanvas is the host surface results are previewed on. Implementations
// live outside this package; the CLI runs with the no-op canvas.
type MapCanvas interface {
	// Preview highlights a geometry without persisting it anywhere.
	Preview(g geom.T)
	// ClearPreview removes any highlighted geometry.
	ClearPreview()
	// ZoomTo pans and zooms the view to the given bounds.
	ZoomTo(b *geom.Bounds)
}

// NopCanvas ignores every call.
type NopCanvas struct{}

func (NopCanvas) Preview(geom.T)      {}
func (NopCanvas) ClearPreview()       {}
func (NopCanvas) ZoomTo(*geom.Bounds) {}

var _ MapCanvas = NopCanvas{}

package search

import (
	"github.com/rotisserie/eris"
)

// Selection points at one result inside a specific result set instance.
// When the set is replaced the selection is cleared rather than remapped, so
// a stale index can never preview the wrong result.
type Selection struct {
	Category Category
	Index    int
	set      *ResultSet
}

// Select marks one result of a category's current set as selected, previews
// its geometry and zooms to it. Selecting a degraded result is allowed; it
// clears the preview instead of drawing.
func (o *Orchestrator) Select(cat Category, index int) (*Result, error) {
	o.mu.Lock()
	set := o.current[cat]
	if set == nil {
		o.mu.Unlock()
		return nil, eris.Errorf("search: no results for category %s", cat)
	}
	if index < 0 || index >= len(set.Results) {
		o.mu.Unlock()
		return nil, eris.Errorf("search: index %d out of range for %d results", index, len(set.Results))
	}
	o.selection = &Selection{Category: cat, Index: index, set: set}
	r := &set.Results[index]
	o.mu.Unlock()

	if r.Geometry != nil {
		o.canvas.Preview(r.Geometry)
		o.canvas.ZoomTo(r.Geometry.Bounds())
	} else {
		o.canvas.ClearPreview()
	}
	return r, nil
}

// Selected returns the currently selected result, if the selection still
// refers to the category's current set.
func (o *Orchestrator) Selected() (*Result, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	sel := o.selection
	if sel == nil || o.current[sel.Category] != sel.set {
		return nil, false
	}
	return &sel.set.Results[sel.Index], true
}

// ClearSelection drops the selection and the canvas preview.
func (o *Orchestrator) ClearSelection() {
	o.mu.Lock()
	o.selection = nil
	o.mu.Unlock()
	o.canvas.ClearPreview()
}

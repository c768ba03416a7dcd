package search

import (
	"context"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/norgeo/kvsok/pkg/kartverket"
)

// State is the lifecycle of one category's search slot.
type State int

const (
	StateIdle State = iota
	StateQuerying
	StateSucceeded
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateQuerying:
		return "querying"
	case StateSucceeded:
		return "succeeded"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Orchestrator runs registry searches and owns the per-category result
// slots. Each category holds at most one accepted result set; starting a new
// search for a category supersedes the previous one, cancels its context,
// and discards its completion if it races in late.
type Orchestrator struct {
	client      *kartverket.Client
	projectEPSG int
	canvas      MapCanvas
	onResults   func(*ResultSet)

	mu        sync.Mutex
	gen       map[Category]uint64
	cancel    map[Category]context.CancelFunc
	state     map[Category]State
	current   map[Category]*ResultSet
	selection *Selection

	// last accepted queries for the paged registries, so NextPage can
	// re-issue them with the follow-up cursor
	addressQuery kartverket.AddressQuery
	placeQuery   kartverket.PlaceQuery
}

// OrchestratorOption configures the orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithCanvas attaches a map canvas for previews and zooming.
func WithCanvas(c MapCanvas) OrchestratorOption {
	return func(o *Orchestrator) { o.canvas = c }
}

// WithResultListener registers a callback invoked with every accepted
// result set, after the selection is cleared.
func WithResultListener(fn func(*ResultSet)) OrchestratorOption {
	return func(o *Orchestrator) { o.onResults = fn }
}

// NewOrchestrator creates an orchestrator delivering geometry in
// projectEPSG.
func NewOrchestrator(client *kartverket.Client, projectEPSG int, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		client:      client,
		projectEPSG: projectEPSG,
		canvas:      NopCanvas{},
		gen:         make(map[Category]uint64),
		cancel:      make(map[Category]context.CancelFunc),
		state:       make(map[Category]State),
		current:     make(map[Category]*ResultSet),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// State reports the lifecycle state of a category's slot.
func (o *Orchestrator) State(cat Category) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state[cat]
}

// Current returns the accepted result set for a category, or nil.
func (o *Orchestrator) Current(cat Category) *ResultSet {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current[cat]
}

// begin claims the category slot: the previous in-flight search is cancelled
// and a new generation starts. The returned context is cancelled if a later
// search claims the slot again.
func (o *Orchestrator) begin(ctx context.Context, cat Category) (context.Context, uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if cancel := o.cancel[cat]; cancel != nil {
		cancel()
	}
	o.gen[cat]++
	gen := o.gen[cat]
	ctx, cancel := context.WithCancel(ctx)
	o.cancel[cat] = cancel
	o.state[cat] = StateQuerying
	return ctx, gen
}

// complete accepts or discards a finished search. A completion whose
// generation is stale loses silently: the slot already belongs to a newer
// search. Accepting a set replaces the category's results and always clears
// the selection, even when the selection pointed at another category.
func (o *Orchestrator) complete(cat Category, gen uint64, set *ResultSet, err error) bool {
	o.mu.Lock()
	if gen != o.gen[cat] {
		o.mu.Unlock()
		zap.L().Debug("discarding superseded search result", zap.String("category", string(cat)))
		return false
	}
	if cancel := o.cancel[cat]; cancel != nil {
		cancel()
		delete(o.cancel, cat)
	}
	if err != nil {
		// A failed search publishes an empty state, not the previous
		// results: stale hits next to a transport error mislead.
		o.state[cat] = StateFailed
		delete(o.current, cat)
		o.selection = nil
		o.mu.Unlock()
		o.canvas.ClearPreview()
		return false
	}

	o.state[cat] = StateSucceeded
	o.current[cat] = set
	o.selection = nil
	onResults := o.onResults
	o.mu.Unlock()

	o.canvas.ClearPreview()
	if onResults != nil {
		onResults(set)
	}
	return true
}

// SearchAddresses runs an address search and installs the result set in the
// address slot. page follows the service's zero-based page numbering.
func (o *Orchestrator) SearchAddresses(ctx context.Context, q kartverket.AddressQuery, page int) (*ResultSet, error) {
	if q.OutputEPSG == 0 {
		q.OutputEPSG = o.projectEPSG
	}
	ctx, gen := o.begin(ctx, CategoryAddress)
	o.mu.Lock()
	o.addressQuery = q
	o.mu.Unlock()

	resp, err := o.client.SearchAddresses(ctx, q, page)
	if err != nil {
		o.complete(CategoryAddress, gen, nil, err)
		return nil, err
	}
	set := normalizeAddresses(resp, o.projectEPSG)
	set.Query = strings.Join(strings.Fields(q.Street+" "+q.Number+" "+q.Letter), " ")
	reconcile(set, o.projectEPSG)
	if !o.complete(CategoryAddress, gen, set, nil) {
		return nil, context.Canceled
	}
	return set, nil
}

// SearchProperty geocodes a cadastral property and installs the result set
// in the property slot.
func (o *Orchestrator) SearchProperty(ctx context.Context, q kartverket.PropertyQuery) (*ResultSet, error) {
	if q.OutputEPSG == 0 {
		q.OutputEPSG = o.projectEPSG
	}
	ctx, gen := o.begin(ctx, CategoryProperty)

	body, err := o.client.GeocodeProperty(ctx, q)
	if err != nil {
		o.complete(CategoryProperty, gen, nil, err)
		return nil, err
	}
	set, err := normalizeProperty(body, q)
	if err != nil {
		o.complete(CategoryProperty, gen, nil, err)
		return nil, err
	}
	reconcile(set, o.projectEPSG)
	if !o.complete(CategoryProperty, gen, set, nil) {
		return nil, context.Canceled
	}
	return set, nil
}

// SearchCounty fetches a county boundary and installs it in the county slot.
func (o *Orchestrator) SearchCounty(ctx context.Context, unit kartverket.AdminUnit) (*ResultSet, error) {
	return o.searchArea(ctx, CategoryCounty, unit, o.client.CountyArea)
}

// SearchMunicipality fetches a municipality boundary and installs it in the
// municipality slot.
func (o *Orchestrator) SearchMunicipality(ctx context.Context, unit kartverket.AdminUnit) (*ResultSet, error) {
	return o.searchArea(ctx, CategoryMunicipality, unit, o.client.MunicipalityArea)
}

func (o *Orchestrator) searchArea(
	ctx context.Context,
	cat Category,
	unit kartverket.AdminUnit,
	fetch func(context.Context, kartverket.AreaQuery) ([]byte, error),
) (*ResultSet, error) {
	ctx, gen := o.begin(ctx, cat)

	body, err := fetch(ctx, kartverket.AreaQuery{Number: unit.Number, OutputEPSG: o.projectEPSG})
	if err != nil {
		o.complete(cat, gen, nil, err)
		return nil, err
	}
	set, err := normalizeArea(body, cat, unit)
	if err != nil {
		o.complete(cat, gen, nil, err)
		return nil, err
	}
	reconcile(set, o.projectEPSG)
	if !o.complete(cat, gen, set, nil) {
		return nil, context.Canceled
	}
	return set, nil
}

// SearchPlaceNames runs a place-name search and installs the result set in
// the place-name slot. page follows the service's one-based page numbering.
func (o *Orchestrator) SearchPlaceNames(ctx context.Context, q kartverket.PlaceQuery, page int) (*ResultSet, error) {
	if q.OutputEPSG == 0 {
		q.OutputEPSG = o.projectEPSG
	}
	ctx, gen := o.begin(ctx, CategoryPlaceName)
	o.mu.Lock()
	o.placeQuery = q
	o.mu.Unlock()

	resp, err := o.client.SearchPlaceNames(ctx, q, page)
	if err != nil {
		o.complete(CategoryPlaceName, gen, nil, err)
		return nil, err
	}
	set := normalizePlaceNames(resp, o.projectEPSG)
	set.Query = q.Name
	reconcile(set, o.projectEPSG)
	if !o.complete(CategoryPlaceName, gen, set, nil) {
		return nil, context.Canceled
	}
	return set, nil
}

// NextPage re-runs a paged category's last query asking for the page after
// the one the service reported in the current result set. The cursor always
// comes from the service's own page metadata, never from a local counter, so
// the sequence survives services that renumber or clamp pages.
func (o *Orchestrator) NextPage(ctx context.Context, cat Category) (*ResultSet, error) {
	o.mu.Lock()
	set := o.current[cat]
	aq := o.addressQuery
	pq := o.placeQuery
	o.mu.Unlock()

	if set == nil {
		return nil, eris.Errorf("search: no results to page for category %s", cat)
	}
	if !set.HasMore() {
		return nil, eris.Errorf("search: no further pages for category %s", cat)
	}

	switch cat {
	case CategoryAddress:
		return o.SearchAddresses(ctx, aq, set.Page.Side+1)
	case CategoryPlaceName:
		return o.SearchPlaceNames(ctx, pq, set.Page.Side+1)
	}
	return nil, eris.Errorf("search: category %s is not paged", cat)
}

// SearchAll runs a free-text search across the address and place-name
// registries concurrently. A failure in one registry does not suppress the
// other's results; SearchAll returns whatever succeeded alongside the first
// error.
func (o *Orchestrator) SearchAll(ctx context.Context, text string) (map[Category]*ResultSet, error) {
	sets := make(map[Category]*ResultSet)
	var mu sync.Mutex

	// Deliberately not errgroup.WithContext: one registry failing should
	// not cancel the other's search.
	var g errgroup.Group
	g.Go(func() error {
		set, err := o.SearchAddresses(ctx, kartverket.AddressQuery{Street: text}, 0)
		if err != nil {
			return err
		}
		mu.Lock()
		sets[CategoryAddress] = set
		mu.Unlock()
		return nil
	})
	g.Go(func() error {
		set, err := o.SearchPlaceNames(ctx, kartverket.PlaceQuery{Name: text}, 1)
		if err != nil {
			return err
		}
		mu.Lock()
		sets[CategoryPlaceName] = set
		mu.Unlock()
		return nil
	})

	err := g.Wait()
	return sets, err
}

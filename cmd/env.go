package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"text/tabwriter"

	"github.com/norgeo/kvsok/internal/config"
	"github.com/norgeo/kvsok/internal/layers"
	"github.com/norgeo/kvsok/internal/resilience"
	"github.com/norgeo/kvsok/internal/search"
	"github.com/norgeo/kvsok/pkg/kartverket"
)

// env bundles the wired components a command needs.
type env struct {
	client       *kartverket.Client
	orchestrator *search.Orchestrator
	store        *layers.SQLiteStore
	materializer *layers.Materializer
}

func (e *env) Close() {
	if e.store != nil {
		_ = e.store.Close()
	}
}

func newEnv(cfg *config.Config) (*env, error) {
	retry := resilience.DefaultRetryConfig()
	if cfg.HTTP.MaxRetries > 0 {
		retry.MaxAttempts = cfg.HTTP.MaxRetries
	}

	client := kartverket.NewClient(
		kartverket.WithHTTPClient(&http.Client{Timeout: cfg.HTTP.Timeout()}),
		kartverket.WithRateLimit(cfg.HTTP.RatePerSecond),
		kartverket.WithRetry(retry),
		kartverket.WithUserAgent(cfg.HTTP.UserAgent),
		kartverket.WithAddressBase(cfg.Address.BaseURL),
		kartverket.WithPropertyBase(cfg.Property.BaseURL),
		kartverket.WithAdminUnitBase(cfg.AdminUnit.BaseURL, cfg.AdminUnit.FallbackBaseURL),
		kartverket.WithPlaceNameBase(cfg.PlaceName.BaseURL),
	)

	store, err := layers.NewSQLite(cfg.Layers.Path)
	if err != nil {
		return nil, err
	}

	scheme := layers.SchemeForName(cfg.Layers.FieldTypeScheme)
	return &env{
		client:       client,
		orchestrator: search.NewOrchestrator(client, cfg.Project.EPSG),
		store:        store,
		materializer: layers.NewMaterializer(store, cfg.Project.EPSG, scheme),
	}, nil
}

// printResultSet writes a result set as an aligned table on stdout.
func printResultSet(set *search.ResultSet) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "#\tLABEL\tSTATUS")
	for i, r := range set.Results {
		fmt.Fprintf(w, "%d\t%s\t%s\n", i, r.Label, r.Completeness)
	}
	_ = w.Flush()

	if set.Diagnostics.Degraded > 0 || set.Diagnostics.Unusable > 0 {
		fmt.Printf("%d degraded, %d unusable (hidden)\n",
			set.Diagnostics.Degraded, set.Diagnostics.Unusable)
	}
	if set.HasMore() {
		fmt.Printf("more results available (page %d of %d total hits)\n",
			set.Page.Side, set.Page.TotaltAntallTreff)
	}
}

// saveSet persists a set's complete results when --save was given.
func saveSet(ctx context.Context, e *env, set *search.ResultSet, save bool) error {
	if !save {
		return nil
	}
	saved, err := e.materializer.SaveSet(ctx, set)
	if err != nil {
		return err
	}
	name, _ := layers.LayerNameFor(set.Category)
	fmt.Printf("saved %d results to %s\n", saved, name)
	return nil
}

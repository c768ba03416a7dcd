package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	geomjson "github.com/twpayne/go-geom/encoding/geojson"

	"github.com/norgeo/kvsok/internal/search"
	"github.com/norgeo/kvsok/pkg/kartverket"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an HTTP search API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := newEnv(cfg)
		if err != nil {
			return err
		}
		defer e.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(e),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			// The signal context is already done; Shutdown needs a live
			// one to drain in-flight requests instead of aborting them.
			drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(drainCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter(e *env) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/search/address", func(w http.ResponseWriter, req *http.Request) {
			page, _ := strconv.Atoi(req.URL.Query().Get("page"))
			set, err := e.orchestrator.SearchAddresses(req.Context(), kartverket.AddressQuery{
				Street:   req.URL.Query().Get("street"),
				Number:   req.URL.Query().Get("number"),
				Letter:   req.URL.Query().Get("letter"),
				PageSize: cfg.Address.PageSize,
			}, page)
			writeSearchResponse(w, set, err)
		})

		r.Get("/search/property", func(w http.ResponseWriter, req *http.Request) {
			q := kartverket.PropertyQuery{MunicipalityNumber: req.URL.Query().Get("municipality")}
			q.Gnr, _ = strconv.Atoi(req.URL.Query().Get("gnr"))
			q.Bnr, _ = strconv.Atoi(req.URL.Query().Get("bnr"))
			q.Fnr, _ = strconv.Atoi(req.URL.Query().Get("fnr"))
			q.Snr, _ = strconv.Atoi(req.URL.Query().Get("snr"))
			set, err := e.orchestrator.SearchProperty(req.Context(), q)
			writeSearchResponse(w, set, err)
		})

		r.Get("/search/county/{number}", func(w http.ResponseWriter, req *http.Request) {
			set, err := e.orchestrator.SearchCounty(req.Context(),
				kartverket.AdminUnit{Number: chi.URLParam(req, "number")})
			writeSearchResponse(w, set, err)
		})

		r.Get("/search/municipality/{number}", func(w http.ResponseWriter, req *http.Request) {
			set, err := e.orchestrator.SearchMunicipality(req.Context(),
				kartverket.AdminUnit{Number: chi.URLParam(req, "number")})
			writeSearchResponse(w, set, err)
		})

		r.Get("/search/place", func(w http.ResponseWriter, req *http.Request) {
			page, _ := strconv.Atoi(req.URL.Query().Get("page"))
			set, err := e.orchestrator.SearchPlaceNames(req.Context(), kartverket.PlaceQuery{
				Name:     req.URL.Query().Get("name"),
				PageSize: cfg.PlaceName.PageSize,
			}, page)
			writeSearchResponse(w, set, err)
		})

		r.Get("/units/counties", func(w http.ResponseWriter, req *http.Request) {
			units, err := e.client.ListCounties(req.Context())
			writeUnitsResponse(w, units, err)
		})

		r.Get("/units/municipalities", func(w http.ResponseWriter, req *http.Request) {
			units, err := e.client.ListMunicipalities(req.Context())
			writeUnitsResponse(w, units, err)
		})
	})

	return r
}

// resultJSON is the wire form of one result; geometry is GeoJSON.
type resultJSON struct {
	Category   search.Category `json:"category"`
	Label      string          `json:"label"`
	Attributes map[string]any  `json:"attributes"`
	Geometry   json.RawMessage `json:"geometry,omitempty"`
	Status     string          `json:"status"`
}

type resultSetJSON struct {
	Category search.Category `json:"category"`
	Results  []resultJSON    `json:"results"`
	Degraded int             `json:"degraded"`
	Unusable int             `json:"unusable"`
	HasMore  bool            `json:"has_more"`
}

func writeSearchResponse(w http.ResponseWriter, set *search.ResultSet, err error) {
	if err != nil {
		writeError(w, err)
		return
	}

	out := resultSetJSON{
		Category: set.Category,
		Results:  make([]resultJSON, 0, len(set.Results)),
		Degraded: set.Diagnostics.Degraded,
		Unusable: set.Diagnostics.Unusable,
		HasMore:  set.HasMore(),
	}
	for _, r := range set.Results {
		rj := resultJSON{
			Category:   r.Category,
			Label:      r.Label,
			Attributes: r.Attributes,
			Status:     r.Completeness.String(),
		}
		if r.Geometry != nil {
			if raw, err := geomjson.Marshal(r.Geometry); err == nil {
				rj.Geometry = raw
			}
		}
		out.Results = append(out.Results, rj)
	}
	writeJSON(w, http.StatusOK, out)
}

func writeUnitsResponse(w http.ResponseWriter, units []kartverket.AdminUnit, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, units)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var invalid *kartverket.InvalidQueryError
	var transport *kartverket.TransportError
	switch {
	case eris.As(err, &invalid):
		status = http.StatusBadRequest
	case eris.As(err, &transport):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/AdamBeresnev/op-fixtures/internal/fixture"
	"github.com/AdamBeresnev/op-fixtures/internal/httputil"
	"github.com/AdamBeresnev/op-fixtures/internal/service"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func newRouter(fixtures *service.FixtureService, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/tournaments/{tournamentID}", func(r chi.Router) {
		r.Post("/fixtures", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			opts := service.GenerateOptions{}
			if v := r.URL.Query().Get("reset"); v != "" {
				reset, err := strconv.ParseBool(v)
				if err != nil {
					httputil.BadRequest(w, "Invalid reset flag", err)
					return
				}
				opts.Reset = reset
			}

			report, err := fixtures.GenerateFixtures(r.Context(), id, opts)
			if err != nil {
				serviceError(w, "Failed to generate fixtures", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, report)
		})

		r.Get("/fixtures", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			matches, err := fixtures.ListFixtures(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to list fixtures", err)
				return
			}
			if matches == nil {
				matches = []fixture.Match{}
			}
			httputil.WriteJSON(w, http.StatusOK, map[string]any{"matches": matches})
		})

		r.Get("/fixtures/diagnostics", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			diag, err := fixtures.Diagnose(r.Context(), id)
			if err != nil {
				serviceError(w, "Failed to diagnose fixtures", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, diag)
		})

		r.Put("/mode", func(w http.ResponseWriter, r *http.Request) {
			id, ok := tournamentID(w, r)
			if !ok {
				return
			}
			var input struct {
				Mode string `json:"mode"`
			}
			if err := httputil.ReadJSON(w, r, &input); err != nil {
				httputil.BadRequest(w, err.Error(), err)
				return
			}

			change, err := fixtures.SetMode(r.Context(), id, fixture.Mode(input.Mode))
			if err != nil {
				serviceError(w, "Failed to change tournament mode", err)
				return
			}
			httputil.WriteJSON(w, http.StatusOK, change)
		})
	})

	return r
}

func tournamentID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "tournamentID"), 10, 64)
	if err != nil || id <= 0 {
		httputil.BadRequest(w, "Invalid tournament ID", err)
		return 0, false
	}
	return id, true
}

func serviceError(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, service.ErrTournamentNotFound):
		httputil.NotFound(w, "Tournament not found", err)
	case errors.Is(err, service.ErrInvalidMode), errors.Is(err, service.ErrInvalidTournament):
		httputil.BadRequest(w, err.Error(), err)
	default:
		httputil.InternalServerError(w, msg, err)
	}
}

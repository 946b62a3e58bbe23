package main

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const readinessTimeout = 2 * time.Second

// readinessCheck reports whether one backing service is reachable.
type readinessCheck func(ctx context.Context) error

func newOpsRouter(version string, checks map[string]readinessCheck) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"version": version,
			"time":    time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Get("/ready", func(w http.ResponseWriter, req *http.Request) {
		ctx, cancel := context.WithTimeout(req.Context(), readinessTimeout)
		defer cancel()

		names := make([]string, 0, len(checks))
		for name := range checks {
			names = append(names, name)
		}
		sort.Strings(names)

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				results[name] = err.Error()
				status, code = "not_ready", http.StatusServiceUnavailable
				continue
			}
			results[name] = "ok"
		}
		writeJSON(w, code, map[string]interface{}{
			"status": status,
			"checks": results,
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	return r
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
}

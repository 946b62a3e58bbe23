package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpsRouter_Health(t *testing.T) {
	srv := httptest.NewServer(newOpsRouter("1.2.3", nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "1.2.3", body["version"])
}

func TestOpsRouter_Ready(t *testing.T) {
	tests := []struct {
		name       string
		checks     map[string]readinessCheck
		wantCode   int
		wantStatus string
	}{
		{
			name:       "all reachable",
			checks:     map[string]readinessCheck{"postgres": func(context.Context) error { return nil }},
			wantCode:   http.StatusOK,
			wantStatus: "ready",
		},
		{
			name: "one down",
			checks: map[string]readinessCheck{
				"postgres": func(context.Context) error { return nil },
				"redis":    func(context.Context) error { return errors.New("connection refused") },
			},
			wantCode:   http.StatusServiceUnavailable,
			wantStatus: "not_ready",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newOpsRouter("test", tt.checks).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

			var body struct {
				Status string            `json:"status"`
				Checks map[string]string `json:"checks"`
			}
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantCode, rec.Code)
			assert.Equal(t, tt.wantStatus, body.Status)
			assert.Equal(t, "ok", body.Checks["postgres"])
		})
	}
}

func TestOpsRouter_Metrics(t *testing.T) {
	rec := httptest.NewRecorder()
	newOpsRouter("test", nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

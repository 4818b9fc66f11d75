package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_RecordsRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/v1/collections/{node_id}/quality-matrix/{mode}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("{}"))
	})

	req := httptest.NewRequest("GET", "/api/v1/collections/abc/quality-matrix/collections", http.NoBody)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != 200 {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	// The chi route pattern must be recorded, not the raw URL, or the
	// label cardinality explodes with every distinct node id.
	val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(
		"GET", "/api/v1/collections/{node_id}/quality-matrix/{mode}", "200"))
	if val < 1 {
		t.Errorf("expected http_requests_total >= 1 for route pattern, got %f", val)
	}

	if testutil.CollectAndCount(httpRequestDuration) == 0 {
		t.Error("expected http_request_duration_seconds to have observations")
	}
}

func TestMiddleware_DifferentStatusCodes(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Get("/missing", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/broken", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	tests := []struct {
		path           string
		expectedStatus string
	}{
		{"/health", "200"},
		{"/missing", "404"},
		{"/broken", "502"},
	}

	for _, tc := range tests {
		t.Run(tc.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tc.path, http.NoBody)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			val := testutil.ToFloat64(httpRequestsTotal.WithLabelValues("GET", tc.path, tc.expectedStatus))
			if val < 1 {
				t.Errorf("expected requests_total for %s with status %s >= 1, got %f", tc.path, tc.expectedStatus, val)
			}
		})
	}
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "unknown"},
		{"/api/v1/collections/{node_id}/quality-matrix/{mode}", "/api/v1/collections/{node_id}/quality-matrix/{mode}"},
		{"/health", "/health"},
	}

	for _, tc := range tests {
		result := normalizePath(tc.input)
		if result != tc.expected {
			t.Errorf("normalizePath(%q) = %q, want %q", tc.input, result, tc.expected)
		}
	}
}

func TestQualityCounters_Labelled(t *testing.T) {
	MatrixComputeTotal.WithLabelValues("collections", "ok").Inc()
	MatrixComputeTotal.WithLabelValues("sources", "error").Inc()
	SnapshotRuns.WithLabelValues("collections", "ok").Inc()
	LabelRefreshTotal.WithLabelValues("hit").Inc()

	if v := testutil.ToFloat64(MatrixComputeTotal.WithLabelValues("collections", "ok")); v < 1 {
		t.Errorf("matrix_compute_total{collections,ok} = %f, want >= 1", v)
	}
	if v := testutil.ToFloat64(SnapshotRuns.WithLabelValues("collections", "ok")); v < 1 {
		t.Errorf("snapshot_runs_total{collections,ok} = %f, want >= 1", v)
	}
	if v := testutil.ToFloat64(LabelRefreshTotal.WithLabelValues("hit")); v < 1 {
		t.Errorf("label_refresh_total{hit} = %f, want >= 1", v)
	}
}

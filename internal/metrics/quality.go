package metrics

import "github.com/prometheus/client_golang/prometheus"

// Quality matrix Prometheus metrics.
var (
	MatrixComputeDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "metaqual",
			Name:      "matrix_compute_duration_seconds",
			Help:      "Live quality matrix computation duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"mode"},
	)

	MatrixComputeTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metaqual",
			Name:      "matrix_compute_total",
			Help:      "Total live quality matrix computations",
		},
		[]string{"mode", "status"},
	)

	SnapshotRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metaqual",
			Name:      "snapshot_runs_total",
			Help:      "Total snapshot capture attempts per mode",
		},
		[]string{"mode", "status"}, // "ok" / "error"
	)

	LabelRefreshTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "metaqual",
			Name:      "label_refresh_total",
			Help:      "Metadata-set label fetches",
		},
		[]string{"result"}, // "hit" / "refresh" / "error"
	)
)

func init() {
	prometheus.MustRegister(MatrixComputeDuration)
	prometheus.MustRegister(MatrixComputeTotal)
	prometheus.MustRegister(SnapshotRuns)
	prometheus.MustRegister(LabelRefreshTotal)
}

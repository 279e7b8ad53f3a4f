// Package metrics exposes the node's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsFed counts raw records the feeder handed to the ingest worker.
	RecordsFed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "killrweather_records_fed_total",
		Help: "Raw records streamed from local sources to the ingest worker.",
	})

	// RecordsPublished counts raw records published to the message queue.
	RecordsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "killrweather_records_published_total",
		Help: "Raw records published to the raw-data topic.",
	})

	// ObservationsProcessed counts records the engine folded into aggregates.
	ObservationsProcessed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "killrweather_observations_processed_total",
		Help: "Observations consumed and aggregated by the compute engine.",
	})

	// RequestsRouted counts routed requests per kind.
	RequestsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "killrweather_requests_routed_total",
		Help: "Requests forwarded to a compute worker, by kind.",
	}, []string{"kind"})

	// RequestsRejected counts requests refused before initialization or with
	// an unrecognized kind.
	RequestsRejected = promauto.NewCounter(prometheus.CounterOpts{
		Name: "killrweather_requests_rejected_total",
		Help: "Requests rejected by the supervisor.",
	})

	// ShutdownTimeouts counts workers that missed their shutdown deadline.
	ShutdownTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "killrweather_worker_shutdown_timeouts_total",
		Help: "Workers that failed to confirm termination in time.",
	})
)

// Handler returns the HTTP handler serving the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Package metrics defines the Prometheus instrumentation for the resolver
// daemon and an optional HTTP listener exposing /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query metrics
var (
	QueriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kioskd_queries_total",
			Help: "Total number of IPC queries served",
		},
		[]string{"command", "status"},
	)

	ResolverFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kioskd_resolver_fallback_total",
			Help: "Resolutions that fell through all table tiers",
		},
		[]string{"table"}, // "video", "audio"
	)

	AssetMissTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kioskd_asset_miss_total",
			Help: "Variant-indexed trigger assets that were absent on disk",
		},
	)
)

// Surface metrics
var (
	BoundSurfaces = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "kioskd_bound_surfaces",
			Help: "Number of surfaces bound in the registry",
		},
	)

	TopologyEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kioskd_topology_events_total",
			Help: "Display attach/detach events seen by the watcher",
		},
		[]string{"event"}, // "attach", "detach"
	)
)

// Serve exposes /metrics on addr. Blocks; run in a goroutine.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}

// Package metrics holds the Prometheus collectors for dinner roulette.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Spins counts spin attempts by outcome: restaurant, eat_at_home, empty_pool, rate_limited.
	Spins = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dinnerroulette_spins_total",
			Help: "Total number of spins by outcome",
		},
		[]string{"outcome"},
	)

	SpinPoolSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dinnerroulette_spin_pool_size",
			Help:    "Number of weighted entries in the pool at draw time",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	Backups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dinnerroulette_backups_total",
			Help: "Total number of backups by trigger (manual, auto) and result",
		},
		[]string{"trigger", "result"},
	)

	Restores = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dinnerroulette_restores_total",
			Help: "Total number of restore runs by result",
		},
		[]string{"result"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dinnerroulette_store_errors_total",
			Help: "Total number of failed key-value store operations",
		},
		[]string{"op"},
	)

	PlacesRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dinnerroulette_places_requests_total",
			Help: "Outbound place lookup requests by endpoint and result",
		},
		[]string{"endpoint", "result"},
	)

	WebSocketClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dinnerroulette_websocket_clients",
			Help: "Currently connected live feed clients",
		},
	)
)

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

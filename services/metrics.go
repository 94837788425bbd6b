package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"forge/models"
)

var (
	// Latency model metrics
	latencyCalculationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_latency_calculations_total",
			Help: "Total number of latency calculations by rating",
		},
		[]string{"rating"},
	)

	latencyTotalMilliseconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forge_latency_total_milliseconds",
			Help:    "Distribution of calculated click-to-photon latency",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 80, 100, 150, 200},
		},
	)

	// Exchange-rate metrics
	ratesFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_rates_fetch_total",
			Help: "Total number of upstream exchange-rate fetches by result",
		},
		[]string{"result"},
	)

	ratesFetchDurationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forge_rates_fetch_duration_seconds",
			Help:    "Upstream exchange-rate fetch duration",
			Buckets: prometheus.DefBuckets,
		},
	)

	ratesFallbackActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_rates_fallback_active",
			Help: "1 while the exchange-rate service is serving static fallback rates",
		},
	)

	// Cache metrics
	cacheRedisActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forge_cache_redis_active",
			Help: "1 while the cache is backed by Redis, 0 when in-memory",
		},
	)

	cacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forge_cache_lookups_total",
			Help: "Total number of cache lookups by result",
		},
		[]string{"result"},
	)
)

func recordCalculation(b models.LatencyBreakdown) {
	latencyCalculationsTotal.WithLabelValues(string(b.Rating)).Inc()
	latencyTotalMilliseconds.Observe(b.Total)
}

func setGauge(g prometheus.Gauge, on bool) {
	if on {
		g.Set(1)
		return
	}
	g.Set(0)
}

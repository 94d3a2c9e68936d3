// Package telemetry holds the Prometheus metrics recorded around Shapley
// queries. The game package itself stays free of instrumentation.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query results.
const (
	ResultOK      = "ok"
	ResultMissing = "missing"
	ResultError   = "error"
)

var (
	// queriesTotal counts Shapley value queries by result
	queriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shapley_queries_total",
		Help: "Total Shapley value queries by result",
	}, []string{"result"})

	// queryDuration tracks single-player query latency
	queryDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shapley_query_duration_seconds",
		Help:    "Shapley value query duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.00001, 4, 12), // 10µs to ~40s
	})

	// queryBasePlayers tracks how many players each query enumerates
	// subsets of; the work is 2^observed.
	queryBasePlayers = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shapley_query_base_players",
		Help:    "Players whose subsets a Shapley query enumerates",
		Buckets: []float64{1, 2, 4, 8, 12, 16, 20, 24, 32, 64},
	})

	// gamesDefined counts game definitions by result
	gamesDefined = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shapley_games_defined_total",
		Help: "Total game definitions by result",
	}, []string{"result"})

	// roomsActive tracks rooms currently running
	roomsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "shapley_rooms_active",
		Help: "Rooms currently running",
	})
)

// ObserveQuery records one single-player query.
func ObserveQuery(result string, basePlayers int, d time.Duration) {
	queriesTotal.WithLabelValues(result).Inc()
	queryDuration.Observe(d.Seconds())
	queryBasePlayers.Observe(float64(basePlayers))
}

// ObserveDefine records one game definition attempt.
func ObserveDefine(result string) {
	gamesDefined.WithLabelValues(result).Inc()
}

func RoomOpened() { roomsActive.Inc() }

func RoomClosed() { roomsActive.Dec() }

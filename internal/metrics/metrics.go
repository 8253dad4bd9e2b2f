// Package metrics provides the centralized Prometheus metrics registry
// for the ingestion services.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	RacesPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "races_persisted_total",
		Help:      "Total number of finished races persisted",
	})
	RacesSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "races_skipped_total",
		Help:      "Total number of race events skipped, by reason",
	}, []string{"reason"})
	ParticipantsPersistedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "participants_persisted_total",
		Help:      "Total number of participant rows persisted",
	})
	MalformedMessagesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "malformed_messages_total",
		Help:      "Total number of feed messages that failed to parse",
	})
	PersistenceFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "persistence_failures_total",
		Help:      "Total number of races whose write unit failed",
	})
	FeedReconnectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "feed_reconnects_total",
		Help:      "Total number of feed reconnect attempts",
	})
	BackfillRowsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "zedalytics",
		Name:      "backfill_rows_total",
		Help:      "Total number of CSV rows ingested by the backfill loader",
	})
)

// Gauge metrics
var (
	SeenCacheSize = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zedalytics",
		Name:      "seen_cache_size",
		Help:      "Number of race ids currently in the dedupe cache",
	})
	FeedConnected = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "zedalytics",
		Name:      "feed_connected",
		Help:      "Whether the feed connection is currently live (1 or 0)",
	})
)

// Histogram metrics
var (
	PersistDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "zedalytics",
		Name:      "persist_duration_seconds",
		Help:      "Duration of the per-race persistence unit in seconds",
		Buckets:   prometheus.DefBuckets,
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(RacesPersistedTotal)
		registry.MustRegister(RacesSkippedTotal)
		registry.MustRegister(ParticipantsPersistedTotal)
		registry.MustRegister(MalformedMessagesTotal)
		registry.MustRegister(PersistenceFailuresTotal)
		registry.MustRegister(FeedReconnectsTotal)
		registry.MustRegister(BackfillRowsTotal)

		registry.MustRegister(SeenCacheSize)
		registry.MustRegister(FeedConnected)

		registry.MustRegister(PersistDuration)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordRacePersisted records a successfully persisted race.
func RecordRacePersisted(participants int, durationSeconds float64) {
	RacesPersistedTotal.Inc()
	ParticipantsPersistedTotal.Add(float64(participants))
	PersistDuration.Observe(durationSeconds)
}

// RecordRaceSkipped records a skipped race event.
func RecordRaceSkipped(reason string) {
	RacesSkippedTotal.WithLabelValues(reason).Inc()
}

// RecordMalformedMessage records a message that failed to parse.
func RecordMalformedMessage() {
	MalformedMessagesTotal.Inc()
}

// RecordPersistenceFailure records a failed write unit.
func RecordPersistenceFailure() {
	PersistenceFailuresTotal.Inc()
}

// RecordFeedReconnect records a reconnect attempt.
func RecordFeedReconnect() {
	FeedReconnectsTotal.Inc()
}

// UpdateSeenCacheSize updates the dedupe cache size gauge.
func UpdateSeenCacheSize(n int) {
	SeenCacheSize.Set(float64(n))
}

// UpdateFeedConnected updates the feed connection gauge.
func UpdateFeedConnected(connected bool) {
	if connected {
		FeedConnected.Set(1)
	} else {
		FeedConnected.Set(0)
	}
}

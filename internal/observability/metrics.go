package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis commands by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postfeed_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// DatabaseQueryLatency records repository call latency.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "postfeed_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ActiveWebSockets is the number of connected feed clients on this instance.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "postfeed_websocket_connections",
		Help: "Number of active WebSocket connections",
	})

	// BroadcastEvents counts emitted feed events by event and action.
	BroadcastEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postfeed_broadcast_events_total",
		Help: "Total broadcast events emitted",
	}, []string{"event", "action"})

	// WebSocketBackpressureDrops counts messages dropped because a client send buffer was full.
	WebSocketBackpressureDrops = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postfeed_websocket_backpressure_drops_total",
		Help: "Total number of WebSocket messages dropped due to backpressure",
	}, []string{"reason"})

	// ImagesStored counts accepted uploads by detected format.
	ImagesStored = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "postfeed_images_stored_total",
		Help: "Total number of uploaded images written to disk",
	}, []string{"format"})

	// ImageCleanupFailures counts image files that could not be removed.
	ImageCleanupFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "postfeed_image_cleanup_failures_total",
		Help: "Total number of failed image file removals",
	})
)

// TrackQuery returns a func that observes the elapsed time when called, e.g.
//
//	defer observability.TrackQuery("list", "posts")()
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}

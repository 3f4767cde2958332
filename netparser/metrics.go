package netparser

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusMsgBufferOverflow prometheus.Counter
	prometheusMsgBufferFeed     prometheus.Counter
	prometheusMsgBufferFeedSize prometheus.Histogram
)

var prometheusMetricsInitialized = false

// sizeBuckets mirrors the exponential byte-size buckets the teacher uses
// for payload-size histograms elsewhere in the codebase.
var sizeBuckets = prometheus.ExponentialBuckets(64, 4, 10)

func initPrometheusMetrics() {
	if prometheusMetricsInitialized {
		return
	}

	prometheusMsgBufferOverflow = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netparser",
			Name:      "msg_buffer_overflow",
			Help:      "Number of times a p2p payload parser reported overflow (0,0) and was treated as a protocol violation",
		},
	)

	prometheusMsgBufferFeed = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "netparser",
			Name:      "msg_buffer_feed",
			Help:      "Number of Write calls made into a MsgBuffer",
		},
	)

	prometheusMsgBufferFeedSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "netparser",
			Name:      "msg_buffer_feed_bytes",
			Help:      "Size in bytes of each chunk fed into a MsgBuffer",
			Buckets:   sizeBuckets,
		},
	)

	prometheusMetricsInitialized = true
}

func init() {
	initPrometheusMetrics()
}

package minerid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	prometheusRotations         prometheus.Counter
	prometheusRevocations       prometheus.Counter
	prometheusFullRevocations   prometheus.Counter
	prometheusReputationVoided  prometheus.Counter
	prometheusReputationRecover prometheus.Counter
)

var prometheusMetricsInitialized = false

func initPrometheusMetrics() {
	if prometheusMetricsInitialized {
		return
	}

	prometheusRotations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minerid",
			Name:      "key_rotations_total",
			Help:      "Number of miner-id key rotations applied via block_connected",
		},
	)

	prometheusRevocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minerid",
			Name:      "revocations_total",
			Help:      "Number of miner-id revocations applied, whether embedded in a coinbase document or carried by a revokemid message",
		},
	)

	prometheusFullRevocations = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minerid",
			Name:      "full_revocations_total",
			Help:      "Number of revocations that reached a miner's oldest id, retiring it entirely",
		},
	)

	prometheusReputationVoided = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minerid",
			Name:      "reputation_voided_total",
			Help:      "Number of times invalid_block voided a miner's reputation",
		},
	)

	prometheusReputationRecover = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: "minerid",
			Name:      "reputation_recovered_total",
			Help:      "Number of times a partial revocation's rotation cleared a void and scaled up M",
		},
	)

	prometheusMetricsInitialized = true
}

func init() {
	initPrometheusMetrics()
}

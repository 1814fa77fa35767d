package download

import "github.com/prometheus/client_golang/prometheus"

var (
	attemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pagellm",
			Subsystem: "download",
			Name:      "attempts_total",
			Help:      "Fetch attempts, by outcome",
		},
		[]string{"outcome"},
	)

	retryWaitSeconds = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "pagellm",
			Subsystem: "download",
			Name:      "retry_wait_seconds_total",
			Help:      "Cumulative backoff wait",
		},
	)
)

func init() {
	prometheus.MustRegister(attemptsTotal, retryWaitSeconds)
}

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	remoteRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "volunteer_client",
		Subsystem: "remote",
		Name:      "requests_total",
		Help:      "Remote store calls issued, by operation.",
	}, []string{"operation"})
	remoteFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "volunteer_client",
		Subsystem: "remote",
		Name:      "failures_total",
		Help:      "Remote store calls that failed, by operation.",
	}, []string{"operation"})
	writebackAttempts = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "volunteer_client",
		Subsystem: "writeback",
		Name:      "attempts_total",
		Help:      "Hour-total write-back attempts against the volunteer record.",
	})
	writebackFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "volunteer_client",
		Subsystem: "writeback",
		Name:      "failures_total",
		Help:      "Write-back attempts that failed.",
	})
	totalHoursGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "volunteer_client",
		Subsystem: "reconcile",
		Name:      "derived_total_hours",
		Help:      "Most recently derived volunteer hour total.",
	})
)

func init() {
	prometheus.MustRegister(remoteRequests, remoteFailures, writebackAttempts, writebackFailures, totalHoursGauge)
}

// RecordRemoteCall counts a remote store call and, when err is non-nil,
// its failure.
func RecordRemoteCall(operation string, err error) {
	remoteRequests.WithLabelValues(operation).Inc()
	if err != nil {
		remoteFailures.WithLabelValues(operation).Inc()
	}
}

// RecordWriteback counts a write-back attempt and its outcome.
func RecordWriteback(err error) {
	writebackAttempts.Inc()
	if err != nil {
		writebackFailures.Inc()
	}
}

// SetTotalHours updates the derived hour total gauge.
func SetTotalHours(total float64) {
	totalHoursGauge.Set(total)
}

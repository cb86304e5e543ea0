package twilio

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/tbourn/go-room-token/internal/domain"
)

// requestDuration records provider call latency by operation and result
// kind ("ok", "not_found", "conflict", "transient").
var requestDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "roomtoken",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Latency of provider REST calls.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"operation", "result"},
)

func init() {
	prometheus.MustRegister(requestDuration)
}

func observe(op string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = domain.KindOf(classify(err)).String()
	}
	requestDuration.WithLabelValues(op, result).Observe(time.Since(start).Seconds())
}

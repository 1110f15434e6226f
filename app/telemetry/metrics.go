// Package telemetry holds the Prometheus metrics of the quote poller.
package telemetry

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	FailureFetch = "fetch"
	FailureParse = "parse"
	FailureOther = "other"
)

var (
	once sync.Once

	PollsTotal      prometheus.Counter
	PollsSkipped    prometheus.Counter
	PollFailures    *prometheus.CounterVec
	QuotesDelivered *prometheus.CounterVec
	CursorGauge     prometheus.Gauge
	PollDuration    prometheus.Observer
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		PollsTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "quote_relay_polls_total", Help: "Number of source polls started"})
		PollsSkipped = promauto.NewCounter(prometheus.CounterOpts{Name: "quote_relay_polls_skipped_total", Help: "Number of polls skipped outside active hours"})
		PollFailures = promauto.NewCounterVec(prometheus.CounterOpts{Name: "quote_relay_poll_failures_total", Help: "Number of failed polls by kind"}, []string{"kind"})
		QuotesDelivered = promauto.NewCounterVec(prometheus.CounterOpts{Name: "quote_relay_quotes_delivered_total", Help: "Number of quotes sent to chat by source"}, []string{"source"})
		CursorGauge = promauto.NewGauge(prometheus.GaugeOpts{Name: "quote_relay_cursor", Help: "Highest quote number already delivered"})
		PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "quote_relay_poll_duration_seconds", Help: "Poll duration seconds", Buckets: prometheus.DefBuckets})
	})
}

func RecordFailure(kind string) {
	if PollFailures != nil {
		PollFailures.WithLabelValues(kind).Inc()
	}
}

func RecordDelivered(source string) {
	if QuotesDelivered != nil {
		QuotesDelivered.WithLabelValues(source).Inc()
	}
}

func SetCursor(value int) {
	if CursorGauge != nil {
		CursorGauge.Set(float64(value))
	}
}

// ObserveSince records the time elapsed since start in obs if non-nil.
func ObserveSince(obs prometheus.Observer, start time.Time) time.Duration {
	d := time.Since(start)
	if obs != nil {
		obs.Observe(d.Seconds())
	}
	return d
}

func RecordPoll() {
	if PollsTotal != nil {
		PollsTotal.Inc()
	}
}

func RecordSkipped() {
	if PollsSkipped != nil {
		PollsSkipped.Inc()
	}
}

package metrics

import (
	"time"

	prom "github.com/prometheus/client_golang/prometheus"

	"github.com/maksimkurb/keen-threatfeed/src/internal/feed"
)

const namespace = "keen_threatfeed"

// Recorder records refresh cycle results into a Prometheus registry.
type Recorder struct {
	outcomes    *prom.CounterVec
	duration    prom.Histogram
	lastSuccess prom.Gauge
	lastCheck   prom.Gauge
}

// NewRecorder constructs the refresh metrics and registers them on reg.
// A nil reg gets a fresh private registry.
func NewRecorder(reg *prom.Registry) *Recorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	r := &Recorder{
		outcomes: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "refresh_outcomes_total",
			Help:      "Refresh cycles by outcome",
		}, []string{"outcome"}),
		duration: prom.NewHistogram(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "refresh_duration_seconds",
			Help:      "Duration of refresh cycles that reached the network",
			Buckets:   prom.DefBuckets,
		}),
		lastSuccess: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last cycle that downloaded or confirmed the feed",
		}),
		lastCheck: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "last_check_timestamp_seconds",
			Help:      "Unix time of the last cycle that contacted the remote feed",
		}),
	}
	reg.MustRegister(r.outcomes, r.duration, r.lastSuccess, r.lastCheck)
	return r
}

// Observe records one refresh result. It matches the feed.Serialized OnResult signature.
func (r *Recorder) Observe(res feed.Result) {
	if r == nil {
		return
	}
	r.outcomes.WithLabelValues(res.Outcome.String()).Inc()

	if res.Outcome == feed.OutcomeDisabled || res.Outcome == feed.OutcomeUpToDate {
		return
	}
	r.duration.Observe(res.Duration.Seconds())
	if !res.CheckedAt.IsZero() {
		r.lastCheck.Set(unix(res.CheckedAt))
		if res.Outcome.Succeeded() {
			r.lastSuccess.Set(unix(res.CheckedAt))
		}
	}
}

func unix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}

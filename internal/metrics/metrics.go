package metrics

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const jobName = "gymbook"

// BookingMetrics describes the outcome of one booking run.
type BookingMetrics struct {
	gatherer prometheus.Gatherer

	attempts     *prometheus.CounterVec
	eligibleDays prometheus.Gauge
	duration     prometheus.Gauge
	lastSuccess  prometheus.Gauge
	lastRun      prometheus.Gauge
}

// New registers the collectors on a fresh registry when reg is nil.
func New(reg *prometheus.Registry) *BookingMetrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &BookingMetrics{
		gatherer: reg,
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gymbook",
			Subsystem: "booking",
			Name:      "attempts_total",
			Help:      "Days processed in the last run, by outcome",
		}, []string{"outcome"}),
		eligibleDays: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gymbook",
			Subsystem: "booking",
			Name:      "eligible_days",
			Help:      "Active calendar days after today",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gymbook",
			Subsystem: "booking",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gymbook",
			Subsystem: "booking",
			Name:      "last_run_success",
			Help:      "1 when the last run completed without a fatal error",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "gymbook",
			Subsystem: "booking",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished",
		}),
	}
	reg.MustRegister(m.attempts, m.eligibleDays, m.duration, m.lastSuccess, m.lastRun)
	return m
}

func (m *BookingMetrics) ObserveOutcome(outcome string) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) SetEligibleDays(n int) {
	if m == nil {
		return
	}
	m.eligibleDays.Set(float64(n))
}

// ObserveRun records how the run ended.
func (m *BookingMetrics) ObserveRun(started, finished time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.Set(finished.Sub(started).Seconds())
	m.lastRun.Set(float64(finished.Unix()))
	if err != nil {
		m.lastSuccess.Set(0)
		return
	}
	m.lastSuccess.Set(1)
}

// Push sends everything registered to a Prometheus Pushgateway.
func (m *BookingMetrics) Push(ctx context.Context, url string) error {
	if m == nil || url == "" {
		return nil
	}
	return push.New(url, jobName).Gatherer(m.gatherer).PushContext(ctx)
}

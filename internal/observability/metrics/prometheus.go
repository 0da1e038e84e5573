package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/target/duogate/internal/observability/statsd"
)

// PrometheusSink adapts the statsd.Sink calls made by this package to Prometheus collectors.
// Unknown metric names are ignored.
type PrometheusSink struct {
	outcomes     *prometheus.CounterVec
	duration     *prometheus.HistogramVec
	healthChecks *prometheus.CounterVec
	healthDur    *prometheus.HistogramVec
}

var _ statsd.Sink = (*PrometheusSink)(nil)

var (
	outcomeLabels = []string{"flow", "scope", "status", "reason"}
	healthLabels  = []string{"scope", "result"}
)

// NewPrometheusSink builds the collectors and registers them on reg (default registerer if nil).
func NewPrometheusSink(reg prometheus.Registerer) (*PrometheusSink, error) {
	s := &PrometheusSink{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twofactor_outcome_total",
			Help: "Two-factor generate and validate outcomes",
		}, outcomeLabels),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twofactor_duration_seconds",
			Help:    "Latency of two-factor generate and validate attempts",
			Buckets: prometheus.DefBuckets,
		}, outcomeLabels),
		healthChecks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "twofactor_health_check_total",
			Help: "Provider health check results",
		}, healthLabels),
		healthDur: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "twofactor_health_check_seconds",
			Help:    "Latency of provider health checks",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 10),
		}, healthLabels),
	}
	if err := s.register(reg); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PrometheusSink) register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	var err error
	if s.outcomes, err = registerOrReuse(reg, s.outcomes); err != nil {
		return err
	}
	if s.duration, err = registerOrReuse(reg, s.duration); err != nil {
		return err
	}
	if s.healthChecks, err = registerOrReuse(reg, s.healthChecks); err != nil {
		return err
	}
	if s.healthDur, err = registerOrReuse(reg, s.healthDur); err != nil {
		return err
	}
	return nil
}

// registerOrReuse registers c, returning the already registered collector when one exists.
func registerOrReuse[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			return c, err
		}
		if existing, ok := already.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, nil
}

func (s *PrometheusSink) Count(name string, value int64, tags map[string]string) {
	switch name {
	case NameOutcome:
		s.outcomes.With(labels(outcomeLabels, tags)).Add(float64(value))
	case NameHealthCheck:
		s.healthChecks.With(labels(healthLabels, tags)).Add(float64(value))
	}
}

func (s *PrometheusSink) Timing(name string, value time.Duration, tags map[string]string) {
	switch name {
	case NameDuration:
		s.duration.With(labels(outcomeLabels, tags)).Observe(value.Seconds())
	case NameHealthCheck:
		s.healthDur.With(labels(healthLabels, tags)).Observe(value.Seconds())
	}
}

// labels projects tags onto the fixed label set; extra tags such as error_class are dropped.
func labels(names []string, tags map[string]string) prometheus.Labels {
	out := make(prometheus.Labels, len(names))
	for _, n := range names {
		out[n] = tags[n]
	}
	return out
}

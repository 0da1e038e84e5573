package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/target/duogate/config"
	"github.com/target/duogate/internal/observability/metrics"
	"github.com/target/duogate/internal/observability/statsd"
)

var newStatsdClient = statsd.NewClient

// Telemetry holds the metrics sinks shared by the two-factor services.
type Telemetry struct {
	// Sink fans out to every enabled backend. Nil when none are enabled.
	Sink     statsd.Sink
	Gatherer prometheus.Gatherer
	statsd   *statsd.Client
}

// Close releases the StatsD socket, if any.
func (t *Telemetry) Close() error {
	if t == nil || t.statsd == nil {
		return nil
	}
	return t.statsd.Close()
}

// TelemetryOptions configures NewTelemetry.
type TelemetryOptions struct {
	Config config.ObservabilityConfig
	// Registry receives the Prometheus collectors. Nil selects a fresh registry.
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// NewTelemetry builds the StatsD client and Prometheus sink enabled by configuration.
// Anything started before a failure is closed again.
func NewTelemetry(opts TelemetryOptions) (_ *Telemetry, err error) {
	t := &Telemetry{}
	defer func() {
		if err != nil {
			err = closeOnError(err, t.Close)
		}
	}()
	var sinks []statsd.Sink

	mcfg := opts.Config.Metrics
	if mcfg.IsEnabled() {
		client, err := newStatsdClient(statsd.Config{
			Enabled: true,
			Address: mcfg.StatsdAddress,
			Prefix:  mcfg.Prefix,
			Logger:  opts.Logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create statsd client: %w", err)
		}
		t.statsd = client
		sinks = append(sinks, client)
	}

	if opts.Config.Prometheus.Enabled {
		reg := opts.Registry
		if reg == nil {
			reg = prometheus.NewRegistry()
		}
		prom, err := metrics.NewPrometheusSink(reg)
		if err != nil {
			return nil, fmt.Errorf("create prometheus sink: %w", err)
		}
		t.Gatherer = reg
		sinks = append(sinks, prom)
	}

	t.Sink = metrics.NewMultiSink(sinks...)
	return t, nil
}

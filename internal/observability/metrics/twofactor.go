// Package metrics turns two-factor flow outcomes into counters and timings.
package metrics

import (
	"time"

	obserrors "github.com/target/duogate/internal/observability/errors"
	"github.com/target/duogate/internal/observability/statsd"
)

// Metric names shared by every sink.
const (
	NameOutcome     = "twofactor.outcome"
	NameDuration    = "twofactor.duration"
	NameHealthCheck = "twofactor.health_check"
)

// Flow names.
const (
	FlowGenerate = "generate"
	FlowValidate = "validate"
)

// TwoFactorMetric captures one finished generate or validate attempt.
type TwoFactorMetric struct {
	Flow     string
	Scope    string
	Status   string
	Reason   string
	Duration time.Duration
	Err      error
}

// EmitTwoFactorOutcome emits the outcome counter and, when measured, the duration timing.
func EmitTwoFactorOutcome(sink statsd.Sink, in TwoFactorMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"flow":   in.Flow,
		"scope":  in.Scope,
		"status": in.Status,
		"reason": in.Reason,
	}
	if in.Err != nil {
		tags["status"] = "error"
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count(NameOutcome, 1, tags)

	if in.Duration > 0 {
		sink.Timing(NameDuration, in.Duration, CloneTags(tags))
	}
}

// EmitHealthCheck records a provider health check result.
func EmitHealthCheck(sink statsd.Sink, scope string, healthy bool, d time.Duration) {
	if sink == nil {
		return
	}
	result := "healthy"
	if !healthy {
		result = "unhealthy"
	}
	tags := map[string]string{"scope": scope, "result": result}
	sink.Count(NameHealthCheck, 1, tags)
	if d > 0 {
		sink.Timing(NameHealthCheck, d, CloneTags(tags))
	}
}

// MultiSink fans every metric out to each non-nil sink.
type MultiSink []statsd.Sink

var _ statsd.Sink = MultiSink(nil)

// NewMultiSink drops nil sinks and returns nil when none remain.
func NewMultiSink(sinks ...statsd.Sink) statsd.Sink {
	out := make(MultiSink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m MultiSink) Count(name string, value int64, tags map[string]string) {
	for _, s := range m {
		s.Count(name, value, CloneTags(tags))
	}
}

func (m MultiSink) Timing(name string, value time.Duration, tags map[string]string) {
	for _, s := range m {
		s.Timing(name, value, CloneTags(tags))
	}
}

// CloneTags creates a shallow copy of a tag map.
func CloneTags(src map[string]string) map[string]string {
	if len(src) == 0 {
		return nil
	}
	out := make(map[string]string, len(src))
	for k, v := range src {
		out[k] = v
	}
	return out
}

// Package metrics exposes Prometheus counters for the agent loop.
package metrics

import (
	"sort"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Outcome label values.
const (
	OutcomeOK       = "ok"
	OutcomeFailed   = "failed"
	OutcomeError    = "error"
	OutcomeLimit    = "round_limit"
	OutcomeRejected = "rejected"
	OutcomeDisabled = "disabled"
)

// Metrics holds the loop collectors. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	InstructionsTotal *prometheus.CounterVec
	RoundsTotal       prometheus.Counter
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration prometheus.Histogram
	ModelCallsTotal   *prometheus.CounterVec
	PublishTotal      *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
//
// Metrics:
//   - codeloop_instructions_total{outcome} - instructions processed
//   - codeloop_feedback_rounds_total - execution results sent back to the model
//   - codeloop_executions_total{outcome} - code blocks executed
//   - codeloop_execution_duration_seconds - execution wall time
//   - codeloop_model_calls_total{provider,outcome} - model requests
//   - codeloop_publish_total{outcome} - publish attempts
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		InstructionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeloop_instructions_total",
				Help: "Total number of instructions processed",
			},
			[]string{"outcome"},
		),
		RoundsTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "codeloop_feedback_rounds_total",
				Help: "Total number of execution results fed back to the model",
			},
		),
		ExecutionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeloop_executions_total",
				Help: "Total number of code blocks executed",
			},
			[]string{"outcome"}, // ok, failed (non-zero exit), error (could not run)
		),
		ExecutionDuration: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "codeloop_execution_duration_seconds",
				Help:    "Duration of code execution in seconds",
				Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
			},
		),
		ModelCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeloop_model_calls_total",
				Help: "Total number of model requests",
			},
			[]string{"provider", "outcome"},
		),
		PublishTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codeloop_publish_total",
				Help: "Total number of publish attempts",
			},
			[]string{"outcome"},
		),
	}
}

// RecordInstruction counts a finished instruction.
func (m *Metrics) RecordInstruction(outcome string) {
	if m == nil {
		return
	}
	m.InstructionsTotal.WithLabelValues(outcome).Inc()
}

// RecordRound counts one feedback round.
func (m *Metrics) RecordRound() {
	if m == nil {
		return
	}
	m.RoundsTotal.Inc()
}

// RecordExecution counts an execution and observes its duration.
func (m *Metrics) RecordExecution(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.ExecutionsTotal.WithLabelValues(outcome).Inc()
	m.ExecutionDuration.Observe(d.Seconds())
}

// RecordModelCall counts a model request. It matches model.Observer.
func (m *Metrics) RecordModelCall(provider string, err error) {
	if m == nil {
		return
	}
	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	m.ModelCallsTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordPublish counts a publish attempt.
func (m *Metrics) RecordPublish(outcome string) {
	if m == nil {
		return
	}
	m.PublishTotal.WithLabelValues(outcome).Inc()
}

// Sample is one counter value of a gathered family.
type Sample struct {
	Name   string
	Labels string
	Value  float64
}

// Summarize gathers the codeloop counters from g, sorted by name and labels.
// Histograms report their sample count.
func Summarize(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, err
	}

	var out []Sample
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), "codeloop_") {
			continue
		}
		for _, m := range mf.GetMetric() {
			out = append(out, Sample{
				Name:   mf.GetName(),
				Labels: labelString(m.GetLabel()),
				Value:  value(mf.GetType(), m),
			})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels < out[j].Labels
	})
	return out, nil
}

func value(t dto.MetricType, m *dto.Metric) float64 {
	switch t {
	case dto.MetricType_COUNTER:
		return m.GetCounter().GetValue()
	case dto.MetricType_GAUGE:
		return m.GetGauge().GetValue()
	case dto.MetricType_HISTOGRAM:
		return float64(m.GetHistogram().GetSampleCount())
	default:
		return 0
	}
}

func labelString(pairs []*dto.LabelPair) string {
	parts := make([]string, 0, len(pairs))
	for _, p := range pairs {
		parts = append(parts, p.GetName()+"="+p.GetValue())
	}
	return strings.Join(parts, ",")
}

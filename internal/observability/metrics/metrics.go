// Package metrics exposes prometheus collectors for the reliability pipeline.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/davidbz/pressroom/internal/domain"
)

const namespace = "pressroom"

// Run outcomes.
const (
	OutcomeSuccess   = "success"
	OutcomeExhausted = "exhausted"
	OutcomeInput     = "input_error"
	OutcomeUpstream  = "invocation_error"
	OutcomeError     = "error"
)

// PipelineMetrics exposes counters/histograms for pipeline runs.
type PipelineMetrics struct {
	attemptsTotal    *prometheus.CounterVec
	runsTotal        *prometheus.CounterVec
	tokensTotal      *prometheus.CounterVec
	invocationTiming *prometheus.HistogramVec
}

// NewPipelineMetrics registers the pipeline collectors with reg, or the default registerer when nil.
func NewPipelineMetrics(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		attemptsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "attempts_total",
			Help:      "Normalize/validate attempts by schema and outcome",
		}, []string{"schema", "outcome"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Completed pipeline runs by schema and outcome",
		}, []string{"schema", "outcome"}),
		tokensTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Tokens consumed by provider and direction",
		}, []string{"provider", "direction"}),
		invocationTiming: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "invocation_seconds",
			Help:      "Latency of completion calls",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32, 64},
		}, []string{"provider"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.attemptsTotal, m.runsTotal, m.tokensTotal, m.invocationTiming)
	return m
}

// ObserveAttempt records the outcome of one normalize/validate attempt.
func (m *PipelineMetrics) ObserveAttempt(kind domain.SchemaKind, _ int, err error) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(kind.String(), AttemptOutcome(err)).Inc()
}

// ObserveRun records the terminal outcome of a pipeline run.
func (m *PipelineMetrics) ObserveRun(kind domain.SchemaKind, err error) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(kind.String(), RunOutcome(err)).Inc()
}

// ObserveCompletion records token usage and latency of one model call.
func (m *PipelineMetrics) ObserveCompletion(provider string, c *domain.RawCompletion) {
	if m == nil || c == nil {
		return
	}
	m.tokensTotal.WithLabelValues(provider, "prompt").Add(float64(c.PromptTokens))
	m.tokensTotal.WithLabelValues(provider, "completion").Add(float64(c.CompletionTokens))
	m.invocationTiming.WithLabelValues(provider).Observe(c.Latency.Seconds())
}

// AttemptOutcome maps an attempt error to its label.
func AttemptOutcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrExtraction):
		return "extraction"
	case errors.Is(err, domain.ErrParse):
		return "parse"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return OutcomeError
	}
}

// RunOutcome maps a run error to its label.
func RunOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeSuccess
	case errors.Is(err, domain.ErrRetryExhausted):
		return OutcomeExhausted
	case errors.Is(err, domain.ErrInput):
		return OutcomeInput
	case errors.Is(err, domain.ErrInvocation):
		return OutcomeUpstream
	default:
		return OutcomeError
	}
}

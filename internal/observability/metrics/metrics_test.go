package metrics_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability/metrics"
)

func TestPipelineMetrics_Counts(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewPipelineMetrics(reg)

	m.ObserveAttempt(domain.SchemaQuestionSet, 0, &domain.ExtractionError{Reason: "no JSON object found"})
	m.ObserveAttempt(domain.SchemaQuestionSet, 1, nil)
	m.ObserveRun(domain.SchemaQuestionSet, nil)
	m.ObserveCompletion("openai", &domain.RawCompletion{
		PromptTokens:     120,
		CompletionTokens: 40,
		Latency:          1500 * time.Millisecond,
	})

	count, err := testutil.GatherAndCount(reg, "pressroom_pipeline_attempts_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)

	count, err = testutil.GatherAndCount(reg, "pressroom_pipeline_runs_total")
	require.NoError(t, err)
	require.Equal(t, 1, count)

	count, err = testutil.GatherAndCount(reg, "pressroom_llm_tokens_total")
	require.NoError(t, err)
	require.Equal(t, 2, count)
}

func TestPipelineMetrics_NilSafe(t *testing.T) {
	var m *metrics.PipelineMetrics

	require.NotPanics(t, func() {
		m.ObserveAttempt(domain.SchemaRiskSet, 0, nil)
		m.ObserveRun(domain.SchemaRiskSet, nil)
		m.ObserveCompletion("openai", &domain.RawCompletion{})
	})
}

func TestRunOutcome(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "success", err: nil, want: metrics.OutcomeSuccess},
		{name: "exhausted", err: &domain.RetryExhaustedError{Kind: domain.SchemaRiskSet, Attempts: 3}, want: metrics.OutcomeExhausted},
		{name: "input", err: domain.NewInputError("topic", "required"), want: metrics.OutcomeInput},
		{name: "wrapped invocation", err: fmt.Errorf("call: %w", &domain.InvocationError{Provider: "openai"}), want: metrics.OutcomeUpstream},
		{name: "other", err: fmt.Errorf("boom"), want: metrics.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, metrics.RunOutcome(tt.err))
		})
	}
}

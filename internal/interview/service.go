// Package interview runs the rehearsal operations: question generation, the
// simulated press conference, follow-up drafting and risk analysis. Every
// operation is one pipeline run: build the prompt pair, make the first model
// call, then hand the text to the validating retry loop.
package interview

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/observability/metrics"
	"github.com/davidbz/pressroom/internal/pipeline"
	"github.com/davidbz/pressroom/internal/prompts"
)

// Event types published after each run.
const (
	EventCompleted = "pipeline.completed"
	EventFailed    = "pipeline.failed"
)

// PromptSource supplies the active editable prompts.
type PromptSource interface {
	Active() prompts.Set
}

// Service executes pipeline runs against one invoker.
type Service struct {
	invoker     domain.Invoker
	promptStore PromptSource
	preferences domain.PreferenceStore
	metrics     *metrics.PipelineMetrics
	events      domain.EventPublisher
	cfg         Config
}

// NewService creates a new interview service (DI constructor).
// preferences, m and events may be nil.
func NewService(
	invoker domain.Invoker,
	promptStore PromptSource,
	preferences domain.PreferenceStore,
	m *metrics.PipelineMetrics,
	events domain.EventPublisher,
	cfg Config,
) (*Service, error) {
	if invoker == nil {
		return nil, errors.New("invoker cannot be nil")
	}
	if promptStore == nil {
		return nil, errors.New("prompt source cannot be nil")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	return &Service{
		invoker:     invoker,
		promptStore: promptStore,
		preferences: preferences,
		metrics:     m,
		events:      events,
		cfg:         cfg,
	}, nil
}

// GenerateQuestions drafts at least five adversarial reporter questions.
func (s *Service) GenerateQuestions(ctx context.Context, req QuestionsRequest) (*domain.QuestionSet, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	overrides := s.resolveOverrides(ctx, req.ClientID, req.Overrides)

	pair := domain.PromptPair{
		System: firstNonBlank(overrides.Questions, s.promptStore.Active().Questions, prompts.DefaultQuestions),
		User:   prompts.QuestionsUser(strings.TrimSpace(req.Topic), strings.TrimSpace(req.Context)),
	}

	set, err := run[*domain.QuestionSet](ctx, s, domain.SchemaQuestionSet, pair, s.cfg.QuestionsMaxTokens)
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("questions generated",
		observability.Int("questions_count", len(set.Questions)))
	return set, nil
}

// StartSimulation produces the opening question of a simulated press conference.
func (s *Service) StartSimulation(ctx context.Context, req StartRequest) (*domain.SimulationTurn, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	pair := domain.PromptPair{
		System: prompts.SimulationStart,
		User:   prompts.SimulationStartUser(strings.TrimSpace(req.Topic)),
	}
	return run[*domain.SimulationTurn](ctx, s, domain.SchemaSimulationTurn, pair, s.cfg.TurnMaxTokens)
}

// AdvanceSimulation produces the next question after the user's answer.
func (s *Service) AdvanceSimulation(ctx context.Context, req TurnRequest) (*domain.SimulationTurn, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	pair := domain.PromptPair{
		System: prompts.SimulationTurn,
		User:   prompts.SimulationTurnUser(strings.TrimSpace(req.LastQuestion), strings.TrimSpace(req.UserAnswer)),
	}
	return run[*domain.SimulationTurn](ctx, s, domain.SchemaSimulationTurn, pair, s.cfg.TurnMaxTokens)
}

// FollowUp drafts one follow-up question probing the weakest point of an answer.
func (s *Service) FollowUp(ctx context.Context, req FollowUpRequest) (*domain.FollowUp, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	overrides := s.resolveOverrides(ctx, req.ClientID, req.Overrides)

	pair := domain.PromptPair{
		System: firstNonBlank(overrides.FollowUp, s.promptStore.Active().FollowUp, prompts.DefaultFollowUp),
		User: prompts.FollowUpUser(
			strings.TrimSpace(req.PrevQuestion),
			strings.TrimSpace(req.Answer),
			strings.TrimSpace(req.ThreadNotes),
		),
	}
	return run[*domain.FollowUp](ctx, s, domain.SchemaFollowUp, pair, s.cfg.TurnMaxTokens)
}

// AnalyzeRisk grades the weaknesses of a draft answer.
func (s *Service) AnalyzeRisk(ctx context.Context, req RiskRequest) (*domain.RiskSet, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	pair := domain.PromptPair{
		System: prompts.Risk,
		User:   prompts.RiskUser(strings.TrimSpace(req.Question), strings.TrimSpace(req.UserAnswer)),
	}

	set, err := run[*domain.RiskSet](ctx, s, domain.SchemaRiskSet, pair, s.cfg.RiskMaxTokens)
	if err != nil {
		return nil, err
	}

	observability.FromContext(ctx).Info("risk analysis completed",
		observability.Int("risks_count", len(set.Risks)),
		observability.Int("high_risks", set.CountBySeverity(domain.SeverityHigh)),
		observability.Int("medium_risks", set.CountBySeverity(domain.SeverityMedium)),
		observability.Int("low_risks", set.CountBySeverity(domain.SeverityLow)),
	)
	return set, nil
}

// resolveOverrides reads the stored preferences once and lets explicit values win.
func (s *Service) resolveOverrides(
	ctx context.Context,
	clientID string,
	explicit domain.PromptOverrides,
) domain.PromptOverrides {
	if s.preferences == nil || clientID == "" {
		return explicit
	}

	stored, err := s.preferences.Get(ctx, clientID)
	if err != nil {
		observability.FromContext(ctx).Warn("failed to read preferences, using defaults",
			observability.Error(err))
		return explicit
	}

	return domain.PromptOverrides{
		Questions: firstNonBlank(explicit.Questions, stored.Questions),
		FollowUp:  firstNonBlank(explicit.FollowUp, stored.FollowUp),
	}
}

// run performs call #0 and drives the retry loop with the same prompt pair.
func run[T any](
	ctx context.Context,
	s *Service,
	kind domain.SchemaKind,
	pair domain.PromptPair,
	maxTokens int,
) (T, error) {
	var zero T

	ctx = observability.WithProvider(ctx, s.invoker.Name())
	logger := observability.FromContext(ctx).With(observability.String("schema", kind.String()))

	req := &domain.InvocationRequest{
		Prompt:      pair,
		Temperature: s.cfg.Temperature,
		MaxTokens:   maxTokens,
	}

	var promptTokens, completionTokens, calls int
	invoke := func() (string, error) {
		calls++
		completion, err := s.invoker.Invoke(ctx, req)
		if err != nil {
			return "", err
		}
		s.metrics.ObserveCompletion(s.invoker.Name(), completion)
		promptTokens += completion.PromptTokens
		completionTokens += completion.CompletionTokens
		return completion.Text, nil
	}

	start := time.Now()
	logger.Info("starting pipeline run")

	value, err := func() (T, error) {
		initial, err := invoke()
		if err != nil {
			return zero, err
		}
		return pipeline.Run[T](ctx, kind, initial, invoke, s.cfg.MaxRetries, pipeline.WithObserver(s.metrics))
	}()

	latency := time.Since(start)
	outcome := metrics.RunOutcome(err)
	s.metrics.ObserveRun(kind, err)

	fields := []zap.Field{
		observability.Int64("latency_ms", latency.Milliseconds()),
		observability.Int("model_calls", calls),
		observability.Int("prompt_tokens", promptTokens),
		observability.Int("completion_tokens", completionTokens),
		observability.String("outcome", outcome),
	}
	data := map[string]interface{}{
		"schema":            kind.String(),
		"latency_ms":        latency.Milliseconds(),
		"model_calls":       calls,
		"prompt_tokens":     promptTokens,
		"completion_tokens": completionTokens,
		"outcome":           outcome,
	}

	if err != nil {
		logger.Error("pipeline run failed", append(fields, observability.Error(err))...)
		data["error"] = err.Error()
		s.publish(ctx, EventFailed, data)
		return zero, err
	}

	logger.Info("pipeline run completed", fields...)
	s.publish(ctx, EventCompleted, data)
	return value, nil
}

func (s *Service) publish(ctx context.Context, eventType string, data map[string]interface{}) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, eventType, data)
}

func firstNonBlank(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

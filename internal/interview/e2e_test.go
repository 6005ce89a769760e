package interview_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/preferences"
	"github.com/davidbz/pressroom/internal/prompts"
	"github.com/davidbz/pressroom/internal/provider/scripted"
)

func newScriptedService(t *testing.T) (*interview.Service, *scripted.Provider) {
	t.Helper()

	provider, err := scripted.NewProvider(scripted.Config{})
	require.NoError(t, err)

	service, err := interview.NewService(
		provider,
		staticPrompts{set: prompts.DefaultSet()},
		preferences.NewMemoryStore(),
		nil,
		observability.NewEventBus(),
		interview.DefaultConfig(),
	)
	require.NoError(t, err)
	return service, provider
}

func TestScripted_ProductRecallRehearsal(t *testing.T) {
	service, provider := newScriptedService(t)
	ctx := observability.WithRequestID(context.Background(), "e2e")

	set, err := service.GenerateQuestions(ctx, interview.QuestionsRequest{Topic: "製品リコール"})
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(set.Questions), 5)
	for _, q := range set.Questions {
		require.GreaterOrEqual(t, q.Difficulty, 1, q.ID)
		require.LessOrEqual(t, q.Difficulty, 5, q.ID)
		require.GreaterOrEqual(t, q.GotchaLevel, 0, q.ID)
		require.LessOrEqual(t, q.GotchaLevel, 3, q.ID)
	}

	opening, err := service.StartSimulation(ctx, interview.StartRequest{Topic: "製品リコール"})
	require.NoError(t, err)
	require.NotEmpty(t, opening.NextQuestion)

	next, err := service.AdvanceSimulation(ctx, interview.TurnRequest{
		LastQuestion: opening.NextQuestion,
		UserAnswer:   "先月中旬に把握し、速やかに対応しました。",
	})
	require.NoError(t, err)
	require.NotEqual(t, opening.NextQuestion, next.NextQuestion)

	followUp, err := service.FollowUp(ctx, interview.FollowUpRequest{
		PrevQuestion: next.NextQuestion,
		Answer:       "速やかに対応します。",
	})
	require.NoError(t, err)
	require.LessOrEqual(t, len(followUp.RationaleTags), 5)

	risks, err := service.AnalyzeRisk(ctx, interview.RiskRequest{
		Question:   set.Questions[0].Question,
		UserAnswer: "適切に対応しております。",
	})
	require.NoError(t, err)
	require.NotEmpty(t, risks.Risks)

	require.Equal(t, 5, provider.Calls())
}

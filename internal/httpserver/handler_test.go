package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/davidbz/pressroom/internal/config"
	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/httpserver"
	"github.com/davidbz/pressroom/internal/httpserver/middleware"
	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/preferences"
	"github.com/davidbz/pressroom/internal/prompts"
)

type mockInterviewer struct {
	mock.Mock
}

func (m *mockInterviewer) GenerateQuestions(ctx context.Context, req interview.QuestionsRequest) (*domain.QuestionSet, error) {
	args := m.Called(ctx, req)
	set, _ := args.Get(0).(*domain.QuestionSet)
	return set, args.Error(1)
}

func (m *mockInterviewer) StartSimulation(ctx context.Context, req interview.StartRequest) (*domain.SimulationTurn, error) {
	args := m.Called(ctx, req)
	turn, _ := args.Get(0).(*domain.SimulationTurn)
	return turn, args.Error(1)
}

func (m *mockInterviewer) AdvanceSimulation(ctx context.Context, req interview.TurnRequest) (*domain.SimulationTurn, error) {
	args := m.Called(ctx, req)
	turn, _ := args.Get(0).(*domain.SimulationTurn)
	return turn, args.Error(1)
}

func (m *mockInterviewer) FollowUp(ctx context.Context, req interview.FollowUpRequest) (*domain.FollowUp, error) {
	args := m.Called(ctx, req)
	followUp, _ := args.Get(0).(*domain.FollowUp)
	return followUp, args.Error(1)
}

func (m *mockInterviewer) AnalyzeRisk(ctx context.Context, req interview.RiskRequest) (*domain.RiskSet, error) {
	args := m.Called(ctx, req)
	risks, _ := args.Get(0).(*domain.RiskSet)
	return risks, args.Error(1)
}

type fixture struct {
	interviewer *mockInterviewer
	prompts     *prompts.FileStore
	prefs       *preferences.MemoryStore
	router      http.Handler
}

func newFixture(t *testing.T, env string) *fixture {
	t.Helper()

	store, err := prompts.NewFileStore(filepath.Join(t.TempDir(), "prompts.yaml"), env == config.EnvDevelopment)
	require.NoError(t, err)

	f := &fixture{
		interviewer: &mockInterviewer{},
		prompts:     store,
		prefs:       preferences.NewMemoryStore(),
	}
	handler := httpserver.NewHandler(f.interviewer, f.prompts, f.prefs, &config.AppConfig{Env: env})
	f.router = httpserver.NewRouter(handler, middleware.Trace())

	t.Cleanup(func() { f.interviewer.AssertExpectations(t) })
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	switch b := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) httpserver.ErrorResponse {
	t.Helper()
	var resp httpserver.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestHandleGenerateQuestions(t *testing.T) {
	t.Run("should map the body and client header into the request", func(t *testing.T) {
		f := newFixture(t, "production")
		set := &domain.QuestionSet{Questions: []domain.Question{{ID: "q1", Question: "回収対象の製品数は何台ですか"}}}
		f.interviewer.On("GenerateQuestions", mock.Anything, interview.QuestionsRequest{
			Topic:     "製品リコール",
			Context:   "先週発表",
			ClientID:  "client-1",
			Overrides: domain.PromptOverrides{Questions: "custom"},
		}).Return(set, nil).Once()

		w := f.do(t, http.MethodPost, "/api/generate-questions", map[string]string{
			"topic":        "製品リコール",
			"context":      "先週発表",
			"customPrompt": "custom",
		}, map[string]string{"X-Client-Id": "client-1"})

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "application/json", w.Header().Get("Content-Type"))
		require.NotEmpty(t, w.Header().Get("X-Request-Id"))

		var got domain.QuestionSet
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Equal(t, *set, got)
	})

	t.Run("should reject a malformed body without calling the service", func(t *testing.T) {
		f := newFixture(t, "production")

		w := f.do(t, http.MethodPost, "/api/generate-questions", "{not json", nil)

		require.Equal(t, http.StatusBadRequest, w.Code)
		require.Contains(t, decodeError(t, w).Error, "リクエストの形式が正しくありません")
	})
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{
			name:       "input error",
			err:        domain.NewInputError("topic", "is required"),
			wantStatus: http.StatusBadRequest,
			wantError:  "topic: is required",
		},
		{
			name: "retry exhausted",
			err: &domain.RetryExhaustedError{
				Kind:     domain.SchemaSimulationTurn,
				Attempts: 3,
				Last:     &domain.ExtractionError{Reason: "no json object found"},
			},
			wantStatus: http.StatusUnprocessableEntity,
			wantError:  "AI応答の形式が正しくありません。再試行してください。",
		},
		{
			name:       "invocation error",
			err:        &domain.InvocationError{Provider: "openai", StatusCode: 503, Err: errors.New("unavailable")},
			wantStatus: http.StatusBadGateway,
			wantError:  "AIサービスとの通信に失敗しました。再試行してください。",
		},
		{
			name:       "unexpected error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantError:  "サーバーエラーが発生しました。再試行してください。",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, "production")
			f.interviewer.On("StartSimulation", mock.Anything, interview.StartRequest{Topic: "データ漏洩"}).
				Return(nil, tt.err).Once()

			w := f.do(t, http.MethodPost, "/api/simulate/start", map[string]string{"topic": "データ漏洩"}, nil)

			require.Equal(t, tt.wantStatus, w.Code)
			resp := decodeError(t, w)
			require.Equal(t, tt.wantError, resp.Error)
			require.Empty(t, resp.Details)
		})
	}
}

func TestErrorDetails_DevelopmentOnly(t *testing.T) {
	exhausted := &domain.RetryExhaustedError{
		Kind:     domain.SchemaRiskSet,
		Attempts: 3,
		Last:     &domain.ParseError{Err: errors.New("unexpected end of JSON input")},
	}

	f := newFixture(t, config.EnvDevelopment)
	f.interviewer.On("AnalyzeRisk", mock.Anything, interview.RiskRequest{Question: "q", UserAnswer: "a"}).
		Return(nil, exhausted).Once()

	w := f.do(t, http.MethodPost, "/api/risk-analysis", map[string]string{"question": "q", "userAnswer": "a"}, nil)

	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	require.Contains(t, decodeError(t, w).Details, "no valid response after 3 attempts")
}

func TestHandleSimulateTurnAndFollowUp(t *testing.T) {
	f := newFixture(t, "production")
	f.interviewer.On("AdvanceSimulation", mock.Anything, interview.TurnRequest{
		LastQuestion: "いつ把握しましたか",
		UserAnswer:   "調査中です",
	}).Return(&domain.SimulationTurn{NextQuestion: "調査の完了時期はいつですか"}, nil).Once()
	f.interviewer.On("FollowUp", mock.Anything, interview.FollowUpRequest{
		PrevQuestion: "いつ把握しましたか",
		Answer:       "調査中です",
		ThreadNotes:  "時系列",
		ClientID:     "client-2",
		Overrides:    domain.PromptOverrides{FollowUp: "custom follow-up"},
	}).Return(&domain.FollowUp{FollowUpQuestion: "具体的な日付は", RationaleTags: []string{"時系列"}}, nil).Once()

	w := f.do(t, http.MethodPost, "/api/simulate/turn", map[string]string{
		"lastQuestion": "いつ把握しましたか",
		"userAnswer":   "調査中です",
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"next_question":"調査の完了時期はいつですか"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/follow-up", map[string]string{
		"prevQuestion": "いつ把握しましたか",
		"answer":       "調査中です",
		"threadNotes":  "時系列",
		"customPrompt": "custom follow-up",
	}, map[string]string{"X-Client-Id": "client-2"})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"follow_up_question":"具体的な日付は","rationale_tags":["時系列"]}`, w.Body.String())
}

func TestHandleUpdatePrompts(t *testing.T) {
	t.Run("should refuse outside development mode", func(t *testing.T) {
		f := newFixture(t, "production")

		w := f.do(t, http.MethodPost, "/api/update-prompts", map[string]string{"questionsPrompt": "new"}, nil)

		require.Equal(t, http.StatusForbidden, w.Code)
		require.Equal(t, "本番環境ではプロンプトファイルの更新はできません", decodeError(t, w).Error)
	})

	t.Run("should persist and serve the new prompt in development mode", func(t *testing.T) {
		f := newFixture(t, config.EnvDevelopment)

		w := f.do(t, http.MethodPost, "/api/update-prompts", map[string]string{"questionsPrompt": "新しいプロンプト"}, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var result prompts.PersistResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
		require.True(t, result.Success)
		require.Contains(t, result.BackupPath, ".backup.")

		w = f.do(t, http.MethodGet, "/api/prompts", nil, nil)
		require.Equal(t, http.StatusOK, w.Code)
		var listing struct {
			Prompts     []prompts.Description `json:"prompts"`
			Development bool                  `json:"development"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
		require.True(t, listing.Development)
		require.Len(t, listing.Prompts, 2)
		require.Equal(t, "新しいプロンプト", listing.Prompts[0].Current)
		require.Equal(t, prompts.DefaultQuestions, listing.Prompts[0].DefaultValue)
	})
}

func TestPreferencesEndpoints(t *testing.T) {
	f := newFixture(t, "production")
	client := map[string]string{"X-Client-Id": "client-3"}

	w := f.do(t, http.MethodPut, "/api/preferences", map[string]string{"questions_prompt": "mine"}, client)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/preferences", nil, client)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"questions_prompt":"mine"}`, w.Body.String())

	w = f.do(t, http.MethodDelete, "/api/preferences", nil, client)
	require.Equal(t, http.StatusNoContent, w.Code)

	stored, err := f.prefs.Get(context.Background(), "client-3")
	require.NoError(t, err)
	require.True(t, stored.IsZero())

	t.Run("should require a client id", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/preferences", nil, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should reject oversized overrides", func(t *testing.T) {
		w := f.do(t, http.MethodPut, "/api/preferences",
			map[string]string{"followup_prompt": strings.Repeat("あ", 10001)}, client)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouting(t *testing.T) {
	f := newFixture(t, "production")

	w := f.do(t, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/generate-questions", nil, nil)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)

	w = f.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

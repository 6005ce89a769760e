package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/davidbz/pressroom/internal/config"
	"github.com/davidbz/pressroom/internal/domain"
	"github.com/davidbz/pressroom/internal/interview"
	"github.com/davidbz/pressroom/internal/observability"
	"github.com/davidbz/pressroom/internal/prompts"
)

const (
	clientIDHeader = "X-Client-Id"
	maxBodyBytes   = 1 << 20
)

// Interviewer runs the rehearsal operations.
type Interviewer interface {
	GenerateQuestions(ctx context.Context, req interview.QuestionsRequest) (*domain.QuestionSet, error)
	StartSimulation(ctx context.Context, req interview.StartRequest) (*domain.SimulationTurn, error)
	AdvanceSimulation(ctx context.Context, req interview.TurnRequest) (*domain.SimulationTurn, error)
	FollowUp(ctx context.Context, req interview.FollowUpRequest) (*domain.FollowUp, error)
	AnalyzeRisk(ctx context.Context, req interview.RiskRequest) (*domain.RiskSet, error)
}

// PromptFiles reads and rewrites the editable prompts.
type PromptFiles interface {
	Active() prompts.Set
	Persist(ctx context.Context, update prompts.Update) (*prompts.PersistResult, error)
}

// Handler handles HTTP requests.
type Handler struct {
	interviewer Interviewer
	promptFiles PromptFiles
	preferences domain.PreferenceStore
	development bool
}

// NewHandler creates a new HTTP handler (DI constructor).
func NewHandler(
	interviewer Interviewer,
	promptFiles PromptFiles,
	preferences domain.PreferenceStore,
	app *config.AppConfig,
) *Handler {
	return &Handler{
		interviewer: interviewer,
		promptFiles: promptFiles,
		preferences: preferences,
		development: app != nil && app.IsDevelopment(),
	}
}

type generateQuestionsRequest struct {
	Topic        string `json:"topic"`
	Context      string `json:"context"`
	CustomPrompt string `json:"customPrompt"`
}

type simulateStartRequest struct {
	Topic string `json:"topic"`
}

type simulateTurnRequest struct {
	LastQuestion string `json:"lastQuestion"`
	UserAnswer   string `json:"userAnswer"`
}

type followUpRequest struct {
	PrevQuestion string `json:"prevQuestion"`
	Answer       string `json:"answer"`
	ThreadNotes  string `json:"threadNotes"`
	CustomPrompt string `json:"customPrompt"`
}

type riskAnalysisRequest struct {
	Question   string `json:"question"`
	UserAnswer string `json:"userAnswer"`
}

// HandleGenerateQuestions drafts reporter questions for a topic.
func (h *Handler) HandleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body generateQuestionsRequest
	if !h.decode(w, r, &body) {
		return
	}

	observability.FromContext(ctx).Info("generate questions request received",
		observability.String("topic", observability.Preview(body.Topic, 50)),
		observability.Bool("has_context", strings.TrimSpace(body.Context) != ""),
		observability.Bool("has_custom_prompt", strings.TrimSpace(body.CustomPrompt) != ""),
	)

	set, err := h.interviewer.GenerateQuestions(ctx, interview.QuestionsRequest{
		Topic:     body.Topic,
		Context:   body.Context,
		ClientID:  r.Header.Get(clientIDHeader),
		Overrides: domain.PromptOverrides{Questions: body.CustomPrompt},
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, set)
}

// HandleSimulateStart returns the opening question of a simulation.
func (h *Handler) HandleSimulateStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body simulateStartRequest
	if !h.decode(w, r, &body) {
		return
	}

	turn, err := h.interviewer.StartSimulation(ctx, interview.StartRequest{Topic: body.Topic})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, turn)
}

// HandleSimulateTurn returns the next question of a simulation.
func (h *Handler) HandleSimulateTurn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body simulateTurnRequest
	if !h.decode(w, r, &body) {
		return
	}

	turn, err := h.interviewer.AdvanceSimulation(ctx, interview.TurnRequest{
		LastQuestion: body.LastQuestion,
		UserAnswer:   body.UserAnswer,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, turn)
}

// HandleFollowUp drafts one follow-up question.
func (h *Handler) HandleFollowUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body followUpRequest
	if !h.decode(w, r, &body) {
		return
	}

	followUp, err := h.interviewer.FollowUp(ctx, interview.FollowUpRequest{
		PrevQuestion: body.PrevQuestion,
		Answer:       body.Answer,
		ThreadNotes:  body.ThreadNotes,
		ClientID:     r.Header.Get(clientIDHeader),
		Overrides:    domain.PromptOverrides{FollowUp: body.CustomPrompt},
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, followUp)
}

// HandleRiskAnalysis grades the risks of a draft answer.
func (h *Handler) HandleRiskAnalysis(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body riskAnalysisRequest
	if !h.decode(w, r, &body) {
		return
	}

	risks, err := h.interviewer.AnalyzeRisk(ctx, interview.RiskRequest{
		Question:   body.Question,
		UserAnswer: body.UserAnswer,
	})
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, risks)
}

// HandleGetPrompts lists the editable prompts with their defaults.
func (h *Handler) HandleGetPrompts(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]interface{}{
		"prompts":     prompts.Descriptions(h.promptFiles.Active()),
		"development": h.development,
	})
}

// HandleUpdatePrompts rewrites the prompt file. Development mode only.
func (h *Handler) HandleUpdatePrompts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body prompts.Update
	if !h.decode(w, r, &body) {
		return
	}

	result, err := h.promptFiles.Persist(ctx, body)
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, result)
}

// HandleGetPreferences returns the stored overrides for the calling client.
func (h *Handler) HandleGetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	overrides, err := h.preferences.Get(ctx, r.Header.Get(clientIDHeader))
	if err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, overrides)
}

// HandlePutPreferences replaces the stored overrides for the calling client.
func (h *Handler) HandlePutPreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var overrides domain.PromptOverrides
	if !h.decode(w, r, &overrides) {
		return
	}
	if err := interview.ValidateOverrides(overrides); err != nil {
		h.writeError(ctx, w, err)
		return
	}

	if err := h.preferences.Put(ctx, r.Header.Get(clientIDHeader), overrides); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	h.writeJSON(ctx, w, http.StatusOK, overrides)
}

// HandleDeletePreferences removes the stored overrides for the calling client.
func (h *Handler) HandleDeletePreferences(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.preferences.Delete(ctx, r.Header.Get(clientIDHeader)); err != nil {
		h.writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleHealth reports liveness.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body into dst and writes a 400 on failure.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		h.writeError(r.Context(), w, &domain.InputError{Message: msgBadRequest + ": " + decodeReason(err)})
		return false
	}
	return true
}

func decodeReason(err error) string {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return "body too large"
	}
	return err.Error()
}

func (h *Handler) writeJSON(ctx context.Context, w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		observability.FromContext(ctx).Error("failed to encode response", observability.Error(err))
	}
}

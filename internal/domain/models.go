package domain

import "time"

// PromptPair is the system/user prompt pair sent on every attempt of one run.
type PromptPair struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// InvocationRequest is a single round trip to the completion endpoint.
type InvocationRequest struct {
	Prompt      PromptPair `json:"prompt"`
	Temperature float64    `json:"temperature"`
	MaxTokens   int        `json:"max_tokens"`
}

// RawCompletion is the unprocessed output of one model call.
type RawCompletion struct {
	Text             string        `json:"text"`
	PromptTokens     int           `json:"prompt_tokens"`
	CompletionTokens int           `json:"completion_tokens"`
	Latency          time.Duration `json:"latency"`
}

// Question is a single reporter question with its scoring metadata.
type Question struct {
	ID               string `json:"id"`
	Question         string `json:"question"`
	IntentTag        string `json:"intent_tag"`
	Difficulty       int    `json:"difficulty"`
	GotchaLevel      int    `json:"gotcha_level"`
	ExpectedEvidence string `json:"expected_evidence"`
	RiskArea         string `json:"risk_area"`
}

// QuestionSet is the validated output of question generation.
type QuestionSet struct {
	Questions []Question `json:"questions"`
}

// FollowUp is a single follow-up question drafted from a previous exchange.
type FollowUp struct {
	FollowUpQuestion string   `json:"follow_up_question"`
	RationaleTags    []string `json:"rationale_tags"`
}

// SimulationTurn is the next reporter question in a simulated conference.
type SimulationTurn struct {
	NextQuestion string `json:"next_question"`
}

// Severity grades an identified risk.
type Severity string

const (
	SeverityHigh   Severity = "high"
	SeverityMedium Severity = "medium"
	SeverityLow    Severity = "low"
)

// Risk is one weakness found in a draft answer.
type Risk struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// RiskSet is the validated output of risk analysis.
type RiskSet struct {
	Risks []Risk `json:"risks"`
}

// CountBySeverity returns how many risks carry the given severity.
func (r *RiskSet) CountBySeverity(severity Severity) int {
	n := 0
	for _, risk := range r.Risks {
		if risk.Severity == severity {
			n++
		}
	}
	return n
}

// PromptOverrides carries user-chosen system prompts for one pipeline run.
// Empty fields fall back to the active prompt set.
type PromptOverrides struct {
	Questions string `json:"questions_prompt,omitempty"`
	FollowUp  string `json:"followup_prompt,omitempty"`
}

// IsZero reports whether no override is set.
func (p PromptOverrides) IsZero() bool {
	return p.Questions == "" && p.FollowUp == ""
}

package interview

import (
	"strings"
	"unicode/utf8"

	"github.com/davidbz/pressroom/internal/domain"
)

const (
	maxTopicLength   = 1000
	maxContextLength = 500
	maxPromptLength  = 10000
)

// QuestionsRequest asks for a set of reporter questions on a topic.
type QuestionsRequest struct {
	Topic   string
	Context string
	// ClientID selects stored preferences; Overrides win over them.
	ClientID  string
	Overrides domain.PromptOverrides
}

// StartRequest opens a simulated press conference.
type StartRequest struct {
	Topic string
}

// TurnRequest continues a simulation after the user answered.
type TurnRequest struct {
	LastQuestion string
	UserAnswer   string
}

// FollowUpRequest drafts one follow-up to a previous exchange.
type FollowUpRequest struct {
	PrevQuestion string
	Answer       string
	ThreadNotes  string
	ClientID     string
	Overrides    domain.PromptOverrides
}

// RiskRequest grades a draft answer to a reporter question.
type RiskRequest struct {
	Question   string
	UserAnswer string
}

func (r *QuestionsRequest) validate() error {
	if err := checkTopic(r.Topic); err != nil {
		return err
	}
	if utf8.RuneCountInString(strings.TrimSpace(r.Context)) > maxContextLength {
		return domain.NewInputError("context", "must be at most 500 characters")
	}
	return ValidateOverrides(r.Overrides)
}

func (r *StartRequest) validate() error {
	return checkTopic(r.Topic)
}

func (r *TurnRequest) validate() error {
	if err := required("lastQuestion", r.LastQuestion); err != nil {
		return err
	}
	return required("userAnswer", r.UserAnswer)
}

func (r *FollowUpRequest) validate() error {
	if err := required("prevQuestion", r.PrevQuestion); err != nil {
		return err
	}
	if err := required("answer", r.Answer); err != nil {
		return err
	}
	return ValidateOverrides(r.Overrides)
}

func (r *RiskRequest) validate() error {
	if err := required("question", r.Question); err != nil {
		return err
	}
	return required("userAnswer", r.UserAnswer)
}

func checkTopic(topic string) error {
	trimmed := strings.TrimSpace(topic)
	if trimmed == "" {
		return domain.NewInputError("topic", "is required")
	}
	if utf8.RuneCountInString(trimmed) > maxTopicLength {
		return domain.NewInputError("topic", "must be at most 1000 characters")
	}
	return nil
}

func required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return domain.NewInputError(field, "is required")
	}
	return nil
}

// ValidateOverrides checks the length limit on prompt overrides.
func ValidateOverrides(o domain.PromptOverrides) error {
	if utf8.RuneCountInString(o.Questions) > maxPromptLength {
		return domain.NewInputError("questions_prompt", "must be at most 10000 characters")
	}
	if utf8.RuneCountInString(o.FollowUp) > maxPromptLength {
		return domain.NewInputError("followup_prompt", "must be at most 10000 characters")
	}
	return nil
}

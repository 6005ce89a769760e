package prompts

import (
	"fmt"
	"strings"
)

const none = "なし"

func orNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return none
	}
	return s
}

// QuestionsUser builds the user prompt for question generation.
func QuestionsUser(topic, background string) string {
	return fmt.Sprintf("【テーマ】:\n%s\n\n【補足/URL/背景（任意）】:\n%s", topic, orNone(background))
}

// FollowUpUser builds the user prompt for drafting one follow-up question.
func FollowUpUser(prevQuestion, answer, threadNotes string) string {
	return fmt.Sprintf("【直前の質問】: %s\n【広報回答】: %s\n【論点メモ（任意）】: %s",
		prevQuestion, answer, orNone(threadNotes))
}

// SimulationStartUser builds the user prompt for the opening question.
func SimulationStartUser(topic string) string {
	return fmt.Sprintf("【テーマ】: %s\n\n上記のテーマについて、記者会見での最初の質問を生成してください。", topic)
}

// SimulationTurnUser builds the user prompt for the next question of a simulation.
func SimulationTurnUser(lastQuestion, userAnswer string) string {
	return fmt.Sprintf("【前回の質問】: %s\n【広報回答】: %s\n\n上記の質問と回答を踏まえて、次の追随質問を生成してください。",
		lastQuestion, userAnswer)
}

// RiskUser builds the user prompt for risk analysis.
func RiskUser(question, userAnswer string) string {
	return fmt.Sprintf("【記者質問】: %s\n【広報回答】: %s", question, userAnswer)
}

package pipeline_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

// questionSetJSON builds a question set with n questions; mutate may edit each question map.
func questionSetJSON(t *testing.T, n int, mutate func(i int, q map[string]any)) string {
	t.Helper()

	questions := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		q := map[string]any{
			"id":                fmt.Sprintf("q%d", i+1),
			"question":          "リコールの判断が遅れた理由は何ですか",
			"intent_tag":        "事実確認",
			"difficulty":        3,
			"gotcha_level":      1,
			"expected_evidence": "社内調査報告書",
			"risk_area":         "法的責任",
		}
		if mutate != nil {
			mutate(i, q)
		}
		questions = append(questions, q)
	}

	data, err := json.Marshal(map[string]any{"questions": questions})
	require.NoError(t, err)
	return string(data)
}

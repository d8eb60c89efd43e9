package datasets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadJSONLines(t *testing.T) {
	input := strings.Join([]string{
		`{"question": "Who?", "doc": "Alice went home.", "answers": ["Alice"], "answer_starts": [0]}`,
		``,
		`{"question": "Where?", "doc": "Bob is here.", "answers": [], "answer_starts": [],` +
			` "start_logits": [0.5, 1.5], "end_logits": [2.5, 3.5],` +
			` "has_answer_logits": [0.1, 0.9], "pad_mask": [1, 0]}`,
	}, "\n")

	rows, err := DefaultSchema().ReadJSONLines(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Who?", rows[0].Question)
	assert.Equal(t, "Alice went home.", rows[0].Doc)
	assert.Equal(t, []string{"Alice"}, rows[0].Answers)
	assert.Equal(t, []int{0}, rows[0].AnswerStarts)
	assert.Nil(t, rows[0].StartLogits)
	assert.Nil(t, rows[0].PadMask)

	assert.Empty(t, rows[1].Answers)
	assert.Equal(t, []float32{0.5, 1.5}, rows[1].StartLogits)
	assert.Equal(t, []float32{2.5, 3.5}, rows[1].EndLogits)
	assert.Equal(t, []float32{0.1, 0.9}, rows[1].HasAnswerLogits)
	assert.Equal(t, []int{1, 0}, rows[1].PadMask)
}

func TestReadJSONLinesCustomColumns(t *testing.T) {
	schema := DefaultSchema()
	schema.QuestionColumn = "q"
	schema.DocColumn = "context"

	rows, err := schema.ReadJSONLines(strings.NewReader(
		`{"q": "Who?", "context": "Alice.", "answers": [], "answer_starts": []}`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Who?", rows[0].Question)
	assert.Equal(t, "Alice.", rows[0].Doc)
}

func TestReadJSONLinesMissingRequiredColumn(t *testing.T) {
	_, err := DefaultSchema().ReadJSONLines(strings.NewReader(
		`{"doc": "Alice.", "answers": [], "answer_starts": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"question"`)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadJSONLinesInvalidJSON(t *testing.T) {
	_, err := DefaultSchema().ReadJSONLines(strings.NewReader(`{not json}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestReadJSONLinesBadColumnType(t *testing.T) {
	_, err := DefaultSchema().ReadJSONLines(strings.NewReader(
		`{"question": 7, "doc": "Alice.", "answers": [], "answer_starts": []}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"question"`)
}

package datasets

import (
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParquet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "squad.parquet")
	records := []squadRecord{
		{
			ID:       "5733be284776f41900661182",
			Title:    "University_of_Notre_Dame",
			Context:  "Architecturally, the school has a Catholic character.",
			Question: "What character does the school have?",
			Answers: squadAnswers{
				Text:        []string{"Catholic"},
				AnswerStart: []int32{34},
			},
		},
		{
			ID:       "5733be284776f4190066117f",
			Title:    "University_of_Notre_Dame",
			Context:  "Next to the Main Building is the Basilica.",
			Question: "What is next to the Main Building?",
			Answers: squadAnswers{
				Text:        []string{"the Basilica", "Basilica"},
				AnswerStart: []int32{29, 33},
			},
		},
	}
	require.NoError(t, parquet.WriteFile(path, records))

	rows, err := ReadParquet(path)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, records[0].Question, rows[0].Question)
	assert.Equal(t, records[0].Context, rows[0].Doc)
	assert.Equal(t, []string{"Catholic"}, rows[0].Answers)
	assert.Equal(t, []int{34}, rows[0].AnswerStarts)

	assert.Equal(t, []string{"the Basilica", "Basilica"}, rows[1].Answers)
	assert.Equal(t, []int{29, 33}, rows[1].AnswerStarts)
}

func TestReadParquetMissingFile(t *testing.T) {
	_, err := ReadParquet(filepath.Join(t.TempDir(), "missing.parquet"))
	assert.Error(t, err)
}

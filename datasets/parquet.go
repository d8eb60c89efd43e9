package datasets

import (
	"github.com/gomlx/go-tensorizers/tensorizers"
	"github.com/parquet-go/parquet-go"
	"github.com/pkg/errors"
)

// squadRecord matches the schema of HuggingFace-exported SQuAD parquet
// shards: the answers live in a nested group with parallel text and
// answer_start lists.
type squadRecord struct {
	ID       string       `parquet:"id"`
	Title    string       `parquet:"title"`
	Context  string       `parquet:"context"`
	Question string       `parquet:"question"`
	Answers  squadAnswers `parquet:"answers"`
}

type squadAnswers struct {
	Text        []string `parquet:"text"`
	AnswerStart []int32  `parquet:"answer_start"`
}

// ReadParquet reads a SQuAD parquet shard into rows. The nested answers
// group becomes the parallel Answers/AnswerStarts columns.
func ReadParquet(path string) ([]*tensorizers.Row, error) {
	records, err := parquet.ReadFile[squadRecord](path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read parquet file %q", path)
	}
	rows := make([]*tensorizers.Row, len(records))
	for i, rec := range records {
		row := &tensorizers.Row{
			Question:     rec.Question,
			Doc:          rec.Context,
			Answers:      rec.Answers.Text,
			AnswerStarts: make([]int, len(rec.Answers.AnswerStart)),
		}
		for j, start := range rec.Answers.AnswerStart {
			row.AnswerStarts[j] = int(start)
		}
		rows[i] = row
	}
	return rows, nil
}

// Package datasets reads question-answering rows from external data sources
// into tensorizers.Row values.
//
// Column names are configurable through a Schema, resolved once when the
// Schema is built rather than through per-row string lookups. The JSON-lines
// reader handles arbitrary column layouts; ReadParquet reads the fixed schema
// of HuggingFace-exported SQuAD shards.
package datasets

import (
	"bufio"
	"encoding/json"
	"io"

	"github.com/gomlx/go-tensorizers/tensorizers"
	"github.com/pkg/errors"
)

// Schema names the columns a data source uses for each Row field. The logit,
// pad-mask and segment-label columns are only consulted for knowledge
// distillation and may be absent from individual records.
type Schema struct {
	QuestionColumn     string
	DocColumn          string
	AnswersColumn      string
	AnswerStartsColumn string

	StartLogitsColumn     string
	EndLogitsColumn       string
	HasAnswerLogitsColumn string
	PadMaskColumn         string
	SegmentLabelsColumn   string
}

// DefaultSchema returns the conventional SQuAD column names.
func DefaultSchema() Schema {
	return Schema{
		QuestionColumn:        "question",
		DocColumn:             "doc",
		AnswersColumn:         "answers",
		AnswerStartsColumn:    "answer_starts",
		StartLogitsColumn:     "start_logits",
		EndLogitsColumn:       "end_logits",
		HasAnswerLogitsColumn: "has_answer_logits",
		PadMaskColumn:         "pad_mask",
		SegmentLabelsColumn:   "segment_labels",
	}
}

// Row converts one decoded record into a tensorizers.Row. The question, doc,
// answers and answer-starts columns are required; the distillation columns
// are optional and left nil when absent.
func (s Schema) Row(record map[string]json.RawMessage) (*tensorizers.Row, error) {
	row := &tensorizers.Row{}
	if err := decodeColumn(record, s.QuestionColumn, true, &row.Question); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.DocColumn, true, &row.Doc); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.AnswersColumn, true, &row.Answers); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.AnswerStartsColumn, true, &row.AnswerStarts); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.StartLogitsColumn, false, &row.StartLogits); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.EndLogitsColumn, false, &row.EndLogits); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.HasAnswerLogitsColumn, false, &row.HasAnswerLogits); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.PadMaskColumn, false, &row.PadMask); err != nil {
		return nil, err
	}
	if err := decodeColumn(record, s.SegmentLabelsColumn, false, &row.SegmentLabels); err != nil {
		return nil, err
	}
	return row, nil
}

func decodeColumn[T any](record map[string]json.RawMessage, column string, required bool, out *T) error {
	raw, ok := record[column]
	if !ok {
		if required {
			return errors.Errorf("required column %q missing from record", column)
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode column %q", column)
	}
	return nil
}

// ReadJSONLines reads rows from a JSON-lines source, one record per line.
// Empty lines are skipped.
func (s Schema) ReadJSONLines(r io.Reader) ([]*tensorizers.Row, error) {
	scanner := bufio.NewScanner(r)
	// Contexts can be long paragraphs; allow lines well past the default.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var rows []*tensorizers.Row
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record map[string]json.RawMessage
		if err := json.Unmarshal(line, &record); err != nil {
			return nil, errors.Wrapf(err, "invalid JSON record on line %d", lineNo)
		}
		row, err := s.Row(record)
		if err != nil {
			return nil, errors.WithMessagef(err, "on line %d", lineNo)
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed reading JSON lines after line %d", lineNo)
	}
	return rows, nil
}

package tensorizers

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
)

// Batch holds the tensorized form of a batch of Numberized examples. All
// tensors are batch-major int64 with shape [batch, maxSeqLen], except the
// answer index tensors whose second dimension is the batch's widest answer
// list.
type Batch struct {
	Tokens         *tensors.Tensor
	PadMask        *tensors.Tensor
	SegmentLabels  *tensors.Tensor
	Positions      *tensors.Tensor
	AnswerStartIdx *tensors.Tensor
	AnswerEndIdx   *tensors.Tensor
}

// Tensorize pads a batch of numberized examples to the batch's maximum
// lengths and packs them into tensors. Tokens and segment labels are padded
// with the vocabulary pad id, positions with 0, and the answer index columns
// with SpanPadIdx. The pad mask is derived as tokens != pad id. Batch order
// is preserved as given.
func (t *Tensorizer) Tensorize(batch []*Numberized) (*Batch, error) {
	if len(batch) == 0 {
		return nil, errors.Errorf("cannot tensorize an empty batch")
	}
	pad := int64(t.voc.PadID())

	tokens, seqWidth := padRows(column(batch, func(n *Numberized) []int64 { return n.Tokens }), pad)
	segments, _ := padRows(column(batch, func(n *Numberized) []int64 { return n.SegmentLabels }), pad)
	positions, _ := padRows(column(batch, func(n *Numberized) []int64 { return n.Positions }), 0)
	answerStarts, ansWidth := padRows(column(batch, func(n *Numberized) []int64 { return n.AnswerStartIdx }), SpanPadIdx)
	answerEnds, _ := padRows(column(batch, func(n *Numberized) []int64 { return n.AnswerEndIdx }), SpanPadIdx)

	mask := make([]int64, len(tokens))
	for i, tok := range tokens {
		if tok != pad {
			mask[i] = 1
		}
	}

	rows := len(batch)
	return &Batch{
		Tokens:         tensors.FromFlatDataAndDimensions(tokens, rows, seqWidth),
		PadMask:        tensors.FromFlatDataAndDimensions(mask, rows, seqWidth),
		SegmentLabels:  tensors.FromFlatDataAndDimensions(segments, rows, seqWidth),
		Positions:      tensors.FromFlatDataAndDimensions(positions, rows, seqWidth),
		AnswerStartIdx: tensors.FromFlatDataAndDimensions(answerStarts, rows, ansWidth),
		AnswerEndIdx:   tensors.FromFlatDataAndDimensions(answerEnds, rows, ansWidth),
	}, nil
}

// column extracts one per-example sequence from every example in the batch.
func column[T any](batch []*Numberized, get func(*Numberized) []T) [][]T {
	out := make([][]T, len(batch))
	for i, n := range batch {
		out[i] = get(n)
	}
	return out
}

// padRows pads variable-length rows to the widest row with the given pad
// value and flattens them row-major. It returns the flat data and the width.
func padRows[T int64 | float32](rows [][]T, pad T) (flat []T, width int) {
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	flat = make([]T, 0, len(rows)*width)
	for _, row := range rows {
		flat = append(flat, row...)
		for i := len(row); i < width; i++ {
			flat = append(flat, pad)
		}
	}
	return flat, width
}

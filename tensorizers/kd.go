package tensorizers

import (
	"github.com/gomlx/gomlx/pkg/core/tensors"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// BoundaryMode selects how the KD decorator locates the point where padding
// begins in a teacher-provided pad mask.
type BoundaryMode int

const (
	// BoundaryFirstPad slices teacher logits at the first occurrence of the
	// pad marker in the mask, or keeps them whole when no marker is present.
	// Correct when padding is contiguous and trailing.
	BoundaryFirstPad BoundaryMode = iota

	// BoundaryPadCount slices at len(mask) minus the number of pad markers,
	// which also tolerates pad markers interspersed with real positions as
	// long as their total equals the trailing padding length.
	BoundaryPadCount
)

// KD decorates a Tensorizer with knowledge-distillation logit alignment:
// teacher start/end logit vectors attached to the row are sliced to the exact
// token window the base tensorizer assembled. Rows without teacher
// supervision get neutral padding instead, keeping batch shapes uniform at
// the cost of a weakened distillation signal for those rows.
//
// KD keeps per-instance counters of rows processed and rows that failed the
// alignment gate; like the Tensorizer it decorates, it is not safe for
// concurrent use.
type KD struct {
	base *Tensorizer
	mode BoundaryMode

	total      int
	mismatches int
}

// NewKD wraps a base tensorizer with teacher-logit alignment.
func NewKD(base *Tensorizer, mode BoundaryMode) *KD {
	return &KD{base: base, mode: mode}
}

// Numberize numberizes the row through the base tensorizer and attaches the
// aligned teacher logits. If the sliced logits do not match the assembled
// token count the row is counted as a mismatch and an error is returned:
// misaligned supervision silently corrupts distillation, so the caller must
// stop rather than skip.
func (k *KD) Numberize(row *Row) (*Numberized, error) {
	k.total++
	n, err := k.base.Numberize(row)
	if err != nil {
		return nil, err
	}

	if row.StartLogits == nil || row.EndLogits == nil || row.HasAnswerLogits == nil || row.PadMask == nil {
		// Teacher supervision absent on this row, substitute padding.
		padID := float32(k.base.voc.PadID())
		n.StartLogits = filled(len(n.Tokens), padID)
		n.EndLogits = filled(len(n.Tokens), padID)
		n.HasAnswerLogits = filled(2, padID)
	} else {
		n.StartLogits = k.tokenLogits(row.StartLogits, row.PadMask)
		n.EndLogits = k.tokenLogits(row.EndLogits, row.PadMask)
		n.HasAnswerLogits = row.HasAnswerLogits
	}

	if len(n.StartLogits) != len(n.Tokens) {
		k.mismatches++
		klog.Errorf("teacher logits misaligned: len(tokens)=%d, len(start_logits)=%d", len(n.Tokens), len(n.StartLogits))
		return nil, errors.Errorf(
			"teacher logits misaligned with assembled tokens: %d tokens vs %d logits",
			len(n.Tokens), len(n.StartLogits))
	}
	return n, nil
}

// tokenLogits slices full-length teacher logits down to the positions the
// pad mask marks as real tokens.
func (k *KD) tokenLogits(logits []float32, padMask []int) []float32 {
	padID := k.base.voc.PadID()
	boundary := len(logits)
	switch k.mode {
	case BoundaryPadCount:
		count := 0
		for _, m := range padMask {
			if m == padID {
				count++
			}
		}
		boundary = len(padMask) - count
	default:
		for i, m := range padMask {
			if m == padID {
				boundary = i
				break
			}
		}
	}
	if boundary > len(logits) {
		boundary = len(logits)
	}
	if boundary < 0 {
		boundary = 0
	}
	return logits[:boundary]
}

// KDBatch is a Batch extended with the teacher supervision tensors, float32
// with shape [batch, maxSeqLen] (HasAnswerLogits: [batch, width]).
type KDBatch struct {
	Batch

	StartLogits     *tensors.Tensor
	EndLogits       *tensors.Tensor
	HasAnswerLogits *tensors.Tensor
}

// Tensorize tensorizes the batch through the base tensorizer and appends the
// teacher logit tensors, padded with zeros to the batch's maximum lengths.
func (k *KD) Tensorize(batch []*Numberized) (*KDBatch, error) {
	base, err := k.base.Tensorize(batch)
	if err != nil {
		return nil, err
	}
	rows := len(batch)
	startLogits, seqWidth := padRows(column(batch, func(n *Numberized) []float32 { return n.StartLogits }), 0)
	endLogits, _ := padRows(column(batch, func(n *Numberized) []float32 { return n.EndLogits }), 0)
	hasAnswer, hasWidth := padRows(column(batch, func(n *Numberized) []float32 { return n.HasAnswerLogits }), 0)
	return &KDBatch{
		Batch:           *base,
		StartLogits:     tensors.FromFlatDataAndDimensions(startLogits, rows, seqWidth),
		EndLogits:       tensors.FromFlatDataAndDimensions(endLogits, rows, seqWidth),
		HasAnswerLogits: tensors.FromFlatDataAndDimensions(hasAnswer, rows, hasWidth),
	}, nil
}

// Summary returns the number of rows numberized and the number of rows that
// failed the alignment gate. Owning pipelines call this at the end of a run
// instead of relying on teardown-time side effects.
func (k *KD) Summary() (total, mismatches int) {
	return k.total, k.mismatches
}

// LogSummary logs the run counters through klog.
func (k *KD) LogSummary() {
	klog.Infof("KD tensorizer: %d rows read, %d rows dropped", k.total, k.mismatches)
}

// filled returns a slice of n copies of value.
func filled(n int, value float32) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = value
	}
	return out
}

// Package tensorizers converts question/context/answer rows into fixed-shape
// GoMLX tensors for extractive question-answering with transformer encoders.
//
// A Tensorizer processes one Row at a time: it tokenizes the question and the
// context, assembles them into a single sequence ([BOS] question [EOS] context
// [EOS]) with segment labels, truncates to a maximum length, and re-indexes
// the character-offset answer spans onto sub-word token indices. Numberized
// rows are then collected by the caller and padded into batch tensors by
// Tensorize.
//
// Two encoder families are supported through Options rather than separate
// types: BERT-style tensorizers reserve a slot for the explicitly prepended
// BOS marker when bounding each field's token count, RoBERTa-style ones do
// not. NewBERT and NewRoBERTa preset the distinction.
//
// Knowledge-distillation training wraps a Tensorizer in a KD decorator, which
// additionally aligns pre-computed teacher logits to the assembled token
// window. See KD.
package tensorizers

import (
	"github.com/gomlx/go-huggingface/tokenizers/api"
	"github.com/gomlx/go-tensorizers/tokenizers/vocab"
	"github.com/pkg/errors"
)

// SpanPadIdx marks an answer span entry that does not map onto retained token
// boundaries. It is negative so it can never collide with a token index or
// with a vocabulary pad id, letting the downstream loss mask such entries out.
const SpanPadIdx = -100

// DefaultMaxSeqLen bounds assembled sequences when Options.MaxSeqLen is zero.
const DefaultMaxSeqLen = 512

// Row is one question-answering example. Answers and AnswerStarts are aligned
// by index: AnswerStarts[i] is the character offset of Answers[i] in Doc.
//
// The logits fields carry optional teacher supervision for knowledge
// distillation; nil means the column was absent on this row. PadMask marks
// which of the teacher-scored positions were real tokens vs padding, using
// the vocabulary pad id as the pad marker.
type Row struct {
	Question     string
	Doc          string
	Answers      []string
	AnswerStarts []int

	StartLogits     []float32
	EndLogits       []float32
	HasAnswerLogits []float32
	PadMask         []int
	SegmentLabels   []int
}

// Options configures a Tensorizer.
type Options struct {
	// MaxSeqLen bounds the assembled question+context sequence, including the
	// BOS and EOS markers. Zero means DefaultMaxSeqLen.
	MaxSeqLen int

	// MaxSubseqLen bounds each field's token count independently, before
	// concatenation. Zero means MaxSeqLen.
	MaxSubseqLen int

	// ReserveBOSSlot makes per-field token lookup leave room for the BOS
	// marker prepended during assembly. BERT-style tensorizers set this;
	// RoBERTa-style ones do not.
	ReserveBOSSlot bool
}

// Tensorizer turns Rows into Numberized examples and batches of Numberized
// examples into tensors. It is not safe for concurrent use; run one instance
// per worker and aggregate externally.
type Tensorizer struct {
	tok  api.TokenizerWithSpans
	voc  *vocab.Vocabulary
	opts Options
}

// New creates a Tensorizer from a span-reporting tokenizer and its
// vocabulary. Most callers want the NewBERT or NewRoBERTa presets.
func New(tok api.TokenizerWithSpans, voc *vocab.Vocabulary, opts Options) (*Tensorizer, error) {
	if tok == nil {
		return nil, errors.Errorf("tensorizer requires a tokenizer with span support")
	}
	if voc == nil {
		return nil, errors.Errorf("tensorizer requires a vocabulary")
	}
	if opts.MaxSeqLen <= 0 {
		opts.MaxSeqLen = DefaultMaxSeqLen
	}
	if opts.MaxSubseqLen <= 0 {
		opts.MaxSubseqLen = opts.MaxSeqLen
	}
	return &Tensorizer{tok: tok, voc: voc, opts: opts}, nil
}

// NewBERT creates a Tensorizer for BERT-style encoders: each field's lookup
// reserves one slot for the BOS marker added during assembly.
func NewBERT(tok api.TokenizerWithSpans, voc *vocab.Vocabulary, opts Options) (*Tensorizer, error) {
	opts.ReserveBOSSlot = true
	return New(tok, voc, opts)
}

// NewRoBERTa creates a Tensorizer for RoBERTa-style encoders: fields are
// bounded by the configured lengths as-is.
func NewRoBERTa(tok api.TokenizerWithSpans, voc *vocab.Vocabulary, opts Options) (*Tensorizer, error) {
	opts.ReserveBOSSlot = false
	return New(tok, voc, opts)
}

// Vocabulary returns the vocabulary the tensorizer numberizes with.
func (t *Tensorizer) Vocabulary() *vocab.Vocabulary { return t.voc }

// Numberized is one example converted to model-ready integer sequences.
// Tokens holds the BOS marker, the question tokens, and the context tokens,
// truncated to MaxSeqLen; SegmentLabels parallels it with 0 for question
// positions and 1 for context positions. AnswerStartIdx/AnswerEndIdx hold one
// token index per original answer, or SpanPadIdx where the answer's character
// offsets did not land on retained token boundaries.
//
// StartLogits, EndLogits and HasAnswerLogits are only set by KD.Numberize.
type Numberized struct {
	Tokens        []int64
	SegmentLabels []int64
	SeqLen        int
	Positions     []int64

	AnswerStartIdx []int64
	AnswerEndIdx   []int64

	StartLogits     []float32
	EndLogits       []float32
	HasAnswerLogits []float32
}

// Numberize converts one row into integer sequences, mapping the row's answer
// spans onto token indices. It returns an error when Answers and AnswerStarts
// are misaligned; spans that do not match retained token boundaries are not
// errors and come back as SpanPadIdx.
func (t *Tensorizer) Numberize(row *Row) (*Numberized, error) {
	if len(row.Answers) != len(row.AnswerStarts) {
		return nil, errors.Errorf(
			"misaligned answer columns: %d answers vs %d answer starts (answers=%q starts=%v)",
			len(row.Answers), len(row.AnswerStarts), row.Answers, row.AnswerStarts)
	}

	docField := t.lookupTokens(row.Doc, t.opts.MaxSubseqLen)
	questionField := t.lookupTokens(row.Question, t.opts.MaxSubseqLen)

	n, docStarts, docEnds, offset := t.assemble(questionField, docField)
	n.AnswerStartIdx, n.AnswerEndIdx = reindexSpans(row.Answers, row.AnswerStarts, docStarts, docEnds, offset)
	return n, nil
}

// assemble concatenates the question and context fields into one sequence
// with segment labels, truncating to MaxSeqLen. If truncation removed the
// context's end marker it overwrites the last retained token with the EOS id
// and re-attaches the terminal sentinel offset pair, so the returned context
// offsets describe exactly the retained tokens. It returns the numberized
// sequence, the adjusted context offsets, and the token offset at which the
// context starts.
func (t *Tensorizer) assemble(question, doc field) (n *Numberized, docStarts, docEnds []int, offset int) {
	maxSeqLen := t.opts.MaxSeqLen
	eos := int64(t.voc.EosID())

	tokens := make([]int64, 0, 1+len(question.ids)+len(doc.ids))
	tokens = append(tokens, int64(t.voc.BosID()))
	tokens = append(tokens, question.ids...)
	offset = len(tokens)
	tokens = append(tokens, doc.ids...)

	segments := make([]int64, len(tokens))
	for i := offset; i < len(segments); i++ {
		segments[i] = 1
	}

	if len(tokens) > maxSeqLen {
		tokens = tokens[:maxSeqLen]
		segments = segments[:maxSeqLen]
	}

	docStarts, docEnds = doc.starts, doc.ends
	if tokens[len(tokens)-1] != eos {
		// The context's end marker was truncated away: restore it, and trim
		// the offset arrays to the retained tokens with the sentinel pair
		// back on the end, before span re-indexing consumes them.
		tokens[len(tokens)-1] = eos
		keep := maxSeqLen - offset - 1
		if keep < 0 {
			keep = 0
		}
		if keep > len(docStarts) {
			keep = len(docStarts)
		}
		sentinelStart := doc.starts[len(doc.starts)-1]
		sentinelEnd := doc.ends[len(doc.ends)-1]
		docStarts = append(append([]int{}, doc.starts[:keep]...), sentinelStart)
		docEnds = append(append([]int{}, doc.ends[:keep]...), sentinelEnd)
	}

	seqLen := len(tokens)
	positions := make([]int64, seqLen)
	for i := range positions {
		positions[i] = int64(i)
	}
	n = &Numberized{
		Tokens:        tokens,
		SegmentLabels: segments,
		SeqLen:        seqLen,
		Positions:     positions,
	}
	return n, docStarts, docEnds, offset
}

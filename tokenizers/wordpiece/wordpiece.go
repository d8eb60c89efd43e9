// Package wordpiece implements an api.TokenizerWithSpans for BERT-style
// WordPiece vocabularies (vocab.txt), backed by github.com/sugarme/tokenizer.
//
// Unlike the tokenizer.json backends, no special tokens are inserted here:
// the encoder tensorizers prepend/append BOS and EOS themselves, so spans
// returned by EncodeWithSpans line up one-to-one with positions in the
// original text.
package wordpiece

import (
	"strings"

	"github.com/gomlx/go-huggingface/hub"
	"github.com/gomlx/go-huggingface/tokenizers/api"
	"github.com/pkg/errors"
	tk "github.com/sugarme/tokenizer"
	"github.com/sugarme/tokenizer/model/wordpiece"
	"github.com/sugarme/tokenizer/normalizer"
	"github.com/sugarme/tokenizer/pretokenizer"
)

// Tokenizer implements api.TokenizerWithSpans over a WordPiece vocabulary.
type Tokenizer struct {
	tok       *tk.Tokenizer
	vocab     map[string]int
	idToToken map[int]string

	// Special token IDs, -1 when not present in the vocabulary.
	unkID  int
	padID  int
	clsID  int
	sepID  int
	maskID int
}

// Compile time assert that Tokenizer implements api.Tokenizer interface.
var _ api.Tokenizer = &Tokenizer{}

// Compile time assert that Tokenizer implements api.TokenizerWithSpans interface.
var _ api.TokenizerWithSpans = &Tokenizer{}

// New creates a WordPiece tokenizer from the "vocab.txt" file of the repo.
// It implements a tokenizer.TokenizerConstructor function signature.
func New(config *api.Config, repo *hub.Repo) (api.Tokenizer, error) {
	if !repo.HasFile("vocab.txt") {
		return nil, errors.Errorf("\"vocab.txt\" file not found in repo")
	}
	vocabFile, err := repo.DownloadFile("vocab.txt")
	if err != nil {
		return nil, errors.Wrapf(err, "can't download vocab.txt file")
	}
	return NewFromFile(config, vocabFile)
}

// NewFromFile creates a WordPiece tokenizer from a local vocab.txt file path.
func NewFromFile(config *api.Config, vocabPath string) (*Tokenizer, error) {
	wp, err := wordpiece.NewWordPieceFromFile(vocabPath, "[UNK]")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to load WordPiece vocabulary from %q", vocabPath)
	}

	inner := tk.NewTokenizer(wp)
	inner.WithNormalizer(normalizer.NewBertNormalizer(true, true, true, true))
	inner.WithPreTokenizer(pretokenizer.NewBertPreTokenizer())

	t := &Tokenizer{
		tok:       inner,
		vocab:     wp.GetVocab(),
		idToToken: make(map[int]string),
		unkID:     -1,
		padID:     -1,
		clsID:     -1,
		sepID:     -1,
		maskID:    -1,
	}
	for token, id := range t.vocab {
		t.idToToken[id] = token
	}
	t.resolveSpecialTokens(config)
	return t, nil
}

// resolveSpecialTokens maps the conventional BERT special tokens, plus any
// overrides in config, to their vocabulary ids.
func (t *Tokenizer) resolveSpecialTokens(config *api.Config) {
	lookup := func(tokens ...string) int {
		for _, token := range tokens {
			if token == "" {
				continue
			}
			if id, ok := t.vocab[token]; ok {
				return id
			}
		}
		return -1
	}
	t.unkID = lookup("[UNK]")
	t.padID = lookup("[PAD]")
	t.clsID = lookup("[CLS]")
	t.sepID = lookup("[SEP]")
	t.maskID = lookup("[MASK]")
	if config != nil {
		t.unkID = lookup(config.UnkToken, "[UNK]")
		t.padID = lookup(config.PadToken, "[PAD]")
		t.clsID = lookup(config.BosToken, config.ClsToken, "[CLS]")
		t.sepID = lookup(config.EosToken, config.SepToken, "[SEP]")
		t.maskID = lookup(config.MaskToken, "[MASK]")
	}
}

// Encode converts text to a sequence of token IDs. No special tokens are added.
func (t *Tokenizer) Encode(text string) []int {
	return t.EncodeWithSpans(text).IDs
}

// EncodeWithSpans returns the token IDs along with the span of each token in
// the original text. Spans follow the offset convention of the underlying
// encoder, which reports positions into the pre-normalized input.
func (t *Tokenizer) EncodeWithSpans(text string) api.EncodingResult {
	enc, err := t.tok.EncodeSingle(text, false)
	if err != nil || enc == nil {
		// WordPiece encoding of plain text does not fail; an error here means
		// empty or all-whitespace input.
		return api.EncodingResult{}
	}
	result := api.EncodingResult{
		IDs:   make([]int, len(enc.Ids)),
		Spans: make([]api.TokenSpan, len(enc.Ids)),
	}
	copy(result.IDs, enc.Ids)
	for i, off := range enc.Offsets {
		if len(off) == 2 {
			result.Spans[i] = api.TokenSpan{Start: off[0], End: off[1]}
		}
	}
	return result
}

// Decode converts a sequence of token IDs back to text, merging WordPiece
// continuation pieces ("##...") with the preceding token.
func (t *Tokenizer) Decode(ids []int) string {
	var result strings.Builder
	first := true
	for _, id := range ids {
		token, ok := t.idToToken[id]
		if !ok {
			continue
		}
		if strings.HasPrefix(token, "##") {
			result.WriteString(strings.TrimPrefix(token, "##"))
		} else {
			if !first {
				result.WriteString(" ")
			}
			result.WriteString(token)
		}
		first = false
	}
	return result.String()
}

// SpecialTokenID returns the ID for a given special token.
// BOS falls back to CLS and EOS to SEP, as is conventional for BERT models.
func (t *Tokenizer) SpecialTokenID(token api.SpecialToken) (int, error) {
	switch token {
	case api.TokUnknown:
		if t.unkID >= 0 {
			return t.unkID, nil
		}
	case api.TokPad:
		if t.padID >= 0 {
			return t.padID, nil
		}
	case api.TokBeginningOfSentence, api.TokClassification:
		if t.clsID >= 0 {
			return t.clsID, nil
		}
	case api.TokEndOfSentence:
		if t.sepID >= 0 {
			return t.sepID, nil
		}
	case api.TokMask:
		if t.maskID >= 0 {
			return t.maskID, nil
		}
	}
	return 0, errors.Errorf("special token %s not found", token)
}

// VocabSize returns the size of the vocabulary.
func (t *Tokenizer) VocabSize() int {
	return len(t.vocab)
}

// GetVocab returns the full vocabulary mapping.
func (t *Tokenizer) GetVocab() map[string]int {
	out := make(map[string]int, len(t.vocab))
	for token, id := range t.vocab {
		out[token] = id
	}
	return out
}

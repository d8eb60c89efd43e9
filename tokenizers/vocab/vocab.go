// Package vocab resolves and caches the special-token indices of a tokenizer.
//
// Tensorizers look up the padding, beginning-of-sequence and end-of-sequence
// ids for every sequence they assemble. Resolving them through
// api.Tokenizer.SpecialTokenID on each use would repeat error handling at
// every call site, so a Vocabulary resolves them once, at construction, and
// fails early if the tokenizer cannot provide them.
package vocab

import (
	"encoding/json"
	"sort"

	"github.com/gomlx/go-huggingface/tokenizers/api"
	"github.com/pkg/errors"
)

// Vocabulary is an api.Tokenizer with its padding, beginning-of-sequence and
// end-of-sequence ids resolved up-front.
type Vocabulary struct {
	api.Tokenizer

	padID, bosID, eosID int
}

// New wraps the given tokenizer, resolving the pad, BOS and EOS ids.
// It returns an error if any of the three cannot be resolved.
func New(tok api.Tokenizer) (*Vocabulary, error) {
	v := &Vocabulary{Tokenizer: tok}
	var err error
	if v.padID, err = tok.SpecialTokenID(api.TokPad); err != nil {
		return nil, errors.WithMessage(err, "vocabulary requires a pad token")
	}
	if v.bosID, err = tok.SpecialTokenID(api.TokBeginningOfSentence); err != nil {
		return nil, errors.WithMessage(err, "vocabulary requires a beginning-of-sequence token")
	}
	if v.eosID, err = tok.SpecialTokenID(api.TokEndOfSentence); err != nil {
		return nil, errors.WithMessage(err, "vocabulary requires an end-of-sequence token")
	}
	return v, nil
}

// PadID returns the padding token id.
func (v *Vocabulary) PadID() int { return v.padID }

// BosID returns the beginning-of-sequence token id.
func (v *Vocabulary) BosID() int { return v.bosID }

// EosID returns the end-of-sequence token id.
func (v *Vocabulary) EosID() int { return v.eosID }

// EosToken returns the text form of the end-of-sequence token.
func (v *Vocabulary) EosToken() string {
	return v.Tokenizer.Decode([]int{v.eosID})
}

// Snapshot is a serializable form of a Vocabulary, suitable for embedding in
// an inference runtime that cannot link the original tokenizer. Tokens is
// ordered by id and may be empty when the underlying tokenizer does not
// expose its vocabulary.
type Snapshot struct {
	Tokens []string `json:"tokens,omitempty"`
	PadIdx int      `json:"pad_idx"`
	BosIdx int      `json:"bos_idx"`
	EosIdx int      `json:"eos_idx"`
}

// vocabLister is implemented by tokenizers that can enumerate their
// vocabulary (e.g. the WordPiece and HuggingFace tokenizer.json backends).
type vocabLister interface {
	GetVocab() map[string]int
}

// Export returns a serializable snapshot of the vocabulary.
func (v *Vocabulary) Export() *Snapshot {
	s := &Snapshot{
		PadIdx: v.padID,
		BosIdx: v.bosID,
		EosIdx: v.eosID,
	}
	if lister, ok := v.Tokenizer.(vocabLister); ok {
		byID := lister.GetVocab()
		type entry struct {
			token string
			id    int
		}
		entries := make([]entry, 0, len(byID))
		for token, id := range byID {
			entries = append(entries, entry{token, id})
		}
		sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })
		s.Tokens = make([]string, 0, len(entries))
		for _, e := range entries {
			s.Tokens = append(s.Tokens, e.token)
		}
	}
	return s
}

// MarshalJSON serializes the snapshot of the vocabulary.
func (v *Vocabulary) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Export())
}

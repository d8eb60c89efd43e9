package tensorizers

// field is one tokenized text field: token ids plus parallel character
// offsets of each token in the original text. The last entry is always the
// EOS marker with a sentinel (-1, -1) offset pair, which span re-indexing
// excludes from its lookup tables.
type field struct {
	ids    []int64
	starts []int
	ends   []int
}

// sentinelOffset is the offset recorded for tokens with no position in the
// original text (the appended EOS marker).
const sentinelOffset = -1

// lookupTokens tokenizes text, bounding the result to maxLen entries
// including the appended EOS marker. When ReserveBOSSlot is set, one further
// slot is left free for the BOS marker prepended during assembly.
func (t *Tensorizer) lookupTokens(text string, maxLen int) field {
	if t.opts.ReserveBOSSlot {
		maxLen--
	}
	enc := t.tok.EncodeWithSpans(text)
	n := len(enc.IDs)
	if n > maxLen-1 {
		n = maxLen - 1
	}
	if n < 0 {
		n = 0
	}
	f := field{
		ids:    make([]int64, 0, n+1),
		starts: make([]int, 0, n+1),
		ends:   make([]int, 0, n+1),
	}
	for i := 0; i < n; i++ {
		f.ids = append(f.ids, int64(enc.IDs[i]))
		f.starts = append(f.starts, enc.Spans[i].Start)
		f.ends = append(f.ends, enc.Spans[i].End)
	}
	f.ids = append(f.ids, int64(t.voc.EosID()))
	f.starts = append(f.starts, sentinelOffset)
	f.ends = append(f.ends, sentinelOffset)
	return f
}

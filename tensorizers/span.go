package tensorizers

// reindexSpans maps character-offset answer spans onto token indices.
//
// It builds two lookup tables, character offset -> token index, from the
// start and end offsets of every non-terminal context token (the trailing EOS
// sentinel is excluded so it can never match an answer boundary), shifted by
// tokenOffset, the number of tokens preceding the context in the assembled
// sequence. Each answer is then resolved by exact lookup of its start offset
// and of start+len(answer); a miss yields SpanPadIdx for that entry. Sub-word
// tokenization can split a character position ambiguously, so no
// nearest-token fallback is attempted: an answer that does not land exactly
// on token boundaries is marked invalid rather than guessed.
//
// A row with zero answers yields a single SpanPadIdx entry in both results,
// so batched answer columns are never empty.
func reindexSpans(answers []string, answerStarts []int, starts, ends []int, tokenOffset int) (startIdx, endIdx []int64) {
	startMap := make(map[int]int, len(starts))
	endMap := make(map[int]int, len(ends))
	for i := 0; i < len(starts)-1; i++ {
		startMap[starts[i]] = i + tokenOffset
		endMap[ends[i]] = i + tokenOffset
	}

	if len(answers) == 0 {
		return []int64{SpanPadIdx}, []int64{SpanPadIdx}
	}

	startIdx = make([]int64, len(answers))
	endIdx = make([]int64, len(answers))
	for i, answer := range answers {
		rawStart := answerStarts[i]
		if idx, ok := startMap[rawStart]; ok {
			startIdx[i] = int64(idx)
		} else {
			startIdx[i] = SpanPadIdx
		}
		if idx, ok := endMap[rawStart+len(answer)]; ok {
			endIdx[i] = int64(idx)
		} else {
			endIdx[i] = SpanPadIdx
		}
	}
	return startIdx, endIdx
}

package tensorizers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReindexSpans(t *testing.T) {
	// Offsets for "aa bb cc" tokenized into three tokens plus the EOS
	// sentinel pair.
	starts := []int{0, 3, 6, sentinelOffset}
	ends := []int{2, 5, 8, sentinelOffset}

	tests := []struct {
		name         string
		answers      []string
		answerStarts []int
		tokenOffset  int
		wantStart    []int64
		wantEnd      []int64
	}{
		{
			name:         "exact match first token",
			answers:      []string{"aa"},
			answerStarts: []int{0},
			tokenOffset:  2,
			wantStart:    []int64{2},
			wantEnd:      []int64{2},
		},
		{
			name:         "exact match spanning two tokens",
			answers:      []string{"bb cc"},
			answerStarts: []int{3},
			tokenOffset:  2,
			wantStart:    []int64{3},
			wantEnd:      []int64{4},
		},
		{
			name:         "offset shifts every index",
			answers:      []string{"cc"},
			answerStarts: []int{6},
			tokenOffset:  10,
			wantStart:    []int64{12},
			wantEnd:      []int64{12},
		},
		{
			name:         "start inside a token",
			answers:      []string{"a bb"},
			answerStarts: []int{1},
			tokenOffset:  0,
			wantStart:    []int64{SpanPadIdx},
			wantEnd:      []int64{1},
		},
		{
			name:         "end inside a token",
			answers:      []string{"aa b"},
			answerStarts: []int{0},
			tokenOffset:  0,
			wantStart:    []int64{0},
			wantEnd:      []int64{SpanPadIdx},
		},
		{
			name:         "multiple answers resolved independently",
			answers:      []string{"aa", "nope", "cc"},
			answerStarts: []int{0, 1, 6},
			tokenOffset:  0,
			wantStart:    []int64{0, SpanPadIdx, 2},
			wantEnd:      []int64{0, SpanPadIdx, 2},
		},
		{
			name:      "no answers yields single sentinel entry",
			wantStart: []int64{SpanPadIdx},
			wantEnd:   []int64{SpanPadIdx},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gotStart, gotEnd := reindexSpans(tc.answers, tc.answerStarts, starts, ends, tc.tokenOffset)
			assert.Equal(t, tc.wantStart, gotStart)
			assert.Equal(t, tc.wantEnd, gotEnd)
		})
	}
}

// The terminal sentinel pair must never enter the lookup tables, even when an
// answer's offsets would match it.
func TestReindexSpansExcludesTerminalSentinel(t *testing.T) {
	starts := []int{0, sentinelOffset}
	ends := []int{2, sentinelOffset}
	gotStart, gotEnd := reindexSpans([]string{""}, []int{sentinelOffset}, starts, ends, 0)
	assert.Equal(t, []int64{SpanPadIdx}, gotStart)
	assert.Equal(t, []int64{SpanPadIdx}, gotEnd)
}

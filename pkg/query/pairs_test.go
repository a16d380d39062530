package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPairs(t *testing.T) {
	tests := []struct {
		name   string
		value  string
		start  int
		end    int
		key    string
		meta   bool
		want   PairEdit
		wantOk bool
	}{
		{
			name: "insert closer at end", value: "agent:", start: 6, end: 6, key: "(",
			want: PairEdit{Text: "agent:()", Start: 7, End: 7}, wantOk: true,
		},
		{
			name: "wrap selection", value: "a or b", start: 0, end: 6, key: "(",
			want: PairEdit{Text: "(a or b)", Start: 1, End: 7}, wantOk: true,
		},
		{
			name: "step over closer", value: "()", start: 1, end: 1, key: ")",
			want: PairEdit{Text: "()", Start: 2, End: 2}, wantOk: true,
		},
		{
			name: "step over quote", value: `""`, start: 1, end: 1, key: `"`,
			want: PairEdit{Text: `""`, Start: 2, End: 2}, wantOk: true,
		},
		{
			name: "no closer before word", value: "ab", start: 0, end: 0, key: "(",
			wantOk: false,
		},
		{
			name: "escaped opener", value: `a\`, start: 2, end: 2, key: "(",
			wantOk: false,
		},
		{
			name: "apostrophe after word", value: "don", start: 3, end: 3, key: "'",
			wantOk: false,
		},
		{
			name: "remove empty pair", value: "x[]", start: 2, end: 2, key: "backspace",
			want: PairEdit{Text: "x", Start: 1, End: 1}, wantOk: true,
		},
		{
			name: "meta backspace ignored", value: "x[]", start: 2, end: 2, key: "backspace", meta: true,
			wantOk: false,
		},
		{
			name: "ordinary key", value: "abc", start: 3, end: 3, key: "d",
			wantOk: false,
		},
		{
			name: "multibyte text offsets", value: "é:", start: 2, end: 2, key: "[",
			want: PairEdit{Text: "é:[]", Start: 3, End: 3}, wantOk: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchPairs(tt.value, tt.start, tt.end, tt.key, tt.meta)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

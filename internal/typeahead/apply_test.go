package typeahead

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/pkg/query"
)

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		sel   Selection
		s     completion.Suggestion
		want  string
		caret int
	}{
		{
			name:  "appends field at caret",
			text:  "agent:",
			sel:   Caret(6),
			s:     completion.Suggestion{Text: "status:", Start: 6, End: 6},
			want:  "agent:status:",
			caret: 13,
		},
		{
			name:  "replaces partial word",
			text:  "ag",
			sel:   Caret(2),
			s:     completion.Suggestion{Text: "agent:", Start: 0, End: 2},
			want:  "agent:",
			caret: 6,
		},
		{
			name:  "removes selection before splicing",
			text:  "status:200 and ",
			sel:   Selection{Start: 7, End: 10},
			s:     completion.Suggestion{Text: "404", Start: 7, End: 7},
			want:  "status:404 and ",
			caret: 10,
		},
		{
			name:  "cursor offset inside function call",
			text:  "_.name.sta",
			sel:   Caret(10),
			s:     completion.Suggestion{Text: "startsWith()", Start: 7, End: 10, CursorOffset: completion.Offset(11)},
			want:  "_.name.startsWith()",
			caret: 18,
		},
		{
			name:  "explicit zero offset",
			text:  "x",
			sel:   Caret(1),
			s:     completion.Suggestion{Text: "()", Start: 1, End: 1, CursorOffset: completion.Offset(0)},
			want:  "x()",
			caret: 1,
		},
		{
			name:  "rune offsets",
			text:  "städt:",
			sel:   Caret(6),
			s:     completion.Suggestion{Text: "köln", Start: 6, End: 6},
			want:  "städt:köln",
			caret: 10,
		},
		{
			name:  "span past the end is clamped",
			text:  "abc",
			sel:   Caret(3),
			s:     completion.Suggestion{Text: "xyz", Start: 1, End: 99},
			want:  "axyz",
			caret: 4,
		},
		{
			name:  "recent search replaces everything",
			text:  "err",
			sel:   Caret(3),
			s:     completion.Suggestion{Kind: completion.KindRecentSearch, Text: "error AND level:500", Start: 0, End: 3},
			want:  "error AND level:500",
			caret: 19,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, caret := Apply(tt.text, tt.sel, tt.s)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.caret, caret)
		})
	}
}

func TestTextModel(t *testing.T) {
	m := NewTextModel(query.Query{Text: "status:200", Language: query.LanguageKuery})
	assert.Equal(t, Caret(10), m.Selection())

	assert.False(t, m.SetUserText("status:200"))
	assert.True(t, m.SetUserText("status"))
	assert.Equal(t, Caret(6), m.Selection())

	m.SetSelection(Selection{Start: 4, End: 2})
	assert.Equal(t, Selection{Start: 4, End: 4}, m.Selection())

	assert.True(t, m.SetQuery(query.Query{Text: `{"match_all":{}}`, Language: query.LanguageKuery}))
	assert.Equal(t, "", m.UserText())
	q, changed := m.Normalize()
	assert.True(t, changed)
	assert.Equal(t, "", q.Text)

	_, changed = m.Normalize()
	assert.False(t, changed)
}

func TestTransformRoundTrip(t *testing.T) {
	for _, text := range []string{"", "agent:firefox", `{"term":{"a":1}}`, "error AND level:500", "städt:köln"} {
		assert.Equal(t, text, query.ToUser(query.FromUser(text)), text)
	}
}

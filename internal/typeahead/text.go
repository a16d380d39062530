package typeahead

import (
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Selection is a caret range in rune offsets of the user-form text.
type Selection struct {
	Start int `json:"start" yaml:"start"`
	End   int `json:"end" yaml:"end"`
}

// Caret returns an empty selection at pos.
func Caret(pos int) Selection {
	return Selection{Start: pos, End: pos}
}

// IsCaret reports whether nothing is selected.
func (s Selection) IsCaret() bool {
	return s.Start == s.End
}

// Clamp bounds s to [0, n] with Start <= End.
func (s Selection) Clamp(n int) Selection {
	s.Start = clamp(s.Start, 0, n)
	s.End = clamp(s.End, s.Start, n)
	return s
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// TextModel holds the bound query, stored canonically, and the caret.
type TextModel struct {
	q   query.Query
	sel Selection
}

// NewTextModel returns a model for q with the caret at the end.
func NewTextModel(q query.Query) *TextModel {
	m := &TextModel{q: q}
	m.sel = Caret(m.Len())
	return m
}

// Query returns the canonical query.
func (m *TextModel) Query() query.Query {
	return m.q
}

// Language returns the query language.
func (m *TextModel) Language() query.Language {
	return m.q.Language
}

// UserText returns the text shown in the input.
func (m *TextModel) UserText() string {
	return query.ToUser(m.q.Text)
}

// Len returns the user text length in runes.
func (m *TextModel) Len() int {
	return len([]rune(m.UserText()))
}

// Selection returns the caret clamped to the current text.
func (m *TextModel) Selection() Selection {
	return m.sel.Clamp(m.Len())
}

// SetSelection moves the caret.
func (m *TextModel) SetSelection(sel Selection) {
	m.sel = sel.Clamp(m.Len())
}

// SetUserText stores text typed by the user and reports whether the
// canonical query changed.
func (m *TextModel) SetUserText(text string) bool {
	canonical := query.FromUser(text)
	changed := canonical != m.q.Text
	m.q.Text = canonical
	m.sel = m.sel.Clamp(m.Len())
	return changed
}

// SetQuery replaces the query and reports whether it changed.
func (m *TextModel) SetQuery(q query.Query) bool {
	changed := q != m.q
	m.q = q
	m.sel = m.sel.Clamp(m.Len())
	return changed
}

// Normalize re-derives the canonical text through the transform pair. When
// the round trip differs the corrected query is stored and returned.
func (m *TextModel) Normalize() (query.Query, bool) {
	text, changed := query.Normalize(m.q.Text)
	if !changed {
		return m.q, false
	}
	m.q.Text = text
	m.sel = m.sel.Clamp(m.Len())
	return m.q, true
}

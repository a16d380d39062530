package completion

import (
	"sort"

	"github.com/oakwood-commons/querybar/internal/index"
)

// Kind classifies a suggestion.
type Kind string

const (
	KindField       Kind = "field"
	KindValue       Kind = "value"
	KindOperator    Kind = "operator"
	KindConjunction Kind = "conjunction"
	KindFunction    Kind = "function"
	// KindRecentSearch marks a previously submitted query. Every other kind
	// comes from a completion provider.
	KindRecentSearch Kind = "recentSearch"
)

// Suggestion is one candidate replacement for part of the query text.
// Start and End are rune offsets into the user-form text; the replaced
// range is [Start, End).
type Suggestion struct {
	Kind  Kind   `json:"type" yaml:"type"`
	Text  string `json:"text" yaml:"text"`
	Start int    `json:"start" yaml:"start"`
	End   int    `json:"end" yaml:"end"`
	// CursorOffset, when set, is where the caret lands relative to Start
	// after the suggestion is applied. Nil means the end of Text.
	CursorOffset *int         `json:"cursorIndex,omitempty" yaml:"cursorIndex,omitempty"`
	Description  string       `json:"description,omitempty" yaml:"description,omitempty"`
	Field        *index.Field `json:"field,omitempty" yaml:"field,omitempty"`

	score int
}

// IsRecentSearch reports whether s came from the recent-search log.
func (s Suggestion) IsRecentSearch() bool {
	return s.Kind == KindRecentSearch
}

// Offset returns a pointer to n for use as a CursorOffset.
func Offset(n int) *int {
	return &n
}

// rank orders suggestions by score, keeping input order among equals, and
// drops later duplicates of the same text and span.
func rank(items []Suggestion) []Suggestion {
	sort.SliceStable(items, func(i, j int) bool { return items[i].score > items[j].score })
	type key struct {
		text       string
		start, end int
	}
	seen := map[key]bool{}
	out := items[:0]
	for _, s := range items {
		k := key{s.Text, s.Start, s.End}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

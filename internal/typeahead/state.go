package typeahead

import "github.com/oakwood-commons/querybar/internal/completion"

const (
	// DefaultRevealLimit is how many suggestions are rendered at first.
	DefaultRevealLimit = 50
	// RevealStep is how many more suggestions LoadMore reveals.
	RevealStep = 50
)

// SuggestionListState is the rendered suggestion list. It is a value: every
// transition returns a new state and never mutates Items.
type SuggestionListState struct {
	Visible bool `json:"visible" yaml:"visible"`
	// Index is the selected item, or -1 for no selection.
	Index       int                     `json:"index" yaml:"index"`
	Items       []completion.Suggestion `json:"items" yaml:"items"`
	RevealLimit int                     `json:"revealLimit" yaml:"revealLimit"`
}

// InitialState is hidden with no items.
func InitialState() SuggestionListState {
	return SuggestionListState{Index: -1, RevealLimit: DefaultRevealLimit}
}

// Selected returns the selected suggestion. A stale index is never
// dereferenced.
func (s SuggestionListState) Selected() (completion.Suggestion, bool) {
	if !s.Visible || s.Index < 0 || s.Index >= len(s.Items) {
		return completion.Suggestion{}, false
	}
	return s.Items[s.Index], true
}

// Revealed returns the items to render.
func (s SuggestionListState) Revealed() []completion.Suggestion {
	if s.RevealLimit >= 0 && len(s.Items) > s.RevealLimit {
		return s.Items[:s.RevealLimit]
	}
	return s.Items
}

// HasMore reports whether LoadMore would reveal more items.
func (s SuggestionListState) HasMore() bool {
	return len(s.Items) > s.RevealLimit
}

func first(n int) int {
	if n == 0 {
		return -1
	}
	return 0
}

// Down moves the selection forward, wrapping to the first item. From a
// hidden list it opens the list with the first item selected, but only
// when the text is empty.
func (s SuggestionListState) Down(textEmpty bool) SuggestionListState {
	n := len(s.Items)
	switch {
	case s.Visible && s.Index >= 0:
		next := s.Index + 1
		if next >= n {
			next = first(n)
		}
		s.Index = next
	case s.Visible || textEmpty:
		s.Visible = true
		s.Index = first(n)
	}
	return s
}

// Up moves the selection back, wrapping to the last item. It does nothing
// without a selection.
func (s SuggestionListState) Up() SuggestionListState {
	if !s.Visible || s.Index < 0 {
		return s
	}
	prev := s.Index - 1
	if prev < 0 || prev >= len(s.Items) {
		prev = len(s.Items) - 1
	}
	s.Index = prev
	return s
}

// Dismiss hides the list and clears the selection (Escape, Tab).
func (s SuggestionListState) Dismiss() SuggestionListState {
	s.Visible = false
	s.Index = -1
	return s
}

// Blur hides the list when the input loses focus.
func (s SuggestionListState) Blur() SuggestionListState {
	return s.Dismiss()
}

// Reset shows the list without a selection and restores the reveal limit.
// It follows text edits, clicks and caret moves.
func (s SuggestionListState) Reset() SuggestionListState {
	s.Visible = true
	s.Index = -1
	s.RevealLimit = DefaultRevealLimit
	return s
}

// Hover selects item i under the pointer. Out-of-range indexes are ignored.
func (s SuggestionListState) Hover(i int) SuggestionListState {
	if i >= 0 && i < len(s.Items) {
		s.Index = i
	}
	return s
}

// LoadMore reveals another page of items.
func (s SuggestionListState) LoadMore() SuggestionListState {
	s.RevealLimit += RevealStep
	return s
}

// WithItems replaces the list contents and clears the selection. Visibility
// and reveal limit are kept.
func (s SuggestionListState) WithItems(items []completion.Suggestion) SuggestionListState {
	s.Items = items
	s.Index = -1
	return s
}

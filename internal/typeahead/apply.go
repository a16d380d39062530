package typeahead

import "github.com/oakwood-commons/querybar/internal/completion"

// Apply splices s into text. The active selection is removed first, then
// s.Text replaces [s.Start, s.End) of what remains. The returned caret is
// s.Start plus s.CursorOffset, or plus the length of s.Text when no offset
// is set. All offsets are in runes and clamped to the text.
func Apply(text string, sel Selection, s completion.Suggestion) (string, int) {
	rs := []rune(text)
	sel = sel.Clamp(len(rs))
	remaining := make([]rune, 0, len(rs)+len(s.Text))
	remaining = append(remaining, rs[:sel.Start]...)
	remaining = append(remaining, rs[sel.End:]...)

	start := clamp(s.Start, 0, len(remaining))
	end := clamp(s.End, start, len(remaining))
	insert := []rune(s.Text)

	out := make([]rune, 0, len(remaining)-(end-start)+len(insert))
	out = append(out, remaining[:start]...)
	out = append(out, insert...)
	out = append(out, remaining[end:]...)

	offset := len(insert)
	if s.CursorOffset != nil {
		offset = *s.CursorOffset
	}
	return string(out), clamp(start+offset, 0, len(out))
}

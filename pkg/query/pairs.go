package query

import (
	"strings"
	"unicode"
)

var bracketPairs = []string{"()", "[]", "{}", "''", `""`}

// KeyBackspace is the key name MatchPairs treats as a deletion.
const KeyBackspace = "backspace"

// PairEdit is the outcome of MatchPairs: the edited text and caret range, in
// rune offsets.
type PairEdit struct {
	Text  string
	Start int
	End   int
}

// MatchPairs implements auto-pairing of brackets and quotes while typing.
//
// Typing a closer that already follows the caret steps over it. Typing an
// opener inserts the matching closer (wrapping any selection). Backspace
// between an empty pair removes both characters. ok is false when the key is
// not handled and should be processed as ordinary input.
func MatchPairs(value string, start, end int, key string, meta bool) (PairEdit, bool) {
	runes := []rune(value)
	start, end = clampRange(start, end, len(runes))

	switch {
	case shouldMoveCaretForward(runes, start, end, key):
		return PairEdit{Text: value, Start: start + 1, End: end + 1}, true
	case shouldInsertCloser(runes, start, end, key):
		opener := []rune(key)[0]
		closer := closerFor(opener)
		out := make([]rune, 0, len(runes)+2)
		out = append(out, runes[:start]...)
		out = append(out, opener)
		out = append(out, runes[start:end]...)
		out = append(out, closer)
		out = append(out, runes[end:]...)
		return PairEdit{Text: string(out), Start: start + 1, End: end + 1}, true
	case shouldRemovePair(runes, start, end, key, meta):
		out := make([]rune, 0, len(runes))
		out = append(out, runes[:end-1]...)
		out = append(out, runes[end+1:]...)
		return PairEdit{Text: string(out), Start: start - 1, End: end - 1}, true
	}
	return PairEdit{}, false
}

func shouldMoveCaretForward(runes []rune, start, end int, key string) bool {
	r, ok := singleRune(key)
	if !ok || !isCloser(r) {
		return false
	}
	if start != end || end == len(runes) {
		return false
	}
	return runes[end] == r
}

func shouldInsertCloser(runes []rune, start, end int, key string) bool {
	r, ok := singleRune(key)
	if !ok || !isOpener(r) {
		return false
	}
	if start != end {
		return true
	}
	if start > 0 && runes[start-1] == '\\' {
		return false
	}
	// Quotes directly after a word character are most likely apostrophes.
	if (r == '\'' || r == '"') && start > 0 && isWordRune(runes[start-1]) {
		return false
	}
	if end == len(runes) {
		return true
	}
	next := runes[end]
	return unicode.IsSpace(next) || isCloser(next)
}

func shouldRemovePair(runes []rune, start, end int, key string, meta bool) bool {
	if !strings.EqualFold(key, KeyBackspace) || meta {
		return false
	}
	if start != end || start == 0 || end >= len(runes) {
		return false
	}
	pair := string(runes[end-1 : end+1])
	for _, p := range bracketPairs {
		if p == pair {
			return true
		}
	}
	return false
}

func singleRune(key string) (rune, bool) {
	rs := []rune(key)
	if len(rs) != 1 {
		return 0, false
	}
	return rs[0], true
}

func isOpener(r rune) bool {
	for _, p := range bracketPairs {
		if rune(p[0]) == r {
			return true
		}
	}
	return false
}

func isCloser(r rune) bool {
	for _, p := range bracketPairs {
		if rune(p[1]) == r {
			return true
		}
	}
	return false
}

func closerFor(opener rune) rune {
	for _, p := range bracketPairs {
		if rune(p[0]) == opener {
			return rune(p[1])
		}
	}
	return opener
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}

func clampRange(start, end, n int) (int, int) {
	if start < 0 {
		start = 0
	}
	if end > n {
		end = n
	}
	if start > n {
		start = n
	}
	if end < start {
		end = start
	}
	return start, end
}

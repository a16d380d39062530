package search

import (
	"fmt"
	"strings"
	"unicode"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokWord
	tokQuoted
	tokLParen
	tokRParen
	tokLBrace
	tokRBrace
	tokColon
	tokRange
	tokAnd
	tokOr
	tokNot
)

type token struct {
	kind tokenKind
	text string
	// wildcard is set for words with an unescaped '*'.
	wildcard bool
	pos      int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return "end of query"
	}
	return fmt.Sprintf("%q", t.text)
}

// SyntaxError reports a malformed query.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("syntax error at offset %d: %s", e.Pos, e.Msg)
}

func isSpecial(r rune) bool {
	switch r {
	case '(', ')', '{', '}', ':', '<', '>', '"':
		return true
	}
	return unicode.IsSpace(r)
}

func lex(input string) ([]token, error) {
	var toks []token
	rs := []rune(input)
	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r == '(':
			toks = append(toks, token{kind: tokLParen, text: "(", pos: i})
			i++
		case r == ')':
			toks = append(toks, token{kind: tokRParen, text: ")", pos: i})
			i++
		case r == '{':
			toks = append(toks, token{kind: tokLBrace, text: "{", pos: i})
			i++
		case r == '}':
			toks = append(toks, token{kind: tokRBrace, text: "}", pos: i})
			i++
		case r == ':':
			toks = append(toks, token{kind: tokColon, text: ":", pos: i})
			i++
		case r == '<' || r == '>':
			op := string(r)
			if i+1 < len(rs) && rs[i+1] == '=' {
				op += "="
			}
			toks = append(toks, token{kind: tokRange, text: op, pos: i})
			i += len(op)
		case r == '"':
			var b strings.Builder
			j := i + 1
			for ; j < len(rs) && rs[j] != '"'; j++ {
				if rs[j] == '\\' && j+1 < len(rs) {
					j++
				}
				b.WriteRune(rs[j])
			}
			if j >= len(rs) {
				return nil, &SyntaxError{Pos: i, Msg: "unterminated quoted string"}
			}
			toks = append(toks, token{kind: tokQuoted, text: b.String(), pos: i})
			i = j + 1
		default:
			var b strings.Builder
			wildcard := false
			j := i
			for ; j < len(rs) && !isSpecial(rs[j]); j++ {
				if rs[j] == '\\' && j+1 < len(rs) {
					j++
					b.WriteRune(rs[j])
					continue
				}
				if rs[j] == '*' {
					wildcard = true
				}
				b.WriteRune(rs[j])
			}
			word := b.String()
			kind := tokWord
			switch strings.ToLower(word) {
			case "and":
				kind = tokAnd
			case "or":
				kind = tokOr
			case "not":
				kind = tokNot
			}
			toks = append(toks, token{kind: kind, text: word, wildcard: wildcard, pos: i})
			i = j
		}
	}
	return append(toks, token{kind: tokEOF, pos: len(rs)}), nil
}

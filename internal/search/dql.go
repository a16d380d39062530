package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/oakwood-commons/querybar/internal/index"
)

// node is a compiled DQL expression evaluated against one document.
type node interface {
	match(doc map[string]any) bool
}

type (
	andNode []node
	orNode  []node
	notNode struct{ inner node }

	// termNode matches a value anywhere in the document.
	termNode struct{ v valueMatcher }

	// fieldNode matches a value at a field path.
	fieldNode struct {
		field string
		v     valueNode
	}

	// existsNode is "field:*".
	existsNode struct{ field string }

	rangeNode struct {
		field string
		op    string
		value string
	}

	// nestedNode is "path:{ inner }"; inner fields are relative to path
	// and must all match within one element.
	nestedNode struct {
		path  string
		inner node
	}
)

func (n andNode) match(doc map[string]any) bool {
	for _, c := range n {
		if !c.match(doc) {
			return false
		}
	}
	return true
}

func (n orNode) match(doc map[string]any) bool {
	for _, c := range n {
		if c.match(doc) {
			return true
		}
	}
	return false
}

func (n notNode) match(doc map[string]any) bool { return !n.inner.match(doc) }

func (n termNode) match(doc map[string]any) bool {
	found := false
	walkLeaves(doc, func(v any) bool {
		found = n.v.matches(v)
		return !found
	})
	return found
}

func (n fieldNode) match(doc map[string]any) bool {
	return n.v.matchValues(index.Lookup(doc, n.field))
}

func (n existsNode) match(doc map[string]any) bool {
	for _, v := range index.Lookup(doc, n.field) {
		if v != nil {
			return true
		}
	}
	return false
}

func (n rangeNode) match(doc map[string]any) bool {
	for _, v := range index.Lookup(doc, n.field) {
		if c, ok := compare(v, n.value); ok && rangeHolds(n.op, c) {
			return true
		}
	}
	return false
}

func (n nestedNode) match(doc map[string]any) bool {
	for _, v := range index.Lookup(doc, n.path) {
		if m, ok := v.(map[string]any); ok && n.inner.match(m) {
			return true
		}
	}
	return false
}

func rangeHolds(op string, c int) bool {
	switch op {
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	}
	return false
}

// compare orders a document value against a query literal, numerically
// when both are numbers.
func compare(v any, literal string) (int, bool) {
	if f, ok := toFloat(v); ok {
		if q, err := strconv.ParseFloat(literal, 64); err == nil {
			switch {
			case f < q:
				return -1, true
			case f > q:
				return 1, true
			}
			return 0, true
		}
	}
	s, ok := v.(string)
	if !ok {
		return 0, false
	}
	return strings.Compare(s, literal), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}

// walkLeaves calls f on every scalar in node until f returns false.
func walkLeaves(node any, f func(any) bool) bool {
	switch t := node.(type) {
	case map[string]any:
		for _, v := range t {
			if !walkLeaves(v, f) {
				return false
			}
		}
	case []any:
		for _, v := range t {
			if !walkLeaves(v, f) {
				return false
			}
		}
	default:
		return f(t)
	}
	return true
}

// valueNode is the right-hand side of "field:": a single value or a
// parenthesised and/or group of values.
type valueNode interface {
	matchValues(vs []any) bool
}

type (
	valueAnd []valueNode
	valueOr  []valueNode
	valueNot struct{ inner valueNode }
)

func (g valueAnd) matchValues(vs []any) bool {
	for _, c := range g {
		if !c.matchValues(vs) {
			return false
		}
	}
	return true
}

func (g valueOr) matchValues(vs []any) bool {
	for _, c := range g {
		if c.matchValues(vs) {
			return true
		}
	}
	return false
}

func (g valueNot) matchValues(vs []any) bool { return !g.inner.matchValues(vs) }

// valueMatcher matches one query literal.
type valueMatcher struct {
	text     string
	phrase   bool
	wildcard bool
}

func (m valueMatcher) matchValues(vs []any) bool {
	for _, v := range vs {
		if m.matches(v) {
			return true
		}
	}
	return false
}

// matches compares a document value with the literal. Bare words match the
// whole value or one of its words, case-insensitively; phrases match any
// substring; wildcards match the whole value or one word.
func (m valueMatcher) matches(v any) bool {
	if v == nil {
		return false
	}
	if f, ok := toFloat(v); ok && !m.wildcard {
		if q, err := strconv.ParseFloat(m.text, 64); err == nil {
			return f == q
		}
	}
	s := strings.ToLower(fmt.Sprint(v))
	q := strings.ToLower(m.text)
	switch {
	case m.phrase:
		return strings.Contains(s, q)
	case m.wildcard:
		if globMatch(q, s) {
			return true
		}
		for _, w := range strings.Fields(s) {
			if globMatch(q, w) {
				return true
			}
		}
		return false
	default:
		if s == q {
			return true
		}
		for _, w := range strings.Fields(s) {
			if w == q {
				return true
			}
		}
		return false
	}
}

// globMatch matches s against pattern where '*' matches any run of runes.
func globMatch(pattern, s string) bool {
	parts := strings.Split(pattern, "*")
	if len(parts) == 1 {
		return pattern == s
	}
	if !strings.HasPrefix(s, parts[0]) {
		return false
	}
	s = s[len(parts[0]):]
	for _, p := range parts[1 : len(parts)-1] {
		i := strings.Index(s, p)
		if i < 0 {
			return false
		}
		s = s[i+len(p):]
	}
	return strings.HasSuffix(s, parts[len(parts)-1])
}

// parser is a recursive-descent parser for DQL:
//
//	query   = or
//	or      = and { "or" and }
//	and     = not { ["and"] not }
//	not     = "not" not | primary
//	primary = "(" or ")" | field ":" "{" or "}" | field ":" values
//	        | field range literal | literal
type parser struct {
	toks []token
	pos  int
}

// parseDQL compiles a DQL query. Blank input matches every document.
func parseDQL(input string) (node, error) {
	toks, err := lex(input)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	if p.peek().kind == tokEOF {
		return andNode{}, nil
	}
	n, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if t := p.peek(); t.kind != tokEOF {
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.String()}
	}
	return n, nil
}

func (p *parser) peek() token { return p.toks[p.pos] }

func (p *parser) peekAt(n int) token {
	if p.pos+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.pos+n]
}

func (p *parser) next() token {
	t := p.toks[p.pos]
	if t.kind != tokEOF {
		p.pos++
	}
	return t
}

func (p *parser) expect(kind tokenKind, what string) error {
	if t := p.next(); t.kind != kind {
		return &SyntaxError{Pos: t.pos, Msg: "expected " + what + ", found " + t.String()}
	}
	return nil
}

func (p *parser) parseOr() (node, error) {
	first, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	out := orNode{first}
	for p.peek().kind == tokOr {
		p.next()
		n, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 1 {
		return first, nil
	}
	return out, nil
}

func startsClause(k tokenKind) bool {
	return k == tokWord || k == tokQuoted || k == tokLParen || k == tokNot
}

func (p *parser) parseAnd() (node, error) {
	first, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	out := andNode{first}
	for {
		if p.peek().kind == tokAnd {
			p.next()
		} else if !startsClause(p.peek().kind) {
			break
		}
		n, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if len(out) == 1 {
		return first, nil
	}
	return out, nil
}

func (p *parser) parseNot() (node, error) {
	if p.peek().kind == tokNot {
		p.next()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return notNode{inner}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (node, error) {
	t := p.peek()
	switch t.kind {
	case tokLParen:
		p.next()
		n, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return n, p.expect(tokRParen, `")"`)
	case tokQuoted:
		p.next()
		return termNode{valueMatcher{text: t.text, phrase: true}}, nil
	case tokWord:
		switch p.peekAt(1).kind {
		case tokColon:
			return p.parseFieldClause()
		case tokRange:
			p.next()
			op := p.next()
			lit := p.next()
			if lit.kind != tokWord && lit.kind != tokQuoted {
				return nil, &SyntaxError{Pos: lit.pos, Msg: "expected a value after " + op.text}
			}
			return rangeNode{field: t.text, op: op.text, value: lit.text}, nil
		}
		p.next()
		return termNode{valueMatcher{text: t.text, wildcard: t.wildcard}}, nil
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: "unexpected " + t.String()}
	}
}

func (p *parser) parseFieldClause() (node, error) {
	field := p.next().text
	p.next() // colon
	t := p.peek()
	switch {
	case t.kind == tokLBrace:
		p.next()
		inner, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		return nestedNode{path: field, inner: inner}, p.expect(tokRBrace, `"}"`)
	case t.kind == tokWord && t.text == "*":
		p.next()
		return existsNode{field: field}, nil
	}
	v, err := p.parseValue()
	if err != nil {
		return nil, err
	}
	return fieldNode{field: field, v: v}, nil
}

func (p *parser) parseValue() (valueNode, error) {
	t := p.next()
	switch t.kind {
	case tokWord, tokAnd, tokOr:
		return valueMatcher{text: t.text, wildcard: t.wildcard}, nil
	case tokQuoted:
		return valueMatcher{text: t.text, phrase: true}, nil
	case tokNot:
		inner, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		return valueNot{inner}, nil
	case tokLParen:
		return p.parseValueGroup()
	default:
		return nil, &SyntaxError{Pos: t.pos, Msg: "expected a value, found " + t.String()}
	}
}

// parseValueGroup parses "(a or b and c)" after the opening parenthesis.
func (p *parser) parseValueGroup() (valueNode, error) {
	var (
		ors valueOr
		and valueAnd
	)
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		and = append(and, v)
		switch t := p.next(); t.kind {
		case tokAnd:
		case tokOr:
			ors = append(ors, and)
			and = nil
		case tokRParen:
			return append(ors, and), nil
		default:
			return nil, &SyntaxError{Pos: t.pos, Msg: `expected "and", "or" or ")", found ` + t.String()}
		}
	}
}

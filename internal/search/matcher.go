// Package search runs submitted queries against index patterns.
package search

import (
	"fmt"
	"strings"

	celenv "github.com/oakwood-commons/querybar/internal/cel"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// Matcher decides whether a document satisfies a compiled query.
type Matcher interface {
	Match(doc map[string]any) (bool, error)
}

type nodeMatcher struct{ n node }

func (m nodeMatcher) Match(doc map[string]any) (bool, error) { return m.n.match(doc), nil }

type celMatcher struct{ prg *celenv.Program }

func (m celMatcher) Match(doc map[string]any) (bool, error) { return m.prg.Match(doc) }

type matchAll struct{}

func (matchAll) Match(map[string]any) (bool, error) { return true, nil }

// Compiler turns queries into matchers.
type Compiler struct {
	cel *celenv.Evaluator
}

// NewCompiler returns a compiler with a CEL environment.
func NewCompiler() (*Compiler, error) {
	eval, err := celenv.NewEvaluator()
	if err != nil {
		return nil, err
	}
	return &Compiler{cel: eval}, nil
}

// Compile parses the canonical text of q for its language. Blank text
// matches every document.
func (c *Compiler) Compile(q query.Query) (Matcher, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return matchAll{}, nil
	}
	switch q.Language {
	case query.LanguageKuery:
		n, err := parseDQL(text)
		if err != nil {
			return nil, err
		}
		return nodeMatcher{n}, nil
	case query.LanguageLucene:
		n, err := parseLucene(text)
		if err != nil {
			return nil, err
		}
		return nodeMatcher{n}, nil
	case query.LanguageCEL:
		prg, err := c.cel.Compile(text)
		if err != nil {
			return nil, err
		}
		return celMatcher{prg}, nil
	default:
		return nil, fmt.Errorf("unsupported query language %q", q.Language)
	}
}

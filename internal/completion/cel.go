package completion

import (
	"context"
	"sort"
	"strings"
	"unicode"

	"github.com/google/cel-go/cel"

	celenv "github.com/oakwood-commons/querybar/internal/cel"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

// CELProvider completes CEL expressions: document paths under "_" and the
// functions declared in the environment.
type CELProvider struct {
	env     *cel.Env
	globals []celenv.Function
	members []celenv.Function
}

// NewCELProvider returns a provider over the shared CEL environment.
func NewCELProvider() (*CELProvider, error) {
	env, err := celenv.NewEnv()
	if err != nil {
		return nil, err
	}
	p := &CELProvider{env: env}
	seen := map[string]bool{}
	for _, f := range celenv.Functions(env) {
		key := f.Name
		if f.Member {
			key = "." + key
		}
		// One entry per name; the first overload's usage is shown.
		if seen[key] {
			continue
		}
		seen[key] = true
		if f.Member {
			p.members = append(p.members, f)
		} else {
			p.globals = append(p.globals, f)
		}
	}
	return p, nil
}

func (p *CELProvider) Language() query.Language {
	return query.LanguageCEL
}

func isIdentRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Suggest completes the identifier under the caret. After a dot it offers
// child fields of the document path and member functions; otherwise it
// offers the document root and global functions.
func (p *CELProvider) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := []rune(req.Query)
	caret := req.caret(text)
	start := caret
	for start > 0 && isIdentRune(text[start-1]) {
		start--
	}
	end := caret
	for end < len(text) && isIdentRune(text[end]) {
		end++
	}
	partial := string(text[start:caret])

	var out []Suggestion
	if start > 0 && text[start-1] == '.' {
		base := baseExpression(text[:start-1])
		if segs, ok := selectPath(p.env, base); ok && segs[0] == celenv.RootVariable {
			out = append(out, childFields(req.Patterns, segs[1:], partial, start, end)...)
		}
		out = append(out, functionSuggestions(p.members, partial, start, end)...)
	} else {
		if matchScore(celenv.RootVariable, partial) > 0 {
			out = append(out, Suggestion{
				Kind:        KindField,
				Text:        celenv.RootVariable + ".",
				Start:       start,
				End:         end,
				Description: "the current document",
				score:       3,
			})
		}
		if partial != "" {
			out = append(out, functionSuggestions(p.globals, partial, start, end)...)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rank(out), nil
}

// baseExpression returns the trailing operand of text: the shortest suffix
// that is a balanced navigation chain ending at len(text).
func baseExpression(text []rune) string {
	depth := 0
	i := len(text)
	for i > 0 {
		r := text[i-1]
		switch {
		case r == ']' || r == ')':
			depth++
		case r == '[' || r == '(':
			if depth == 0 {
				return strings.TrimSpace(string(text[i:]))
			}
			depth--
		case depth == 0 && !(isIdentRune(r) || r == '.'):
			return strings.TrimSpace(string(text[i:]))
		}
		i--
	}
	return strings.TrimSpace(string(text))
}

// childFields lists the next path segment of every pattern field below path.
func childFields(patterns []*index.Pattern, path []string, partial string, start, end int) []Suggestion {
	prefix := strings.Join(path, ".")
	if prefix != "" {
		prefix += "."
	}
	seen := map[string]bool{}
	var out []Suggestion
	for _, f := range patternFields(patterns) {
		if !strings.HasPrefix(f.Name, prefix) {
			continue
		}
		rest := strings.TrimPrefix(f.Name, prefix)
		child, _, more := strings.Cut(rest, ".")
		if seen[child] {
			continue
		}
		score := matchScore(child, partial)
		if score == 0 {
			continue
		}
		seen[child] = true
		s := Suggestion{Kind: KindField, Text: child, Start: start, End: end, score: score + 1}
		if more {
			s.Description = "object"
		} else {
			f := f
			s.Description = f.Type + " field"
			s.Field = &f
		}
		out = append(out, s)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Text < out[j].Text })
	return out
}

func functionSuggestions(funcs []celenv.Function, partial string, start, end int) []Suggestion {
	var out []Suggestion
	for _, f := range funcs {
		score := matchScore(f.Name, partial)
		if score == 0 {
			continue
		}
		out = append(out, Suggestion{
			Kind:  KindFunction,
			Text:  f.Name + "()",
			Start: start,
			End:   end,
			// Land between the parentheses.
			CursorOffset: Offset(len([]rune(f.Name)) + 1),
			Description:  f.Usage,
			score:        score,
		})
	}
	return out
}

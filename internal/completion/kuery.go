package completion

import (
	"context"
	"strings"
	"time"
	"unicode"

	"github.com/jellydator/ttlcache/v3"

	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

const (
	// DefaultValueTTL is how long field values are cached per pattern.
	DefaultValueTTL = 30 * time.Second
	// DefaultValueLimit caps value suggestions per request.
	DefaultValueLimit = 10
)

var rangeOperators = []string{"<", "<=", ">", ">="}

// KueryProvider completes DQL: field names, operators, field values and
// conjunctions, all drawn from the requested index patterns.
type KueryProvider struct {
	values     *ttlcache.Cache[string, []string]
	valueLimit int
}

// KueryOption configures a KueryProvider.
type KueryOption func(*kueryConfig)

type kueryConfig struct {
	ttl        time.Duration
	valueLimit int
}

// WithValueTTL sets how long field values stay cached.
func WithValueTTL(d time.Duration) KueryOption {
	return func(c *kueryConfig) { c.ttl = d }
}

// WithValueLimit caps the number of value suggestions.
func WithValueLimit(n int) KueryOption {
	return func(c *kueryConfig) { c.valueLimit = n }
}

// NewKueryProvider returns a provider with a running value cache. Call
// Close to stop it.
func NewKueryProvider(opts ...KueryOption) *KueryProvider {
	cfg := kueryConfig{ttl: DefaultValueTTL, valueLimit: DefaultValueLimit}
	for _, opt := range opts {
		opt(&cfg)
	}
	c := ttlcache.New[string, []string](
		ttlcache.WithTTL[string, []string](cfg.ttl),
		ttlcache.WithDisableTouchOnHit[string, []string](),
	)
	go c.Start()
	return &KueryProvider{values: c, valueLimit: cfg.valueLimit}
}

// Close stops the cache expiration loop.
func (p *KueryProvider) Close() {
	p.values.Stop()
}

func (p *KueryProvider) Language() query.Language {
	return query.LanguageKuery
}

// Suggest completes the token under the caret.
func (p *KueryProvider) Suggest(ctx context.Context, req Request) ([]Suggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	text := []rune(req.Query)
	tok := scanKuery(text, req.caret(text))

	var out []Suggestion
	switch {
	case tok.field != "":
		out = p.valueSuggestions(req.Patterns, tok)
	case tok.afterClause:
		out = conjunctionSuggestions(tok)
	default:
		out = append(fieldSuggestions(req.Patterns, tok), operatorSuggestions(req.Patterns, tok)...)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return rank(out), nil
}

// kueryToken describes the word under the caret.
type kueryToken struct {
	start, end int
	prefix     string
	// field is set when the caret is in a value position.
	field      string
	valueStart int
	// afterClause is set when the previous word completes a clause.
	afterClause bool
}

func isKueryBreak(r rune) bool {
	return unicode.IsSpace(r) || r == '(' || r == ')'
}

func scanKuery(text []rune, caret int) kueryToken {
	start := caret
	for start > 0 && !isKueryBreak(text[start-1]) {
		start--
	}
	end := caret
	for end < len(text) && !isKueryBreak(text[end]) {
		end++
	}
	tok := kueryToken{start: start, end: end, prefix: string(text[start:caret])}

	if field, op, ok := splitClause(tok.prefix); ok {
		tok.field = field
		tok.valueStart = start + len([]rune(field)) + len(op)
		return tok
	}

	prev, prevStart := previousWord(text, start)
	switch {
	case prev == "":
	case isOperator(prev):
		// "field : value" with spaces around the operator.
		if field, _ := previousWord(text, prevStart); field != "" && !isConjunction(field) {
			tok.field = field
			tok.valueStart = start
		}
	case strings.HasSuffix(prev, ":") || hasRangeSuffix(prev):
		tok.field = strings.TrimRight(prev, ":<>=")
		tok.valueStart = start
	case isConjunction(prev):
	default:
		tok.afterClause = true
	}
	return tok
}

// previousWord returns the word that ends before pos, skipping spaces, and
// the offset where it starts. An opening parenthesis counts as a word.
func previousWord(text []rune, pos int) (string, int) {
	end := pos
	for end > 0 && unicode.IsSpace(text[end-1]) {
		end--
	}
	if end == 0 {
		return "", 0
	}
	if text[end-1] == '(' {
		return "(", end - 1
	}
	if text[end-1] == ')' {
		return ")", end - 1
	}
	start := end
	for start > 0 && !isKueryBreak(text[start-1]) {
		start--
	}
	return string(text[start:end]), start
}

// splitClause splits "field:val" or "field>=val" at its operator.
func splitClause(word string) (field, op string, ok bool) {
	i := strings.IndexAny(word, ":<>")
	if i <= 0 {
		return "", "", false
	}
	op = word[i : i+1]
	if op != ":" && i+1 < len(word) && word[i+1] == '=' {
		op += "="
	}
	return word[:i], op, true
}

func isOperator(w string) bool {
	return w == ":" || w == "<" || w == "<=" || w == ">" || w == ">="
}

func hasRangeSuffix(w string) bool {
	for _, op := range rangeOperators {
		if len(w) > len(op) && strings.HasSuffix(w, op) {
			return true
		}
	}
	return false
}

func isConjunction(w string) bool {
	switch strings.ToLower(w) {
	case "and", "or", "not", "(":
		return true
	}
	return false
}

func matchScore(candidate, prefix string) int {
	c, p := strings.ToLower(candidate), strings.ToLower(prefix)
	switch {
	case p == "":
		return 1
	case strings.HasPrefix(c, p):
		return 2
	case strings.Contains(c, p):
		return 1
	default:
		return 0
	}
}

func patternFields(patterns []*index.Pattern) []index.Field {
	seen := map[string]bool{}
	var out []index.Field
	for _, p := range patterns {
		for _, f := range p.Fields {
			if seen[f.Name] {
				continue
			}
			seen[f.Name] = true
			out = append(out, f)
		}
	}
	return out
}

func fieldSuggestions(patterns []*index.Pattern, tok kueryToken) []Suggestion {
	var out []Suggestion
	for _, f := range patternFields(patterns) {
		score := matchScore(f.Name, tok.prefix)
		if score == 0 {
			continue
		}
		f := f
		desc := f.Type + " field"
		if f.Nested {
			desc = "nested " + desc
		}
		out = append(out, Suggestion{
			Kind:        KindField,
			Text:        f.Name + ":",
			Start:       tok.start,
			End:         tok.end,
			Description: desc,
			Field:       &f,
			score:       score,
		})
	}
	return out
}

// operatorSuggestions offers operators once the word is a complete field name.
func operatorSuggestions(patterns []*index.Pattern, tok kueryToken) []Suggestion {
	var out []Suggestion
	for _, p := range patterns {
		f, ok := p.Field(tok.prefix)
		if !ok {
			continue
		}
		ops := []string{":"}
		if f.Type == index.TypeNumber {
			ops = append(ops, rangeOperators...)
		}
		for _, op := range ops {
			out = append(out, Suggestion{
				Kind:        KindOperator,
				Text:        f.Name + op,
				Start:       tok.start,
				End:         tok.end,
				Description: operatorHelp[op],
				score:       3,
			})
		}
		break
	}
	return out
}

var operatorHelp = map[string]string{
	":":  "equals some value",
	"<":  "is less than some value",
	"<=": "is less than or equal to some value",
	">":  "is greater than some value",
	">=": "is greater than or equal to some value",
}

func conjunctionSuggestions(tok kueryToken) []Suggestion {
	var out []Suggestion
	for _, c := range []struct{ text, desc string }{
		{"and ", "requires both arguments to be true"},
		{"or ", "requires one or more arguments to be true"},
	} {
		if tok.prefix != "" && !strings.HasPrefix(c.text, strings.ToLower(tok.prefix)) {
			continue
		}
		out = append(out, Suggestion{
			Kind:        KindConjunction,
			Text:        c.text,
			Start:       tok.start,
			End:         tok.end,
			Description: c.desc,
			score:       1,
		})
	}
	return out
}

func (p *KueryProvider) valueSuggestions(patterns []*index.Pattern, tok kueryToken) []Suggestion {
	prefix := strings.TrimPrefix(string([]rune(tok.prefix)[tok.valueStart-tok.start:]), `"`)

	var out []Suggestion
	for _, pat := range patterns {
		f, ok := pat.Field(tok.field)
		if !ok || !f.Aggregatable {
			continue
		}
		for _, v := range p.fieldValues(pat, f.Name) {
			score := matchScore(v, prefix)
			if score == 0 {
				continue
			}
			out = append(out, Suggestion{
				Kind:        KindValue,
				Text:        quoteValue(v) + " ",
				Start:       tok.valueStart,
				End:         tok.end,
				Description: "value of " + f.Name,
				score:       score,
			})
		}
	}
	out = rank(out)
	if p.valueLimit > 0 && len(out) > p.valueLimit {
		out = out[:p.valueLimit]
	}
	return out
}

func (p *KueryProvider) fieldValues(pat *index.Pattern, field string) []string {
	key := pat.Title + "\x00" + field
	if item := p.values.Get(key); item != nil {
		return item.Value()
	}
	values := pat.TopValues(field, 0)
	p.values.Set(key, values, ttlcache.DefaultTTL)
	return values
}

// quoteValue wraps values that would not survive as a bare DQL term.
func quoteValue(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\\():<>\"*{}") {
		return v
	}
	return `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(v) + `"`
}

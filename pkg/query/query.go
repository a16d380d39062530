// Package query defines the structured query bound to the query bar and the
// transform pair relating its canonical and user-facing encodings.
package query

import (
	"fmt"
	"strings"
)

// Language identifies the syntax a query is written in.
type Language string

const (
	// LanguageKuery is the field:value query language with autocomplete support.
	LanguageKuery Language = "kuery"
	// LanguageLucene is free-text search; it has no autocomplete provider.
	LanguageLucene Language = "lucene"
	// LanguageCEL evaluates a CEL predicate against each document bound to "_".
	LanguageCEL Language = "cel"
)

var knownLanguages = []Language{LanguageKuery, LanguageLucene, LanguageCEL}

// Languages returns the predeclared languages in display order.
func Languages() []Language {
	return append([]Language(nil), knownLanguages...)
}

// ParseLanguage accepts a language name case-insensitively. "dql" and "kql"
// are aliases for kuery.
func ParseLanguage(s string) (Language, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "kuery", "dql", "kql":
		return LanguageKuery, nil
	case "lucene":
		return LanguageLucene, nil
	case "cel":
		return LanguageCEL, nil
	}
	return "", fmt.Errorf("unknown query language %q (expected kuery, lucene, or cel)", s)
}

func (l Language) String() string {
	return string(l)
}

// Query is the structured query handed to suggestion and execution
// collaborators. Text is always in canonical form.
type Query struct {
	Text     string   `json:"query" yaml:"query"`
	Language Language `json:"language" yaml:"language"`
}

// IsEmpty reports whether the query matches everything.
func (q Query) IsEmpty() bool {
	return strings.TrimSpace(q.Text) == ""
}

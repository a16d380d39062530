package index

import (
	"fmt"
	"sort"
)

// Pattern is a named set of documents and the fields inferred from them.
type Pattern struct {
	Title     string
	Fields    []Field
	Documents []map[string]any
}

// NewPattern builds a pattern over docs.
func NewPattern(title string, docs []map[string]any) *Pattern {
	return &Pattern{Title: title, Fields: InferFields(docs), Documents: docs}
}

// Field returns the named field.
func (p *Pattern) Field(name string) (Field, bool) {
	i := sort.Search(len(p.Fields), func(i int) bool { return p.Fields[i].Name >= name })
	if i < len(p.Fields) && p.Fields[i].Name == name {
		return p.Fields[i], true
	}
	return Field{}, false
}

// TopValues returns up to limit distinct values of field, most frequent
// first, ties broken by value.
func (p *Pattern) TopValues(field string, limit int) []string {
	counts := map[string]int{}
	for _, doc := range p.Documents {
		for _, v := range Lookup(doc, field) {
			switch v.(type) {
			case nil, map[string]any, []any:
				continue
			}
			counts[fmt.Sprint(v)]++
		}
	}
	values := make([]string, 0, len(counts))
	for v := range counts {
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool {
		if counts[values[i]] != counts[values[j]] {
			return counts[values[i]] > counts[values[j]]
		}
		return values[i] < values[j]
	})
	if limit > 0 && len(values) > limit {
		values = values[:limit]
	}
	return values
}

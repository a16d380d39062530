package query

import (
	"bytes"
	"encoding/json"
	"strings"
)

// ToUser renders canonical query text in the form shown in the input.
//
// Canonical text is either a plain query string or a JSON query DSL object.
// match_all renders as the empty string, query_string renders its inner
// query, and any other object renders as compact JSON.
func ToUser(canonical string) string {
	obj, ok := parseObject(canonical)
	if !ok {
		return canonical
	}
	if _, ok := obj["match_all"]; ok && len(obj) == 1 {
		return ""
	}
	if qs, ok := obj["query_string"].(map[string]any); ok && len(obj) == 1 {
		if inner, ok := qs["query"].(string); ok {
			return ToUser(inner)
		}
	}
	return compact(canonical)
}

// FromUser converts text typed by the user into canonical form. Blank input
// means match-all (""); input that starts with "{" and parses as a JSON
// object is re-encoded compactly; everything else is kept verbatim.
func FromUser(user string) string {
	trimmed := strings.TrimSpace(user)
	if trimmed == "" {
		return ""
	}
	if strings.HasPrefix(trimmed, "{") {
		if _, ok := parseObject(trimmed); ok {
			return compact(trimmed)
		}
	}
	return user
}

// Normalize re-derives the canonical form of text through the transform pair
// and reports whether it differed. A caller passing a query whose canonical
// encoding does not match its displayed encoding gets the corrected text.
func Normalize(canonical string) (string, bool) {
	parsed := FromUser(ToUser(canonical))
	return parsed, parsed != canonical
}

func parseObject(s string) (map[string]any, bool) {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "{") {
		return nil, false
	}
	dec := json.NewDecoder(strings.NewReader(trimmed))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, false
	}
	if dec.More() {
		return nil, false
	}
	return obj, true
}

func compact(s string) string {
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(strings.TrimSpace(s))); err != nil {
		return s
	}
	return buf.String()
}

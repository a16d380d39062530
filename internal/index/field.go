// Package index describes searchable data sets (index patterns) and
// resolves index targets to them.
package index

import (
	"sort"
	"strings"
)

// Field types reported by inference.
const (
	TypeString  = "string"
	TypeNumber  = "number"
	TypeBoolean = "boolean"
	TypeObject  = "object"
	TypeUnknown = "unknown"
)

// Field is one searchable path of an index pattern.
type Field struct {
	Name         string `json:"name" yaml:"name"`
	Type         string `json:"type" yaml:"type"`
	Aggregatable bool   `json:"aggregatable" yaml:"aggregatable"`
	// Nested is set for fields that live inside an array of objects and
	// need nested query syntax.
	Nested bool `json:"nested,omitempty" yaml:"nested,omitempty"`
	// NestedPath is the array path that makes the field nested.
	NestedPath string `json:"nestedPath,omitempty" yaml:"nestedPath,omitempty"`
}

// InferFields walks docs and returns every leaf path sorted by name.
// Paths inside arrays of objects are reported as nested fields.
func InferFields(docs []map[string]any) []Field {
	seen := map[string]*Field{}
	for _, doc := range docs {
		walkFields(doc, "", "", seen)
	}
	out := make([]Field, 0, len(seen))
	for _, f := range seen {
		out = append(out, *f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func walkFields(node map[string]any, prefix, nestedPath string, seen map[string]*Field) {
	for k, v := range node {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch t := v.(type) {
		case map[string]any:
			walkFields(t, name, nestedPath, seen)
		case []any:
			for _, item := range t {
				if m, ok := item.(map[string]any); ok {
					walkFields(m, name, name, seen)
					continue
				}
				record(name, valueType(item), nestedPath, seen)
			}
			if len(t) == 0 {
				record(name, TypeUnknown, nestedPath, seen)
			}
		default:
			record(name, valueType(v), nestedPath, seen)
		}
	}
}

func record(name, typ, nestedPath string, seen map[string]*Field) {
	f, ok := seen[name]
	if !ok {
		f = &Field{Name: name, Type: typ, Nested: nestedPath != "", NestedPath: nestedPath}
		seen[name] = f
	} else if f.Type == TypeUnknown {
		f.Type = typ
	} else if typ != TypeUnknown && f.Type != typ {
		// Mixed types are searched as text.
		f.Type = TypeString
	}
	f.Aggregatable = f.Type == TypeString || f.Type == TypeNumber || f.Type == TypeBoolean
}

func valueType(v any) string {
	switch v.(type) {
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return TypeNumber
	case nil:
		return TypeUnknown
	default:
		return TypeObject
	}
}

// Lookup returns every value reachable at the dotted path. Arrays along the
// path fan out, so a nested field may yield several values.
func Lookup(doc map[string]any, path string) []any {
	return lookup(doc, strings.Split(path, "."))
}

func lookup(node any, parts []string) []any {
	if len(parts) == 0 {
		if list, ok := node.([]any); ok {
			return list
		}
		return []any{node}
	}
	switch t := node.(type) {
	case map[string]any:
		// Keys may themselves contain dots.
		for i := len(parts); i > 0; i-- {
			key := strings.Join(parts[:i], ".")
			if v, ok := t[key]; ok {
				return lookup(v, parts[i:])
			}
		}
		return nil
	case []any:
		var out []any
		for _, item := range t {
			out = append(out, lookup(item, parts)...)
		}
		return out
	default:
		return nil
	}
}

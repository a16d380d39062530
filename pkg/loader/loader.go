// Package loader parses data files into searchable documents.
//
// Supported inputs are a JSON object or array, newline-delimited JSON,
// single or multi-document YAML, and TOML. The format is detected from the
// content, never from the file name.
package loader

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies a detected input encoding.
type Format string

const (
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
)

// MessageField holds scalar documents, such as plain text lines, so that
// every document is an object.
const MessageField = "message"

// ErrEmpty is returned for blank input.
var ErrEmpty = errors.New("empty input")

var (
	tomlTable    = regexp.MustCompile(`^\s*\[{1,2}\s*(?:[A-Za-z_][\w-]*|"[^"]+"|'[^']+')(?:\.(?:[A-Za-z_][\w-]*|"[^"]+"|'[^']+'))*\s*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[A-Za-z_][\w-]*|"[^"]+"|'[^']+')(?:\.(?:[A-Za-z_][\w-]*|"[^"]+"|'[^']+'))*\s*=\s*\S`)
)

// Detect guesses the format of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.HasPrefix(input, "---") || strings.Contains(input, "\n---") {
		return FormatYAML
	}
	lines := nonEmptyLines(input)
	if len(lines) > 1 {
		jsonish := 0
		for _, l := range lines {
			if strings.HasPrefix(l, "{") || strings.HasPrefix(l, "[") {
				jsonish++
			}
		}
		// A pretty-printed JSON document spans lines too; it only counts as
		// NDJSON when most lines open a value.
		if jsonish > len(lines)/2 {
			return FormatNDJSON
		}
	}
	if looksLikeTOML(lines) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	return FormatYAML
}

func nonEmptyLines(input string) []string {
	var out []string
	for _, l := range strings.Split(input, "\n") {
		l = strings.TrimSpace(l)
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		out = append(out, l)
	}
	return out
}

func looksLikeTOML(lines []string) bool {
	kv := 0
	for _, l := range lines {
		if tomlTable.MatchString(l) {
			return true
		}
		if tomlKeyValue.MatchString(l) {
			kv++
		}
	}
	return len(lines) > 0 && kv > len(lines)/2
}

// Parse decodes input into its top-level values. Multi-value formats
// (NDJSON, multi-document YAML) yield one value per record.
func Parse(input string) ([]any, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, ErrEmpty
	}
	switch Detect(input) {
	case FormatNDJSON:
		return parseNDJSON(input)
	case FormatTOML:
		var v map[string]any
		if err := toml.Unmarshal([]byte(input), &v); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return []any{v}, nil
	case FormatJSON:
		var v any
		dec := json.NewDecoder(strings.NewReader(input))
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return []any{v}, nil
	default:
		return parseYAML(input)
	}
}

func parseNDJSON(input string) ([]any, error) {
	var out []any
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			// Plain log lines are kept as text.
			out = append(out, line)
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func parseYAML(input string) ([]any, error) {
	var out []any
	dec := yaml.NewDecoder(strings.NewReader(input))
	for {
		var v any
		err := dec.Decode(&v)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if v != nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("no documents found in YAML input")
	}
	return out, nil
}

// Documents parses input into a flat list of objects. A top-level array is
// expanded into its elements and scalars are wrapped under MessageField.
func Documents(input string) ([]map[string]any, error) {
	values, err := Parse(input)
	if err != nil {
		return nil, err
	}
	var docs []map[string]any
	for _, v := range values {
		if list, ok := v.([]any); ok {
			for _, item := range list {
				docs = append(docs, asDocument(item))
			}
			continue
		}
		docs = append(docs, asDocument(v))
	}
	return docs, nil
}

// ReadDocuments reads r fully and parses it with Documents.
func ReadDocuments(r io.Reader) ([]map[string]any, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(r); err != nil {
		return nil, err
	}
	return Documents(buf.String())
}

// ReadFile loads the documents stored in path.
func ReadFile(path string) ([]map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	docs, err := Documents(string(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return docs, nil
}

func asDocument(v any) map[string]any {
	switch t := v.(type) {
	case map[string]any:
		return t
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[fmt.Sprint(k)] = val
		}
		return out
	default:
		return map[string]any{MessageField: v}
	}
}

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/querybar/internal/formatter"
	"github.com/oakwood-commons/querybar/internal/search"
)

const (
	outputYAML  = "yaml"
	outputJSON  = "json"
	outputCount = "count"
	outputTable = "table"
)

// validateOutput checks format against the formats a command supports.
func validateOutput(format string, allowed ...string) error {
	for _, a := range allowed {
		if strings.EqualFold(format, a) {
			return nil
		}
	}
	return fmt.Errorf("unknown output format %q (expected %s)", format, strings.Join(allowed, ", "))
}

// resultDoc is the printed form of a search result.
type resultDoc struct {
	Query    string           `json:"query" yaml:"query"`
	Language string           `json:"language" yaml:"language"`
	Index    string           `json:"index" yaml:"index"`
	Total    int              `json:"total" yaml:"total"`
	Took     string           `json:"took" yaml:"took"`
	Hits     []map[string]any `json:"hits" yaml:"hits"`
}

func writeResult(w io.Writer, res search.Result, format string, table formatter.TableOptions) error {
	switch strings.ToLower(format) {
	case outputCount:
		_, err := fmt.Fprintln(w, res.Total)
		return err
	case outputTable:
		_, err := io.WriteString(w, formatter.RenderHits(res.Hits, table))
		return err
	}
	hits := res.Hits
	if hits == nil {
		hits = []map[string]any{}
	}
	return writeValue(w, resultDoc{
		Query:    res.Query.Text,
		Language: string(res.Query.Language),
		Index:    res.Index,
		Total:    res.Total,
		Took:     res.Took.String(),
		Hits:     hits,
	}, format)
}

// writeValue prints v as YAML, or as indented JSON when format is json.
func writeValue(w io.Writer, v any, format string) error {
	if strings.EqualFold(format, outputJSON) {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

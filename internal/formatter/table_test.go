package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hits() []map[string]any {
	return []map[string]any{
		{"agent": "firefox", "status": float64(200), "geo": map[string]any{"country": "US"}},
		{"agent": "chrome", "status": 404, "tags": []any{"a", "b"}},
	}
}

func TestColumns(t *testing.T) {
	assert.Equal(t, []string{"agent", "geo", "status", "tags"}, Columns(hits(), nil))
	assert.Equal(t, []string{"status", "agent", "geo", "tags"}, Columns(hits(), []string{"status", "status"}))
}

func TestStringify(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"a\nb", `a\nb`},
		{true, "true"},
		{float64(200), "200"},
		{1.5, "1.5"},
		{42, "42"},
		{map[string]any{"country": "US"}, `{"country":"US"}`},
		{[]any{"a", 1}, `["a",1]`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in))
	}
}

func TestRenderHits(t *testing.T) {
	out := RenderHits(hits(), TableOptions{NoColor: true, RowNumbers: true, Offset: 10})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "#   agent    geo               status  tags", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "───"))
	assert.Equal(t, `11  firefox  {"country":"US"}  200`, lines[2])
	assert.Equal(t, `12  chrome                     404     ["a","b"]`, lines[3])
}

func TestRenderHitsFitsWidth(t *testing.T) {
	long := []map[string]any{{"message": strings.Repeat("x", 100), "id": 1}}
	out := RenderHits(long, TableOptions{NoColor: true, Width: 30})
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		assert.LessOrEqual(t, len([]rune(line)), 30, line)
	}
	assert.Contains(t, out, "…")
}

func TestRenderHitsEmpty(t *testing.T) {
	assert.Equal(t, "", RenderHits(nil, TableOptions{}))
}

package completion

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

func logsPattern() *index.Pattern {
	return index.NewPattern("logs", []map[string]any{
		{"agent": "firefox", "status": 200, "city": "New York", "user": []any{map[string]any{"name": "ann"}}},
		{"agent": "firefox", "status": 404, "city": "Paris"},
		{"agent": "chrome", "status": 200},
	})
}

func texts(items []Suggestion) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		out = append(out, s.Text)
	}
	return out
}

type stubProvider struct {
	lang  query.Language
	calls int
	out   []Suggestion
}

func (s *stubProvider) Language() query.Language { return s.lang }

func (s *stubProvider) Suggest(ctx context.Context, _ Request) ([]Suggestion, error) {
	s.calls++
	return s.out, ctx.Err()
}

func TestRegistry(t *testing.T) {
	kuery := &stubProvider{lang: query.LanguageKuery, out: []Suggestion{{Kind: KindField, Text: "a:"}}}
	r := NewRegistry(kuery, &stubProvider{lang: query.LanguageCEL})

	assert.True(t, r.HasQuerySuggestions(query.LanguageKuery))
	assert.False(t, r.HasQuerySuggestions(query.LanguageLucene))
	assert.Equal(t, []query.Language{query.LanguageCEL, query.LanguageKuery}, r.Languages())

	got, err := r.GetQuerySuggestions(context.Background(), Request{Language: query.LanguageKuery})
	require.NoError(t, err)
	assert.Equal(t, []string{"a:"}, texts(got))

	got, err = r.GetQuerySuggestions(context.Background(), Request{Language: query.LanguageLucene})
	require.NoError(t, err)
	assert.Nil(t, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.GetQuerySuggestions(ctx, Request{Language: query.LanguageKuery})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, kuery.calls, "cancelled requests never reach the provider")
}

func TestKueryProvider(t *testing.T) {
	p := NewKueryProvider()
	defer p.Close()
	patterns := []*index.Pattern{logsPattern()}

	suggest := func(t *testing.T, text string, caret int) []Suggestion {
		t.Helper()
		got, err := p.Suggest(context.Background(), Request{
			Language: query.LanguageKuery, Patterns: patterns,
			Query: text, SelectionStart: caret, SelectionEnd: caret,
		})
		require.NoError(t, err)
		return got
	}

	t.Run("fields on empty input", func(t *testing.T) {
		got := suggest(t, "", 0)
		assert.Equal(t, []string{"agent:", "city:", "status:", "user.name:"}, texts(got))
		assert.Equal(t, KindField, got[0].Kind)
		require.NotNil(t, got[3].Field)
		assert.True(t, got[3].Field.Nested)
		assert.Equal(t, "nested string field", got[3].Description)
	})

	t.Run("field prefix", func(t *testing.T) {
		got := suggest(t, "ag", 2)
		require.Len(t, got, 1)
		assert.Equal(t, Suggestion{Kind: KindField, Text: "agent:", Start: 0, End: 2, Description: "string field", Field: got[0].Field, score: 2}, got[0])
	})

	t.Run("values after colon by frequency", func(t *testing.T) {
		got := suggest(t, "agent:", 6)
		assert.Equal(t, []string{"firefox ", "chrome "}, texts(got))
		assert.Equal(t, 6, got[0].Start)
		assert.Equal(t, 6, got[0].End)
		assert.Equal(t, KindValue, got[0].Kind)
	})

	t.Run("value prefix replaces partial value", func(t *testing.T) {
		got := suggest(t, "agent:fi", 8)
		require.Len(t, got, 1)
		assert.Equal(t, "firefox ", got[0].Text)
		assert.Equal(t, 6, got[0].Start)
		assert.Equal(t, 8, got[0].End)
	})

	t.Run("values with spaces are quoted", func(t *testing.T) {
		got := suggest(t, "city:new", 8)
		assert.Equal(t, []string{`"New York" `}, texts(got))
	})

	t.Run("spaced operator", func(t *testing.T) {
		got := suggest(t, "status >= ", 10)
		assert.Equal(t, []string{"200 ", "404 "}, texts(got))
		assert.Equal(t, 10, got[0].Start)
	})

	t.Run("operators after a complete field", func(t *testing.T) {
		got := suggest(t, "status", 6)
		assert.Equal(t, []string{"status:", "status<", "status<=", "status>", "status>="}, texts(got))
		assert.Equal(t, KindOperator, got[0].Kind)
	})

	t.Run("conjunctions after a clause", func(t *testing.T) {
		assert.Equal(t, []string{"and ", "or "}, texts(suggest(t, "status:200 ", 11)))
		got := suggest(t, "status:200 a", 12)
		require.Len(t, got, 1)
		assert.Equal(t, "and ", got[0].Text)
		assert.Equal(t, 11, got[0].Start)
		assert.Equal(t, 12, got[0].End)
	})

	t.Run("fields after a conjunction", func(t *testing.T) {
		got := suggest(t, "status:200 and ag", 17)
		assert.Equal(t, []string{"agent:"}, texts(got))
		assert.Equal(t, 15, got[0].Start)
	})

	t.Run("caret inside text", func(t *testing.T) {
		got := suggest(t, "ag and status:200", 2)
		require.Len(t, got, 1)
		assert.Equal(t, 0, got[0].Start)
		assert.Equal(t, 2, got[0].End)
	})

	t.Run("no patterns", func(t *testing.T) {
		got, err := p.Suggest(context.Background(), Request{Query: "a", SelectionEnd: 1})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := p.Suggest(ctx, Request{Patterns: patterns})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestKueryProviderCachesValues(t *testing.T) {
	p := NewKueryProvider(WithValueTTL(time.Hour), WithValueLimit(1))
	defer p.Close()
	pat := logsPattern()
	req := Request{Patterns: []*index.Pattern{pat}, Query: "agent:", SelectionEnd: 6}

	got, err := p.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox "}, texts(got))

	pat.Documents = append(pat.Documents,
		map[string]any{"agent": "curl"}, map[string]any{"agent": "curl"}, map[string]any{"agent": "curl"})
	got, err = p.Suggest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, []string{"firefox "}, texts(got), "cached values are reused until they expire")
}

func TestCELProvider(t *testing.T) {
	p, err := NewCELProvider()
	require.NoError(t, err)
	patterns := []*index.Pattern{index.NewPattern("logs", []map[string]any{
		{"agent": "firefox", "geo": map[string]any{"country": "US", "city": "NYC"}},
	})}

	suggest := func(t *testing.T, text string) []Suggestion {
		t.Helper()
		n := len([]rune(text))
		got, err := p.Suggest(context.Background(), Request{
			Language: query.LanguageCEL, Patterns: patterns,
			Query: text, SelectionStart: n, SelectionEnd: n,
		})
		require.NoError(t, err)
		return got
	}

	t.Run("root", func(t *testing.T) {
		got := suggest(t, "")
		assert.Equal(t, []string{"_."}, texts(got))
	})

	t.Run("top level fields", func(t *testing.T) {
		got := suggest(t, "_.ag")
		require.NotEmpty(t, got)
		assert.Equal(t, "agent", got[0].Text)
		assert.Equal(t, 2, got[0].Start)
		assert.Equal(t, 4, got[0].End)
		require.NotNil(t, got[0].Field)
	})

	t.Run("nested fields", func(t *testing.T) {
		got := suggest(t, `_.geo.c`)
		assert.Equal(t, []string{"city", "country"}, texts(got)[:2])
	})

	t.Run("member functions land inside parentheses", func(t *testing.T) {
		got := suggest(t, `_.agent.startsW`)
		require.NotEmpty(t, got)
		assert.Equal(t, "startsWith()", got[0].Text)
		assert.Equal(t, KindFunction, got[0].Kind)
		require.NotNil(t, got[0].CursorOffset)
		assert.Equal(t, len("startsWith("), *got[0].CursorOffset)
	})

	t.Run("global functions", func(t *testing.T) {
		assert.Contains(t, texts(suggest(t, "_.agent == si")), "size()")
	})

	t.Run("inside a call", func(t *testing.T) {
		got := suggest(t, `size(_.ge`)
		assert.Equal(t, "geo", got[0].Text)
	})
}

func TestThrottle(t *testing.T) {
	inner := &stubProvider{lang: query.LanguageKuery}
	p := Throttle(inner, time.Hour, 1)
	assert.Equal(t, query.LanguageKuery, p.Language())

	_, err := p.Suggest(context.Background(), Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err = p.Suggest(ctx, Request{})
	require.Error(t, err)

	cancelled, stop := context.WithCancel(context.Background())
	stop()
	_, err = p.Suggest(cancelled, Request{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, inner.calls)
}

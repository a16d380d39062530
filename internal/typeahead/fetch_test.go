package typeahead

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/querybar/internal/completion"
	"github.com/oakwood-commons/querybar/internal/history"
	"github.com/oakwood-commons/querybar/internal/index"
	"github.com/oakwood-commons/querybar/pkg/query"
)

func seededLog(t *testing.T, entries ...string) *history.Log {
	t.Helper()
	log := history.NewLog(history.NewMemoryStore(), history.Key("test", "kuery"), 0)
	for _, e := range entries {
		require.NoError(t, log.Add(context.Background(), e))
	}
	return log
}

func logsPattern() *index.Pattern {
	return index.NewPattern("logs", []map[string]any{{"status": 200.0, "agent": "firefox"}})
}

func TestFetchRecentOnly(t *testing.T) {
	log := seededLog(t, "status:200", "agent:firefox", "status:404")
	f := NewFetcher(nil, nil)

	got, err := f.Fetch(context.Background(), log, FetchRequest{Language: query.LanguageKuery, Text: "status"})
	require.NoError(t, err)
	assert.Equal(t, []string{"status:404", "status:200"}, texts(got))
	for _, s := range got {
		assert.Equal(t, completion.KindRecentSearch, s.Kind)
		assert.Equal(t, 0, s.Start)
		assert.Equal(t, 6, s.End)
	}
}

func TestFetchRemoteBeforeRecent(t *testing.T) {
	log := seededLog(t, "agent:chrome")
	fc := newFakeCompleter()
	f := NewFetcher(fc, nil)
	other := index.NewPattern("other", nil)

	got, err := f.Fetch(context.Background(), log, FetchRequest{
		Language:  query.LanguageKuery,
		Targets:   []index.Target{index.Resolved(logsPattern()), index.Resolved(other)},
		Text:      "agent",
		Selection: Selection{Start: 2, End: 5},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"agent!", "agent:chrome"}, texts(got))

	req := fc.request(0)
	require.Len(t, req.Patterns, 1)
	assert.Equal(t, "logs", req.Patterns[0].Title)
	assert.Equal(t, 2, req.SelectionStart)
	assert.Equal(t, 5, req.SelectionEnd)
}

func TestFetchSkipsRemote(t *testing.T) {
	fc := newFakeCompleter()
	f := NewFetcher(fc, index.NewCatalog())

	got, err := f.Fetch(context.Background(), nil, FetchRequest{Language: query.LanguageKuery, Text: "a"})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.Fetch(context.Background(), nil, FetchRequest{
		Language: query.LanguageLucene,
		Targets:  []index.Target{index.Resolved(logsPattern())},
		Text:     "a",
	})
	require.NoError(t, err)
	assert.Empty(t, got)

	got, err = f.Fetch(context.Background(), nil, FetchRequest{
		Language: query.LanguageKuery,
		Targets:  []index.Target{index.Named("missing")},
		Text:     "a",
	})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, fc.calls())
}

func TestFetchResolvesNamedTargets(t *testing.T) {
	catalog := index.NewCatalog()
	catalog.Add(logsPattern())
	fc := newFakeCompleter()
	f := NewFetcher(fc, catalog)

	got, err := f.Fetch(context.Background(), nil, FetchRequest{
		Language: query.LanguageKuery,
		Targets:  []index.Target{index.Named("logs")},
		Text:     "st",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"st!"}, texts(got))
	assert.Equal(t, "logs", fc.request(0).Patterns[0].Title)
}

func TestFetchFailure(t *testing.T) {
	fc := newFakeCompleter()
	fc.err = errors.New("backend unavailable")
	f := NewFetcher(fc, nil)

	_, err := f.Fetch(context.Background(), nil, FetchRequest{
		Language: query.LanguageKuery,
		Targets:  []index.Target{index.Resolved(logsPattern())},
	})
	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.EqualError(t, fe.Err, "backend unavailable")
	assert.EqualError(t, err, "fetch suggestions: backend unavailable")
}

func TestFetchAborted(t *testing.T) {
	fc := newFakeCompleter()
	f := NewFetcher(fc, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Fetch(ctx, seededLog(t, "a"), FetchRequest{
		Language: query.LanguageKuery,
		Targets:  []index.Target{index.Resolved(logsPattern())},
	})
	assert.ErrorIs(t, err, ErrAborted)
	assert.Zero(t, fc.calls())
}

func TestFetchAbortedWhileWaiting(t *testing.T) {
	fc := newFakeCompleter()
	fc.hold = true
	f := NewFetcher(fc, nil)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		_, err := f.Fetch(ctx, nil, FetchRequest{
			Language: query.LanguageKuery,
			Targets:  []index.Target{index.Resolved(logsPattern())},
		})
		done <- err
	}()
	require.Eventually(t, func() bool { return fc.calls() == 1 }, waitFor, tick)
	cancel()
	assert.ErrorIs(t, <-done, ErrAborted)
}

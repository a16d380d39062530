package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

// mockLogLevel is a valid zapcore.Level value for testing.
const mockLogLevel int8 = 0 // zapcore.InfoLevel

func TestGetReturnsSameInstanceOnSubsequentCalls(t *testing.T) {
	logger1 := Get(mockLogLevel)
	logger2 := Get(mockLogLevel)
	require.NotNil(t, logger1)
	assert.Same(t, logger1, logger2)
}

func TestSetupAfterGetIsNoop(t *testing.T) {
	first := Get(mockLogLevel)
	var buf bytes.Buffer
	second := Setup(-1, &buf)
	assert.Same(t, first, second)
}

func TestNewZapLoggerWritesStructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	zl := newZapLogger(-1, zapcore.AddSync(&buf))
	lgr := zapr.NewLogger(zl)

	lgr.Info("suggestions fetched", LanguageKey, "kuery", "count", 3)
	require.NoError(t, zl.Sync())

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "suggestions fetched", entry[MessageKey])
	assert.Equal(t, "kuery", entry[LanguageKey])
	assert.EqualValues(t, 3, entry["count"])
	assert.Contains(t, entry, TimeStampKey)
	assert.Contains(t, entry, VersionKey)
}

func TestNewZapLoggerRespectsLevel(t *testing.T) {
	var buf bytes.Buffer
	zl := newZapLogger(0, zapcore.AddSync(&buf))
	lgr := zapr.NewLogger(zl)

	lgr.V(1).Info("debug detail")
	require.NoError(t, zl.Sync())
	assert.Empty(t, buf.String())
}

func TestWithLoggerReturnsSameContextIfLoggerAlreadySet(t *testing.T) {
	lgr := Get(mockLogLevel)
	ctx := WithLogger(context.Background(), lgr)
	assert.Equal(t, ctx, WithLogger(ctx, lgr))
}

func TestWithLoggerReplacesLoggerIfDifferent(t *testing.T) {
	ctx := WithLogger(context.Background(), Get(mockLogLevel))
	other := logr.Discard()
	got := FromContext(WithLogger(ctx, &other))
	assert.Same(t, &other, got)
}

func TestFromContextFallsBackToGlobal(t *testing.T) {
	global := Get(mockLogLevel)
	assert.Same(t, global, FromContext(context.Background()))
}

func TestFromContextReturnsNoopLoggerIfNothingConfigured(t *testing.T) {
	orig := globalLogrLogger
	globalLogrLogger = nil
	defer func() { globalLogrLogger = orig }()

	assert.Same(t, &defaultNoopLogger, FromContext(context.Background()))
	assert.Same(t, &defaultNoopLogger, GetGlobalLogger())
}

func TestSyncDoesNotPanicWhenGlobalZapLoggerIsNil(t *testing.T) {
	orig := globalZapLogger
	globalZapLogger = nil
	defer func() { globalZapLogger = orig }()

	assert.NotPanics(t, Sync)
}

func TestWithValuesReturnsNewLogger(t *testing.T) {
	lgr := Get(mockLogLevel)
	newLogger := WithValues(lgr, "key", "value")
	require.NotNil(t, newLogger)
	assert.NotSame(t, lgr, newLogger)
}

func TestForComponentHandlesNil(t *testing.T) {
	assert.NotPanics(t, func() {
		l := ForComponent(nil, "typeahead")
		l.Info("ignored")
	})
}

func TestOpenLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "querybar.log")
	w, closeFn, err := OpenLogFile(path)
	require.NoError(t, err)
	_, err = w.Write([]byte("hello\n"))
	require.NoError(t, err)
	require.NoError(t, closeFn())
	require.NoError(t, closeFn())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "hello\n", string(data))
}

func TestOpenLogFileEmptyPathDiscards(t *testing.T) {
	w, closeFn, err := OpenLogFile("  ")
	require.NoError(t, err)
	_, err = w.Write([]byte("x"))
	require.NoError(t, err)
	assert.NoError(t, closeFn())
}

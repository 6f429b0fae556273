package logging

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBufLogger(t *testing.T, level slog.Level) (*SlogLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	return NewTextLogger(&buf, level), &buf
}

func TestSlogLogger_WritesLevelsAndAttrs(t *testing.T) {
	l, buf := newBufLogger(t, slog.LevelDebug)
	ctx := context.Background()

	l.Debug(ctx, "dbg", "k", "v1")
	l.Info(ctx, "inf", "k", "v2")
	l.Warn(ctx, "wrn", "k", "v3")
	l.Error(ctx, "err", "k", "v4")

	out := buf.String()
	require.NotEmpty(t, out)
	assert.Contains(t, out, "msg=dbg")
	assert.Contains(t, out, "msg=inf")
	assert.Contains(t, out, "msg=wrn")
	assert.Contains(t, out, "msg=err")
	assert.Contains(t, out, "k=v4")
}

func TestSlogLogger_LevelFiltersDebug(t *testing.T) {
	l, buf := newBufLogger(t, slog.LevelInfo)

	l.Debug(context.Background(), "should-be-dropped")
	assert.Empty(t, buf.String())
}

func TestSlogLogger_WithAddsPersistentAttrs(t *testing.T) {
	l, buf := newBufLogger(t, slog.LevelInfo)

	child := l.With("component", "api")
	child.Info(context.Background(), "hello")

	require.True(t, strings.Contains(buf.String(), "component=api"))
}

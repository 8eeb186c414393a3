// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"testing"
	"time"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func captureLogs(t *testing.T) *observer.ObservedLogs {
	core, logs := observer.New(zapcore.DebugLevel)
	t.Cleanup(SetLogger(zap.New(core)))
	return logs
}

func TestLogWithTags(t *testing.T) {
	logs := captureLogs(t)
	ctx := logtags.AddTag(context.Background(), "localex", nil)
	ctx = logtags.AddTag(ctx, "n", 3)

	Infof(ctx, "inserted %d exchanges", 2)
	Warningf(ctx, "warning %s", "w")
	Errorf(context.Background(), "error %s", "e")

	entries := logs.All()
	require.Len(t, entries, 3)

	require.Equal(t, "inserted 2 exchanges", entries[0].Message)
	require.Equal(t, zapcore.InfoLevel, entries[0].Level)
	require.Equal(t, "localex,n=3", entries[0].ContextMap()["tags"])

	require.Equal(t, zapcore.WarnLevel, entries[1].Level)
	require.Equal(t, "warning w", entries[1].Message)

	require.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	require.Empty(t, entries[2].Context)
}

func TestRedactableLogs(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()

	Infof(ctx, "column %s", "secret")
	SetRedactable(true)
	defer SetRedactable(false)
	Infof(ctx, "column %s, count %d", "secret", redact.Safe(1))

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "column secret", entries[0].Message)
	require.Equal(t, "column ‹secret›, count 1", entries[1].Message)
}

func TestVerbosity(t *testing.T) {
	logs := captureLogs(t)
	ctx := context.Background()

	require.True(t, V(0))
	require.False(t, V(1))
	VEventf(ctx, 1, "hidden")

	restore := SetVerbosity(2)
	require.True(t, V(1))
	require.True(t, V(2))
	VEventf(ctx, 2, "shown")
	restore()
	require.False(t, V(1))

	entries := logs.All()
	require.Len(t, entries, 1)
	require.Equal(t, "shown", entries[0].Message)
}

func TestNoLogger(t *testing.T) {
	restore := SetLogger(nil)
	defer restore()
	require.False(t, V(0))
	require.NotPanics(t, func() {
		Infof(context.Background(), "dropped")
	})
}

func TestFormatWithContextTags(t *testing.T) {
	ctx := logtags.AddTag(context.Background(), "localex", nil)
	require.Equal(t, "[localex] hello world", FormatWithContextTags(ctx, "hello %s", "world"))
	require.Equal(t, "hello", FormatWithContextTags(context.Background(), "hello"))
}

func TestEveryN(t *testing.T) {
	restore := SetLogger(nil)
	defer restore()

	e := Every(time.Minute)
	start := time.Now()
	require.True(t, e.shouldLog(start))
	require.False(t, e.shouldLog(start.Add(time.Second)))
	require.True(t, e.shouldLog(start.Add(time.Minute)))

	// High verbosity always logs.
	captureLogs(t)
	defer SetVerbosity(2)()
	require.True(t, e.shouldLog(start.Add(time.Minute+time.Second)))
}

// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

// Package log provides leveled, context-aware logging on top of a zap logger.
// Context tags (see github.com/cockroachdb/logtags) are attached to every
// message, and messages are formatted with github.com/cockroachdb/redact so
// that sensitive arguments can be told apart from safe ones.
package log

import (
	"context"
	"sync/atomic"

	"go.uber.org/zap"
)

// Severity is the severity of a log message.
type Severity int

const (
	// SeverityInfo is used for informational messages.
	SeverityInfo Severity = iota
	// SeverityWarning is used for unexpected but recoverable situations.
	SeverityWarning
	// SeverityError is used for errors.
	SeverityError
)

// Level specifies a level of verbosity for V logs.
type Level int32

var (
	mainLogger     atomic.Pointer[zap.Logger]
	verbosity      atomic.Int32
	redactableLogs atomic.Bool
)

func logger() *zap.Logger {
	return mainLogger.Load()
}

// SetLogger installs the zap logger that all messages are written to, and
// returns a function that restores the previous one. Messages are discarded
// while no logger is installed.
func SetLogger(l *zap.Logger) (restore func()) {
	prev := mainLogger.Swap(l)
	return func() { mainLogger.Store(prev) }
}

// SetVerbosity sets the maximum level of V logs that are emitted and returns
// a function that restores the previous level.
func SetVerbosity(level Level) (restore func()) {
	prev := verbosity.Swap(int32(level))
	return func() { verbosity.Store(prev) }
}

// SetRedactable controls whether redaction markers are kept in the
// messages.
func SetRedactable(redactable bool) {
	redactableLogs.Store(redactable)
}

// V returns true if the logging verbosity is set to the specified level or
// higher.
func V(level Level) bool {
	return logger() != nil && Level(verbosity.Load()) >= level
}

// Infof logs to the INFO log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Infof(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityInfo, format, args)
}

// Warningf logs to the WARNING log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Warningf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityWarning, format, args)
}

// Errorf logs to the ERROR log.
// It extracts log tags from the context and logs them along with the given
// message. Arguments are handled in the manner of fmt.Printf.
func Errorf(ctx context.Context, format string, args ...interface{}) {
	addStructured(ctx, SeverityError, format, args)
}

// VEventf logs an INFO message if the verbosity is at least the given level.
func VEventf(ctx context.Context, level Level, format string, args ...interface{}) {
	if V(level) {
		addStructured(ctx, SeverityInfo, format, args)
	}
}

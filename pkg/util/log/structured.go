// Copyright 2026 The Cockroach Authors.
//
// Use of this software is governed by the CockroachDB Software License
// included in the /LICENSE file.

package log

import (
	"context"
	"strings"

	"github.com/cockroachdb/logtags"
	"github.com/cockroachdb/redact"
	"go.uber.org/zap"
)

// FormatWithContextTags formats the string and prepends the context
// tags.
//
// Redaction markers are *not* inserted. The resulting
// string is generally unsafe for reporting.
func FormatWithContextTags(ctx context.Context, format string, args ...interface{}) string {
	var buf strings.Builder
	formatTags(ctx, true /* brackets */, &buf)
	buf.WriteString(redact.Sprintf(format, args...).StripMarkers())
	return buf.String()
}

// formatTags writes the tags of the context to buf, for example "[localex,n=3]
// ". Nothing is written if the context has no tags.
func formatTags(ctx context.Context, brackets bool, buf *strings.Builder) bool {
	tags := logtags.FromContext(ctx)
	if tags == nil || len(tags.Get()) == 0 {
		return false
	}
	if brackets {
		buf.WriteByte('[')
	}
	for i, t := range tags.Get() {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(t.Key())
		if t.Value() != nil {
			buf.WriteByte('=')
			buf.WriteString(t.ValueStr())
		}
	}
	if brackets {
		buf.WriteString("] ")
	}
	return true
}

// addStructured creates a structured log entry and writes it to the
// configured logger.
func addStructured(ctx context.Context, sev Severity, format string, args []interface{}) {
	l := logger()
	if l == nil {
		return
	}
	msg := redact.Sprintf(format, args...)
	var text string
	if redactableLogs.Load() {
		text = string(msg)
	} else {
		text = msg.StripMarkers()
	}

	var fields []zap.Field
	var tagBuf strings.Builder
	if formatTags(ctx, false /* brackets */, &tagBuf) {
		fields = append(fields, zap.String("tags", tagBuf.String()))
	}

	switch sev {
	case SeverityInfo:
		l.Info(text, fields...)
	case SeverityWarning:
		l.Warn(text, fields...)
	default:
		l.Error(text, fields...)
	}
}

// internal/utils/logger_test.go

package utils

import (
	"bytes"
	"strings"
	"testing"
)

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(WarnLevel, &buf)

	logger.Debug("debug message")
	logger.Info("info message")
	logger.Warn("warn message")
	logger.Error("error message")

	out := buf.String()
	if strings.Contains(out, "debug message") || strings.Contains(out, "info message") {
		t.Errorf("messages below warn leaked through: %q", out)
	}
	if !strings.Contains(out, "warn message") || !strings.Contains(out, "error message") {
		t.Errorf("warn and error messages missing: %q", out)
	}
}

func TestLoggerFieldsSortedAndInherited(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(InfoLevel, &buf)

	child := logger.WithField("url", "https://example.com").WithFields(map[string]interface{}{
		"format": "png",
		"bytes":  1234,
	})
	child.Info("capture completed")

	out := buf.String()
	want := "{bytes=1234, format=png, url=https://example.com}"
	if !strings.Contains(out, want) {
		t.Errorf("fields not rendered deterministically: %q, want substring %q", out, want)
	}

	// The parent logger must not pick up the child's fields.
	buf.Reset()
	logger.Info("plain")
	if strings.Contains(buf.String(), "format=") {
		t.Errorf("parent logger inherited child fields: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", DebugLevel},
		{"INFO", InfoLevel},
		{"warn", WarnLevel},
		{"warning", WarnLevel},
		{"error", ErrorLevel},
		{"bogus", InfoLevel},
		{"", InfoLevel},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

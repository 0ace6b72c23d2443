package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func newBufferLogger(level string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(Config{Level: level, Format: "json", Output: &buf, ServiceName: "reel-test"}), &buf
}

func TestLoggerOutput(t *testing.T) {
	log, buf := newBufferLogger("debug")

	log.Info("render started", "quality", "medium")

	var entry map[string]any
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("failed to parse log output as JSON: %v", err)
	}
	if entry["msg"] != "render started" {
		t.Errorf("expected msg='render started', got %v", entry["msg"])
	}
	if entry["quality"] != "medium" {
		t.Errorf("expected quality='medium', got %v", entry["quality"])
	}
	if entry["service"] != "reel-test" {
		t.Errorf("expected service='reel-test', got %v", entry["service"])
	}
}

func TestTextFormat(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Level: "info", Format: "text", Output: &buf})
	log.Info("hello")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("expected text output, got %q", buf.String())
	}
}

func TestLoggerLevels(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		logFn     func(*Logger)
		shouldLog bool
	}{
		{"info logs info", "info", func(l *Logger) { l.Info("x") }, true},
		{"info drops debug", "info", func(l *Logger) { l.Debug("x") }, false},
		{"debug logs debug", "debug", func(l *Logger) { l.Debug("x") }, true},
		{"error drops warn", "error", func(l *Logger) { l.Warn("x") }, false},
		{"warn logs error", "warn", func(l *Logger) { l.Error("x") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferLogger(tt.level)
			tt.logFn(log)
			if got := buf.Len() > 0; got != tt.shouldLog {
				t.Errorf("expected shouldLog=%v, got %v", tt.shouldLog, got)
			}
		})
	}
}

func TestWithHelpers(t *testing.T) {
	tests := []struct {
		name string
		fn   func(*Logger) *Logger
		want []string
	}{
		{"request id", func(l *Logger) *Logger { return l.WithRequestID("req-123") }, []string{`"request_id":"req-123"`}},
		{"job id", func(l *Logger) *Logger { return l.WithJobID("job-456") }, []string{`"job_id":"job-456"`}},
		{"component", func(l *Logger) *Logger { return l.WithComponent("render") }, []string{`"component":"render"`}},
		{"error", func(l *Logger) *Logger { return l.WithError(context.DeadlineExceeded) }, []string{"deadline exceeded"}},
		{"fields", func(l *Logger) *Logger {
			return l.WithFields(map[string]any{"dir": "/out/job_1", "videos": 2})
		}, []string{`"dir":"/out/job_1"`, `"videos":2`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log, buf := newBufferLogger("info")
			tt.fn(log).Info("test")
			for _, w := range tt.want {
				if !strings.Contains(buf.String(), w) {
					t.Errorf("expected %s in %s", w, buf.String())
				}
			}
		})
	}
}

func TestWithErrorNil(t *testing.T) {
	log, _ := newBufferLogger("info")
	if log.WithError(nil) != log {
		t.Error("WithError(nil) should return the same logger")
	}
}

func TestFromContext(t *testing.T) {
	log, buf := newBufferLogger("info")

	ctx := ContextWithRequestID(context.Background(), "req-abc")
	ctx = ContextWithJobID(ctx, "job-xyz")
	log.FromContext(ctx).Info("test")

	out := buf.String()
	if !strings.Contains(out, "req-abc") || !strings.Contains(out, "job-xyz") {
		t.Errorf("expected request and job ids, got: %s", out)
	}
}

func TestLogError(t *testing.T) {
	log, buf := newBufferLogger("info")

	log.LogError(context.Background(), "ignored", nil)
	if buf.Len() != 0 {
		t.Fatal("nil error should not log")
	}

	log.LogError(context.Background(), "cleanup failed", context.Canceled)
	out := buf.String()
	if !strings.Contains(out, "context canceled") || !strings.Contains(out, `"source"`) {
		t.Errorf("expected error and source, got: %s", out)
	}
}

func TestDiscard(t *testing.T) {
	Discard().Error("nothing")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"debug", "DEBUG"},
		{"INFO", "INFO"},
		{"warning", "WARN"},
		{" error ", "ERROR"},
		{"unknown", "INFO"},
		{"", "INFO"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := parseLevel(tt.input).String(); got != tt.expected {
				t.Errorf("parseLevel(%q) = %s, expected %s", tt.input, got, tt.expected)
			}
		})
	}
}

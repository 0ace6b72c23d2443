package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(CodeValidation, "Empty code provided")

	if err.Code != CodeValidation {
		t.Errorf("expected code=%s, got %s", CodeValidation, err.Code)
	}
	if err.Message != "Empty code provided" {
		t.Errorf("unexpected message %q", err.Message)
	}
	if len(err.Stack) == 0 {
		t.Error("expected stack trace to be captured")
	}
}

func TestErrorString(t *testing.T) {
	tests := []struct {
		name     string
		err      *Error
		contains []string
	}{
		{
			name:     "code and message",
			err:      New(CodeTimeout, "renderer timed out"),
			contains: []string{"TIMEOUT", "renderer timed out"},
		},
		{
			name:     "with op",
			err:      &Error{Code: CodeInternal, Message: "mkdir failed", Op: "render.stage"},
			contains: []string{"render.stage: ", "INTERNAL_ERROR", "mkdir failed"},
		},
		{
			name:     "with cause",
			err:      &Error{Code: CodeInternal, Message: "write script", Err: fmt.Errorf("disk full")},
			contains: []string{"write script", "disk full"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			str := tt.err.Error()
			for _, c := range tt.contains {
				if !strings.Contains(str, c) {
					t.Errorf("expected %q in %q", c, str)
				}
			}
		})
	}
}

func TestWrap(t *testing.T) {
	t.Run("foreign error becomes internal", func(t *testing.T) {
		cause := fmt.Errorf("permission denied")
		wrapped := Wrap(cause, "render.cleanup", "remove failed")
		if wrapped.Code != CodeInternal {
			t.Errorf("expected %s, got %s", CodeInternal, wrapped.Code)
		}
		if errors.Unwrap(wrapped) != cause {
			t.Error("Unwrap should return the cause")
		}
	})

	t.Run("preserves code and fields", func(t *testing.T) {
		cause := RenderFailed(2, "SyntaxError", "")
		wrapped := Wrap(cause, "processor.render", "render failed")
		if wrapped.Code != CodeRenderFailed {
			t.Errorf("expected %s, got %s", CodeRenderFailed, wrapped.Code)
		}
		if wrapped.Fields["return_code"] != 2 {
			t.Errorf("expected return_code field, got %v", wrapped.Fields)
		}
	})

	t.Run("wrapper fields do not leak into the cause", func(t *testing.T) {
		cause := Timeout("render")
		wrapped := Wrap(cause, "render.execute", "render did not complete").
			WithField("dir", "/out/manim_tmp_x")
		if _, ok := cause.Fields["dir"]; ok {
			t.Errorf("cause fields changed: %v", cause.Fields)
		}
		if wrapped.Fields["dir"] != "/out/manim_tmp_x" || wrapped.Fields["operation"] != "render" {
			t.Errorf("unexpected wrapper fields: %v", wrapped.Fields)
		}
	})

	t.Run("code printed once per chain", func(t *testing.T) {
		wrapped := Wrap(Timeout("render"), "render.execute", "render did not complete")
		want := "render.execute: render did not complete: [TIMEOUT] operation timed out: render"
		if wrapped.Error() != want {
			t.Errorf("got %q, want %q", wrapped.Error(), want)
		}
	})

	t.Run("nil", func(t *testing.T) {
		if Wrap(nil, "op", "msg") != nil {
			t.Error("Wrap(nil) should return nil")
		}
		if WrapWithCode(nil, CodeTimeout, "op", "msg") != nil {
			t.Error("WrapWithCode(nil) should return nil")
		}
	})
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code   Code
		status int
	}{
		{CodeValidation, 400},
		{CodeBadRequest, 400},
		{CodeNotFound, 404},
		{CodeConflict, 409},
		{CodeRenderFailed, 422},
		{CodeInternal, 500},
		{CodeUnavailable, 503},
		{CodeTimeout, 504},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := New(tt.code, "x").HTTPStatus(); got != tt.status {
				t.Errorf("expected status=%d, got %d", tt.status, got)
			}
		})
	}

	if GetHTTPStatus(fmt.Errorf("plain")) != 500 {
		t.Error("expected 500 for a foreign error")
	}
}

func TestConstructors(t *testing.T) {
	if err := NotFound("directory", "/tmp/x"); err.Fields["id"] != "/tmp/x" || err.Code != CodeNotFound {
		t.Errorf("unexpected NotFound: %+v", err)
	}
	if err := ValidationField("quality", "unknown quality"); err.Fields["field"] != "quality" {
		t.Errorf("unexpected ValidationField fields: %v", err.Fields)
	}
	if err := Timeout("render"); err.Code != CodeTimeout {
		t.Errorf("unexpected Timeout code %s", err.Code)
	}
	if err := Unavailable("redis"); err.Fields["service"] != "redis" {
		t.Errorf("unexpected Unavailable fields: %v", err.Fields)
	}

	rf := RenderFailed(1, "boom", "partial")
	if rf.Fields["stderr"] != "boom" || rf.Fields["stdout"] != "partial" {
		t.Errorf("unexpected RenderFailed fields: %v", rf.Fields)
	}
	if !strings.Contains(rf.Message, "code 1") {
		t.Errorf("unexpected RenderFailed message %q", rf.Message)
	}
}

func TestGetters(t *testing.T) {
	inner := Validation("Missing Manim import statement")
	wrapped := Wrap(inner, "render.execute", "code validation failed")
	chained := fmt.Errorf("tool: %w", wrapped)

	if GetCode(chained) != CodeValidation {
		t.Errorf("expected %s, got %s", CodeValidation, GetCode(chained))
	}
	if !IsValidation(chained) || IsNotFound(chained) || IsTimeout(chained) {
		t.Error("predicate mismatch")
	}
	if got := GetMessage(chained); got != "Missing Manim import statement" {
		t.Errorf("GetMessage = %q", got)
	}
	if got := GetMessage(fmt.Errorf("plain")); got != "plain" {
		t.Errorf("GetMessage(plain) = %q", got)
	}
	if GetFields(fmt.Errorf("plain")) != nil {
		t.Error("expected nil fields for a foreign error")
	}
	if IsCode(nil, CodeInternal) {
		t.Error("nil error should not match any code")
	}
}

func TestStackTrace(t *testing.T) {
	stack := New(CodeInternal, "x").StackTrace()
	if !strings.Contains(stack, ".go:") {
		t.Errorf("expected file references, got: %s", stack)
	}
}

func TestErrorIs(t *testing.T) {
	a := New(CodeNotFound, "a")
	b := New(CodeNotFound, "b")
	c := New(CodeValidation, "c")

	if !errors.Is(a, b) {
		t.Error("same code should match")
	}
	if errors.Is(a, c) {
		t.Error("different codes should not match")
	}

	var target *Error
	if !As(fmt.Errorf("w: %w", a), &target) || target.Code != CodeNotFound {
		t.Error("As should find the coded error")
	}
	if !Is(fmt.Errorf("w: %w", a), b) {
		t.Error("Is should match through wrapping")
	}
}

package util

import (
	"strings"
	"testing"
	"time"
)

func TestEnv(t *testing.T) {
	t.Setenv("REEL_TEST_VALUE", "  manim  ")
	if got := Env("REEL_TEST_VALUE", "x"); got != "manim" {
		t.Errorf("Env = %q", got)
	}
	if got := Env("REEL_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("Env default = %q", got)
	}
}

func TestMustEnvPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for missing env")
		}
	}()
	MustEnv("REEL_TEST_DEFINITELY_UNSET")
}

func TestBoolEnv(t *testing.T) {
	tests := []struct {
		raw  string
		def  bool
		want bool
	}{
		{"true", false, true},
		{"0", true, false},
		{"", true, true},
		{"maybe", false, false},
	}
	for _, tt := range tests {
		t.Setenv("REEL_TEST_BOOL", tt.raw)
		if got := BoolEnv("REEL_TEST_BOOL", tt.def); got != tt.want {
			t.Errorf("BoolEnv(%q, %v) = %v", tt.raw, tt.def, got)
		}
	}
}

func TestDurationEnv(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Duration
	}{
		{"300", 300 * time.Second},
		{"1m30s", 90 * time.Second},
		{"", time.Minute},
		{"soon", time.Minute},
	}
	for _, tt := range tests {
		t.Setenv("REEL_TEST_DURATION", tt.raw)
		if got := DurationEnv("REEL_TEST_DURATION", time.Minute); got != tt.want {
			t.Errorf("DurationEnv(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}

func TestNewID(t *testing.T) {
	a, b := NewID("job"), NewID("job")
	if a == b {
		t.Fatal("expected unique ids")
	}
	if !strings.HasPrefix(a, "job_") || len(a) != len("job_")+32 {
		t.Errorf("unexpected id %q", a)
	}
	if len(ShortID()) != 8 {
		t.Error("ShortID should be 8 characters")
	}
}

// Package util holds the small environment and identifier helpers shared by
// the reel binaries.
package util

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Env returns the trimmed value of k, or def when unset or blank.
func Env(k, def string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	return v
}

// MustEnv panics when k is unset; binaries call it before serving.
func MustEnv(k string) string {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}

// BoolEnv parses k with strconv.ParseBool, returning def when empty or invalid.
func BoolEnv(k string, def bool) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	if err != nil {
		return def
	}
	return b
}

// DurationEnv parses k with time.ParseDuration. A bare integer is read as
// seconds so RENDER_TIMEOUT=300 works.
func DurationEnv(k string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

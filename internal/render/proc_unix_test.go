//go:build unix

package render

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"reel/internal/pkg/errors"
)

func TestExecRunnerTimeoutKillsChildren(t *testing.T) {
	dir := t.TempDir()
	tick := filepath.Join(dir, "tick")
	exe := fakeManim(t, `(while true; do echo x >> tick; sleep 0.05; done) &
wait`)

	_, err := ExecRunner{WaitDelay: 500 * time.Millisecond}.Run(context.Background(), Command{
		Path:    exe,
		Dir:     dir,
		Timeout: 300 * time.Millisecond,
	})
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}

	size := func() int64 {
		info, statErr := os.Stat(tick)
		if statErr != nil {
			t.Fatalf("stat tick: %v", statErr)
		}
		return info.Size()
	}
	// Allow a write already in flight to land.
	time.Sleep(100 * time.Millisecond)
	before := size()
	time.Sleep(400 * time.Millisecond)
	if after := size(); after != before {
		t.Errorf("background child kept writing after timeout: %d -> %d bytes", before, after)
	}
}

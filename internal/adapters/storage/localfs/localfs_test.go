package localfs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"reel/internal/pkg/errors"
	"reel/internal/ports"
)

func TestPutOpenDelete(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	ctx := context.Background()

	out, err := s.Put(ctx, ports.PutInput{Key: "renders/job_1/Hello.mp4", Reader: strings.NewReader("video")})
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if out.Key != "renders/job_1/Hello.mp4" || out.Size != 5 {
		t.Errorf("unexpected output %+v", out)
	}

	entries, _ := os.ReadDir(filepath.Join(root, "renders", "job_1"))
	if len(entries) != 1 {
		t.Errorf("temp files left behind: %d entries", len(entries))
	}

	obj, err := s.Open(ctx, out.Key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	body, _ := io.ReadAll(obj.Body)
	obj.Body.Close()
	if string(body) != "video" || obj.Size != 5 || obj.ContentType != "video/mp4" {
		t.Errorf("unexpected object %q %d %q", body, obj.Size, obj.ContentType)
	}

	if err := s.Delete(ctx, out.Key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Open(ctx, out.Key); !errors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := s.Delete(ctx, out.Key); !errors.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestPutOverwritesAtomically(t *testing.T) {
	s := New(t.TempDir())
	ctx := context.Background()

	for _, content := range []string{"first", "second"} {
		if _, err := s.Put(ctx, ports.PutInput{Key: "a/b.mp4", Reader: strings.NewReader(content)}); err != nil {
			t.Fatal(err)
		}
	}
	obj, err := s.Open(ctx, "a/b.mp4")
	if err != nil {
		t.Fatal(err)
	}
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	if string(body) != "second" {
		t.Errorf("expected latest content, got %q", body)
	}
}

func TestKeyValidation(t *testing.T) {
	s := New(t.TempDir())
	for _, key := range []string{"", "../escape.mp4", "a/../../escape.mp4", "/etc/passwd"} {
		_, err := s.Put(context.Background(), ports.PutInput{Key: key, Reader: strings.NewReader("x")})
		if !errors.IsValidation(err) {
			t.Errorf("key %q: expected validation error, got %v", key, err)
		}
	}
}

func TestPutCanceledContext(t *testing.T) {
	root := t.TempDir()
	s := New(root)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := s.Put(ctx, ports.PutInput{Key: "x/y.mp4", Reader: strings.NewReader("data")}); err == nil {
		t.Fatal("expected error for canceled context")
	}
	entries, _ := os.ReadDir(filepath.Join(root, "x"))
	if len(entries) != 0 {
		t.Errorf("expected no files after failed put, found %d", len(entries))
	}
}

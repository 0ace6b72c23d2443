package gdrive

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"reel/internal/pkg/errors"
	"reel/internal/ports"
)

func putInput(key string) ports.PutInput {
	return ports.PutInput{Key: key, Reader: strings.NewReader("x")}
}

func newTestStore(t *testing.T, h http.HandlerFunc) *Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	svc, err := drive.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithHTTPClient(srv.Client()),
	)
	if err != nil {
		t.Fatal(err)
	}
	return New(svc, "folder-1")
}

func TestOpen(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/files/file-123") || r.URL.Query().Get("alt") != "media" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		_, _ = io.WriteString(w, "video-bytes")
	})

	obj, err := s.Open(context.Background(), "file-123")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer obj.Body.Close()
	body, _ := io.ReadAll(obj.Body)
	if string(body) != "video-bytes" || obj.ContentType != "video/mp4" {
		t.Errorf("unexpected object %q %q", body, obj.ContentType)
	}
}

func TestNotFoundMapping(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"File not found"}}`)
	})

	if _, err := s.Open(context.Background(), "missing"); !errors.IsNotFound(err) {
		t.Errorf("Open: expected not found, got %v", err)
	}
	if err := s.Delete(context.Background(), "missing"); !errors.IsNotFound(err) {
		t.Errorf("Delete: expected not found, got %v", err)
	}
}

func TestDeleteServerError(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = io.WriteString(w, `{"error":{"code":500,"message":"backend error"}}`)
	})

	err := s.Delete(context.Background(), "file-1")
	if err == nil || errors.IsNotFound(err) {
		t.Fatalf("expected internal error, got %v", err)
	}
	if errors.GetFields(err)["file_id"] != "file-1" {
		t.Errorf("expected file_id field, got %v", errors.GetFields(err))
	}
}

func TestPutRequiresKey(t *testing.T) {
	s := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	if _, err := s.Put(context.Background(), putInput("")); !errors.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
}

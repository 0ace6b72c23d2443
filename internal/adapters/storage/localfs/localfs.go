// Package localfs stores artifacts under a directory on the local disk.
package localfs

import (
	"context"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"reel/internal/pkg/errors"
	"reel/internal/ports"
)

// videoTypes covers extensions the system mime table may lack.
var videoTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

type Store struct {
	root string
}

func New(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Provider() string { return "localfs" }

// Put writes to a temporary file next to the destination and renames it
// into place, so readers never observe a partial video.
func (s *Store) Put(ctx context.Context, in ports.PutInput) (ports.PutOutput, error) {
	const op = "localfs.put"

	dst, err := s.path(in.Key)
	if err != nil {
		return ports.PutOutput{}, err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "create parent directory")
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "create temp file")
	}
	committed := false
	defer func() {
		if !committed {
			_ = os.Remove(tmp.Name())
		}
	}()

	n, err := io.Copy(tmp, readerWithContext(ctx, in.Reader))
	if err != nil {
		tmp.Close()
		return ports.PutOutput{}, errors.Wrap(err, op, "write object")
	}
	if err := tmp.Close(); err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "close object")
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "chmod object")
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "rename object")
	}
	committed = true

	return ports.PutOutput{Key: in.Key, Size: n}, nil
}

func (s *Store) Open(ctx context.Context, key string) (*ports.Object, error) {
	const op = "localfs.open"

	p, err := s.path(key)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if os.IsNotExist(err) {
		return nil, errors.NotFound("object", key)
	}
	if err != nil {
		return nil, errors.Wrap(err, op, "open object")
	}

	obj := &ports.Object{Body: f}
	if st, err := f.Stat(); err == nil {
		obj.Size = st.Size()
	}

	ext := strings.ToLower(filepath.Ext(p))
	obj.ContentType = videoTypes[ext]
	if obj.ContentType == "" {
		obj.ContentType = mime.TypeByExtension(ext)
	}
	if obj.ContentType == "" {
		buf := make([]byte, 512)
		n, _ := f.Read(buf)
		_, _ = f.Seek(0, io.SeekStart)
		obj.ContentType = http.DetectContentType(buf[:n])
	}
	return obj, nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	p, err := s.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if os.IsNotExist(err) {
			return errors.NotFound("object", key)
		}
		return errors.Wrap(err, "localfs.delete", "remove object")
	}
	return nil
}

// path maps key under root, rejecting keys that would escape it.
func (s *Store) path(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.ValidationField("key", "object key is required")
	}
	clean := filepath.Clean(filepath.FromSlash(key))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", errors.ValidationField("key", "object key escapes the store root: "+key)
	}
	return filepath.Join(s.root, clean), nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return &ctxReader{ctx: ctx, r: r}
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

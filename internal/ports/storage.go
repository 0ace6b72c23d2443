// Package ports declares the interfaces reel's adapters implement.
package ports

import (
	"context"
	"io"
)

// PutInput is an object to publish.
type PutInput struct {
	// Key is the logical name, e.g. renders/<job id>/Hello.mp4.
	Key         string
	ContentType string
	Reader      io.Reader
	Size        int64
}

// PutOutput identifies a published object. Key is the handle for Open and
// Delete: the logical key for localfs, the Drive file id for gdrive.
type PutOutput struct {
	Key  string
	Size int64
}

// Object is an open stored object. The caller closes Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// ArtifactStore holds finished videos outside the job directories.
type ArtifactStore interface {
	Provider() string
	Put(ctx context.Context, in PutInput) (PutOutput, error)
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
}

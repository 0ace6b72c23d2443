package processor

import (
	"context"
	"os"
	"path"
	"strings"

	"reel/internal/pkg/errors"
	"reel/internal/ports"
	"reel/internal/render"
)

var videoContentTypes = map[string]string{
	".mp4": "video/mp4",
	".mov": "video/quicktime",
	".avi": "video/x-msvideo",
	".mkv": "video/x-matroska",
}

// ArtifactKey is the store key for a job's video.
func ArtifactKey(jobID, name string) string {
	return path.Join("renders", jobID, sanitizeName(name))
}

// Publisher copies finished videos into the artifact store.
type Publisher struct {
	store ports.ArtifactStore
}

func NewPublisher(store ports.ArtifactStore) *Publisher {
	return &Publisher{store: store}
}

// Publish uploads the artifact and returns the store handle.
func (p *Publisher) Publish(ctx context.Context, jobID string, a *render.VideoArtifact) (ports.PutOutput, error) {
	const op = "processor.publish"

	f, err := os.Open(a.Path)
	if err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "open artifact").WithField("path", a.Path)
	}
	defer f.Close()

	out, err := p.store.Put(ctx, ports.PutInput{
		Key:         ArtifactKey(jobID, a.Name),
		ContentType: contentTypeFor(a.Name),
		Reader:      f,
		Size:        a.Size,
	})
	if err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "upload artifact")
	}
	return out, nil
}

func contentTypeFor(name string) string {
	if ct, ok := videoContentTypes[strings.ToLower(path.Ext(name))]; ok {
		return ct
	}
	return "application/octet-stream"
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "..", "")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	if s == "" {
		return "video"
	}
	return s
}

// Package gdrive stores artifacts as files in a Google Drive folder.
package gdrive

import (
	"context"
	stderrors "errors"
	"net/http"
	"path"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"

	"reel/internal/pkg/errors"
	"reel/internal/ports"
)

// keyProperty records the logical key on the Drive file; the handle
// returned by Put is the Drive file id.
const keyProperty = "reel_key"

type Store struct {
	srv      *drive.Service
	folderID string
}

func New(srv *drive.Service, folderID string) *Store {
	return &Store{srv: srv, folderID: folderID}
}

func (s *Store) Provider() string { return "gdrive" }

func (s *Store) Put(ctx context.Context, in ports.PutInput) (ports.PutOutput, error) {
	const op = "gdrive.put"

	if in.Key == "" {
		return ports.PutOutput{}, errors.ValidationField("key", "object key is required")
	}

	file := &drive.File{
		Name:          path.Base(in.Key),
		AppProperties: map[string]string{keyProperty: in.Key},
	}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}

	call := s.srv.Files.Create(file).SupportsAllDrives(true).Fields("id", "size")
	if in.ContentType != "" {
		call = call.Media(in.Reader, googleapi.ContentType(in.ContentType))
	} else {
		call = call.Media(in.Reader)
	}

	created, err := call.Context(ctx).Do()
	if err != nil {
		return ports.PutOutput{}, errors.Wrap(err, op, "drive upload failed").WithField("key", in.Key)
	}

	size := in.Size
	if created.Size > 0 {
		size = created.Size
	}
	return ports.PutOutput{Key: created.Id, Size: size}, nil
}

func (s *Store) Open(ctx context.Context, fileID string) (*ports.Object, error) {
	resp, err := s.srv.Files.Get(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Download()
	if err != nil {
		return nil, mapErr(err, "gdrive.open", fileID)
	}
	return &ports.Object{
		Body:        resp.Body,
		ContentType: resp.Header.Get("Content-Type"),
		Size:        resp.ContentLength,
	}, nil
}

func (s *Store) Delete(ctx context.Context, fileID string) error {
	err := s.srv.Files.Delete(fileID).
		SupportsAllDrives(true).
		Context(ctx).
		Do()
	if err != nil {
		return mapErr(err, "gdrive.delete", fileID)
	}
	return nil
}

func mapErr(err error, op, fileID string) error {
	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound {
		return errors.NotFound("object", fileID)
	}
	return errors.Wrap(err, op, "drive request failed").WithField("file_id", fileID)
}

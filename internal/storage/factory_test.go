package storage

import (
	"context"
	"strings"
	"testing"

	"reel/internal/config"
	"reel/internal/pkg/errors"
)

func TestNew(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, config.StorageConfig{Provider: "localfs", LocalRoot: t.TempDir()})
	if err != nil || s.Provider() != "localfs" {
		t.Fatalf("expected localfs store, got %v, %v", s, err)
	}

	if _, err := New(ctx, config.StorageConfig{Provider: "localfs"}); !errors.IsValidation(err) {
		t.Errorf("expected validation error without root, got %v", err)
	}
	if _, err := New(ctx, config.StorageConfig{Provider: "s3"}); !errors.IsValidation(err) {
		t.Errorf("expected validation error for unknown provider, got %v", err)
	}

	_, err = New(ctx, config.StorageConfig{Provider: "gdrive", GDrive: config.GDriveConfig{ClientID: "id"}})
	if !errors.IsValidation(err) || !strings.Contains(err.Error(), "GDRIVE_REFRESH_TOKEN") {
		t.Errorf("expected missing credential error, got %v", err)
	}

	s, err = New(ctx, config.StorageConfig{Provider: "gdrive", GDrive: config.GDriveConfig{
		ClientID: "id", ClientSecret: "secret", RefreshToken: "refresh", FolderID: "folder",
	}})
	if err != nil || s.Provider() != "gdrive" {
		t.Fatalf("expected gdrive store, got %v, %v", s, err)
	}
}

func TestOAuthConfig(t *testing.T) {
	c := OAuthConfig("id", "secret", "http://localhost:8085/callback")
	if c.Endpoint.TokenURL == "" || len(c.Scopes) != 1 || !strings.HasSuffix(c.Scopes[0], "/auth/drive.file") {
		t.Errorf("unexpected oauth config %+v", c)
	}
}

// Package storage builds the configured ports.ArtifactStore.
package storage

import (
	"context"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"reel/internal/adapters/storage/gdrive"
	"reel/internal/adapters/storage/localfs"
	"reel/internal/config"
	"reel/internal/pkg/errors"
	"reel/internal/ports"
)

// New returns the store named by cfg.Provider.
func New(ctx context.Context, cfg config.StorageConfig) (ports.ArtifactStore, error) {
	switch cfg.Provider {
	case "", "localfs":
		if strings.TrimSpace(cfg.LocalRoot) == "" {
			return nil, errors.Validation("STORAGE_LOCAL_ROOT is required for localfs storage")
		}
		return localfs.New(cfg.LocalRoot), nil

	case "gdrive":
		return newGDrive(ctx, cfg.GDrive)

	default:
		return nil, errors.Validationf("unknown storage provider: %s", cfg.Provider)
	}
}

func newGDrive(ctx context.Context, cfg config.GDriveConfig) (ports.ArtifactStore, error) {
	var missing []string
	if cfg.ClientID == "" {
		missing = append(missing, "GDRIVE_CLIENT_ID")
	}
	if cfg.ClientSecret == "" {
		missing = append(missing, "GDRIVE_CLIENT_SECRET")
	}
	if cfg.RefreshToken == "" {
		missing = append(missing, "GDRIVE_REFRESH_TOKEN")
	}
	if len(missing) > 0 {
		return nil, errors.Validation("gdrive storage needs " + strings.Join(missing, ", ")).
			WithField("missing", missing)
	}

	httpClient := OAuthConfig(cfg.ClientID, cfg.ClientSecret, "").
		Client(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	srv, err := drive.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, errors.Wrap(err, "storage.gdrive", "create drive service")
	}
	return gdrive.New(srv, cfg.FolderID), nil
}

// OAuthConfig is the Drive OAuth client shared with cmd/gdrive-auth.
func OAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Endpoint:     google.Endpoint,
		Scopes:       []string{drive.DriveFileScope},
	}
}

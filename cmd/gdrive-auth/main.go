// reel-gdrive-auth runs the OAuth consent flow once and prints the refresh
// token the worker needs for Google Drive storage.
package main

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/oauth2"

	"reel/internal/config"
	"reel/internal/pkg/logger"
	"reel/internal/storage"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			return
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var (
		configPath string
		wait       time.Duration
	)
	flagSet := pflag.NewFlagSet("reel-gdrive-auth", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("REEL_CONFIG"), "path to a YAML config file")
	flagSet.DurationVar(&wait, "wait", 3*time.Minute, "how long to wait for the browser callback")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	creds := cfg.Storage.GDrive
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return fmt.Errorf("GDRIVE_CLIENT_ID and GDRIVE_CLIENT_SECRET are required")
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "reel-gdrive-auth",
	})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("listen for callback: %w", err)
	}
	defer ln.Close()

	port := ln.Addr().(*net.TCPAddr).Port
	redirectURL := fmt.Sprintf("http://127.0.0.1:%d/callback", port)
	conf := storage.OAuthConfig(creds.ClientID, creds.ClientSecret, redirectURL)

	state := randomState()
	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("state") != state {
			http.Error(w, "invalid state", http.StatusBadRequest)
			errCh <- fmt.Errorf("invalid state")
			return
		}
		if e := q.Get("error"); e != "" {
			http.Error(w, "auth error: "+e, http.StatusBadRequest)
			errCh <- fmt.Errorf("auth error: %s", e)
			return
		}
		code := q.Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			errCh <- fmt.Errorf("missing code")
			return
		}

		fmt.Fprintln(w, "Authorized. You can close this window and return to the terminal.")
		codeCh <- code
	})

	srv := &http.Server{
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		_ = srv.Serve(ln)
	}()
	defer srv.Close()

	// Offline access with forced consent so a refresh token is issued.
	authURL := conf.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("prompt", "consent"),
	)

	fmt.Println("Open this URL in your browser:")
	fmt.Println()
	fmt.Println(authURL)
	log.Info("waiting for authorization", "redirect_url", redirectURL, "timeout", wait.String())

	var code string
	select {
	case code = <-codeCh:
	case err := <-errCh:
		return err
	case <-time.After(wait):
		return fmt.Errorf("timed out waiting for authorization")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return fmt.Errorf("exchange code: %w", err)
	}

	if strings.TrimSpace(tok.RefreshToken) == "" {
		log.Warn("no refresh token returned; revoke the app at https://myaccount.google.com/permissions and run again")
		return nil
	}

	fmt.Println()
	fmt.Println("GDRIVE_REFRESH_TOKEN:")
	fmt.Println(tok.RefreshToken)
	return nil
}

func randomState() string {
	b := make([]byte, 18)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

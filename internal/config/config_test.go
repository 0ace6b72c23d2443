package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"reel/internal/pkg/errors"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Render.Executable != "manim" {
		t.Errorf("expected manim executable, got %q", cfg.Render.Executable)
	}
	if cfg.Render.Timeout != 300*time.Second {
		t.Errorf("expected 300s timeout, got %v", cfg.Render.Timeout)
	}
	if !filepath.IsAbs(cfg.Render.OutputDir) || filepath.Base(cfg.Render.OutputDir) != "output" {
		t.Errorf("expected absolute output dir, got %q", cfg.Render.OutputDir)
	}
	if cfg.Redis.QueueName != DefaultQueueName {
		t.Errorf("unexpected queue name %q", cfg.Redis.QueueName)
	}
}

func TestLoadFileWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "reel.yaml")
	yamlDoc := `
render:
  output_dir: ` + filepath.Join(dir, "renders") + `
  executable: /opt/manim/bin/manim
  timeout: 2m
  preview: false
  job_ttl: 1h
storage:
  provider: gdrive
  gdrive:
    folder_id: folder-123
`
	if err := os.WriteFile(path, []byte(yamlDoc), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("MANIM_EXECUTABLE", "/usr/local/bin/manim")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}

	if cfg.Render.Executable != "/usr/local/bin/manim" {
		t.Errorf("env should override file, got %q", cfg.Render.Executable)
	}
	if cfg.Render.Timeout != 2*time.Minute {
		t.Errorf("expected 2m timeout from file, got %v", cfg.Render.Timeout)
	}
	if cfg.Render.Preview {
		t.Error("expected preview disabled by file")
	}
	if cfg.Render.JobTTL != time.Hour {
		t.Errorf("expected 1h ttl, got %v", cfg.Render.JobTTL)
	}
	if cfg.Storage.Provider != "gdrive" || cfg.Storage.GDrive.FolderID != "folder-123" {
		t.Errorf("unexpected storage config %+v", cfg.Storage)
	}
	if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "http://b.test" {
		t.Errorf("unexpected origins %v", cfg.HTTP.AllowedOrigins)
	}
}

func TestLoadFileErrors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); !errors.IsCode(err, errors.CodeInternal) {
		t.Errorf("expected internal error for missing file, got %v", err)
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(bad, []byte("render: [unclosed"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); !errors.IsValidation(err) {
		t.Errorf("expected validation error for bad yaml, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero timeout", func(c *Config) { c.Render.Timeout = 0 }, "render.timeout"},
		{"blank executable", func(c *Config) { c.Render.Executable = " " }, "render.executable"},
		{"ttl without interval", func(c *Config) {
			c.Render.JobTTL = time.Hour
			c.Render.SweepInterval = 0
		}, "sweep_interval"},
		{"unknown provider", func(c *Config) { c.Storage.Provider = "s3" }, "unknown storage provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if !errors.IsValidation(err) || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected validation error containing %q, got %v", tt.want, err)
			}
		})
	}

	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestTimeoutFromEnvSeconds(t *testing.T) {
	t.Setenv("RENDER_TIMEOUT", "45")
	cfg, err := LoadFile("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Render.Timeout != 45*time.Second {
		t.Errorf("expected 45s, got %v", cfg.Render.Timeout)
	}
}

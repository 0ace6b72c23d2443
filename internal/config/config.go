// Package config loads reel configuration. Values come from built-in
// defaults, then an optional YAML file named by REEL_CONFIG, then
// environment variables, each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/util"
)

// Config is the full configuration shared by cmd/mcp, cmd/api and cmd/worker.
type Config struct {
	Render   RenderConfig   `yaml:"render"`
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	Worker   WorkerConfig   `yaml:"worker"`
	Log      LogConfig      `yaml:"log"`
}

// RenderConfig drives the render job manager.
type RenderConfig struct {
	// OutputDir is the base directory holding one subdirectory per job.
	OutputDir string `yaml:"output_dir"`
	// Executable is the manim binary, looked up on PATH when not absolute.
	Executable string `yaml:"executable"`
	// Timeout is the hard limit for a single renderer process.
	Timeout time.Duration `yaml:"timeout"`
	// Preview passes -p to the renderer.
	Preview bool `yaml:"preview"`
	// CleanupOnShutdown removes every tracked job directory on exit.
	CleanupOnShutdown bool `yaml:"cleanup_on_shutdown"`
	// JobTTL enables periodic removal of tracked directories older than
	// the TTL. Zero disables sweeping.
	JobTTL time.Duration `yaml:"job_ttl"`
	// SweepInterval is how often the TTL sweep runs.
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type HTTPConfig struct {
	Port           string   `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	QueueName string `yaml:"queue_name"`
}

// StorageConfig selects where the worker publishes finished videos.
type StorageConfig struct {
	Provider  string       `yaml:"provider"`
	LocalRoot string       `yaml:"local_root"`
	GDrive    GDriveConfig `yaml:"gdrive"`
}

type GDriveConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RefreshToken string `yaml:"refresh_token"`
	FolderID     string `yaml:"folder_id"`
}

type WorkerConfig struct {
	// CleanupLocal removes the job directory once the video is published.
	CleanupLocal bool `yaml:"cleanup_local"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
}

const (
	DefaultTimeout   = 300 * time.Second
	DefaultQueueName = "reel:jobs"
)

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Render: RenderConfig{
			OutputDir:     "output",
			Executable:    "manim",
			Timeout:       DefaultTimeout,
			Preview:       true,
			SweepInterval: 10 * time.Minute,
		},
		HTTP: HTTPConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:5173"},
		},
		Redis: RedisConfig{
			Addr:      "localhost:6379",
			QueueName: DefaultQueueName,
		},
		Storage: StorageConfig{
			Provider:  "localfs",
			LocalRoot: "published",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load builds the configuration from defaults, REEL_CONFIG and the
// environment.
func Load() (Config, error) {
	return LoadFile(util.Env("REEL_CONFIG", ""))
}

// LoadFile is Load with an explicit YAML path; an empty path skips the file.
func LoadFile(path string) (Config, error) {
	const op = "config.load"
	cfg := Defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrapf(err, op, "read config %s", path)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, errors.WrapWithCode(err, errors.CodeValidation, op, "parse config "+path)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	abs, err := filepath.Abs(cfg.Render.OutputDir)
	if err != nil {
		return Config{}, errors.Wrap(err, op, "resolve output dir")
	}
	cfg.Render.OutputDir = abs
	return cfg, nil
}

func (c *Config) applyEnv() {
	r := &c.Render
	r.OutputDir = util.Env("REEL_OUTPUT_DIR", r.OutputDir)
	r.Executable = util.Env("MANIM_EXECUTABLE", r.Executable)
	r.Timeout = util.DurationEnv("RENDER_TIMEOUT", r.Timeout)
	r.Preview = util.BoolEnv("RENDER_PREVIEW", r.Preview)
	r.CleanupOnShutdown = util.BoolEnv("REEL_CLEANUP_ON_SHUTDOWN", r.CleanupOnShutdown)
	r.JobTTL = util.DurationEnv("REEL_JOB_TTL", r.JobTTL)
	r.SweepInterval = util.DurationEnv("REEL_SWEEP_INTERVAL", r.SweepInterval)

	c.HTTP.Port = util.Env("HTTP_PORT", c.HTTP.Port)
	if origins := util.Env("CORS_ALLOWED_ORIGINS", ""); origins != "" {
		c.HTTP.AllowedOrigins = splitCSV(origins)
	}

	c.Database.URL = util.Env("DATABASE_URL", c.Database.URL)
	c.Redis.Addr = util.Env("REDIS_ADDR", c.Redis.Addr)
	c.Redis.QueueName = util.Env("JOB_QUEUE_NAME", c.Redis.QueueName)

	s := &c.Storage
	s.Provider = util.Env("STORAGE_PROVIDER", s.Provider)
	s.LocalRoot = util.Env("STORAGE_LOCAL_ROOT", s.LocalRoot)
	s.GDrive.ClientID = util.Env("GDRIVE_CLIENT_ID", s.GDrive.ClientID)
	s.GDrive.ClientSecret = util.Env("GDRIVE_CLIENT_SECRET", s.GDrive.ClientSecret)
	s.GDrive.RefreshToken = util.Env("GDRIVE_REFRESH_TOKEN", s.GDrive.RefreshToken)
	s.GDrive.FolderID = util.Env("GDRIVE_FOLDER_ID", s.GDrive.FolderID)

	c.Worker.CleanupLocal = util.BoolEnv("REEL_CLEANUP_LOCAL", c.Worker.CleanupLocal)

	c.Log.Level = util.Env("LOG_LEVEL", c.Log.Level)
	c.Log.Format = util.Env("LOG_FORMAT", c.Log.Format)
	c.Log.Source = util.BoolEnv("LOG_SOURCE", c.Log.Source)
}

// Validate checks the settings every binary needs. Database, Redis and
// storage credentials are checked by the binaries that use them.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Render.OutputDir) == "" {
		problems = append(problems, "render.output_dir is required")
	}
	if strings.TrimSpace(c.Render.Executable) == "" {
		problems = append(problems, "render.executable is required")
	}
	if c.Render.Timeout <= 0 {
		problems = append(problems, "render.timeout must be positive")
	}
	if c.Render.JobTTL < 0 {
		problems = append(problems, "render.job_ttl must not be negative")
	}
	if c.Render.JobTTL > 0 && c.Render.SweepInterval <= 0 {
		problems = append(problems, "render.sweep_interval must be positive when job_ttl is set")
	}
	switch c.Storage.Provider {
	case "localfs", "gdrive":
	default:
		problems = append(problems, fmt.Sprintf("unknown storage provider: %s", c.Storage.Provider))
	}
	if len(problems) > 0 {
		return errors.Validation("invalid configuration: " + strings.Join(problems, "; ")).
			WithField("problems", problems)
	}
	return nil
}

func splitCSV(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

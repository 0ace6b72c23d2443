package render

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/util"
)

const (
	jobDirPrefix     = "manim_tmp"
	scratchDirPrefix = "temp_analysis"
	scriptName       = "scene.py"
	scratchScript    = "temp_scene.py"

	// DefaultTimeout bounds a single renderer process.
	DefaultTimeout = 300 * time.Second

	recentVideos = 5
)

// Config configures a Manager.
type Config struct {
	// OutputDir is the base directory; it is created by New.
	OutputDir string
	// Executable is the manim binary. Defaults to "manim".
	Executable string
	// Timeout bounds each renderer process. Defaults to DefaultTimeout.
	Timeout time.Duration
	// Preview passes -p so manim opens the finished video.
	Preview bool
	// Runner defaults to ExecRunner.
	Runner Runner
	Log    *logger.Logger
	// Now is the clock used for job timestamps.
	Now func() time.Time
}

// Request is a render request as it arrives from a caller. Quality and
// Backend accept the aliases understood by ParseQuality and ParseBackend.
type Request struct {
	Code    string `json:"code"`
	Quality string `json:"quality,omitempty"`
	Backend string `json:"renderer,omitempty"`
}

// Manager owns the job directories under one output root.
type Manager struct {
	cfg    Config
	runner Runner
	log    *logger.Logger

	mu   sync.Mutex
	jobs map[string]*Job
}

func New(cfg Config) (*Manager, error) {
	const op = "render.new"

	if strings.TrimSpace(cfg.OutputDir) == "" {
		return nil, errors.Validation("output directory is required")
	}
	abs, err := filepath.Abs(cfg.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, op, "resolve output directory")
	}
	cfg.OutputDir = abs
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, errors.Wrapf(err, op, "create output directory %s", cfg.OutputDir)
	}

	if cfg.Executable == "" {
		cfg.Executable = "manim"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Runner == nil {
		cfg.Runner = ExecRunner{}
	}
	if cfg.Log == nil {
		cfg.Log = logger.Discard()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Manager{
		cfg:    cfg,
		runner: cfg.Runner,
		log:    cfg.Log.WithComponent("render"),
		jobs:   make(map[string]*Job),
	}, nil
}

// OutputDir is the absolute base directory.
func (m *Manager) OutputDir() string { return m.cfg.OutputDir }

// Timeout is the per-process limit.
func (m *Manager) Timeout() time.Duration { return m.cfg.Timeout }

// Execute validates req, runs it in a fresh job directory and selects the
// newest video. Non-zero exits come back as CodeRenderFailed errors and
// timeouts as CodeTimeout errors, both carrying the job directory in the
// "dir" field; the directory is left on disk and untracked.
func (m *Manager) Execute(ctx context.Context, req Request) (*Outcome, error) {
	const op = "render.execute"

	if err := Validate(req.Code); err != nil {
		return nil, err
	}
	quality, err := ParseQuality(req.Quality)
	if err != nil {
		return nil, err
	}
	backend, err := ParseBackend(req.Backend)
	if err != nil {
		return nil, err
	}

	job, err := m.createJob(quality, backend)
	if err != nil {
		return nil, errors.Wrap(err, op, "create job directory")
	}
	log := m.log.WithJobID(job.ID)

	if err := os.WriteFile(job.Script, []byte(req.Code), 0o644); err != nil {
		return nil, errors.Wrap(err, op, "write scene script").WithField("dir", job.Dir)
	}

	job.State = StateExecuting
	cmd := m.renderCommand(job)
	log.Info("render started",
		"dir", job.Dir,
		"quality", string(quality),
		"renderer", backend.RendererName(),
	)

	res, err := m.runner.Run(ctx, cmd)
	if err != nil {
		if errors.IsTimeout(err) {
			job.State = StateTimedOut
			log.Warn("render timed out", "dir", job.Dir, "timeout", m.cfg.Timeout.String())
		} else {
			job.State = StateFailed
			log.Error("render could not run", "dir", job.Dir, "error", err.Error())
		}
		return nil, errors.Wrap(err, op, "render did not complete").
			WithField("dir", job.Dir).
			WithField("job_id", job.ID)
	}

	if res.ExitCode != 0 {
		job.State = StateFailed
		log.Warn("render failed",
			"dir", job.Dir,
			"return_code", res.ExitCode,
			"duration_ms", res.Duration.Milliseconds(),
		)
		failed := errors.RenderFailed(res.ExitCode, res.Stderr, res.Stdout).
			WithField("dir", job.Dir).
			WithField("job_id", job.ID)
		failed.Op = op
		return nil, failed
	}

	videos, err := FindVideos(job.Dir)
	if err != nil {
		job.State = StateFailed
		return nil, errors.Wrap(err, op, "scan job directory").WithField("dir", job.Dir)
	}

	out := &Outcome{Stdout: res.Stdout, Duration: res.Duration}
	if len(videos) == 0 {
		job.State = StateNoArtifact
		out.Kind = OutcomeNoArtifact
		out.Job = *job
		log.Warn("render produced no video", "dir", job.Dir)
		return out, nil
	}

	newest := videos[0]
	job.State = StateSucceeded
	job.Artifact = &newest
	m.track(job)

	out.Kind = OutcomeSucceeded
	out.Job = *job
	out.Artifact = &newest
	log.Info("render completed",
		"dir", job.Dir,
		"video", newest.Name,
		"size", newest.Size,
		"duration_ms", res.Duration.Milliseconds(),
	)
	return out, nil
}

// ListScenes asks the renderer to list the scenes in code. The scratch
// directory is removed on every path.
func (m *Manager) ListScenes(ctx context.Context, code string) (string, error) {
	const op = "render.list_scenes"

	dir := filepath.Join(m.cfg.OutputDir, scratchDirPrefix+"_"+util.ShortID())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, op, "create scratch directory")
	}
	defer func() {
		if err := os.RemoveAll(dir); err != nil {
			m.log.Warn("scratch directory not removed", "dir", dir, "error", err.Error())
		}
	}()

	script := filepath.Join(dir, scratchScript)
	if err := os.WriteFile(script, []byte(code), 0o644); err != nil {
		return "", errors.Wrap(err, op, "write scene script")
	}

	res, err := m.runner.Run(ctx, Command{
		Path:    m.cfg.Executable,
		Args:    []string{"-l", script},
		Dir:     dir,
		Timeout: m.cfg.Timeout,
	})
	if err != nil {
		return "", errors.Wrap(err, op, "list scenes did not complete")
	}
	if res.ExitCode != 0 {
		return "", errors.Wrap(errors.RenderFailed(res.ExitCode, res.Stderr, res.Stdout), op, "list scenes failed")
	}
	return res.Stdout, nil
}

// Cleanup removes dir and forgets it if tracked. dir need not have been
// created by this Manager. A missing directory is a CodeNotFound error.
func (m *Manager) Cleanup(dir string) error {
	const op = "render.cleanup"

	if strings.TrimSpace(dir) == "" {
		return errors.ValidationField("directory", "directory is required")
	}
	key := m.key(dir)

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		m.forget(key)
		return errors.NotFound("directory", dir)
	}
	if err != nil {
		return errors.Wrapf(err, op, "stat %s", dir)
	}
	if !info.IsDir() {
		return errors.ValidationField("directory", "not a directory: "+dir)
	}

	if err := os.RemoveAll(dir); err != nil {
		return errors.Wrapf(err, op, "remove %s", dir)
	}
	m.forget(key)
	m.log.Info("job directory removed", "dir", dir)
	return nil
}

// CleanupAll removes every tracked directory still on disk and returns how
// many were removed. Entries whose removal failed stay tracked.
func (m *Manager) CleanupAll() (int, error) {
	return m.removeTracked(func(*Job) bool { return true })
}

// Sweep removes tracked directories created more than olderThan ago.
func (m *Manager) Sweep(olderThan time.Duration) (int, error) {
	cutoff := m.cfg.Now().Add(-olderThan)
	return m.removeTracked(func(j *Job) bool { return j.CreatedAt.Before(cutoff) })
}

func (m *Manager) removeTracked(match func(*Job) bool) (int, error) {
	const op = "render.cleanup_all"

	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	var failed []string
	var firstErr error
	for key, job := range m.jobs {
		if !match(job) {
			continue
		}
		if _, err := os.Stat(job.Dir); os.IsNotExist(err) {
			delete(m.jobs, key)
			continue
		}
		if err := os.RemoveAll(job.Dir); err != nil {
			failed = append(failed, job.Dir)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		delete(m.jobs, key)
		removed++
	}

	if removed > 0 {
		m.log.Info("tracked job directories removed", "count", removed)
	}
	if firstErr != nil {
		sort.Strings(failed)
		return removed, errors.Wrap(firstErr, op, "some job directories could not be removed").
			WithField("failed", failed)
	}
	return removed, nil
}

// DirectoryInfo reads the output root from disk.
func (m *Manager) DirectoryInfo() (*DirInfo, error) {
	const op = "render.directory_info"

	info := &DirInfo{Path: m.cfg.OutputDir}
	entries, err := os.ReadDir(m.cfg.OutputDir)
	if os.IsNotExist(err) {
		return info, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, op, "read output directory")
	}
	info.Exists = true
	info.TotalFiles = len(entries)

	videos, err := FindVideos(m.cfg.OutputDir)
	if err != nil {
		return nil, errors.Wrap(err, op, "scan output directory")
	}
	info.VideoCount = len(videos)
	if len(videos) > recentVideos {
		videos = videos[:recentVideos]
	}
	info.Recent = videos
	return info, nil
}

// Jobs returns the tracked jobs, newest first.
func (m *Manager) Jobs() []Job {
	m.mu.Lock()
	out := make([]Job, 0, len(m.jobs))
	for _, j := range m.jobs {
		out = append(out, *j)
	}
	m.mu.Unlock()

	sort.Slice(out, func(i, k int) bool {
		if !out[i].CreatedAt.Equal(out[k].CreatedAt) {
			return out[i].CreatedAt.After(out[k].CreatedAt)
		}
		return out[i].ID > out[k].ID
	})
	return out
}

// Tracked reports whether dir is in the registry.
func (m *Manager) Tracked(dir string) bool {
	key := m.key(dir)
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[key]
	return ok
}

func (m *Manager) createJob(q Quality, b Backend) (*Job, error) {
	now := m.cfg.Now().UTC()
	id := now.Format("20060102T150405Z") + "_" + util.ShortID()
	dir := filepath.Join(m.cfg.OutputDir, jobDirPrefix+"_"+id)

	// The root may have been removed since New.
	if err := os.MkdirAll(m.cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}
	// Mkdir, not MkdirAll: an existing directory means an id collision.
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, err
	}
	return &Job{
		ID:        id,
		Dir:       dir,
		Script:    filepath.Join(dir, scriptName),
		Quality:   q,
		Backend:   b,
		State:     StateCreated,
		CreatedAt: now,
	}, nil
}

func (m *Manager) renderCommand(job *Job) Command {
	args := make([]string, 0, 6)
	if m.cfg.Preview {
		args = append(args, "-p")
	}
	args = append(args,
		"-q", job.Quality.Flag(),
		"--renderer="+job.Backend.RendererName(),
		job.Script,
	)
	return Command{
		Path:    m.cfg.Executable,
		Args:    args,
		Dir:     job.Dir,
		Timeout: m.cfg.Timeout,
	}
}

func (m *Manager) track(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[m.key(job.Dir)] = job
}

func (m *Manager) forget(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if j, ok := m.jobs[key]; ok {
		j.State = StateCleaned
		delete(m.jobs, key)
	}
}

func (m *Manager) key(dir string) string {
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return filepath.Clean(dir)
}

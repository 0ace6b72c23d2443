package render

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"time"

	"reel/internal/pkg/errors"
)

// Command is one renderer invocation.
type Command struct {
	Path    string
	Args    []string
	Dir     string
	Timeout time.Duration
}

// RunResult is what a finished process left behind. A non-zero ExitCode is
// not a Runner error; callers decide what it means.
type RunResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Runner executes renderer commands. Run returns a CodeTimeout error when
// the command outlives its Timeout.
type Runner interface {
	Run(ctx context.Context, cmd Command) (RunResult, error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// WaitDelay bounds how long Run waits for output pipes after the
	// process is killed. Zero means two seconds.
	WaitDelay time.Duration
}

func (r ExecRunner) Run(ctx context.Context, c Command) (RunResult, error) {
	const op = "render.run"

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = r.WaitDelay
	if cmd.WaitDelay <= 0 {
		cmd.WaitDelay = 2 * time.Second
	}
	killProcessGroup(cmd)

	start := time.Now()
	err := cmd.Run()
	res := RunResult{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if ctxErr := runCtx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) && ctx.Err() == nil {
			res.ExitCode = -1
			return res, errors.Timeout("render").
				WithField("timeout", c.Timeout.String())
		}
		res.ExitCode = -1
		return res, errors.Wrap(ctxErr, op, "render canceled")
	}

	if err != nil {
		var exitErr *exec.ExitError
		if stderrors.As(err, &exitErr) {
			res.ExitCode = exitErr.ExitCode()
			return res, nil
		}
		return res, errors.Wrapf(err, op, "start %s", c.Path)
	}
	return res, nil
}

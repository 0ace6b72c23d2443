// reel-mcp serves the Manim render tools over MCP on stdin/stdout.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/pflag"

	"reel/internal/config"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/shutdown"
	"reel/internal/render"
	"reel/internal/tools"
)

const (
	serverName = "reel"
	version    = "0.1.0"
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
		outputDir  string
		executable string
		timeout    time.Duration
		noPreview  bool
		logLevel   string
	)

	flagSet := pflag.NewFlagSet("reel-mcp", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("REEL_CONFIG"), "path to a YAML config file")
	flagSet.StringVar(&outputDir, "output-dir", "", "base directory for render job directories")
	flagSet.StringVar(&executable, "manim", "", "manim executable (default: $MANIM_EXECUTABLE or manim)")
	flagSet.DurationVar(&timeout, "timeout", 0, "hard limit for a single render")
	flagSet.BoolVar(&noPreview, "no-preview", false, "do not pass -p to manim")
	flagSet.StringVar(&logLevel, "log-level", "", "debug, info, warn or error")
	if err := flagSet.Parse(args); err != nil {
		return err
	}

	cfg, err := config.LoadFile(configPath)
	if err != nil {
		return err
	}
	if flagSet.Changed("output-dir") {
		cfg.Render.OutputDir = outputDir
	}
	if flagSet.Changed("manim") {
		cfg.Render.Executable = executable
	}
	if flagSet.Changed("timeout") {
		cfg.Render.Timeout = timeout
	}
	if noPreview {
		cfg.Render.Preview = false
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr.
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		Output:      os.Stderr,
		AddSource:   cfg.Log.Source,
		ServiceName: "reel-mcp",
	})
	log.Info("starting reel MCP server", "version", version)

	shutdownMgr := shutdown.NewManager(log, 30*time.Second)

	// Initialize render manager
	mgr, err := render.New(render.Config{
		OutputDir:  cfg.Render.OutputDir,
		Executable: cfg.Render.Executable,
		Timeout:    cfg.Render.Timeout,
		Preview:    cfg.Render.Preview,
		Log:        log,
	})
	if err != nil {
		return err
	}
	log.Info("render manager ready",
		"output_dir", mgr.OutputDir(),
		"executable", cfg.Render.Executable,
		"timeout", cfg.Render.Timeout.String(),
	)

	if cfg.Render.CleanupOnShutdown {
		shutdownMgr.Register("render-cleanup", func(ctx context.Context) error {
			n, err := mgr.CleanupAll()
			log.Info("tracked job directories removed on shutdown", "count", n)
			return err
		})
	}

	ctx, cancel := context.WithCancel(context.Background())
	shutdownMgr.RegisterSimple("context", cancel)

	if cfg.Render.JobTTL > 0 {
		go mgr.SweepEvery(ctx, cfg.Render.JobTTL, cfg.Render.SweepInterval)
	}

	server := tools.NewServer(serverName, version, tools.NewHandlers(mgr, log))

	// The server stops when the client closes stdin; that also triggers
	// shutdown so the cleanup handlers run.
	serverCtx, serverStopped := context.WithCancel(context.Background())
	go func() {
		defer serverStopped()
		if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && ctx.Err() == nil {
			log.LogError(ctx, "MCP server stopped", err)
		}
	}()

	shutdownMgr.WaitWithContext(serverCtx)
	return nil
}

// reel-worker renders queued jobs and publishes the videos.
package main

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/shutdown"
	"reel/internal/render"
	"reel/internal/repositories"
	"reel/internal/storage"
	"reel/internal/worker"
	"reel/internal/worker/processor"
	"reel/internal/worker/queue"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().LogFatal("invalid configuration", err)
	}

	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "reel-worker",
		AddSource:   cfg.Log.Source,
	})
	log.Info("starting reel worker", "version", version)

	if cfg.Database.URL == "" {
		log.Error("missing required configuration", "key", "DATABASE_URL")
		return
	}

	ctx := context.Background()
	shutdownMgr := shutdown.NewManager(log, 30*time.Second+cfg.Render.Timeout)

	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.LogFatal("failed to connect to PostgreSQL", err)
	}
	shutdownMgr.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})
	if err := pool.Ping(ctx); err != nil {
		log.LogFatal("failed to ping PostgreSQL", err)
	}
	if err := repositories.Migrate(ctx, pool); err != nil {
		log.LogFatal("failed to apply migrations", err)
	}

	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize artifact store", err)
	}

	// A headless worker never opens a preview window.
	renders, err := render.New(render.Config{
		OutputDir:  cfg.Render.OutputDir,
		Executable: cfg.Render.Executable,
		Timeout:    cfg.Render.Timeout,
		Log:        log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render manager", err)
	}

	proc := processor.New(processor.Deps{
		Jobs:         repositories.NewJobRepository(pool),
		Renderer:     renders,
		Store:        store,
		CleanupLocal: cfg.Worker.CleanupLocal,
		Log:          log,
	})

	runCtx, cancel := context.WithCancel(ctx)
	if cfg.Render.JobTTL > 0 {
		go renders.SweepEvery(runCtx, cfg.Render.JobTTL, cfg.Render.SweepInterval)
	}

	// workerCtx ends when Run returns, which also triggers shutdown.
	workerCtx, workerStopped := context.WithCancel(ctx)
	go func() {
		defer workerStopped()
		err := worker.Run(runCtx, worker.Deps{
			Queue:     queue.NewRedisQueue(rdb, cfg.Redis.QueueName),
			Processor: proc,
			Log:       log,
		})
		if err != nil && runCtx.Err() == nil {
			log.LogError(ctx, "worker stopped", err)
		}
	}()

	// Registered last so it runs first: the job in flight is recorded
	// before the pool and Redis client close.
	shutdownMgr.Register("worker", func(ctx context.Context) error {
		cancel()
		select {
		case <-workerCtx.Done():
			return nil
		case <-ctx.Done():
			return ctx.Err()
		}
	})

	log.Info("worker started",
		"queue", cfg.Redis.QueueName,
		"storage", store.Provider(),
		"output_dir", renders.OutputDir(),
	)
	shutdownMgr.WaitWithContext(workerCtx)
}

// reel-api serves synchronous renders and the queued job API over HTTP.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reel/internal/config"
	"reel/internal/httpapi"
	"reel/internal/httpapi/handlers"
	"reel/internal/pkg/logger"
	"reel/internal/pkg/shutdown"
	"reel/internal/render"
	"reel/internal/repositories"
	"reel/internal/storage"
	"reel/internal/worker/queue"
)

const version = "0.1.0"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewDefault().LogFatal("invalid configuration", err)
	}

	// Initialize logger
	log := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Format:      cfg.Log.Format,
		ServiceName: "reel-api",
		AddSource:   cfg.Log.Source,
	})

	log.Info("starting reel API",
		"version", version,
	)

	if cfg.Database.URL == "" {
		log.Error("missing required configuration", "key", "DATABASE_URL")
		return
	}

	ctx, cancel := context.WithCancel(context.Background())

	// Initialize shutdown manager
	shutdownMgr := shutdown.NewManager(log, 30*time.Second)
	shutdownMgr.RegisterSimple("context", cancel)

	// Connect to PostgreSQL
	log.Info("connecting to PostgreSQL")
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
	log.Info("PostgreSQL connected")

	// Connect to Redis
	log.Info("connecting to Redis")
	rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	shutdownMgr.Register("redis", func(ctx context.Context) error {
		return rdb.Close()
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		log.LogFatal("failed to ping Redis", err)
	}
	log.Info("Redis connected", "queue", cfg.Redis.QueueName)

	// Initialize artifact store
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		log.LogFatal("failed to initialize artifact store", err)
	}
	log.Info("artifact store initialized", "provider", store.Provider())

	// Synchronous renders run in this process and never open a preview.
	renders, err := render.New(render.Config{
		OutputDir:  cfg.Render.OutputDir,
		Executable: cfg.Render.Executable,
		Timeout:    cfg.Render.Timeout,
		Log:        log,
	})
	if err != nil {
		log.LogFatal("failed to initialize render manager", err)
	}
	if cfg.Render.CleanupOnShutdown {
		shutdownMgr.Register("render-cleanup", func(ctx context.Context) error {
			n, err := renders.CleanupAll()
			log.Info("tracked job directories removed on shutdown", "count", n)
			return err
		})
	}
	if cfg.Render.JobTTL > 0 {
		go renders.SweepEvery(ctx, cfg.Render.JobTTL, cfg.Render.SweepInterval)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Handlers: handlers.Deps{
			Renders: renders,
			Jobs:    repositories.NewJobRepository(pool),
			Queue:   queue.NewRedisQueue(rdb, cfg.Redis.QueueName),
			Store:   store,
			Pool:    pool,
			RDB:     rdb,
			Version: version,
		},
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		Log:            log,
	})

	// WriteTimeout covers a full synchronous render.
	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.HTTP.Port,
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.Render.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	shutdownMgr.Register("http-server", func(ctx context.Context) error {
		log.Info("shutting down HTTP server")
		return server.Shutdown(ctx)
	})

	go func() {
		log.Info("HTTP server listening",
			"addr", server.Addr,
			"port", cfg.HTTP.Port,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogFatal("HTTP server failed", err)
		}
	}()

	shutdownMgr.Wait()
}

// Package handlers implements the reel HTTP endpoints.
package handlers

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"reel/internal/models"
	"reel/internal/pkg/logger"
	"reel/internal/ports"
	"reel/internal/render"
)

// JobStore is the job persistence used by the /jobs endpoints.
type JobStore interface {
	Create(ctx context.Context, j *models.RenderJob) error
	Get(ctx context.Context, id string) (*models.RenderJob, error)
	List(ctx context.Context, status models.JobStatus, limit int) ([]models.RenderJob, error)
	Finish(ctx context.Context, id string, res models.JobResult) error
}

// Enqueuer hands job ids to the worker.
type Enqueuer interface {
	Push(ctx context.Context, jobID string) error
}

type Deps struct {
	Renders *render.Manager
	Jobs    JobStore
	Queue   Enqueuer
	Store   ports.ArtifactStore
	// Pool and RDB are only pinged by the deep health check.
	Pool    *pgxpool.Pool
	RDB     *redis.Client
	Log     *logger.Logger
	Version string
}

type Handler struct {
	renders *render.Manager
	jobs    JobStore
	queue   Enqueuer
	store   ports.ArtifactStore
	pool    *pgxpool.Pool
	rdb     *redis.Client
	log     *logger.Logger
	version string
}

func New(d Deps) *Handler {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Handler{
		renders: d.Renders,
		jobs:    d.Jobs,
		queue:   d.Queue,
		store:   d.Store,
		pool:    d.Pool,
		rdb:     d.RDB,
		log:     log.WithComponent("http"),
		version: d.Version,
	}
}

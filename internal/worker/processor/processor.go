// Package processor executes one queued render job: load, render, publish
// and record the result.
package processor

import (
	"context"
	"strings"
	"time"

	"reel/internal/models"
	"reel/internal/pkg/errors"
	"reel/internal/pkg/logger"
	"reel/internal/ports"
	"reel/internal/render"
	"reel/internal/tools"
)

// JobStore is the persistence the processor needs.
type JobStore interface {
	Get(ctx context.Context, id string) (*models.RenderJob, error)
	MarkRunning(ctx context.Context, id string) error
	Finish(ctx context.Context, id string, res models.JobResult) error
}

// Renderer is the part of *render.Manager the processor drives.
type Renderer interface {
	Execute(ctx context.Context, req render.Request) (*render.Outcome, error)
	Cleanup(dir string) error
	Timeout() time.Duration
}

type Deps struct {
	Jobs     JobStore
	Renderer Renderer
	Store    ports.ArtifactStore
	// CleanupLocal removes the job directory once its video is published.
	CleanupLocal bool
	Log          *logger.Logger
}

type Processor struct {
	jobs         JobStore
	renderer     Renderer
	publisher    *Publisher
	cleanupLocal bool
	log          *logger.Logger
}

func New(d Deps) *Processor {
	log := d.Log
	if log == nil {
		log = logger.Discard()
	}
	return &Processor{
		jobs:         d.Jobs,
		renderer:     d.Renderer,
		publisher:    NewPublisher(d.Store),
		cleanupLocal: d.CleanupLocal,
		log:          log.WithComponent("processor"),
	}
}

// ProcessJob runs jobID to a terminal status. The returned error reports
// infrastructure trouble; a render that failed is recorded on the job and
// is not an error here.
func (p *Processor) ProcessJob(ctx context.Context, jobID string) error {
	log := p.log.FromContext(ctx).WithJobID(jobID)

	// 1. Load
	job, err := p.jobs.Get(ctx, jobID)
	if err != nil {
		return errors.Wrap(err, "processor.load", "failed to load job")
	}
	if job.Status != models.JobQueued {
		log.Warn("job is not queued, skipping", "status", string(job.Status))
		return nil
	}

	// 2. Parse
	req, err := ParseJob(job)
	if err != nil {
		log.Warn("job rejected", "error", errors.GetMessage(err))
		return p.finish(ctx, jobID, models.JobResult{
			Status:    models.JobInvalid,
			Report:    tools.ExecuteReport(nil, err, p.renderer.Timeout()),
			ErrorCode: string(errors.GetCode(err)),
			ErrorText: errors.GetMessage(err),
		})
	}

	// 3. Claim
	if err := p.jobs.MarkRunning(ctx, jobID); err != nil {
		if errors.IsCode(err, errors.CodeConflict) {
			log.Warn("job already claimed, skipping")
			return nil
		}
		return errors.Wrap(err, "processor.claim", "failed to mark job as running")
	}

	// 4. Render
	log.Info("starting render", "quality", req.Quality, "renderer", req.Backend)
	out, renderErr := p.renderer.Execute(ctx, req)

	res := models.JobResult{
		Status: statusFor(out, renderErr),
		Report: tools.ExecuteReport(out, renderErr, p.renderer.Timeout()),
	}
	if renderErr != nil {
		res.ErrorCode = string(errors.GetCode(renderErr))
		res.ErrorText = truncate(renderErr.Error(), maxErrorText)
		if dir, ok := errors.GetFields(renderErr)["dir"].(string); ok {
			res.JobDir = dir
		}
		log.Warn("render did not succeed", "status", string(res.Status), "code", res.ErrorCode)
		return p.finish(ctx, jobID, res)
	}
	res.JobDir = out.Job.Dir

	if out.Kind != render.OutcomeSucceeded {
		return p.finish(ctx, jobID, res)
	}

	// 5. Publish
	res.ArtifactName = out.Artifact.Name
	res.ArtifactSize = out.Artifact.Size
	put, err := p.publisher.Publish(ctx, jobID, out.Artifact)
	if err != nil {
		res.Status = models.JobFailed
		res.ErrorCode = string(errors.GetCode(err))
		res.ErrorText = truncate(err.Error(), maxErrorText)
		log.Error("artifact publish failed", "error", err.Error())
		return p.finish(ctx, jobID, res)
	}
	res.ArtifactObjectKey = put.Key
	log.Info("artifact published", "key", put.Key, "size", put.Size)

	// 6. Record, then drop the local copy
	if err := p.finish(ctx, jobID, res); err != nil {
		return err
	}
	p.cleanup(log, out.Job.Dir)
	return nil
}

func (p *Processor) finish(ctx context.Context, jobID string, res models.JobResult) error {
	// Record the result even when the job context was canceled mid-render.
	saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	if err := p.jobs.Finish(saveCtx, jobID, res); err != nil {
		return errors.Wrap(err, "processor.finish", "failed to record job result")
	}
	return nil
}

func (p *Processor) cleanup(log *logger.Logger, dir string) {
	if !p.cleanupLocal || strings.TrimSpace(dir) == "" {
		return
	}
	if err := p.renderer.Cleanup(dir); err != nil && !errors.IsNotFound(err) {
		log.Warn("job directory not removed", "dir", dir, "error", err.Error())
		return
	}
	log.Debug("job directory removed", "dir", dir)
}

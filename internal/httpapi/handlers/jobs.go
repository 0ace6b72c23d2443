package handlers

import (
	"context"
	"io"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"reel/internal/httpkit"
	"reel/internal/models"
	"reel/internal/pkg/errors"
	"reel/internal/pkg/util"
	"reel/internal/render"
)

type CreateJobRequest struct {
	Code     string `json:"code"`
	Quality  string `json:"quality,omitempty"`
	Renderer string `json:"renderer,omitempty"`
}

// PostJob stores a QUEUED job and hands its id to the worker.
func (h *Handler) PostJob(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if h.jobs == nil || h.queue == nil {
		return errors.Unavailable("job queue")
	}

	var req CreateJobRequest
	if err := httpkit.DecodeJSON(r, &req); err != nil {
		return errors.WrapWithCode(err, errors.CodeBadRequest, "http.post_job", "invalid json body")
	}
	if err := render.Validate(req.Code); err != nil {
		return err
	}
	q, err := render.ParseQuality(req.Quality)
	if err != nil {
		return err
	}
	b, err := render.ParseBackend(req.Renderer)
	if err != nil {
		return err
	}

	job := &models.RenderJob{
		ID:      util.NewID("job"),
		Code:    req.Code,
		Quality: string(q),
		Backend: string(b),
	}
	if err := h.jobs.Create(ctx, job); err != nil {
		return err
	}
	if err := h.queue.Push(ctx, job.ID); err != nil {
		return h.failUnqueued(ctx, job.ID, err)
	}
	h.log.FromContext(ctx).Info("job queued", "job_id", job.ID, "quality", job.Quality, "renderer", job.Backend)

	job.Code = ""
	httpkit.WriteJSON(w, http.StatusCreated, map[string]any{"job": job})
	return nil
}

// failUnqueued marks a stored job FAILED after its id could not be
// enqueued; no worker would ever claim it.
func (h *Handler) failUnqueued(ctx context.Context, jobID string, pushErr error) error {
	log := h.log.FromContext(ctx)
	log.Error("job enqueue failed", "job_id", jobID, "error", pushErr.Error())

	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := h.jobs.Finish(finishCtx, jobID, models.JobResult{
		Status:    models.JobFailed,
		ErrorCode: string(errors.CodeUnavailable),
		ErrorText: "enqueue failed: " + pushErr.Error(),
	})
	if err != nil {
		log.Error("unqueued job not marked failed", "job_id", jobID, "error", err.Error())
	}

	return errors.WrapWithCode(pushErr, errors.CodeUnavailable, "http.post_job", "job queue unavailable").
		WithField("job_id", jobID)
}

func (h *Handler) ListJobs(w http.ResponseWriter, r *http.Request) error {
	if h.jobs == nil {
		return errors.Unavailable("job store")
	}

	status := models.JobStatus(strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("status"))))
	if status != "" && !status.Valid() {
		return errors.ValidationField("status", "unknown status: "+string(status))
	}
	limit := 0
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return errors.ValidationField("limit", "limit must be a positive integer")
		}
		limit = v
	}

	jobs, err := h.jobs.List(r.Context(), status, limit)
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
	return nil
}

func (h *Handler) GetJob(w http.ResponseWriter, r *http.Request) error {
	if h.jobs == nil {
		return errors.Unavailable("job store")
	}
	job, err := h.jobs.Get(r.Context(), chi.URLParam(r, "jobId"))
	if err != nil {
		return err
	}
	httpkit.WriteJSON(w, http.StatusOK, map[string]any{"job": job})
	return nil
}

// GetJobArtifact streams the published video of a finished job.
func (h *Handler) GetJobArtifact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()
	if h.jobs == nil || h.store == nil {
		return errors.Unavailable("artifact store")
	}
	jobID := chi.URLParam(r, "jobId")

	job, err := h.jobs.Get(ctx, jobID)
	if err != nil {
		return err
	}
	if job.ArtifactObjectKey == "" {
		return errors.NotFound("artifact", jobID).WithField("status", string(job.Status))
	}

	obj, err := h.store.Open(ctx, job.ArtifactObjectKey)
	if err != nil {
		return err
	}
	defer obj.Body.Close()

	ct := obj.ContentType
	if ct == "" {
		ct = "video/mp4"
	}
	w.Header().Set("Content-Type", ct)
	size := obj.Size
	if size <= 0 {
		size = job.ArtifactSize
	}
	if size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(size, 10))
	}
	name := job.ArtifactName
	if name == "" {
		name = path.Base(job.ArtifactObjectKey)
	}
	w.Header().Set("Content-Disposition", `inline; filename="`+strings.ReplaceAll(name, `"`, "")+`"`)

	_, _ = io.Copy(w, obj.Body)
	return nil
}

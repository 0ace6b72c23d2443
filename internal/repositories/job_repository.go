package repositories

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"reel/internal/httpkit"
	"reel/internal/models"
	"reel/internal/pkg/errors"
)

// DB is the subset of *pgxpool.Pool the repository uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

const (
	DefaultListLimit = 50
	MaxListLimit     = 200
)

type JobRepository struct {
	db DB
}

func NewJobRepository(db DB) *JobRepository {
	return &JobRepository{db: db}
}

// Create inserts a QUEUED job and fills in CreatedAt.
func (r *JobRepository) Create(ctx context.Context, j *models.RenderJob) error {
	const op = "jobs.create"

	j.Status = models.JobQueued
	err := r.db.QueryRow(ctx, `
		INSERT INTO render_jobs (id, status, code, quality, backend)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING created_at
	`, j.ID, string(j.Status), j.Code, j.Quality, j.Backend).Scan(&j.CreatedAt)
	if err != nil {
		if httpkit.IsUniqueViolation(err) {
			return errors.New(errors.CodeConflict, "job already exists").WithField("job_id", j.ID)
		}
		return errors.Wrap(err, op, "db insert failed")
	}
	return nil
}

func (r *JobRepository) Get(ctx context.Context, id string) (*models.RenderJob, error) {
	const op = "jobs.get"

	var (
		j      models.RenderJob
		status string
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, status, code, quality, backend,
		       COALESCE(job_dir,''), COALESCE(artifact_name,''), COALESCE(artifact_size,0),
		       COALESCE(artifact_object_key,''), COALESCE(report,''),
		       COALESCE(error_code,''), COALESCE(error_text,''),
		       created_at, started_at, finished_at
		FROM render_jobs
		WHERE id=$1
	`, id).Scan(
		&j.ID, &status, &j.Code, &j.Quality, &j.Backend,
		&j.JobDir, &j.ArtifactName, &j.ArtifactSize,
		&j.ArtifactObjectKey, &j.Report,
		&j.ErrorCode, &j.ErrorText,
		&j.CreatedAt, &j.StartedAt, &j.FinishedAt,
	)
	if err != nil {
		if httpkit.IsNoRows(err) {
			return nil, errors.NotFound("job", id)
		}
		return nil, errors.Wrap(err, op, "db query failed")
	}
	j.Status = models.JobStatus(status)
	return &j, nil
}

// List returns jobs newest first without their source code. An empty
// status lists every job.
func (r *JobRepository) List(ctx context.Context, status models.JobStatus, limit int) ([]models.RenderJob, error) {
	const op = "jobs.list"

	limit = ClampLimit(limit)
	var (
		rows pgx.Rows
		err  error
	)
	const cols = `id, status, quality, backend, COALESCE(artifact_name,''), COALESCE(error_code,''),
		created_at, started_at, finished_at`
	if status != "" {
		rows, err = r.db.Query(ctx, `SELECT `+cols+`
			FROM render_jobs WHERE status=$1
			ORDER BY created_at DESC
			LIMIT $2`, string(status), limit)
	} else {
		rows, err = r.db.Query(ctx, `SELECT `+cols+`
			FROM render_jobs
			ORDER BY created_at DESC
			LIMIT $1`, limit)
	}
	if err != nil {
		return nil, errors.Wrap(err, op, "db query failed")
	}
	defer rows.Close()

	out := make([]models.RenderJob, 0, limit)
	for rows.Next() {
		var (
			j  models.RenderJob
			st string
		)
		if err := rows.Scan(&j.ID, &st, &j.Quality, &j.Backend, &j.ArtifactName, &j.ErrorCode,
			&j.CreatedAt, &j.StartedAt, &j.FinishedAt); err != nil {
			return nil, errors.Wrap(err, op, "row scan failed")
		}
		j.Status = models.JobStatus(st)
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, op, "row iteration failed")
	}
	return out, nil
}

// MarkRunning moves a QUEUED job to RUNNING. A job in any other state is a
// CodeConflict error so a redelivered id is not rendered twice.
func (r *JobRepository) MarkRunning(ctx context.Context, id string) error {
	const op = "jobs.mark_running"

	tag, err := r.db.Exec(ctx, `
		UPDATE render_jobs
		SET status='RUNNING', started_at=now()
		WHERE id=$1 AND status='QUEUED'
	`, id)
	if err != nil {
		return errors.Wrap(err, op, "db update failed")
	}
	if tag.RowsAffected() == 0 {
		return errors.New(errors.CodeConflict, "job is not queued").WithField("job_id", id)
	}
	return nil
}

// Finish records the terminal state of a job.
func (r *JobRepository) Finish(ctx context.Context, id string, res models.JobResult) error {
	const op = "jobs.finish"

	if !res.Status.Terminal() {
		return errors.Validationf("status %s is not terminal", res.Status)
	}
	tag, err := r.db.Exec(ctx, `
		UPDATE render_jobs
		SET status=$2, job_dir=$3, artifact_name=$4, artifact_size=$5, artifact_object_key=$6,
		    report=$7, error_code=$8, error_text=$9, finished_at=now()
		WHERE id=$1
	`, id, string(res.Status),
		nullIfEmpty(res.JobDir), nullIfEmpty(res.ArtifactName), nullIfZero(res.ArtifactSize),
		nullIfEmpty(res.ArtifactObjectKey), nullIfEmpty(res.Report),
		nullIfEmpty(res.ErrorCode), nullIfEmpty(res.ErrorText),
	)
	if err != nil {
		return errors.Wrap(err, op, "db update failed")
	}
	if tag.RowsAffected() == 0 {
		return errors.NotFound("job", id)
	}
	return nil
}

// ClampLimit applies the default and maximum page size.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

func nullIfEmpty(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}

func nullIfZero(n int64) any {
	if n == 0 {
		return nil
	}
	return n
}

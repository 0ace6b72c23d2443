package processor

import (
	"reel/internal/models"
	"reel/internal/pkg/errors"
	"reel/internal/render"
)

// ParseJob turns a stored job into a render request, normalizing quality
// and renderer. Anything that cannot be rendered is a validation error.
func ParseJob(j *models.RenderJob) (render.Request, error) {
	if err := render.Validate(j.Code); err != nil {
		return render.Request{}, err
	}
	q, err := render.ParseQuality(j.Quality)
	if err != nil {
		return render.Request{}, err
	}
	b, err := render.ParseBackend(j.Backend)
	if err != nil {
		return render.Request{}, err
	}
	return render.Request{
		Code:    j.Code,
		Quality: string(q),
		Backend: string(b),
	}, nil
}

// statusFor maps a render result onto the persisted job status.
func statusFor(out *render.Outcome, err error) models.JobStatus {
	if err != nil {
		switch errors.GetCode(err) {
		case errors.CodeValidation:
			return models.JobInvalid
		case errors.CodeTimeout:
			return models.JobTimedOut
		default:
			return models.JobFailed
		}
	}
	if out == nil || out.Kind == render.OutcomeNoArtifact {
		return models.JobNoArtifact
	}
	return models.JobSucceeded
}

const maxErrorText = 2000

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	// Keep valid UTF-8 at the cut.
	for n > 0 && !utf8Start(s[n]) {
		n--
	}
	return s[:n]
}

func utf8Start(b byte) bool { return b&0xC0 != 0x80 }

package worker

import (
	"context"
	"time"

	"reel/internal/pkg/logger"
)

// Queue hands out job ids.
type Queue interface {
	Pop(ctx context.Context, wait time.Duration) (string, error)
}

// JobProcessor runs a single job.
type JobProcessor interface {
	ProcessJob(ctx context.Context, jobID string) error
}

type Deps struct {
	Queue     Queue
	Processor JobProcessor
	Log       *logger.Logger
	// PopWait bounds each blocking pop so cancellation is noticed.
	// Zero means five seconds.
	PopWait time.Duration
	// RetryDelay is the pause after a queue error. Zero means one second.
	RetryDelay time.Duration
}

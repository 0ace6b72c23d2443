package render

import "time"

// State is where a job is in its lifecycle.
type State string

const (
	StateCreated    State = "created"
	StateExecuting  State = "executing"
	StateSucceeded  State = "succeeded"
	StateNoArtifact State = "no_artifact"
	StateFailed     State = "failed"
	StateTimedOut   State = "timed_out"
	StateCleaned    State = "cleaned"
)

// Job is one render attempt and the directory it ran in.
type Job struct {
	ID        string         `json:"id"`
	Dir       string         `json:"dir"`
	Script    string         `json:"script"`
	Quality   Quality        `json:"quality"`
	Backend   Backend        `json:"backend"`
	State     State          `json:"state"`
	CreatedAt time.Time      `json:"created_at"`
	Artifact  *VideoArtifact `json:"artifact,omitempty"`
}

// OutcomeKind distinguishes the two non-error results of Execute.
type OutcomeKind string

const (
	OutcomeSucceeded  OutcomeKind = "succeeded"
	OutcomeNoArtifact OutcomeKind = "no_artifact"
)

// Outcome is the result of a render that exited cleanly. Validation
// failures, non-zero exits and timeouts are returned as errors instead.
type Outcome struct {
	Kind     OutcomeKind    `json:"kind"`
	Job      Job            `json:"job"`
	Artifact *VideoArtifact `json:"artifact,omitempty"`
	Stdout   string         `json:"stdout,omitempty"`
	Duration time.Duration  `json:"duration"`
}

// DirInfo describes the output root.
type DirInfo struct {
	Path       string          `json:"path"`
	Exists     bool            `json:"exists"`
	TotalFiles int             `json:"total_files"`
	VideoCount int             `json:"video_count"`
	Recent     []VideoArtifact `json:"recent"`
}

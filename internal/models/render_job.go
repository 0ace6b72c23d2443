package models

import "time"

// JobStatus is the lifecycle state of a queued render job.
type JobStatus string

const (
	JobQueued     JobStatus = "QUEUED"
	JobRunning    JobStatus = "RUNNING"
	JobSucceeded  JobStatus = "SUCCEEDED"
	JobNoArtifact JobStatus = "NO_ARTIFACT"
	JobFailed     JobStatus = "FAILED"
	JobTimedOut   JobStatus = "TIMED_OUT"
	JobInvalid    JobStatus = "INVALID"
)

// Terminal reports whether the worker is done with a job in this status.
func (s JobStatus) Terminal() bool {
	switch s {
	case JobQueued, JobRunning:
		return false
	}
	return true
}

func (s JobStatus) Valid() bool {
	switch s {
	case JobQueued, JobRunning, JobSucceeded, JobNoArtifact, JobFailed, JobTimedOut, JobInvalid:
		return true
	}
	return false
}

// RenderJob is a render request queued through the API and executed by
// the worker.
type RenderJob struct {
	ID      string    `json:"id"`
	Status  JobStatus `json:"status"`
	Code    string    `json:"code,omitempty"`
	Quality string    `json:"quality"`
	Backend string    `json:"renderer"`

	JobDir            string `json:"job_dir,omitempty"`
	ArtifactName      string `json:"artifact_name,omitempty"`
	ArtifactSize      int64  `json:"artifact_size,omitempty"`
	ArtifactObjectKey string `json:"artifact_object_key,omitempty"`

	Report    string `json:"report,omitempty"`
	ErrorCode string `json:"error_code,omitempty"`
	ErrorText string `json:"error_text,omitempty"`

	CreatedAt  time.Time  `json:"created_at"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
}

// JobResult is what the worker records when a job finishes.
type JobResult struct {
	Status            JobStatus
	JobDir            string
	ArtifactName      string
	ArtifactSize      int64
	ArtifactObjectKey string
	Report            string
	ErrorCode         string
	ErrorText         string
}

package models

import "testing"

func TestJobStatus(t *testing.T) {
	tests := []struct {
		status   JobStatus
		terminal bool
	}{
		{JobQueued, false},
		{JobRunning, false},
		{JobSucceeded, true},
		{JobNoArtifact, true},
		{JobFailed, true},
		{JobTimedOut, true},
		{JobInvalid, true},
	}
	for _, tt := range tests {
		if got := tt.status.Terminal(); got != tt.terminal {
			t.Errorf("%s.Terminal() = %v", tt.status, got)
		}
		if !tt.status.Valid() {
			t.Errorf("%s should be valid", tt.status)
		}
	}
	if JobStatus("DONE").Valid() {
		t.Error("unknown status should be invalid")
	}
}

package domain

import "strings"

// JobOutcome is the interpreted result of asking the downstream system to run an import job.
type JobOutcome string

const (
	JobOutcomeAccepted       JobOutcome = "accepted"
	JobOutcomeAlreadyRunning JobOutcome = "already-running"
	JobOutcomeFinished       JobOutcome = "finished"
	JobOutcomeFailed         JobOutcome = "failed"
)

// ClassifyExecutionStatus maps a raw job execution status onto a JobOutcome.
// An import already in flight is not an error: running, pending, finished and
// JobAlreadyRunningException all count as accepted by Accepted.
func ClassifyExecutionStatus(raw string) JobOutcome {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "running", "pending":
		return JobOutcomeAccepted
	case "finished":
		return JobOutcomeFinished
	case "jobalreadyrunningexception", "already-running-exception":
		return JobOutcomeAlreadyRunning
	default:
		return JobOutcomeFailed
	}
}

// Accepted reports whether the job was taken by the downstream system.
func (o JobOutcome) Accepted() bool {
	switch o {
	case JobOutcomeAccepted, JobOutcomeAlreadyRunning, JobOutcomeFinished:
		return true
	}
	return false
}

// StatusCode returns the HTTP-style code used in logs: 201 when accepted, 404 otherwise.
func (o JobOutcome) StatusCode() int {
	if o.Accepted() {
		return 201
	}
	return 404
}
